// This file manages a directory cache keyed by first-cluster number, and
// path resolution built on top of it.

package exfat

import (
	"reflect"
	"strings"

	"github.com/dsoprea/go-logging"
)

// CacheSlot is one loaded directory's indexed entries, keyed by the first
// cluster of its data. Subdirectories are loaded on first reference and kept
// here for the lifetime of the owning DirectoryCache.
type CacheSlot struct {
	FirstCluster uint32
	Index        DirectoryEntryIndex
}

// DirectoryCache loads and retains directories by first-cluster number. This
// is a flat map rather than a tree: every directory this process has visited
// gets one entry, regardless of its position in the hierarchy, and nothing
// is evicted on its own. Callers that want to bound memory use on a very
// deep walk can call Evict once they're done descending into a subtree.
type DirectoryCache struct {
	er    *ExfatReader
	slots map[uint32]*CacheSlot

	ctx         *Context
	upcaseTable *UpcaseTable
}

// NewDirectoryCache returns an empty cache bound to the given reader.
func NewDirectoryCache(er *ExfatReader) *DirectoryCache {
	return &DirectoryCache{
		er:    er,
		slots: make(map[uint32]*CacheSlot),
	}
}

// EnableNameHashVerification turns on per-entry NameHash cross-checking for
// every directory loaded from this point on (already-cached slots are not
// retroactively re-verified). Warnings are emitted through ctx.
func (dc *DirectoryCache) EnableNameHashVerification(ctx *Context, ut *UpcaseTable) {
	dc.ctx = ctx
	dc.upcaseTable = ut
}

// Get returns the indexed directory rooted at firstCluster, loading and
// caching it if this is the first reference. dataLength and noFatChain
// should come from the owning Stream Extension entry; pass (0, false) for
// the root directory.
func (dc *DirectoryCache) Get(firstCluster uint32, dataLength uint64, noFatChain bool) (slot *CacheSlot, err error) {
	defer func() {
		if errRaw := recover(); errRaw != nil {
			var ok bool
			if err, ok = errRaw.(error); ok == true {
				err = log.Wrap(err)
			} else {
				err = log.Errorf("Error not an error: [%s] [%v]", reflect.TypeOf(err).Name(), err)
			}
		}
	}()

	if existing, found := dc.slots[firstCluster]; found == true {
		return existing, nil
	}

	var en *ExfatNavigator
	if firstCluster == dc.er.FirstClusterOfRootDirectory() {
		en = NewRootExfatNavigator(dc.er)
	} else {
		en = NewExfatNavigator(dc.er, firstCluster, dataLength, noFatChain)
	}

	if dc.upcaseTable != nil {
		en.WithVerification(dc.ctx, dc.upcaseTable)
	}

	index, _, _, err := en.IndexDirectoryEntries()
	log.PanicIf(err)

	slot = &CacheSlot{
		FirstCluster: firstCluster,
		Index:        index,
	}

	dc.slots[firstCluster] = slot

	return slot, nil
}

// GetRoot returns the root directory's indexed entries.
func (dc *DirectoryCache) GetRoot() (slot *CacheSlot, err error) {
	return dc.Get(dc.er.FirstClusterOfRootDirectory(), 0, false)
}

// Evict drops a cached directory, forcing it to be reloaded from disk the
// next time it is referenced.
func (dc *DirectoryCache) Evict(firstCluster uint32) {
	delete(dc.slots, firstCluster)
}

// Len returns the number of directories currently cached.
func (dc *DirectoryCache) Len() int {
	return len(dc.slots)
}

// splitPath breaks a forward-slash path into its non-empty components. Both
// "/foo/bar" and "foo/bar" resolve the same way; a bare "/" or "" resolves to
// the root directory itself (zero components).
func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}

	return strings.Split(trimmed, "/")
}

// Resolve walks a forward-slash-separated path from the root directory,
// descending through the cache, and returns the indexed entry for the final
// component. An empty or "/" path returns found == false, since the root
// directory itself has no File entry describing it.
func (dc *DirectoryCache) Resolve(path string) (ide IndexedDirectoryEntry, found bool, err error) {
	defer func() {
		if errRaw := recover(); errRaw != nil {
			var ok bool
			if err, ok = errRaw.(error); ok == true {
				err = log.Wrap(err)
			} else {
				err = log.Errorf("Error not an error: [%s] [%v]", reflect.TypeOf(err).Name(), err)
			}
		}
	}()

	parts := splitPath(path)
	if len(parts) == 0 {
		return ide, false, nil
	}

	currentCluster := dc.er.FirstClusterOfRootDirectory()
	currentDataLength := uint64(0)
	currentNoFatChain := false

	for i, part := range parts {
		slot, err := dc.Get(currentCluster, currentDataLength, currentNoFatChain)
		log.PanicIf(err)

		currentIde, currentFound := slot.Index.FindIndexedFile(part)
		if currentFound == false {
			return ide, false, nil
		}

		ide = currentIde

		isLastPart := i == len(parts)-1

		fdf, isFile := ide.PrimaryEntry.(*ExfatFileDirectoryEntry)
		if isFile == false {
			return ide, false, NewInconsistencyError("indexed file entry is not a file directory entry: [%s]", part)
		}

		if fdf.FileAttributes.IsDirectory() == true && isLastPart == false {
			sede := slot.Index.FindIndexedFileStreamExtensionDirectoryEntry(part)
			if sede == nil {
				return ide, false, NewInconsistencyError("directory entry is missing its stream extension: [%s]", part)
			}

			currentCluster = sede.FirstCluster
			currentDataLength = sede.DataLength
			currentNoFatChain = sede.GeneralSecondaryFlags.NoFatChain()
		} else if fdf.FileAttributes.IsDirectory() == false && isLastPart == false {
			return ide, false, NewNotFoundError("path component is a file, not a directory: [%s]", part)
		}
	}

	return ide, true, nil
}

// ListDirectory returns the bare file names (without the parent path) of
// every entry directly under the given directory path ("" or "/" for the
// root).
func (dc *DirectoryCache) ListDirectory(path string) (names []string, err error) {
	defer func() {
		if errRaw := recover(); errRaw != nil {
			var ok bool
			if err, ok = errRaw.(error); ok == true {
				err = log.Wrap(err)
			} else {
				err = log.Errorf("Error not an error: [%s] [%v]", reflect.TypeOf(err).Name(), err)
			}
		}
	}()

	var slot *CacheSlot

	parts := splitPath(path)
	if len(parts) == 0 {
		slot, err = dc.GetRoot()
		log.PanicIf(err)
	} else {
		ide, found, err := dc.Resolve(path)
		log.PanicIf(err)

		if found == false {
			return nil, NewNotFoundError("path not found: [%s]", path)
		}

		fdf := ide.PrimaryEntry.(*ExfatFileDirectoryEntry)
		if fdf.FileAttributes.IsDirectory() == false {
			return nil, NewInvalidArgumentError("path is not a directory: [%s]", path)
		}

		sede := lastComponentIndex(ide)

		slot, err = dc.Get(sede.FirstCluster, sede.DataLength, sede.GeneralSecondaryFlags.NoFatChain())
		log.PanicIf(err)
	}

	filenames := slot.Index.Filenames()

	names = make([]string, 0, len(filenames))
	for filename := range filenames {
		names = append(names, filename)
	}

	return names, nil
}

// lastComponentIndex retrieves the Stream Extension entry that accompanies a
// resolved File entry's IndexedDirectoryEntry.
func lastComponentIndex(ide IndexedDirectoryEntry) *ExfatStreamExtensionDirectoryEntry {
	for _, secondary := range ide.SecondaryEntries {
		if sede, ok := secondary.(*ExfatStreamExtensionDirectoryEntry); ok == true {
			return sede
		}
	}

	return nil
}
