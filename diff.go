package exfat

import (
	"bytes"
	"fmt"
	"reflect"

	"github.com/dsoprea/go-logging"
	"github.com/hashicorp/go-multierror"
)

// DiffReport is the result of comparing two volumes' directory trees.
type DiffReport struct {
	// OnlyInA holds paths present under the first volume and absent under
	// the second.
	OnlyInA []string

	// OnlyInB holds paths present under the second volume and absent under
	// the first.
	OnlyInB []string

	// Differing holds paths present under both whose length, attributes, or
	// content bytes differ.
	Differing []string
}

// HasFindings reports whether any difference was found.
func (dr *DiffReport) HasFindings() bool {
	return len(dr.OnlyInA) > 0 || len(dr.OnlyInB) > 0 || len(dr.Differing) > 0
}

// Combined renders the report as a combined multierror, one line per
// finding. Returns nil if the two volumes are identical.
func (dr *DiffReport) Combined() error {
	var result *multierror.Error

	for _, p := range dr.OnlyInA {
		result = multierror.Append(result, fmt.Errorf("only in first image: [%s]", p))
	}

	for _, p := range dr.OnlyInB {
		result = multierror.Append(result, fmt.Errorf("only in second image: [%s]", p))
	}

	for _, p := range dr.Differing {
		result = multierror.Append(result, fmt.Errorf("differs: [%s]", p))
	}

	return result.ErrorOrNil()
}

// pathEntry is one flattened path discovered while walking a volume's
// directory tree.
type pathEntry struct {
	path string
	ide  IndexedDirectoryEntry
}

// flattenTree walks the whole directory tree under a volume and returns one
// pathEntry per file or directory, keyed by its forward-slash path.
func flattenTree(v *Volume) (entries map[string]pathEntry, err error) {
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

	entries = make(map[string]pathEntry)

	var walk func(dirPath string, firstCluster uint32, dataLength uint64, noFatChain bool) error

	walk = func(dirPath string, firstCluster uint32, dataLength uint64, noFatChain bool) error {
		slot, err := v.DirectoryCache().Get(firstCluster, dataLength, noFatChain)
		log.PanicIf(err)

		fileIdeList, found := slot.Index["File"]
		if found == false {
			return nil
		}

		for _, ide := range fileIdeList {
			fdf := ide.PrimaryEntry.(*ExfatFileDirectoryEntry)

			filename := ide.Extra["complete_filename"].(string)

			childPath := filename
			if dirPath != "" {
				childPath = dirPath + "/" + filename
			}

			entries[childPath] = pathEntry{
				path: childPath,
				ide:  ide,
			}

			if fdf.FileAttributes.IsDirectory() == true {
				sede := lastComponentIndex(ide)
				if sede == nil {
					continue
				}

				err := walk(childPath, sede.FirstCluster, sede.DataLength, sede.GeneralSecondaryFlags.NoFatChain())
				log.PanicIf(err)
			}
		}

		return nil
	}

	err = walk("", v.Reader().FirstClusterOfRootDirectory(), 0, false)
	log.PanicIf(err)

	return entries, nil
}

// contentsEqual reads both files' full contents and compares them
// byte-for-byte.
func contentsEqual(a, b *Volume, aEntry, bEntry pathEntry) (equal bool, err error) {
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

	var bufA, bufB bytes.Buffer

	err = a.ReadFile(aEntry.path, &bufA)
	log.PanicIf(err)

	err = b.ReadFile(bEntry.path, &bufB)
	log.PanicIf(err)

	return bytes.Equal(bufA.Bytes(), bufB.Bytes()), nil
}

// Diff compares the directory trees of two already-opened volumes and
// reports every path that is only on one side, or whose length, attributes,
// or content differs between the two.
func Diff(ctx *Context, a, b *Volume) (report *DiffReport, err error) {
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

	aEntries, err := flattenTree(a)
	log.PanicIf(err)

	bEntries, err := flattenTree(b)
	log.PanicIf(err)

	report = &DiffReport{}

	for path, aEntry := range aEntries {
		bEntry, found := bEntries[path]
		if found == false {
			report.OnlyInA = append(report.OnlyInA, path)
			continue
		}

		aFdf := aEntry.ide.PrimaryEntry.(*ExfatFileDirectoryEntry)
		bFdf := bEntry.ide.PrimaryEntry.(*ExfatFileDirectoryEntry)

		if aFdf.FileAttributes != bFdf.FileAttributes {
			report.Differing = append(report.Differing, path)
			continue
		}

		aSede := lastComponentIndex(aEntry.ide)
		bSede := lastComponentIndex(bEntry.ide)

		if aSede == nil || bSede == nil {
			continue
		}

		if aSede.DataLength != bSede.DataLength {
			report.Differing = append(report.Differing, path)
			continue
		}

		if aFdf.FileAttributes.IsDirectory() == true {
			continue
		}

		equal, err := contentsEqual(a, b, aEntry, bEntry)
		log.PanicIf(err)

		if equal == false {
			report.Differing = append(report.Differing, path)
		}
	}

	for path := range bEntries {
		if _, found := aEntries[path]; found == false {
			report.OnlyInB = append(report.OnlyInB, path)
		}
	}

	return report, nil
}
