package exfat

import (
	"io"
	"os"
	"reflect"

	"github.com/dsoprea/go-logging"
)

// Volume ties together the pieces every read-oriented operation needs: the
// low-level reader, the loaded Allocation Bitmap and Up-case Table, the
// volume label, and a directory cache rooted at the root directory. It is
// the read-only equivalent of a mount: opening one parses the boot region
// and loads these structures; nothing here writes back to the image.
type Volume struct {
	Context *Context

	er            *ExfatReader
	f             *os.File
	bitmap        *AllocationBitmap
	upcaseTable   *UpcaseTable
	volumeLabel   string
	directoryCache *DirectoryCache

	rootIndex DirectoryEntryIndex
}

// OpenVolume opens the image at path, parses the boot region, and loads the
// Allocation Bitmap, Up-case Table, and volume label out of the root
// directory. The returned Volume must be closed with Close when done.
func OpenVolume(ctx *Context, path string) (v *Volume, err error) {
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

	if ctx == nil {
		ctx = NewContext(LevelWarning)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, NewIoError("could not open image: %s", err.Error())
	}

	v, err = newVolumeFromReadSeeker(ctx, f)
	if err != nil {
		f.Close()
		log.PanicIf(err)
	}

	v.f = f

	return v, nil
}

// OpenVolumeFromReadSeeker parses a boot region from an already-open handle
// (a block device, a test fixture, anything satisfying io.ReadSeeker). The
// caller retains ownership of rs; Close on the returned Volume is a no-op
// for the underlying stream in this case.
func OpenVolumeFromReadSeeker(ctx *Context, rs io.ReadSeeker) (v *Volume, err error) {
	if ctx == nil {
		ctx = NewContext(LevelWarning)
	}

	return newVolumeFromReadSeeker(ctx, rs)
}

func newVolumeFromReadSeeker(ctx *Context, rs io.ReadSeeker) (v *Volume, err error) {
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

	er := NewExfatReader(rs)

	err = er.Parse()
	log.PanicIf(err)

	v = &Volume{
		Context:        ctx,
		er:             er,
		directoryCache: NewDirectoryCache(er),
	}

	rootSlot, err := v.directoryCache.GetRoot()
	log.PanicIf(err)

	v.rootIndex = rootSlot.Index

	if abdeIdeList, found := v.rootIndex["AllocationBitmap"]; found == true {
		abde := abdeIdeList[0].PrimaryEntry.(*ExfatAllocationBitmapDirectoryEntry)

		raw, err := readClusterChainData(er, abde.FirstCluster, abde.DataLength, false)
		log.PanicIf(err)

		v.bitmap = NewAllocationBitmapFromBytes(raw, er.ActiveBootRegion().ClusterCount)
	} else {
		ctx.Warnf("volume has no Allocation Bitmap directory entry")
	}

	if utdeIdeList, found := v.rootIndex["UpcaseTable"]; found == true {
		utde := utdeIdeList[0].PrimaryEntry.(*ExfatUpcaseTableDirectoryEntry)

		ut, err := LoadUpcaseTable(er, utde)
		if err != nil {
			ctx.Warnf("up-case table failed validation: %s", err.Error())
		} else {
			v.upcaseTable = ut
			v.directoryCache.EnableNameHashVerification(ctx, ut)
		}
	} else {
		ctx.Warnf("volume has no Up-case Table directory entry")
	}

	if vlIdeList, found := v.rootIndex["VolumeLabel"]; found == true {
		vlde := vlIdeList[0].PrimaryEntry.(*ExfatVolumeLabelDirectoryEntry)
		v.volumeLabel = vlde.Label()
	}

	return v, nil
}

// Close releases the underlying file handle, if this Volume owns one.
func (v *Volume) Close() error {
	if v.f != nil {
		return v.f.Close()
	}

	return nil
}

// Reader returns the underlying low-level reader, for operations (stat,
// check) that need direct access to the boot region or FAT.
func (v *Volume) Reader() *ExfatReader {
	return v.er
}

// Bitmap returns the loaded Allocation Bitmap, or nil if the volume had
// none.
func (v *Volume) Bitmap() *AllocationBitmap {
	return v.bitmap
}

// UpcaseTable returns the loaded Up-case Table, or nil if the volume had
// none or it failed its checksum.
func (v *Volume) UpcaseTable() *UpcaseTable {
	return v.upcaseTable
}

// Label returns the volume label, or an empty string if the volume had none.
func (v *Volume) Label() string {
	return v.volumeLabel
}

// RootIndex returns the indexed root directory.
func (v *Volume) RootIndex() DirectoryEntryIndex {
	return v.rootIndex
}

// DirectoryCache returns the cache backing directory lookups and listings.
func (v *Volume) DirectoryCache() *DirectoryCache {
	return v.directoryCache
}

// Stat resolves a forward-slash path and returns its indexed entry.
func (v *Volume) Stat(path string) (ide IndexedDirectoryEntry, found bool, err error) {
	return v.directoryCache.Resolve(path)
}

// List returns the names of the entries directly under path.
func (v *Volume) List(path string) (names []string, err error) {
	return v.directoryCache.ListDirectory(path)
}

// Fragmentation computes the fragmentation ratio used by the `stat` command:
// for a FAT-linked chain of length n > 1, the sum of |c_{i+1} - c_i - 1|
// across consecutive cluster pairs (mod the volume's cluster count, to
// account for wrap-around), divided by n * (cluster_count - 2), expressed as
// a percentage. A NoFatChain file is contiguous by construction and always
// reports 0.
func (v *Volume) Fragmentation(path string) (ratio float64, err error) {
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

	ide, found, err := v.Stat(path)
	log.PanicIf(err)

	if found == false {
		return 0, NewNotFoundError("path not found: [%s]", path)
	}

	sede := lastComponentIndex(ide)
	if sede == nil {
		return 0, NewInconsistencyError("entry is missing its stream extension: [%s]", path)
	}

	if sede.GeneralSecondaryFlags.NoFatChain() == true {
		return 0, nil
	}

	clusterCount := v.er.ActiveBootRegion().ClusterCount

	clusters := make([]uint32, 0)

	cb := func(clusterNumber uint32, isLast bool) (bool, error) {
		clusters = append(clusters, clusterNumber)
		return true, nil
	}

	err = v.er.WalkClusterChain(sede.FirstCluster, sede.DataLength, false, clusterCount, v.bitmap, v.Context, cb)
	log.PanicIf(err)

	n := len(clusters)
	if n <= 1 {
		return 0, nil
	}

	var sum int64

	for i := 0; i < n-1; i++ {
		delta := int64(clusters[i+1]) - int64(clusters[i]) - 1
		if delta < 0 {
			delta = -delta
		}

		delta %= int64(clusterCount)

		sum += delta
	}

	denominator := float64(n) * float64(clusterCount-2)
	if denominator <= 0 {
		return 0, nil
	}

	return (float64(sum) / denominator) * 100, nil
}

// ReadFile copies the full contents of the file at path to w.
func (v *Volume) ReadFile(path string, w io.Writer) (err error) {
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

	ide, found, err := v.Stat(path)
	log.PanicIf(err)

	if found == false {
		return NewNotFoundError("path not found: [%s]", path)
	}

	fdf, ok := ide.PrimaryEntry.(*ExfatFileDirectoryEntry)
	if ok == false {
		return NewInvalidArgumentError("path does not resolve to a file entry: [%s]", path)
	}

	if fdf.FileAttributes.IsDirectory() == true {
		return NewInvalidArgumentError("path is a directory, not a file: [%s]", path)
	}

	sede := lastComponentIndex(ide)
	if sede == nil {
		return NewInconsistencyError("file entry is missing its stream extension: [%s]", path)
	}

	useFat := sede.GeneralSecondaryFlags.NoFatChain() == false

	_, _, err = v.er.WriteFromClusterChain(sede.FirstCluster, sede.ValidDataLength, useFat, v.bitmap, v.Context, w)
	log.PanicIf(err)

	return nil
}
