package exfat

import (
	"fmt"
	"reflect"

	"github.com/dsoprea/go-logging"
	"github.com/go-errors/errors"
	"github.com/hashicorp/go-multierror"
)

// CheckReport is the result of running the integrity checker: every
// cross-link, leaked cluster, and inconsistent cluster found while
// reconstructing a shadow Allocation Bitmap from the directory tree and
// comparing it against the on-disk bitmap.
type CheckReport struct {
	// CrossLinked clusters are claimed by more than one object.
	CrossLinked []uint32

	// Leaked clusters are marked allocated on disk but are not reachable
	// from any directory entry.
	Leaked []uint32

	// Inconsistent clusters are reachable from a directory entry but are
	// not marked allocated on disk.
	Inconsistent []uint32

	// Looped records every FAT loop, bad-cluster, or runaway chain the
	// reconstruction walk ran into. Each entry truncates the chain it was
	// found on rather than aborting the rest of the check.
	Looped []string
}

// HasFindings reports whether the report carries any finding at all.
func (cr *CheckReport) HasFindings() bool {
	return len(cr.CrossLinked) > 0 || len(cr.Leaked) > 0 || len(cr.Inconsistent) > 0 || len(cr.Looped) > 0
}

// Combined renders the report as a combined multierror, one line per
// finding. Returns nil if the report is clean.
func (cr *CheckReport) Combined() error {
	var result *multierror.Error

	for _, c := range cr.CrossLinked {
		result = multierror.Append(result, fmt.Errorf("cluster (%d) is cross-linked between two or more objects", c))
	}

	for _, c := range cr.Leaked {
		result = multierror.Append(result, fmt.Errorf("cluster (%d) is allocated on disk but not reachable from any directory entry", c))
	}

	for _, c := range cr.Inconsistent {
		result = multierror.Append(result, fmt.Errorf("cluster (%d) is reachable from a directory entry but not marked allocated", c))
	}

	for _, msg := range cr.Looped {
		result = multierror.Append(result, fmt.Errorf("%s", msg))
	}

	return result.ErrorOrNil()
}

// asInconsistencyError unwraps one level of the go-logging/go-errors
// wrapper, if present, and reports whether the underlying error is an
// InconsistencyError.
func asInconsistencyError(err error) (*InconsistencyError, bool) {
	if ge, ok := err.(*errors.Error); ok == true {
		ie, ok := ge.Err.(*InconsistencyError)
		return ie, ok
	}

	ie, ok := err.(*InconsistencyError)
	return ie, ok
}

// recordInconsistency folds an InconsistencyError into looped and swallows
// it so the caller can keep traversing; any other error (I/O failure, bad
// argument) is returned unchanged so it still aborts the run.
func recordInconsistency(looped *[]string, err error) error {
	if err == nil {
		return nil
	}

	if ie, ok := asInconsistencyError(err); ok == true {
		*looped = append(*looped, ie.Error())
		return nil
	}

	return err
}

// shadowMarker accumulates the shadow bitmap the checker reconstructs from
// the directory tree, recording every cross-link it finds along the way.
type shadowMarker struct {
	bitmap       *AllocationBitmap
	crossLinked  []uint32
	crossLinkSet map[uint32]bool
}

func newShadowMarker(clusterCount uint32) *shadowMarker {
	return &shadowMarker{
		bitmap:       NewAllocationBitmap(clusterCount),
		crossLinkSet: make(map[uint32]bool),
	}
}

func (sm *shadowMarker) mark(cluster uint32) {
	if sm.bitmap.IsAllocated(cluster) == true {
		if sm.crossLinkSet[cluster] == false {
			sm.crossLinked = append(sm.crossLinked, cluster)
			sm.crossLinkSet[cluster] = true
		}

		return
	}

	sm.bitmap.SetAllocated(cluster, true)
}

func (sm *shadowMarker) markChain(er *ExfatReader, firstCluster uint32, dataLength uint64, noFatChain bool) error {
	clusterCount := er.ActiveBootRegion().ClusterCount

	cb := func(clusterNumber uint32, isLast bool) (bool, error) {
		sm.mark(clusterNumber)
		return true, nil
	}

	// The checker is reconstructing its own shadow bitmap here, so there is
	// nothing on disk yet to cross-check a visited cluster against; bitmap
	// enforcement is applied by the caller instead, comparing the finished
	// shadow bitmap against the on-disk one wholesale.
	return er.WalkClusterChain(firstCluster, dataLength, noFatChain, clusterCount, nil, nil, cb)
}

// Check runs the integrity checker against an already-opened volume:
// reconstructs a shadow Allocation Bitmap from the Allocation Bitmap's own
// cluster run, the Up-case Table's cluster run, and every file and directory
// reachable from the root (traversing the directory cache to completion), then
// compares it bit-for-bit against the on-disk bitmap.
func Check(ctx *Context, v *Volume) (report *CheckReport, err error) {
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

	er := v.Reader()
	clusterCount := er.ActiveBootRegion().ClusterCount

	sm := newShadowMarker(clusterCount)

	rootIndex := v.RootIndex()

	var looped []string

	if abdeIdeList, found := rootIndex["AllocationBitmap"]; found == true {
		abde := abdeIdeList[0].PrimaryEntry.(*ExfatAllocationBitmapDirectoryEntry)

		err = recordInconsistency(&looped, sm.markChain(er, abde.FirstCluster, abde.DataLength, false))
		log.PanicIf(err)
	}

	if utdeIdeList, found := rootIndex["UpcaseTable"]; found == true {
		utde := utdeIdeList[0].PrimaryEntry.(*ExfatUpcaseTableDirectoryEntry)

		err = recordInconsistency(&looped, sm.markChain(er, utde.FirstCluster, utde.DataLength, false))
		log.PanicIf(err)
	}

	err = recordInconsistency(&looped, sm.markChain(er, er.FirstClusterOfRootDirectory(), 0, false))
	log.PanicIf(err)

	err = walkDirectoryTree(v, er.FirstClusterOfRootDirectory(), 0, false, func(firstCluster uint32, dataLength uint64, noFatChain bool) error {
		return recordInconsistency(&looped, sm.markChain(er, firstCluster, dataLength, noFatChain))
	})
	log.PanicIf(err)

	onDisk := v.Bitmap()

	report = &CheckReport{
		CrossLinked: sm.crossLinked,
		Looped:      looped,
	}

	if onDisk != nil {
		// Diff is symmetric; split the mismatched clusters into leaked
		// (allocated on disk, not reachable) and inconsistent (reachable,
		// not allocated on disk).
		mismatched := onDisk.Diff(sm.bitmap)

		for _, c := range mismatched {
			if onDisk.IsAllocated(c) == true {
				report.Leaked = append(report.Leaked, c)
			} else {
				report.Inconsistent = append(report.Inconsistent, c)
			}
		}
	} else {
		ctx.Warnf("no on-disk Allocation Bitmap available; skipping leaked/inconsistent comparison")
	}

	return report, nil
}

// walkDirectoryTree visits every directory reachable from firstCluster,
// triggering on-demand traversal through the volume's directory cache, and
// calls cb with the cluster-chain parameters of every file and directory
// below firstCluster (not of firstCluster itself). Entries with no cluster
// allocated (first cluster below FirstCluster) are skipped.
func walkDirectoryTree(v *Volume, firstCluster uint32, dataLength uint64, noFatChain bool, cb func(firstCluster uint32, dataLength uint64, noFatChain bool) error) (err error) {
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

	slot, err := v.DirectoryCache().Get(firstCluster, dataLength, noFatChain)
	log.PanicIf(err)

	fileIdeList, found := slot.Index["File"]
	if found == false {
		return nil
	}

	for _, ide := range fileIdeList {
		fdf := ide.PrimaryEntry.(*ExfatFileDirectoryEntry)

		sede := lastComponentIndex(ide)
		if sede == nil || sede.FirstCluster < FirstCluster {
			continue
		}

		childNoFatChain := sede.GeneralSecondaryFlags.NoFatChain()

		err := cb(sede.FirstCluster, sede.DataLength, childNoFatChain)
		log.PanicIf(err)

		if fdf.FileAttributes.IsDirectory() == false {
			continue
		}

		err = walkDirectoryTree(v, sede.FirstCluster, sede.DataLength, childNoFatChain, cb)
		log.PanicIf(err)
	}

	return nil
}
