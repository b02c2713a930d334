package exfat

import (
	"reflect"

	"github.com/dsoprea/go-logging"
)

// ClusterChainVisitorFunc visits each cluster number in a chain, in order.
// isLast is true when this is the final cluster the chain is known to need,
// based on the declared data length (it is never true when dataLength is 0,
// since the walk then has no independent way to know it has reached the end
// until the FAT says so).
type ClusterChainVisitorFunc func(clusterNumber uint32, isLast bool) (doContinue bool, err error)

// WalkClusterChain walks the cluster chain starting at firstCluster, honoring
// the NoFatChain optimization (a contiguous run for which the FAT entries are
// not meaningful) when noFatChain is true.
//
// dataLength is the size, in bytes, of the data the chain holds. A dataLength
// of zero means the length is not known up front — the case for the root
// directory, which has no Stream entry to read a length from — and the walk
// instead continues until the FAT reports the terminal cluster, bounded by
// clusterCount clusters so a corrupt chain cannot run forever.
//
// Every cluster number handed to cb is cross-checked against a visited-set
// scoped to this single call; seeing a cluster twice aborts the walk with an
// InconsistencyError rather than looping.
//
// bitmap, when non-nil, cross-checks every visited cluster against the
// on-disk Allocation Bitmap (Section 4.4): a FAT-linked chain that reaches an
// unallocated cluster is an inconsistency and aborts the walk, while a
// NoFatChain run that reaches an unallocated cluster is truncated there (the
// clusters already visited are kept, a warning is logged through ctx if
// non-nil, and the walk ends without error) since a NoFatChain run is only
// ever as long as its writer actually allocated. Pass a nil bitmap to skip
// the check entirely, as callers reconstructing their own shadow bitmap need
// to.
func (er *ExfatReader) WalkClusterChain(firstCluster uint32, dataLength uint64, noFatChain bool, clusterCount uint32, bitmap *AllocationBitmap, ctx *Context, cb ClusterChainVisitorFunc) (err error) {
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

	if firstCluster < FirstCluster {
		return NewInvalidArgumentError("cluster number too low to begin a chain: (%d)", firstCluster)
	}

	clusterSize := uint64(er.SectorsPerCluster()) * uint64(er.SectorSize())

	var clusterLimit uint64
	if dataLength > 0 && clusterSize > 0 {
		clusterLimit = (dataLength + clusterSize - 1) / clusterSize
	}

	vs := newVisitedSet(clusterCount)

	current := firstCluster
	visitedCount := uint64(0)

	for {
		if vs.visit(current) == true {
			return NewInconsistencyError("cluster chain loops back on cluster (%d)", current)
		}

		if bitmap != nil && bitmap.IsAllocated(current) == false {
			if noFatChain == true {
				ctx.Warnf("cluster (%d) in a NoFatChain run is not marked allocated in the Allocation Bitmap; truncating", current)
				break
			}

			return NewInconsistencyError("cluster (%d) reachable from a FAT chain is not marked allocated in the Allocation Bitmap", current)
		}

		visitedCount++

		isLastByLength := dataLength > 0 && visitedCount >= clusterLimit

		doContinue, err := cb(current, isLastByLength)
		log.PanicIf(err)

		if doContinue == false || isLastByLength == true {
			break
		}

		if noFatChain == true {
			current++
		} else {
			next, err := er.fatGet(current)
			log.PanicIf(err)

			if next == LastCluster {
				break
			}

			if next == BadCluster {
				return NewInconsistencyError("cluster chain runs into a bad cluster following (%d)", current)
			}

			current = next
		}

		if dataLength == 0 && visitedCount >= uint64(clusterCount) {
			return NewInconsistencyError("cluster chain exceeds the volume's cluster count without terminating: started at (%d)", firstCluster)
		}
	}

	return nil
}
