package exfat

import (
	"github.com/boljen/go-bitmap"
)

// AllocationBitmap is the in-memory copy of the on-disk Allocation Bitmap: a
// bit vector of ClusterCount bits where bit i corresponds to cluster i+2.
// Backed by go-bitmap.Bitmap, whose underlying representation is just
// []byte, so the on-disk bytes read from the Bitmap dentry's cluster run
// load directly with no transposition.
type AllocationBitmap struct {
	bm           bitmap.Bitmap
	clusterCount uint32
}

// NewAllocationBitmap allocates a zeroed bitmap sized for clusterCount
// clusters.
func NewAllocationBitmap(clusterCount uint32) *AllocationBitmap {
	return &AllocationBitmap{
		bm:           bitmap.New(int(clusterCount)),
		clusterCount: clusterCount,
	}
}

// NewAllocationBitmapFromBytes wraps on-disk bitmap bytes without copying
// semantics beyond what go-bitmap does internally.
func NewAllocationBitmapFromBytes(raw []byte, clusterCount uint32) *AllocationBitmap {
	return &AllocationBitmap{
		bm:           bitmap.Bitmap(raw),
		clusterCount: clusterCount,
	}
}

// clusterIndex maps a cluster number (>= 2) to a zero-based bit index.
func clusterIndex(cluster uint32) int {
	return int(cluster - FirstCluster)
}

// IsAllocated reports whether the given cluster is marked allocated.
func (ab *AllocationBitmap) IsAllocated(cluster uint32) bool {
	idx := clusterIndex(cluster)
	if idx < 0 || uint32(idx) >= ab.clusterCount {
		return false
	}

	return ab.bm.Get(idx)
}

// SetAllocated sets or clears the allocation bit for a cluster.
func (ab *AllocationBitmap) SetAllocated(cluster uint32, allocated bool) {
	idx := clusterIndex(cluster)
	if idx < 0 || uint32(idx) >= ab.clusterCount {
		return
	}

	ab.bm.Set(idx, allocated)
}

// Equal reports whether two bitmaps of the same cluster count agree on every
// bit.
func (ab *AllocationBitmap) Equal(other *AllocationBitmap) bool {
	if ab.clusterCount != other.clusterCount {
		return false
	}

	for i := uint32(0); i < ab.clusterCount; i++ {
		if ab.bm.Get(int(i)) != other.bm.Get(int(i)) {
			return false
		}
	}

	return true
}

// Diff returns the numbers of the clusters, within the range both bitmaps
// cover, whose allocation bits differ; it does not report which of the two
// bitmaps has the bit set.
func (ab *AllocationBitmap) Diff(other *AllocationBitmap) (mismatched []uint32) {
	count := ab.clusterCount
	if other.clusterCount < count {
		count = other.clusterCount
	}

	for i := uint32(0); i < count; i++ {
		if ab.bm.Get(int(i)) != other.bm.Get(int(i)) {
			mismatched = append(mismatched, i+FirstCluster)
		}
	}

	return mismatched
}

// visitedSet tracks clusters visited within a single concat_clusters pass, to
// detect FAT loops. It is always scoped to one call, per the Design Notes'
// requirement that loop detection not rely on a source-style iteration cap.
type visitedSet struct {
	bm *AllocationBitmap
}

func newVisitedSet(clusterCount uint32) *visitedSet {
	return &visitedSet{bm: NewAllocationBitmap(clusterCount)}
}

func (vs *visitedSet) visit(cluster uint32) (alreadyVisited bool) {
	alreadyVisited = vs.bm.IsAllocated(cluster)
	vs.bm.SetAllocated(cluster, true)
	return alreadyVisited
}
