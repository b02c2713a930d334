package exfat

import (
	"testing"

	"github.com/go-errors/errors"
	"github.com/stretchr/testify/assert"
)

// unwrapGoLogging peels off the go-logging/go-errors wrapper layer so tests
// can type-switch on the underlying error kind.
func unwrapGoLogging(err error) error {
	if ge, ok := err.(*errors.Error); ok == true {
		return ge.Err
	}

	return err
}

// newFatLinkedTestReader builds a reader with no backing byte stream,
// sufficient to drive WalkClusterChain purely off the FAT: 512-byte
// sectors, one sector per cluster.
func newFatLinkedTestReader(fat []MappedCluster) *ExfatReader {
	bsh := BootSectorHeader{
		BytesPerSectorShift:    9,
		SectorsPerClusterShift: 0,
		ClusterCount:           uint32(len(fat)),
	}

	return &ExfatReader{
		bootRegion: bootRegion{bsh: bsh},
		activeFat:  Fat(fat),
	}
}

func TestWalkClusterChain_FollowsFatToTerminal(t *testing.T) {
	// Cluster 2 -> 3 -> 4 -> LAST.
	fat := []MappedCluster{
		MappedCluster(3),
		MappedCluster(4),
		MappedCluster(LastCluster),
	}

	er := newFatLinkedTestReader(fat)

	var visited []uint32

	err := er.WalkClusterChain(2, 0, false, uint32(len(fat)), nil, nil, func(clusterNumber uint32, isLast bool) (bool, error) {
		visited = append(visited, clusterNumber)
		return true, nil
	})

	assert.NoError(t, err)
	assert.Equal(t, []uint32{2, 3, 4}, visited)
}

func TestWalkClusterChain_NoFatChainStepsContiguously(t *testing.T) {
	er := newFatLinkedTestReader(make([]MappedCluster, 8))

	var visited []uint32

	err := er.WalkClusterChain(2, 1536, true, 8, nil, nil, func(clusterNumber uint32, isLast bool) (bool, error) {
		visited = append(visited, clusterNumber)
		return true, nil
	})

	assert.NoError(t, err)
	assert.Equal(t, []uint32{2, 3, 4}, visited)
}

func TestWalkClusterChain_DetectsLoop(t *testing.T) {
	// Cluster 2 -> 3 -> 2 (loop).
	fat := []MappedCluster{
		MappedCluster(3),
		MappedCluster(2),
	}

	er := newFatLinkedTestReader(fat)

	err := er.WalkClusterChain(2, 0, false, uint32(len(fat)), nil, nil, func(clusterNumber uint32, isLast bool) (bool, error) {
		return true, nil
	})

	assert.Error(t, err)

	_, ok := unwrapGoLogging(err).(*InconsistencyError)
	assert.True(t, ok, "expected an InconsistencyError, got: %T", unwrapGoLogging(err))
}

func TestWalkClusterChain_RejectsBadCluster(t *testing.T) {
	fat := []MappedCluster{
		MappedCluster(BadCluster),
	}

	er := newFatLinkedTestReader(fat)

	err := er.WalkClusterChain(2, 0, false, uint32(len(fat)), nil, nil, func(clusterNumber uint32, isLast bool) (bool, error) {
		return true, nil
	})

	assert.Error(t, err)
}

func TestWalkClusterChain_StopsEarlyWhenCallbackDeclines(t *testing.T) {
	fat := []MappedCluster{
		MappedCluster(3),
		MappedCluster(LastCluster),
	}

	er := newFatLinkedTestReader(fat)

	var visited []uint32

	err := er.WalkClusterChain(2, 0, false, uint32(len(fat)), nil, nil, func(clusterNumber uint32, isLast bool) (bool, error) {
		visited = append(visited, clusterNumber)
		return false, nil
	})

	assert.NoError(t, err)
	assert.Equal(t, []uint32{2}, visited)
}

func TestWalkClusterChain_FatLinkedUnallocatedClusterIsInconsistent(t *testing.T) {
	// Cluster 2 -> 3 -> LAST, but the bitmap only has cluster 2 allocated.
	fat := []MappedCluster{
		MappedCluster(3),
		MappedCluster(LastCluster),
	}

	er := newFatLinkedTestReader(fat)

	bitmap := NewAllocationBitmap(uint32(len(fat)))
	bitmap.SetAllocated(2, true)

	var visited []uint32

	err := er.WalkClusterChain(2, 0, false, uint32(len(fat)), bitmap, nil, func(clusterNumber uint32, isLast bool) (bool, error) {
		visited = append(visited, clusterNumber)
		return true, nil
	})

	assert.Error(t, err)
	assert.Equal(t, []uint32{2}, visited)

	_, ok := unwrapGoLogging(err).(*InconsistencyError)
	assert.True(t, ok, "expected an InconsistencyError, got: %T", unwrapGoLogging(err))
}

func TestWalkClusterChain_NoFatChainUnallocatedClusterTruncates(t *testing.T) {
	// Contiguous run 2, 3, 4, 5, but the bitmap only has 2 and 3 allocated.
	er := newFatLinkedTestReader(make([]MappedCluster, 8))

	bitmap := NewAllocationBitmap(8)
	bitmap.SetAllocated(2, true)
	bitmap.SetAllocated(3, true)

	var visited []uint32

	err := er.WalkClusterChain(2, 4*512, true, 8, bitmap, nil, func(clusterNumber uint32, isLast bool) (bool, error) {
		visited = append(visited, clusterNumber)
		return true, nil
	})

	assert.NoError(t, err)
	assert.Equal(t, []uint32{2, 3}, visited)
}
