package exfat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// newFragmentationTestVolume builds a Volume whose root directory already
// has a "foo.txt" entry indexed, backed only by a FAT (no real cluster
// bytes), enough to exercise Fragmentation without a disk image fixture.
func newFragmentationTestVolume(fat []MappedCluster, sede *ExfatStreamExtensionDirectoryEntry) *Volume {
	bsh := BootSectorHeader{
		BytesPerSectorShift:         9,
		SectorsPerClusterShift:      0,
		FirstClusterOfRootDirectory: 2,
		ClusterCount:                uint32(len(fat)),
	}

	er := &ExfatReader{
		bootRegion: bootRegion{bsh: bsh},
		activeFat:  Fat(fat),
	}

	fdf := &ExfatFileDirectoryEntry{
		FileAttributes: FileAttributes(0),
	}

	ide := IndexedDirectoryEntry{
		PrimaryEntry:     fdf,
		SecondaryEntries: []DirectoryEntry{sede},
		Extra:            map[string]interface{}{"complete_filename": "foo.txt"},
	}

	rootSlot := &CacheSlot{
		FirstCluster: 2,
		Index: DirectoryEntryIndex{
			"File": []IndexedDirectoryEntry{ide},
		},
	}

	dc := NewDirectoryCache(er)
	dc.slots[2] = rootSlot

	return &Volume{
		Context:        NewContext(LevelError),
		er:             er,
		directoryCache: dc,
		rootIndex:      rootSlot.Index,
	}
}

func TestVolume_Fragmentation_ContiguousChainIsZero(t *testing.T) {
	// Cluster 5 -> 6 -> 7 -> LAST: perfectly contiguous.
	fat := make([]MappedCluster, 20)
	fat[5-2] = MappedCluster(6)
	fat[6-2] = MappedCluster(7)
	fat[7-2] = MappedCluster(LastCluster)

	sede := &ExfatStreamExtensionDirectoryEntry{
		FirstCluster: 5,
		DataLength:   3 * 512,
	}

	v := newFragmentationTestVolume(fat, sede)

	ratio, err := v.Fragmentation("foo.txt")

	assert.NoError(t, err)
	assert.Equal(t, float64(0), ratio)
}

func TestVolume_Fragmentation_ScatteredChainIsPositive(t *testing.T) {
	// Cluster 5 -> 10 -> 8 -> LAST: scattered.
	fat := make([]MappedCluster, 20)
	fat[5-2] = MappedCluster(10)
	fat[10-2] = MappedCluster(8)
	fat[8-2] = MappedCluster(LastCluster)

	sede := &ExfatStreamExtensionDirectoryEntry{
		FirstCluster: 5,
		DataLength:   3 * 512,
	}

	v := newFragmentationTestVolume(fat, sede)

	ratio, err := v.Fragmentation("foo.txt")

	assert.NoError(t, err)
	assert.Greater(t, ratio, float64(0))
}

func TestVolume_Fragmentation_NoFatChainIsAlwaysZero(t *testing.T) {
	fat := make([]MappedCluster, 20)

	sede := &ExfatStreamExtensionDirectoryEntry{
		FirstCluster:          5,
		DataLength:            3 * 512,
		GeneralSecondaryFlags: GeneralSecondaryFlags(2), // NoFatChain bit set.
	}

	v := newFragmentationTestVolume(fat, sede)

	ratio, err := v.Fragmentation("foo.txt")

	assert.NoError(t, err)
	assert.Equal(t, float64(0), ratio)
}

func TestVolume_Fragmentation_NotFound(t *testing.T) {
	fat := make([]MappedCluster, 20)

	sede := &ExfatStreamExtensionDirectoryEntry{FirstCluster: 5, DataLength: 512}

	v := newFragmentationTestVolume(fat, sede)

	_, err := v.Fragmentation("missing.txt")

	assert.Error(t, err)
}
