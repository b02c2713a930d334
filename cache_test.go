package exfat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitPath(t *testing.T) {
	assert.Nil(t, splitPath(""))
	assert.Nil(t, splitPath("/"))
	assert.Equal(t, []string{"a"}, splitPath("a"))
	assert.Equal(t, []string{"a"}, splitPath("/a"))
	assert.Equal(t, []string{"a", "b", "c"}, splitPath("/a/b/c"))
	assert.Equal(t, []string{"a", "b", "c"}, splitPath("a/b/c/"))
}

func TestDirectoryCache_EvictAndLen(t *testing.T) {
	dc := &DirectoryCache{
		slots: map[uint32]*CacheSlot{
			2: {FirstCluster: 2},
			5: {FirstCluster: 5},
		},
	}

	assert.Equal(t, 2, dc.Len())

	dc.Evict(2)

	assert.Equal(t, 1, dc.Len())
	_, found := dc.slots[2]
	assert.False(t, found)
}
