package exfat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllocationBitmap_SetAndIsAllocated(t *testing.T) {
	ab := NewAllocationBitmap(10)

	assert.False(t, ab.IsAllocated(FirstCluster))

	ab.SetAllocated(FirstCluster, true)

	assert.True(t, ab.IsAllocated(FirstCluster))
	assert.False(t, ab.IsAllocated(FirstCluster+1))
}

func TestAllocationBitmap_OutOfRangeIsSafe(t *testing.T) {
	ab := NewAllocationBitmap(4)

	assert.False(t, ab.IsAllocated(FirstCluster+100))

	ab.SetAllocated(FirstCluster+100, true)
	assert.False(t, ab.IsAllocated(FirstCluster+100))
}

func TestAllocationBitmap_Equal(t *testing.T) {
	a := NewAllocationBitmap(8)
	b := NewAllocationBitmap(8)

	assert.True(t, a.Equal(b))

	a.SetAllocated(FirstCluster+1, true)
	assert.False(t, a.Equal(b))

	b.SetAllocated(FirstCluster+1, true)
	assert.True(t, a.Equal(b))
}

func TestAllocationBitmap_Diff(t *testing.T) {
	a := NewAllocationBitmap(8)
	b := NewAllocationBitmap(8)

	a.SetAllocated(FirstCluster+2, true)
	b.SetAllocated(FirstCluster+5, true)

	mismatched := a.Diff(b)

	assert.ElementsMatch(t, []uint32{FirstCluster + 2, FirstCluster + 5}, mismatched)
}

func TestVisitedSet_DetectsRevisit(t *testing.T) {
	vs := newVisitedSet(8)

	assert.False(t, vs.visit(FirstCluster))
	assert.True(t, vs.visit(FirstCluster))
}
