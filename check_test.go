package exfat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckReport_HasFindings(t *testing.T) {
	cr := &CheckReport{}
	assert.False(t, cr.HasFindings())

	cr.Leaked = append(cr.Leaked, 5)
	assert.True(t, cr.HasFindings())
}

func TestCheckReport_Combined(t *testing.T) {
	cr := &CheckReport{}
	assert.NoError(t, cr.Combined())

	cr.CrossLinked = []uint32{10}
	cr.Leaked = []uint32{11}
	cr.Inconsistent = []uint32{12}

	err := cr.Combined()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "cross-linked")
	assert.Contains(t, err.Error(), "not reachable")
	assert.Contains(t, err.Error(), "not marked allocated")
}

func TestCheckReport_LoopedCountsAsFinding(t *testing.T) {
	cr := &CheckReport{}
	assert.False(t, cr.HasFindings())

	cr.Looped = append(cr.Looped, "cluster chain loops back on cluster (8)")
	assert.True(t, cr.HasFindings())

	err := cr.Combined()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "loops back on cluster (8)")
}

func TestRecordInconsistency_SwallowsInconsistencyError(t *testing.T) {
	var looped []string

	err := recordInconsistency(&looped, NewInconsistencyError("loop at cluster 8"))
	assert.NoError(t, err)
	assert.Equal(t, []string{"loop at cluster 8"}, looped)
}

func TestRecordInconsistency_PassesThroughOtherErrors(t *testing.T) {
	var looped []string

	err := recordInconsistency(&looped, NewIoError("short read"))
	assert.Error(t, err)
	assert.Empty(t, looped)
}

func TestRecordInconsistency_NilErrorIsNoop(t *testing.T) {
	var looped []string

	err := recordInconsistency(&looped, nil)
	assert.NoError(t, err)
	assert.Empty(t, looped)
}

func TestShadowMarker_DetectsCrossLink(t *testing.T) {
	sm := newShadowMarker(8)

	sm.mark(FirstCluster)
	assert.Empty(t, sm.crossLinked)

	sm.mark(FirstCluster)
	assert.Equal(t, []uint32{FirstCluster}, sm.crossLinked)

	// A repeat of the same cross-link isn't recorded twice.
	sm.mark(FirstCluster)
	assert.Equal(t, []uint32{FirstCluster}, sm.crossLinked)
}
