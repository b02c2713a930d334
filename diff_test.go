package exfat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiffReport_HasFindings(t *testing.T) {
	dr := &DiffReport{}
	assert.False(t, dr.HasFindings())

	dr.OnlyInA = append(dr.OnlyInA, "/foo")
	assert.True(t, dr.HasFindings())
}

func TestDiffReport_Combined(t *testing.T) {
	dr := &DiffReport{
		OnlyInA:   []string{"/a"},
		OnlyInB:   []string{"/b"},
		Differing: []string{"/c"},
	}

	err := dr.Combined()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "only in first image")
	assert.Contains(t, err.Error(), "only in second image")
	assert.Contains(t, err.Error(), "differs")
}

func TestDiffReport_Combined_NilWhenClean(t *testing.T) {
	dr := &DiffReport{}
	assert.NoError(t, dr.Combined())
}
