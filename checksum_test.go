package exfat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBootRegionChecksum_SkipsVolumeFlagsAndPercentInUse(t *testing.T) {
	a := make([]byte, 512)
	b := make([]byte, 512)

	for i := range a {
		a[i] = byte(i)
		b[i] = byte(i)
	}

	b[106] = 0xff
	b[107] = 0xff
	b[112] = 0xff

	assert.Equal(t, BootRegionChecksum(a), BootRegionChecksum(b))
}

func TestBootRegionChecksum_DetectsOtherByteChanges(t *testing.T) {
	a := make([]byte, 512)
	b := make([]byte, 512)

	for i := range a {
		a[i] = byte(i)
		b[i] = byte(i)
	}

	b[200] = a[200] + 1

	assert.NotEqual(t, BootRegionChecksum(a), BootRegionChecksum(b))
}

func TestEntrySetChecksum_SkipsChecksumField(t *testing.T) {
	a := make([]byte, 32)
	b := make([]byte, 32)

	for i := range a {
		a[i] = byte(i)
		b[i] = byte(i)
	}

	b[2] = 0x11
	b[3] = 0x22

	assert.Equal(t, EntrySetChecksum(a), EntrySetChecksum(b))
}

func TestUpcaseTableChecksum_DeterministicAndSensitive(t *testing.T) {
	table := []byte{0x41, 0x00, 0x42, 0x00, 0x43, 0x00}

	c1 := UpcaseTableChecksum(table)
	c2 := UpcaseTableChecksum(table)

	assert.Equal(t, c1, c2)

	mutated := append([]byte(nil), table...)
	mutated[0]++

	assert.NotEqual(t, c1, UpcaseTableChecksum(mutated))
}

func TestNameHash_SensitiveToCase(t *testing.T) {
	lower := []uint16{'a', 'b', 'c'}
	upper := []uint16{'A', 'B', 'C'}

	assert.NotEqual(t, NameHash(lower), NameHash(upper))
}
