package exfat

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newSingleClusterTestReader(sectorPayload []byte) *ExfatReader {
	sector := make([]byte, 512)
	copy(sector, sectorPayload)

	bsh := BootSectorHeader{
		BytesPerSectorShift:    9,
		SectorsPerClusterShift: 0,
		ClusterHeapOffset:      0,
		ClusterCount:           1,
	}

	return &ExfatReader{
		rs:         bytes.NewReader(sector),
		bootRegion: bootRegion{bsh: bsh},
	}
}

func TestLoadUpcaseTable_ValidChecksum(t *testing.T) {
	raw := make([]byte, 8)
	binary.LittleEndian.PutUint16(raw[0:2], 0x0041)
	binary.LittleEndian.PutUint16(raw[2:4], 0x0042)
	binary.LittleEndian.PutUint16(raw[4:6], 0x0043)
	binary.LittleEndian.PutUint16(raw[6:8], 0x0044)

	er := newSingleClusterTestReader(raw)

	utde := &ExfatUpcaseTableDirectoryEntry{
		FirstCluster:  2,
		DataLength:    8,
		TableChecksum: UpcaseTableChecksum(raw),
	}

	ut, err := LoadUpcaseTable(er, utde)

	assert.NoError(t, err)
	assert.Equal(t, uint16(0x41), ut.Upcase(0))
	assert.Equal(t, uint16(0x44), ut.Upcase(3))

	// Beyond the table's range, characters map to themselves.
	assert.Equal(t, uint16(0x1234), ut.Upcase(0x1234))
}

func TestLoadUpcaseTable_ChecksumMismatch(t *testing.T) {
	raw := make([]byte, 8)
	binary.LittleEndian.PutUint16(raw[0:2], 0x0041)

	er := newSingleClusterTestReader(raw)

	utde := &ExfatUpcaseTableDirectoryEntry{
		FirstCluster:  2,
		DataLength:    8,
		TableChecksum: 0xdeadbeef,
	}

	_, err := LoadUpcaseTable(er, utde)

	assert.Error(t, err)
}

func TestUpcaseTable_UpcaseString(t *testing.T) {
	mapping := make([]uint16, 128)
	for i := range mapping {
		mapping[i] = uint16(i)
	}

	mapping['a'] = 'A'
	mapping['b'] = 'B'
	mapping['c'] = 'C'

	ut := &UpcaseTable{mapping: mapping}

	result := ut.UpcaseString("abc")

	assert.Equal(t, []uint16{'A', 'B', 'C'}, result)
}
