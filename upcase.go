package exfat

import (
	"reflect"

	"github.com/dsoprea/go-logging"
)

// UpcaseTable holds the volume's up-casing map, loaded from the Up-case
// Table directory entry's cluster chain. Index i maps the Unicode code point
// i to its upper-cased form; code points beyond the table's range map to
// themselves.
type UpcaseTable struct {
	mapping []uint16
}

// LoadUpcaseTable reads and validates the up-case table described by utde,
// verifying its checksum against the TableChecksum the directory entry
// records.
func LoadUpcaseTable(er *ExfatReader, utde *ExfatUpcaseTableDirectoryEntry) (ut *UpcaseTable, err error) {
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

	raw, err := readClusterChainData(er, utde.FirstCluster, utde.DataLength, false)
	log.PanicIf(err)

	actualChecksum := UpcaseTableChecksum(raw)
	if actualChecksum != utde.TableChecksum {
		return nil, NewInconsistencyError(
			"up-case table checksum mismatch: calculated (0x%08x) != recorded (0x%08x)",
			actualChecksum, utde.TableChecksum)
	}

	entryCount := len(raw) / 2

	mapping := make([]uint16, entryCount)
	for i := 0; i < entryCount; i++ {
		mapping[i] = defaultEncoding.Uint16(raw[i*2 : i*2+2])
	}

	ut = &UpcaseTable{
		mapping: mapping,
	}

	return ut, nil
}

// Upcase maps a single UTF-16 code unit to its upper-cased form. A code unit
// beyond the table, or one whose table entry is zero, maps to itself.
func (ut *UpcaseTable) Upcase(char uint16) uint16 {
	if int(char) >= len(ut.mapping) {
		return char
	}

	mapped := ut.mapping[char]
	if mapped == 0 {
		return char
	}

	return mapped
}

// UpcaseString maps every character of name to its upper-cased form, for
// name-hash computation and case-insensitive comparisons.
func (ut *UpcaseTable) UpcaseString(name string) []uint16 {
	runes := []rune(name)

	upcased := make([]uint16, len(runes))
	for i, r := range runes {
		upcased[i] = ut.Upcase(uint16(r))
	}

	return upcased
}

// readClusterChainData reads the full contents of a cluster chain into a
// single buffer, truncated to dataLength bytes.
func readClusterChainData(er *ExfatReader, firstCluster uint32, dataLength uint64, noFatChain bool) (raw []byte, err error) {
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

	clusterCount := er.ActiveBootRegion().ClusterCount

	buffer := make([]byte, 0, dataLength)

	cb := func(clusterNumber uint32, isLast bool) (doContinue bool, err error) {
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

		ec := er.GetCluster(clusterNumber)

		svf := func(sectorNumber uint32, data []byte) (bool, error) {
			remaining := int(dataLength) - len(buffer)
			if remaining <= 0 {
				return false, nil
			}

			if remaining < len(data) {
				data = data[:remaining]
			}

			buffer = append(buffer, data...)

			return len(buffer) < int(dataLength), nil
		}

		err = ec.EnumerateSectors(svf)
		log.PanicIf(err)

		return uint64(len(buffer)) < dataLength, nil
	}

	// Called while bootstrapping the Allocation Bitmap and Up-case Table
	// themselves, before any bitmap exists to check against.
	err = er.WalkClusterChain(firstCluster, dataLength, noFatChain, clusterCount, nil, nil, cb)
	log.PanicIf(err)

	return buffer, nil
}
