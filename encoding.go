package exfat

import "encoding/binary"

// defaultEncoding is the byte-order every on-disk integer load goes through.
// exFAT is little-endian throughout; restruct.Unpack and the occasional raw
// binary.Read both take this explicitly rather than relying on host order.
var defaultEncoding = binary.LittleEndian
