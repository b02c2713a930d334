package exfat

import (
	"strings"

	"golang.org/x/text/encoding/unicode"
)

var utf16LittleEndian = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// UnicodeFromAscii decodes unicodeCharCount UTF-16LE characters from raw (the
// name given to this matches what the on-disk fields are called, even though
// the bytes are UTF-16, not ASCII). Fields like VolumeLabel pad their
// character-count to include trailing NULs, which this trims from the
// result.
func UnicodeFromAscii(raw []byte, unicodeCharCount int) string {
	byteCount := unicodeCharCount * 2
	if byteCount > len(raw) {
		byteCount = len(raw)
	}

	decoded, err := utf16LittleEndian.NewDecoder().Bytes(raw[:byteCount])
	if err != nil {
		return ""
	}

	return strings.TrimRight(string(decoded), "\x00")
}
