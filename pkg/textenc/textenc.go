// Package textenc decodes driver descriptors into UTF-8 text.
//
// Descriptors ship in whatever encoding the vendor's tooling produced:
// UTF-16 with a byte-order mark (the format Windows itself writes), UTF-8
// with or without a BOM, and legacy ANSI files in the Windows-1252 code page.
// Decode detects which one it is and returns plain UTF-8 with any BOM
// stripped.
package textenc

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Encoding names a detected source encoding.
type Encoding string

// Detected encodings.
const (
	UTF8        Encoding = "utf-8"
	UTF8BOM     Encoding = "utf-8-bom"
	UTF16LE     Encoding = "utf-16le"
	UTF16BE     Encoding = "utf-16be"
	Windows1252 Encoding = "windows-1252"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Decode converts raw descriptor bytes to a UTF-8 string.
func Decode(data []byte) (string, Encoding, error) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return string(data[len(bomUTF8):]), UTF8BOM, nil
	case bytes.HasPrefix(data, bomUTF16LE):
		return decodeWith(unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM), data, UTF16LE)
	case bytes.HasPrefix(data, bomUTF16BE):
		return decodeWith(unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM), data, UTF16BE)
	case looksUTF16LE(data):
		return decodeWith(unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), data, UTF16LE)
	case utf8.Valid(data):
		return string(data), UTF8, nil
	default:
		return decodeWith(charmap.Windows1252, data, Windows1252)
	}
}

func decodeWith(enc encoding.Encoding, data []byte, name Encoding) (string, Encoding, error) {
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", name, fmt.Errorf("decode %s: %w", name, err)
	}
	return string(out), name, nil
}

// looksUTF16LE catches BOM-less UTF-16LE files, which start with an ASCII
// character ('[' or ';' in practice) followed by a zero byte.
func looksUTF16LE(data []byte) bool {
	return len(data) >= 4 && len(data)%2 == 0 &&
		data[0] != 0 && data[0] < 0x80 && data[1] == 0 &&
		data[2] != 0 && data[2] < 0x80 && data[3] == 0
}
