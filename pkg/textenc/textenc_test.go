package textenc

import (
	"testing"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

const sample = "[Version]\r\nSignature=\"$Windows NT$\"\r\n; Grüße\r\n"

func encode(t *testing.T, enc encoding.Encoding, s string) []byte {
	t.Helper()
	out, err := enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return out
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		data func(t *testing.T) []byte
		want Encoding
	}{
		{"utf-8", func(*testing.T) []byte { return []byte(sample) }, UTF8},
		{"utf-8 bom", func(*testing.T) []byte { return append([]byte{0xEF, 0xBB, 0xBF}, sample...) }, UTF8BOM},
		{"utf-16le bom", func(t *testing.T) []byte {
			return encode(t, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), sample)
		}, UTF16LE},
		{"utf-16be bom", func(t *testing.T) []byte {
			return encode(t, unicode.UTF16(unicode.BigEndian, unicode.UseBOM), sample)
		}, UTF16BE},
		{"utf-16le without bom", func(t *testing.T) []byte {
			return encode(t, unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), sample)
		}, UTF16LE},
		{"windows-1252", func(t *testing.T) []byte { return encode(t, charmap.Windows1252, sample) }, Windows1252},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, enc, err := Decode(tt.data(t))
			if err != nil {
				t.Fatalf("Decode() error: %v", err)
			}
			if enc != tt.want {
				t.Errorf("encoding = %q, want %q", enc, tt.want)
			}
			if got != sample {
				t.Errorf("Decode() = %q, want %q", got, sample)
			}
		})
	}
}

func TestDecodeEmpty(t *testing.T) {
	got, enc, err := Decode(nil)
	if err != nil {
		t.Fatalf("Decode(nil) error: %v", err)
	}
	if got != "" || enc != UTF8 {
		t.Errorf("Decode(nil) = %q, %q; want empty utf-8", got, enc)
	}
}
