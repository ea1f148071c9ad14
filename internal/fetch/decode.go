package fetch

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Encoding labels reported in Result.Encoding.
const (
	EncodingUTF8        = "utf-8"
	EncodingUTF8BOM     = "utf-8-bom"
	EncodingUTF16LE     = "utf-16le"
	EncodingUTF16BE     = "utf-16be"
	EncodingWindows1252 = "windows-1252"
)

var gzipMagic = []byte{0x1f, 0x8b}

// decompress gunzips payloads that start with the gzip magic and returns
// everything else unchanged. Portals sometimes serve gzip without a
// Content-Encoding header, which net/http does not undo.
func decompress(payload []byte) ([]byte, bool, error) {
	if !bytes.HasPrefix(payload, gzipMagic) {
		return payload, false, nil
	}
	zr, err := gzip.NewReader(bytes.NewReader(payload))
	if err != nil {
		return nil, true, fmt.Errorf("open gzip stream: %w", err)
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, true, fmt.Errorf("gunzip: %w", err)
	}
	return out, true, nil
}

// decodeText converts payload to UTF-8 without a byte order mark and reports
// the source encoding.
func decodeText(payload []byte) ([]byte, string, error) {
	label := sniffBOM(payload)
	switch {
	case label != "":
		// BOMOverride consumes the mark and picks the matching decoder.
		out, _, err := transform.Bytes(unicode.BOMOverride(transform.Nop), payload)
		if err != nil {
			return nil, label, fmt.Errorf("decode %s: %w", label, err)
		}
		return out, label, nil
	case utf8.Valid(payload):
		return payload, EncodingUTF8, nil
	default:
		out, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), payload)
		if err != nil {
			return nil, EncodingWindows1252, fmt.Errorf("decode %s: %w", EncodingWindows1252, err)
		}
		return out, EncodingWindows1252, nil
	}
}

func sniffBOM(payload []byte) string {
	switch {
	case bytes.HasPrefix(payload, []byte{0xef, 0xbb, 0xbf}):
		return EncodingUTF8BOM
	case bytes.HasPrefix(payload, []byte{0xff, 0xfe}):
		return EncodingUTF16LE
	case bytes.HasPrefix(payload, []byte{0xfe, 0xff}):
		return EncodingUTF16BE
	default:
		return ""
	}
}
