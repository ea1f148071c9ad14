package textutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

const bom = "\ufeff"

var folder = cases.Fold()

// NormalizeHeader strips a byte order mark and surrounding whitespace and
// composes accents (NFC).
func NormalizeHeader(label string) string {
	label = strings.TrimPrefix(label, bom)
	label = strings.TrimSpace(label)
	return norm.NFC.String(label)
}

// FoldKey returns the case-folded NFC form of label, used for
// case-insensitive column lookups.
func FoldKey(label string) string {
	return folder.String(NormalizeHeader(label))
}

// SanitizeToken converts a string to a lowercase identifier-safe token.
// Letters are lowercased, digits and underscores are kept, everything else
// becomes an underscore. Returns "unknown" for empty input.
func SanitizeToken(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		return "unknown"
	}
	return out
}
