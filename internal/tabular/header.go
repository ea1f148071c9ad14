package tabular

import (
	"urbandata/internal/textutil"
)

// Header is a normalized header row with case-insensitive lookup.
type Header struct {
	labels []string
	index  map[string]int
}

// NewHeader normalizes labels and indexes them by their folded form. When a
// label repeats, the first occurrence wins.
func NewHeader(labels []string) Header {
	h := Header{labels: make([]string, len(labels)), index: make(map[string]int, len(labels))}
	for i, label := range labels {
		normalized := textutil.NormalizeHeader(label)
		h.labels[i] = normalized
		key := textutil.FoldKey(normalized)
		if _, dup := h.index[key]; !dup {
			h.index[key] = i
		}
	}
	return h
}

// Labels returns the normalized labels in file order.
func (h Header) Labels() []string {
	return append([]string(nil), h.labels...)
}

// Len reports the number of header columns.
func (h Header) Len() int { return len(h.labels) }

// Index returns the position of label, ignoring case and accent composition.
func (h Header) Index(label string) (int, bool) {
	i, ok := h.index[textutil.FoldKey(label)]
	return i, ok
}

// Has reports whether every label is present.
func (h Header) Has(labels ...string) bool {
	for _, label := range labels {
		if _, ok := h.Index(label); !ok {
			return false
		}
	}
	return true
}

// HasAny reports whether at least one label is present.
func (h Header) HasAny(labels ...string) bool {
	for _, label := range labels {
		if _, ok := h.Index(label); ok {
			return true
		}
	}
	return false
}

// isRepeat reports whether row is a literal copy of the header.
func (h Header) isRepeat(row []string) bool {
	if len(row) != len(h.labels) {
		return false
	}
	for i, cell := range row {
		if textutil.NormalizeHeader(cell) != h.labels[i] {
			return false
		}
	}
	return true
}
