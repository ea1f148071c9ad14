package clean

import "urbandata/internal/logging"

// Stats counts where raw rows went. Losses are expected and never errors.
type Stats struct {
	Read          int
	Empty         int
	HeaderRepeats int
	Duplicates    int
	Rejected      int
	Written       int
}

// Attrs renders the counters as log attributes.
func (s Stats) Attrs() []logging.Attr {
	return []logging.Attr{
		logging.Int("rows_read", s.Read),
		logging.Int("rows_empty", s.Empty),
		logging.Int("header_repeats", s.HeaderRepeats),
		logging.Int("duplicates", s.Duplicates),
		logging.Int("rejected", s.Rejected),
		logging.Int("rows_written", s.Written),
	}
}
