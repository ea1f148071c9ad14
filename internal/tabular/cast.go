package tabular

import (
	"math"
	"strconv"
	"strings"
	"time"
)

var spaceStripper = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "", "\t", "")

// ParseNumber parses a French-formatted decimal: spaces (including no-break
// spaces) are removed and a comma decimal mark becomes a dot. Empty,
// unparseable and non-finite values report false. Dots are never read as
// thousands separators: "1.234,56" reports false and "1.234" is 1.234.
func ParseNumber(s string) (float64, bool) {
	s = spaceStripper.Replace(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseInt parses an integral count, accepting "12.0" style float artefacts.
func ParseInt(s string) (int64, bool) {
	f, ok := ParseNumber(s)
	if !ok || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, false
	}
	return int64(f), true
}

var dateLayouts = []string{
	time.DateOnly,
	"2006-01-02T15:04:05",
	time.DateTime,
	time.RFC3339,
	"02/01/2006",
}

// ParseDate accepts ISO dates, ISO datetimes, RFC 3339 and dd/mm/yyyy.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatFloat renders f in the shortest exact decimal form.
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// FormatInt renders an integer cell.
func FormatInt(n int64) string {
	return strconv.FormatInt(n, 10)
}

// FormatDate renders the calendar date of t as yyyy-mm-dd.
func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

// NumberCell normalizes a numeric cell, returning "" when it does not parse.
func NumberCell(s string) string {
	if f, ok := ParseNumber(s); ok {
		return FormatFloat(f)
	}
	return ""
}

// IntCell normalizes an integer cell, returning "" when it does not parse.
func IntCell(s string) string {
	if n, ok := ParseInt(s); ok {
		return FormatInt(n)
	}
	return ""
}
