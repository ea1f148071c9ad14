package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"urbandata/internal/failures"
)

// Strategy is one way of splitting a raw file into fields.
type Strategy struct {
	Name      string
	Delimiter rune
}

// DefaultStrategies tries the portal's native semicolon first, then comma.
var DefaultStrategies = []Strategy{
	{Name: "semicolon", Delimiter: ';'},
	{Name: "comma", Delimiter: ','},
}

// Predicate decides whether a parsed header is the one a recipe expects.
type Predicate func(Header) bool

// RequireColumns accepts a header when every required column resolves
// through at least one of its sources.
func RequireColumns(columns []Column) Predicate {
	return func(h Header) bool {
		return len(missingColumns(h, columns)) == 0
	}
}

// ReadStats counts rows dropped while reading.
type ReadStats struct {
	Read          int
	Empty         int
	HeaderRepeats int
}

// Raw is a parsed raw file.
type Raw struct {
	Path     string
	Strategy Strategy
	Header   Header
	Rows     [][]string
	Stats    ReadStats
}

// ReadFile parses path with the first strategy whose header satisfies
// predicate. A missing file yields failures.ErrMissingInput; no acceptable
// strategy yields a *SchemaError.
func ReadFile(path string, strategies []Strategy, predicate Predicate) (*Raw, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, failures.Wrap(failures.ErrMissingInput, "", "read raw", path, err)
		}
		return nil, fmt.Errorf("read raw %s: %w", path, err)
	}
	raw, err := Parse(data, strategies, predicate)
	if err != nil {
		var schemaErr *SchemaError
		if errors.As(err, &schemaErr) {
			schemaErr.Path = path
		}
		return nil, err
	}
	raw.Path = path
	return raw, nil
}

// Parse is ReadFile over an in-memory payload.
func Parse(data []byte, strategies []Strategy, predicate Predicate) (*Raw, error) {
	if len(strategies) == 0 {
		strategies = DefaultStrategies
	}
	schemaErr := &SchemaError{}
	for _, strategy := range strategies {
		schemaErr.Tried = append(schemaErr.Tried, strategy.Name)
		raw, header, err := parseWith(data, strategy, predicate)
		if err != nil {
			schemaErr.Cause = err
			continue
		}
		if raw == nil {
			if len(header) > len(schemaErr.Seen) {
				schemaErr.Seen = header
			}
			continue
		}
		return raw, nil
	}
	return nil, schemaErr
}

// parseWith returns a nil Raw and the seen header when predicate rejects it.
func parseWith(data []byte, strategy Strategy, predicate Predicate) (*Raw, []string, error) {
	reader := newCSVReader(bytes.NewReader(data), strategy.Delimiter)
	first, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, errors.New("empty file")
		}
		return nil, nil, fmt.Errorf("%s header: %w", strategy.Name, err)
	}
	header := NewHeader(first)
	if predicate != nil && !predicate(header) {
		return nil, header.Labels(), nil
	}

	raw := &Raw{Strategy: strategy, Header: header}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%s rows: %w", strategy.Name, err)
		}
		raw.Stats.Read++
		if blank(row) {
			raw.Stats.Empty++
			continue
		}
		if header.isRepeat(row) {
			raw.Stats.HeaderRepeats++
			continue
		}
		raw.Rows = append(raw.Rows, row)
	}
	return raw, nil, nil
}

func newCSVReader(r io.Reader, delimiter rune) *csv.Reader {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	return reader
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
