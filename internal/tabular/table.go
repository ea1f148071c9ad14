package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Kind is the logical type of a clean column.
type Kind int

const (
	Text Kind = iota
	Int
	Float
	Date
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case Float:
		return "float"
	case Date:
		return "date"
	default:
		return "text"
	}
}

// Field is one column of a clean table.
type Field struct {
	Name string
	Kind Kind
}

// Schema is the ordered column set of a clean table.
type Schema []Field

// Names returns the column names in order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, f := range s {
		names[i] = f.Name
	}
	return names
}

// Table is an ordered clean table of canonical string cells; "" is missing.
type Table struct {
	Schema Schema
	Rows   [][]string
}

// NewTable returns an empty table for schema.
func NewTable(schema Schema) *Table {
	return &Table{Schema: schema}
}

// Append adds a row; it panics when the arity does not match the schema since
// that is a recipe bug, not a data problem.
func (t *Table) Append(values ...string) {
	if len(values) != len(t.Schema) {
		panic(fmt.Sprintf("tabular: row has %d values, schema has %d", len(values), len(t.Schema)))
	}
	t.Rows = append(t.Rows, values)
}

// Len reports the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Column returns the position of name in the schema.
func (t *Table) Column(name string) (int, bool) {
	for i, f := range t.Schema {
		if f.Name == name {
			return i, true
		}
	}
	return -1, false
}

// WriteCSV writes the header and rows comma-delimited with "\n" line ends.
func (t *Table) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Schema.Names()); err != nil {
		return err
	}
	if err := writer.WriteAll(t.Rows); err != nil {
		return err
	}
	return writer.Error()
}

// Dedupe keeps the first row for each key.
type Dedupe map[string]struct{}

// Seen records key and reports whether it was already present.
func (d Dedupe) Seen(parts ...string) bool {
	key := strings.Join(parts, "\x1f")
	if _, ok := d[key]; ok {
		return true
	}
	d[key] = struct{}{}
	return false
}
