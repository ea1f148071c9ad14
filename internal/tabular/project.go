package tabular

import (
	"errors"
	"strings"
)

// Column maps a target name to the first source label present in a header.
type Column struct {
	Target   string
	Sources  []string
	Required bool
}

// Col is shorthand for an optional column whose source list defaults to the
// target name.
func Col(target string, sources ...string) Column {
	if len(sources) == 0 {
		sources = []string{target}
	}
	return Column{Target: target, Sources: sources}
}

// Req is Col with Required set.
func Req(target string, sources ...string) Column {
	c := Col(target, sources...)
	c.Required = true
	return c
}

// Projection resolves Columns against one header.
type Projection struct {
	targets map[string]int
	index   []int
}

// Project resolves columns against h. Required columns with no present source
// yield a *SchemaError; optional ones read as empty strings.
func Project(h Header, columns []Column) (*Projection, error) {
	if missing := missingColumns(h, columns); len(missing) > 0 {
		return nil, &SchemaError{Missing: missing, Seen: h.Labels()}
	}
	p := &Projection{targets: make(map[string]int, len(columns)), index: make([]int, len(columns))}
	for i, col := range columns {
		p.targets[col.Target] = i
		p.index[i] = -1
		for _, source := range col.Sources {
			if idx, ok := h.Index(source); ok {
				p.index[i] = idx
				break
			}
		}
	}
	return p, nil
}

// Present reports whether target resolved to a column of the header.
func (p *Projection) Present(target string) bool {
	i, ok := p.targets[target]
	return ok && p.index[i] >= 0
}

// Record returns a view of row keyed by target names.
func (p *Projection) Record(row []string) Record {
	return Record{p: p, row: row}
}

// Record is one raw row seen through a Projection.
type Record struct {
	p   *Projection
	row []string
}

// Get returns the trimmed cell for target, or "" when the column is absent or
// the row is short.
func (r Record) Get(target string) string {
	i, ok := r.p.targets[target]
	if !ok {
		return ""
	}
	idx := r.p.index[i]
	if idx < 0 || idx >= len(r.row) {
		return ""
	}
	return strings.TrimSpace(r.row[idx])
}

// ReadFileColumns is ReadFile with a RequireColumns predicate, filling the
// SchemaError's missing list from the best header seen.
func ReadFileColumns(path string, strategies []Strategy, columns []Column) (*Raw, *Projection, error) {
	raw, err := ReadFile(path, strategies, RequireColumns(columns))
	if err != nil {
		var schemaErr *SchemaError
		if errors.As(err, &schemaErr) && len(schemaErr.Missing) == 0 {
			schemaErr.Missing = missingColumns(NewHeader(schemaErr.Seen), columns)
		}
		return nil, nil, err
	}
	proj, err := Project(raw.Header, columns)
	if err != nil {
		return nil, nil, err
	}
	return raw, proj, nil
}

func missingColumns(h Header, columns []Column) []string {
	var missing []string
	for _, col := range columns {
		if col.Required && !h.HasAny(col.Sources...) {
			missing = append(missing, col.Target)
		}
	}
	return missing
}
