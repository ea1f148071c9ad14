package tabular

import (
	"fmt"
	"strings"

	"urbandata/internal/failures"
)

// SchemaError reports that no parse strategy produced the expected columns.
type SchemaError struct {
	Path    string
	Missing []string
	Seen    []string
	Tried   []string
	Cause   error
}

func (e *SchemaError) Error() string {
	var b strings.Builder
	b.WriteString("schema mismatch")
	if e.Path != "" {
		fmt.Fprintf(&b, " in %s", e.Path)
	}
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, ": missing column(s) %s", strings.Join(e.Missing, ", "))
	}
	if len(e.Tried) > 0 {
		fmt.Fprintf(&b, " (tried %s)", strings.Join(e.Tried, ", "))
	}
	if len(e.Seen) > 0 {
		fmt.Fprintf(&b, "; columns seen: %s", strings.Join(e.Seen, ", "))
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap exposes failures.ErrSchema and the underlying parse error, if any.
func (e *SchemaError) Unwrap() []error {
	if e.Cause != nil {
		return []error{failures.ErrSchema, e.Cause}
	}
	return []error{failures.ErrSchema}
}
