// Package failures classifies pipeline errors so the orchestrator and CLI can
// report why a dataset did not make it to the silver area.
package failures

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrFetch         = errors.New("fetch failed")
	ErrSchema        = errors.New("schema mismatch")
	ErrMissingInput  = errors.New("missing input")
	ErrConfiguration = errors.New("configuration error")
	ErrWrite         = errors.New("write failed")
)

// Wrap builds an error message that includes dataset context while tagging it
// with marker for later classification. marker should be one of the sentinels
// above; nil defaults to ErrWrite.
func Wrap(marker error, dataset, operation, message string, err error) error {
	detail := buildDetail(dataset, operation, message)
	if marker == nil {
		marker = ErrWrite
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind returns a short stable label for err, used in reports and the catalog.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrFetch):
		return "fetch"
	case errors.Is(err, ErrSchema):
		return "schema"
	case errors.Is(err, ErrMissingInput):
		return "missing_input"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrWrite):
		return "write"
	default:
		return "unknown"
	}
}

// Hint suggests an operator action for err.
func Hint(err error) string {
	switch {
	case errors.Is(err, ErrFetch):
		return "check network access and the dataset url; the next run retries"
	case errors.Is(err, ErrSchema):
		return "the upstream columns changed; inspect the raw file header"
	case errors.Is(err, ErrMissingInput):
		return "run 'urbandata fetch' for this dataset first"
	case errors.Is(err, ErrConfiguration):
		return "run 'urbandata config validate'"
	default:
		return "check file permissions and free space in the data directories"
	}
}

func buildDetail(dataset, operation, message string) string {
	parts := make([]string, 0, 3)
	if dataset = strings.TrimSpace(dataset); dataset != "" {
		parts = append(parts, dataset)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}
