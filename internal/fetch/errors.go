package fetch

import (
	"errors"
	"fmt"
	"net/http"

	"urbandata/internal/failures"
)

// FetchError reports why a download did not produce a raw file.
type FetchError struct {
	Dataset    string
	URL        string
	StatusCode int
	Reason     string
	Err        error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("fetch %s", e.Dataset)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": unexpected status %d", e.StatusCode)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the fetch sentinel and the underlying cause.
func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{failures.ErrFetch}
	}
	return []error{failures.ErrFetch, e.Err}
}

// IsStatus reports whether err is a FetchError for the given HTTP status.
func IsStatus(err error, status int) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.StatusCode == status
}

func errorHint(err error) string {
	if IsStatus(err, http.StatusNotFound) || IsStatus(err, http.StatusGone) {
		return "the portal no longer serves this export; update the dataset url"
	}
	return failures.Hint(err)
}
