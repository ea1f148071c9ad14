package failures_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"urbandata/internal/failures"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("connection reset")
	err := failures.Wrap(failures.ErrFetch, "colleges", "download", "GET failed", base)
	if !errors.Is(err, failures.ErrFetch) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"colleges", "download", "GET failed", "connection reset"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaults(t *testing.T) {
	err := failures.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, failures.ErrWrite) {
		t.Fatalf("expected ErrWrite default marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "pipeline failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestKind(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{failures.Wrap(failures.ErrSchema, "dvf", "read", "missing columns", nil), "schema"},
		{fmt.Errorf("outer: %w", failures.Wrap(failures.ErrMissingInput, "dvf", "open", "", nil)), "missing_input"},
		{failures.Wrap(failures.ErrConfiguration, "x", "", "unknown kind", nil), "configuration"},
		{errors.New("plain"), "unknown"},
	}
	for _, tc := range cases {
		if got := failures.Kind(tc.err); got != tc.want {
			t.Fatalf("Kind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
	if failures.Hint(failures.ErrMissingInput) == "" {
		t.Fatal("expected a hint for missing input")
	}
}
