package logging

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestPruneRunLogs(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	old := now.AddDate(0, 0, -40)

	write := func(name string, mod time.Time) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("{}\n"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		if err := os.Chtimes(path, mod, mod); err != nil {
			t.Fatalf("chtimes %s: %v", name, err)
		}
		return path
	}
	stale := write("run-20240420T000000Z-a.log", old)
	current := write("run-20240601T000000Z-b.log", old)
	fresh := write("run-20240530T000000Z-c.log", now)
	app := write("urbandata.log", old)

	removed := PruneRunLogs(NewNop(), dir, 30, now, current)
	if removed != 1 {
		t.Fatalf("expected 1 removal, got %d", removed)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatal("expected stale run log to be removed")
	}
	for _, keep := range []string{current, fresh, app} {
		if _, err := os.Stat(keep); err != nil {
			t.Fatalf("expected %s to remain: %v", filepath.Base(keep), err)
		}
	}
	if PruneRunLogs(NewNop(), dir, 0, now) != 0 {
		t.Fatal("retention of 0 must disable pruning")
	}
}
