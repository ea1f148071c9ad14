package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"urbandata/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckFreeSpace(t *testing.T) {
	dir := t.TempDir()
	if result := CheckFreeSpace("space", dir, 1); !result.Passed {
		t.Fatalf("expected pass with a 1 byte minimum, got %s", result.Detail)
	}
	if result := CheckFreeSpace("space", dir, 1<<62); result.Passed {
		t.Fatal("expected failure for an impossible minimum")
	}
	if result := CheckFreeSpace("space", filepath.Join(dir, "missing"), 1); result.Passed {
		t.Fatal("expected failure for a missing path")
	}
}

func TestCheckEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.csv":
			if r.Method != http.MethodHead || r.UserAgent() != "urbandata/test" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			w.WriteHeader(http.StatusOK)
		case "/nohead.csv":
			w.WriteHeader(http.StatusMethodNotAllowed)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	if result := CheckEndpoint(ctx, srv.Client(), "ok", srv.URL+"/ok.csv", "urbandata/test"); !result.Passed {
		t.Fatalf("expected pass, got %s", result.Detail)
	}
	if result := CheckEndpoint(ctx, nil, "nohead", srv.URL+"/nohead.csv", ""); !result.Passed {
		t.Fatalf("expected 405 to count as reachable, got %s", result.Detail)
	}
	result := CheckEndpoint(ctx, nil, "missing", srv.URL+"/missing.csv", "")
	if result.Passed || !strings.Contains(result.Detail, "404") {
		t.Fatalf("expected 404 failure, got %+v", result)
	}
	if result := CheckEndpoint(ctx, nil, "empty", "", ""); result.Passed {
		t.Fatal("expected failure for empty url")
	}
}

func TestRunAll(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.RawDir = filepath.Join(base, "bronze")
	cfg.Paths.CleanDir = filepath.Join(base, "silver")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Catalog.Enabled = true
	cfg.Catalog.Path = filepath.Join(base, "catalog.db")

	results := RunAll(context.Background(), &cfg)
	if Passed(results) {
		t.Fatal("expected failures before directories exist")
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	results = RunAll(context.Background(), &cfg)
	if len(results) != 5 {
		t.Fatalf("expected 5 results with catalog enabled, got %d", len(results))
	}
	for _, r := range results {
		if r.Name == "Bronze free space" {
			continue
		}
		if !r.Passed {
			t.Fatalf("%s failed: %s", r.Name, r.Detail)
		}
	}
	if _, err := os.Stat(cfg.Catalog.Path); err != nil {
		t.Fatalf("expected catalog file after check: %v", err)
	}
}

func TestRunAllNilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil); results != nil {
		t.Fatalf("expected nil results, got %v", results)
	}
}
