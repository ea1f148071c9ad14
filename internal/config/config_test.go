package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"urbandata/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	workDir := t.TempDir()
	t.Chdir(workDir)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(tempHome, ".config", "urbandata", "config.toml") {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if cfg.Paths.RawDir != filepath.Join(workDir, "data", "bronze") {
		t.Fatalf("unexpected raw dir: %q", cfg.Paths.RawDir)
	}
	if cfg.Paths.CleanDir != filepath.Join(workDir, "data", "silver") {
		t.Fatalf("unexpected clean dir: %q", cfg.Paths.CleanDir)
	}
	if cfg.Fetch.Workers != 4 {
		t.Fatalf("expected 4 fetch workers, got %d", cfg.Fetch.Workers)
	}
	if cfg.Catalog.Enabled {
		t.Fatal("expected catalog disabled by default")
	}
	if cfg.Clean.Parquet {
		t.Fatal("expected parquet output disabled by default")
	}
	if len(cfg.Datasets) != len(config.DefaultDatasets()) {
		t.Fatalf("expected built-in datasets, got %d", len(cfg.Datasets))
	}
}

func TestDefaultDatasetsAreValid(t *testing.T) {
	datasets := config.DefaultDatasets()
	want := []string{"dvf", "logement_sociaux", "espace_verts", "colleges", "elementaire", "maternelle", "abribac_dechets_alimentaires"}
	if len(datasets) != len(want) {
		t.Fatalf("expected %d datasets, got %d", len(want), len(datasets))
	}
	for i, name := range want {
		if datasets[i].Name != name {
			t.Fatalf("dataset %d: got %q want %q", i, datasets[i].Name, name)
		}
		if !strings.HasPrefix(datasets[i].URL, "https://") {
			t.Fatalf("dataset %s: unexpected url %q", name, datasets[i].URL)
		}
	}
}

func TestLoadCustomConfigOverrides(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	configPath := filepath.Join(t.TempDir(), "urbandata.toml")
	payload := struct {
		Paths struct {
			RawDir   string `toml:"raw_dir"`
			CleanDir string `toml:"clean_dir"`
		} `toml:"paths"`
		Fetch struct {
			Workers int `toml:"workers"`
		} `toml:"fetch"`
		Logging struct {
			Format string `toml:"format"`
		} `toml:"logging"`
		Datasets []map[string]string `toml:"datasets"`
	}{}
	payload.Paths.RawDir = "~/raw"
	payload.Paths.CleanDir = "~/clean"
	payload.Fetch.Workers = 2
	payload.Logging.Format = " JSON "
	payload.Datasets = []map[string]string{{"name": "colleges", "url": "https://example.test/colleges.csv"}}

	data, err := toml.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected config at %q, got %q (exists=%v)", configPath, resolved, exists)
	}
	if cfg.Paths.RawDir != filepath.Join(tempHome, "raw") {
		t.Fatalf("unexpected raw dir: %q", cfg.Paths.RawDir)
	}
	if cfg.Fetch.Workers != 2 {
		t.Fatalf("unexpected worker count: %d", cfg.Fetch.Workers)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected normalized json format, got %q", cfg.Logging.Format)
	}
	if len(cfg.Datasets) != 1 {
		t.Fatalf("expected custom dataset list to replace defaults, got %d", len(cfg.Datasets))
	}
	ds := cfg.Datasets[0]
	if ds.Kind != "colleges" || ds.Delimiter != ";" || ds.CleanFile != "colleges_clean.csv" {
		t.Fatalf("unexpected dataset defaults: %+v", ds)
	}
	if got := cfg.RawPath(ds.Name); got != filepath.Join(tempHome, "raw", "colleges.csv") {
		t.Fatalf("unexpected raw path: %q", got)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]func(*config.Config){
		"zero workers": func(c *config.Config) { c.Fetch.Workers = -1 },
		"bad format":   func(c *config.Config) { c.Logging.Format = "xml" },
		"dup dataset": func(c *config.Config) {
			c.Datasets = append(c.Datasets, c.Datasets[0])
		},
		"bad scheme": func(c *config.Config) { c.Datasets[0].URL = "ftp://example.test/a.csv" },
		"bad delim":  func(c *config.Config) { c.Datasets[0].Delimiter = ";;" },
		"nested name": func(c *config.Config) {
			c.Datasets[0].Name = "../escape"
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if len(cfg.Datasets) != len(config.DefaultDatasets()) {
		t.Fatalf("sample should fall back to built-in datasets, got %d", len(cfg.Datasets))
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.RawDir = filepath.Join(base, "bronze")
	cfg.Paths.CleanDir = filepath.Join(base, "silver")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Catalog.Enabled = true
	cfg.Catalog.Path = filepath.Join(base, "db", "catalog.db")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.RawDir, cfg.Paths.CleanDir, cfg.Paths.LogDir, filepath.Join(base, "db")} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q: %v", dir, err)
		}
	}
}
