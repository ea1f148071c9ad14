package testsupport

import (
	"path/filepath"
	"testing"

	"urbandata/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Datasets keep their built-in definitions unless WithDatasets is applied.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.RawDir = filepath.Join(base, "bronze")
	cfgVal.Paths.CleanDir = filepath.Join(base, "silver")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Catalog.Path = filepath.Join(base, "catalog.db")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return builder.cfg
}

// WithDatasets replaces the dataset list. Empty kinds default to the name and
// empty delimiters to ";", the way config loading normalizes them.
func WithDatasets(datasets ...config.Dataset) ConfigOption {
	return func(b *configBuilder) {
		for i := range datasets {
			if datasets[i].Kind == "" {
				datasets[i].Kind = datasets[i].Name
			}
			if datasets[i].Delimiter == "" {
				datasets[i].Delimiter = ";"
			}
			if datasets[i].CleanFile == "" {
				datasets[i].CleanFile = datasets[i].Name + "_clean.csv"
			}
		}
		b.cfg.Datasets = datasets
	}
}

// WithCatalog enables the SQLite catalog inside the temp directory.
func WithCatalog() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Catalog.Enabled = true
	}
}

// WithParquet enables Parquet copies of clean tables.
func WithParquet() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Clean.Parquet = true
	}
}

// WithWorkers overrides the fetch pool size.
func WithWorkers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Fetch.Workers = n
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.RawDir)
}
