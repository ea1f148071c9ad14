package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the bronze/silver data areas and the log directory.
type Paths struct {
	RawDir   string `toml:"raw_dir"`
	CleanDir string `toml:"clean_dir"`
	LogDir   string `toml:"log_dir"`
}

// Fetch contains settings for the download pool.
type Fetch struct {
	Workers        int    `toml:"workers"`
	TimeoutSeconds int    `toml:"timeout_seconds"` // 0 disables the per-request timeout
	UserAgent      string `toml:"user_agent"`
}

// Clean contains optional outputs of the cleaning stage.
type Clean struct {
	Parquet bool `toml:"parquet"`
}

// Catalog contains configuration for the SQLite mirror of silver tables.
type Catalog struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"` // 0 keeps run logs forever
}

// Dataset describes one remote source and where its bronze/silver files live.
type Dataset struct {
	Name          string `toml:"name"`
	Kind          string `toml:"kind"`
	URL           string `toml:"url"`
	Delimiter     string `toml:"delimiter"`
	CleanFile     string `toml:"clean_file"`
	AggregateFile string `toml:"aggregate_file"`
}

// Config encapsulates all configuration values for urbandata.
//
// Configuration sections:
//   - Paths: raw (bronze), clean (silver) and log directories
//   - Fetch: download pool size, timeout, user agent
//   - Clean: optional Parquet output
//   - Catalog: optional SQLite mirror of silver tables and run history
//   - Logging: log format and level
//   - Datasets: name -> URL map; empty means the built-in Paris datasets
type Config struct {
	Paths    Paths     `toml:"paths"`
	Fetch    Fetch     `toml:"fetch"`
	Clean    Clean     `toml:"clean"`
	Catalog  Catalog   `toml:"catalog"`
	Logging  Logging   `toml:"logging"`
	Datasets []Dataset `toml:"datasets"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/urbandata/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		// A file that declares [[datasets]] replaces the built-in map entirely.
		cfg.Datasets = nil
		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("urbandata.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the bronze, silver and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.RawDir, c.Paths.CleanDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if c.Catalog.Enabled {
		if err := os.MkdirAll(filepath.Dir(c.Catalog.Path), 0o755); err != nil {
			return fmt.Errorf("create catalog directory: %w", err)
		}
	}
	return nil
}

// RawPath returns the bronze location for a dataset name.
func (c *Config) RawPath(name string) string {
	return filepath.Join(c.Paths.RawDir, name+".csv")
}

// CleanPath returns the silver location for a dataset.
func (c *Config) CleanPath(ds Dataset) string {
	return filepath.Join(c.Paths.CleanDir, ds.CleanFile)
}

// AggregatePath returns the silver location of a dataset's rollup, or "" when
// the dataset has none.
func (c *Config) AggregatePath(ds Dataset) string {
	if ds.AggregateFile == "" {
		return ""
	}
	return filepath.Join(c.Paths.CleanDir, ds.AggregateFile)
}

// LookupDataset returns the configured dataset with the given name.
func (c *Config) LookupDataset(name string) (Dataset, bool) {
	name = strings.TrimSpace(name)
	for _, ds := range c.Datasets {
		if ds.Name == name {
			return ds, true
		}
	}
	return Dataset{}, false
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func openDataURL(slug string) string {
	return fmt.Sprintf(openDataParisExport, slug)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the effective configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}
