package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"unicode/utf8"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateFetch(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateDatasets(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateFetch() error {
	if c.Fetch.Workers < 1 || c.Fetch.Workers > maxFetchWorkers {
		return fmt.Errorf("fetch.workers must be between 1 and %d", maxFetchWorkers)
	}
	if c.Fetch.TimeoutSeconds < 0 {
		return errors.New("fetch.timeout_seconds must be >= 0")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must be >= 0")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateDatasets() error {
	if len(c.Datasets) == 0 {
		return errors.New("datasets: at least one dataset is required")
	}
	seen := make(map[string]struct{}, len(c.Datasets))
	for i, ds := range c.Datasets {
		if ds.Name == "" {
			return fmt.Errorf("datasets[%d].name must be set", i)
		}
		if filepath.Base(ds.Name) != ds.Name || ds.Name == "." || ds.Name == ".." {
			return fmt.Errorf("datasets[%d].name %q must be a plain file stem", i, ds.Name)
		}
		if _, dup := seen[ds.Name]; dup {
			return fmt.Errorf("datasets: duplicate name %q", ds.Name)
		}
		seen[ds.Name] = struct{}{}

		parsed, err := url.Parse(ds.URL)
		if err != nil || ds.URL == "" {
			return fmt.Errorf("datasets[%s].url: invalid url %q", ds.Name, ds.URL)
		}
		switch parsed.Scheme {
		case "http", "https":
		default:
			return fmt.Errorf("datasets[%s].url: unsupported scheme %q", ds.Name, parsed.Scheme)
		}
		if utf8.RuneCountInString(ds.Delimiter) != 1 {
			return fmt.Errorf("datasets[%s].delimiter must be a single character", ds.Name)
		}
		if filepath.Base(ds.CleanFile) != ds.CleanFile {
			return fmt.Errorf("datasets[%s].clean_file must not contain directories", ds.Name)
		}
		if ds.AggregateFile != "" && filepath.Base(ds.AggregateFile) != ds.AggregateFile {
			return fmt.Errorf("datasets[%s].aggregate_file must not contain directories", ds.Name)
		}
	}
	return nil
}
