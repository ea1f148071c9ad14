package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeFetch()
	if err := c.normalizeCatalog(); err != nil {
		return err
	}
	c.normalizeDatasets()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.RawDir) == "" {
		c.Paths.RawDir = defaultRawDir
	}
	if strings.TrimSpace(c.Paths.CleanDir) == "" {
		c.Paths.CleanDir = defaultCleanDir
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	var err error
	if c.Paths.RawDir, err = expandPath(c.Paths.RawDir); err != nil {
		return fmt.Errorf("paths.raw_dir: %w", err)
	}
	if c.Paths.CleanDir, err = expandPath(c.Paths.CleanDir); err != nil {
		return fmt.Errorf("paths.clean_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeFetch() {
	if c.Fetch.Workers == 0 {
		c.Fetch.Workers = defaultFetchWorkers
	}
	c.Fetch.UserAgent = strings.TrimSpace(c.Fetch.UserAgent)
	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = defaultUserAgent
	}
}

func (c *Config) normalizeCatalog() error {
	if strings.TrimSpace(c.Catalog.Path) == "" {
		c.Catalog.Path = defaultCatalogPath
	}
	var err error
	if c.Catalog.Path, err = expandPath(c.Catalog.Path); err != nil {
		return fmt.Errorf("catalog.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeDatasets() {
	if len(c.Datasets) == 0 {
		c.Datasets = DefaultDatasets()
	}
	for i := range c.Datasets {
		ds := &c.Datasets[i]
		ds.Name = strings.TrimSpace(ds.Name)
		ds.Kind = strings.ToLower(strings.TrimSpace(ds.Kind))
		ds.URL = strings.TrimSpace(ds.URL)
		if ds.Kind == "" {
			ds.Kind = ds.Name
		}
		if ds.Delimiter == "" {
			ds.Delimiter = defaultDelimiter
		}
		ds.CleanFile = strings.TrimSpace(ds.CleanFile)
		if ds.CleanFile == "" && ds.Name != "" {
			ds.CleanFile = ds.Name + defaultCleanFileSuffix
		}
		ds.AggregateFile = strings.TrimSpace(ds.AggregateFile)
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
