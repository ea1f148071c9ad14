package preflight

import (
	"context"

	"urbandata/internal/config"
)

// MinFreeBytes is the free space below which the bronze directory check fails.
const MinFreeBytes = 512 << 20

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the local checks for cfg: directory access for every data
// directory, free space under the bronze area, and the catalog when enabled.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Bronze directory", cfg.Paths.RawDir),
		CheckDirectoryAccess("Silver directory", cfg.Paths.CleanDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckFreeSpace("Bronze free space", cfg.Paths.RawDir, MinFreeBytes),
	}
	if cfg.Catalog.Enabled {
		results = append(results, CheckCatalog(ctx, cfg.Catalog.Path))
	}
	return results
}

// Passed reports whether every result passed.
func Passed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}
