// Package pipeline runs the fetch and clean stages for the configured
// datasets.
//
// A Runner downloads every selected dataset through the bounded fetch pool,
// waits for the pool to drain, then cleans each dataset in configuration
// order. Individual dataset failures are logged and reported but never abort
// the run; the Report returned to callers carries every outcome.
//
// Each run gets a UUID, a dedicated JSON log under the log directory, and,
// when the catalog is enabled, a row in the SQLite catalog with one event per
// dataset outcome.
package pipeline
