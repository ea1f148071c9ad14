// Package logging assembles the structured slog loggers used by the urbandata
// pipeline.
//
// It owns the console and JSON handlers, the per-run JSON log files written
// under the log directory, and context helpers that tag records with the run
// ID, dataset, and stage. A no-op logger is provided for tests and wiring code
// that cannot fail.
package logging
