// Package catalog mirrors pipeline runs and silver tables into SQLite.
//
// The catalog is optional and write-mostly: every run records one row in
// runs, one dataset_events row per fetch or clean outcome, and replaces a
// silver_<dataset> table with the latest clean output. Nothing in the fetch
// stage reads it back; the presence of a raw file remains the only signal
// that a dataset was already downloaded.
//
// Schema changes bump schemaVersion in schema.go. Older databases are
// rejected with ErrSchemaMismatch and must be deleted; the catalog can always
// be rebuilt from the silver area by running the pipeline again.
package catalog
