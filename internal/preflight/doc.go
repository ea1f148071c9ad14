// Package preflight provides readiness checks for the data directories, the
// catalog and the remote open-data portal.
//
// The CLI "urbandata status" command runs RunAll to display local health and,
// with --online, CheckDatasetURLs to probe each configured export. The
// pipeline never gates on these checks; a dataset that cannot be fetched or
// written fails on its own and is reported with the run.
package preflight
