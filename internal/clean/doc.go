// Package clean turns bronze files into silver tables.
//
// Each dataset kind has a Recipe: the columns it projects from the raw file,
// the schema of the table it writes, and a row function that filters and
// derives. Cleaner runs a recipe end to end and writes the CSV output
// atomically, plus an optional Parquet copy and an optional rollup table.
package clean
