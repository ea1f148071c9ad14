// Package tabular reads loosely formatted open-data CSV exports into a
// normalized in-memory form and writes typed clean tables.
//
// Reading walks an ordered list of parse strategies (semicolon first, then
// comma) and keeps the first one whose header satisfies a schema predicate.
// Headers are normalized with textutil before lookup, fully blank rows and
// rows repeating the header are dropped, and the remaining rows are projected
// onto a fixed column vocabulary by Column mappings.
//
// Clean tables carry a Schema whose field kinds drive the optional Parquet
// and SQLite outputs; cell values are kept as canonical strings so the CSV
// form is byte-identical across runs.
package tabular
