// Package config loads, normalizes, and validates urbandata configuration.
//
// It supplies repository defaults (including the built-in Paris open-data
// dataset map), expands user paths, and reads TOML files. The Config type is
// the single place where raw/clean directories, fetch pool sizing, optional
// outputs, and the dataset list are resolved.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical log formats, and clear validation errors.
package config
