// Package main hosts the urbandata CLI entrypoint and command graph.
//
// Running urbandata with no arguments downloads every configured Paris
// dataset into the bronze area and rebuilds the silver tables. Subcommands
// run either stage alone, list datasets, report local status, and scaffold
// configuration. Configuration resolution and logging setup live here so the
// internal packages stay free of CLI concerns.
package main
