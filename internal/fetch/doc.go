// Package fetch downloads remote datasets into the bronze area.
//
// A dataset whose raw file already exists is never requested again; deleting
// the file is the only way to force a refresh. Downloads are decoded to UTF-8
// and re-serialized as comma-separated CSV before being renamed into place, so
// a raw file is either complete or absent.
package fetch
