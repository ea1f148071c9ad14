// Package textutil normalizes column labels and identifiers coming from
// upstream CSV headers.
//
// Headers from the Paris open-data portal mix NFC and NFD accents, carry UTF-8
// byte order marks, and vary in case between exports; the helpers here reduce
// them to a stable form before any lookup happens.
package textutil
