// Package timestamp extracts capture times from free-form record identifiers
// and maps identifiers to distinct instants.
//
// An Extractor finds the first date-time in a string such as a file name:
//
//	x := timestamp.DefaultExtractor(time.UTC)
//	t, ok := x.Extract("db-backup-2024-06-15_03-00-00.sql.gz")
//
// An Index collects identifiers and their instants. Several identifiers may
// carry the same instant; the Index hands out each instant once and, when the
// retention decision comes back, assigns it to the identifier inserted first.
// Later identifiers with the same instant are redundant copies and are
// classified for discard.
package timestamp
