// Package source reads timestamped records.
//
// A record is an identifier together with the instant extracted from it.
// Two sources are provided:
//
//   - Lines: one record per non-blank line of one or more readers (stdin or
//     files); the line itself is the identifier.
//   - Directory: one record per entry of a directory whose name passes the
//     include/exclude glob patterns; the entry name is the identifier.
//
// Identifiers from which no timestamp can be extracted are returned as
// Unmatched. They are never classified.
package source
