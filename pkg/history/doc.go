// Package history persists sweep reports.
//
// A report records when a sweep ran, what it read, the policy it applied,
// the safety decision and the identifiers it classified as discardable. It
// never stores record contents.
//
// Backends:
//
//   - memory: process-local, used by tests and one-shot runs
//   - sqlite: modernc.org/sqlite, pure Go (default)
//   - sqlite3: github.com/mattn/go-sqlite3, cgo
//
// Both SQLite backends share one schema and enable WAL mode.
package history
