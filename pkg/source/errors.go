package source

import "fmt"

// SourceError reports a failure to read from a source.
type SourceError struct {
	// Source is the description of the source (e.g. "stdin", "dir:/backups").
	Source string

	// Operation is what failed ("open", "read", "scan").
	Operation string

	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s: %s failed: %v", e.Source, e.Operation, e.Cause)
}

// Unwrap returns the underlying error.
func (e *SourceError) Unwrap() error {
	return e.Cause
}

// NewSourceError creates a new source error.
func NewSourceError(source, operation string, cause error) error {
	return &SourceError{Source: source, Operation: operation, Cause: cause}
}
