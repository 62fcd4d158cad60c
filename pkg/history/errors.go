package history

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a report does not exist.
var ErrNotFound = errors.New("report not found")

var errClosed = errors.New("store is closed")

// StorageError represents an error from a history backend.
type StorageError struct {
	Backend   string // Storage backend type ("memory", "sqlite", "sqlite3")
	Operation string // Operation that failed ("save", "list", "prune", etc.)
	Cause     error  // Underlying error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("history storage error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError creates a new StorageError.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{
		Backend:   backend,
		Operation: operation,
		Cause:     cause,
	}
}
