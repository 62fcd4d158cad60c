package sweep

import (
	"errors"
	"fmt"
)

// ErrUnsafe is returned when the safety guard rejects a result and force is
// not set.
var ErrUnsafe = errors.New("retention result is unsafe")

// UnsafeError describes a result rejected by the safety guard.
type UnsafeError struct {
	Kept      int
	Discarded int
	MinKeep   int
}

// Error implements the error interface.
func (e *UnsafeError) Error() string {
	return fmt.Sprintf("%v: would discard %d and keep %d, fewer than min_keep %d (use force to override)",
		ErrUnsafe, e.Discarded, e.Kept, e.MinKeep)
}

// Unwrap returns ErrUnsafe.
func (e *UnsafeError) Unwrap() error {
	return ErrUnsafe
}
