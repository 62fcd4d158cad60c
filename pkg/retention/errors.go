package retention

import (
	"errors"
	"fmt"
)

// ErrInvalidPolicy is matched by every error returned for a malformed tier set.
var ErrInvalidPolicy = errors.New("invalid retention policy")

// InvalidPolicyError describes why a tier set was rejected.
type InvalidPolicyError struct {
	// Index is the offending tier in caller order, or -1 when the error
	// concerns the set as a whole.
	Index int

	// Reason is a human-readable explanation.
	Reason string
}

// Error implements the error interface.
func (e *InvalidPolicyError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %s", ErrInvalidPolicy, e.Reason)
	}
	return fmt.Sprintf("%s: tier %d: %s", ErrInvalidPolicy, e.Index, e.Reason)
}

// Unwrap returns ErrInvalidPolicy so errors.Is works on wrapped errors.
func (e *InvalidPolicyError) Unwrap() error {
	return ErrInvalidPolicy
}

func newInvalidPolicyError(index int, format string, args ...any) *InvalidPolicyError {
	return &InvalidPolicyError{
		Index:  index,
		Reason: fmt.Sprintf(format, args...),
	}
}
