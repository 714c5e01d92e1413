package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the
	// store. This is the generic version of the entity-specific not found
	// errors (e.g., ErrContactNotFound, ErrRuleNotFound).
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// Entity-specific "not found" errors

	// ErrContactNotFound indicates that the requested contact does not exist.
	ErrContactNotFound = fmt.Errorf("%w: contact", ErrNotFound)

	// ErrRuleNotFound indicates that no scoring rule is configured for the
	// requested event type. Callers treat this as an expected silent no-op.
	ErrRuleNotFound = fmt.Errorf("%w: scoring rule", ErrNotFound)

	// ErrWorkflowNotFound indicates that the requested workflow does not exist.
	ErrWorkflowNotFound = fmt.Errorf("%w: workflow", ErrNotFound)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
