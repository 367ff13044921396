package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested event does not exist in the
	// remote store, or has already been deleted. Idempotent delete paths
	// treat this as already-satisfied, not as failure.
	ErrNotFound = errors.New("event not found")

	// ErrUpdateFailed is returned when an update is rejected by the remote
	// store for reasons other than absence.
	ErrUpdateFailed = errors.New("update failed")
)

// IsNotFoundError checks if the error is any kind of "not found" error,
// including gone/already-deleted responses mapped by implementations.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// StoreError is a custom error type for store-specific errors with additional
// context about the failing remote call.
type StoreError struct {
	Operation string // The remote call that failed (e.g., "get", "update")
	EventID   string // The targeted event, if any
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.EventID != "" {
		return fmt.Sprintf("%s operation on event %s failed: %v", e.Operation, e.EventID, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %v", e.Operation, e.Err)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError for the given operation and target.
func NewStoreError(operation, eventID string, err error) *StoreError {
	return &StoreError{Operation: operation, EventID: eventID, Err: err}
}
