package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrInvalidInput is returned when a request is missing required data or
	// carries malformed data. Input errors are fatal and never retried.
	// This is often wrapped with a more specific error message.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingEventID is returned when an update or delete operation does
	// not name a target event.
	ErrMissingEventID = errors.New("invalid input: event ID is required")

	// ErrMissingStartTime is returned when a target instance has no concrete
	// start timestamp (e.g. an all-day instance) where one is required.
	ErrMissingStartTime = errors.New("invalid input: event has no concrete start time")

	// ErrInvalidScope is returned when a scope token is not one of
	// this_event, this_and_following, all_events.
	ErrInvalidScope = errors.New("invalid input: unknown update scope")

	// ErrNoRecurrence is returned when a series-scoped operation targets an
	// event that carries no recurrence rule.
	ErrNoRecurrence = errors.New("invalid input: event has no recurrence rules")

	// ErrInvalidDate is returned when a date string cannot be parsed or
	// repaired into a valid timestamp.
	ErrInvalidDate = errors.New("invalid input: malformed date")

	// ErrEventNotOccurring is returned when a reminder is requested for an
	// event that is not currently in progress.
	ErrEventNotOccurring = errors.New("event not currently occurring")

	// ErrUnknownOperation is returned when intent extraction produces an
	// operation the pipeline does not understand.
	ErrUnknownOperation = errors.New("unknown operation")
)

// IsInputError reports whether err belongs to the fatal input-error family.
// Input errors abort the enclosing job immediately and are never retried.
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrMissingEventID) ||
		errors.Is(err, ErrMissingStartTime) ||
		errors.Is(err, ErrInvalidScope) ||
		errors.Is(err, ErrNoRecurrence) ||
		errors.Is(err, ErrInvalidDate)
}
