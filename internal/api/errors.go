package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/vocal-api/internal/domain"
	"github.com/phrazzld/vocal-api/internal/jobstatus"
	"github.com/phrazzld/vocal-api/internal/service"
	"github.com/phrazzld/vocal-api/internal/service/auth"
	"github.com/phrazzld/vocal-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, jobstatus.ErrNotFound):
		return http.StatusNotFound

	// Bad request errors
	case domain.IsInputError(err):
		return http.StatusBadRequest

	// Special cases
	case errors.Is(err, service.ErrNothingOccurring):
		return http.StatusNoContent

	case errors.Is(err, jobstatus.ErrWaitTimeout):
		return http.StatusRequestTimeout

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, jobstatus.ErrNotFound):
		return "Unknown job"

	case errors.Is(err, store.ErrNotFound):
		return "Event not found"

	case errors.Is(err, jobstatus.ErrWaitTimeout):
		return "Timed out waiting for the job to finish"

	case domain.IsInputError(err):
		// Input sentinel messages are written for callers.
		return err.Error()

	default:
		return "An unexpected error occurred"
	}
}
