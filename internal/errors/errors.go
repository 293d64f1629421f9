package errors

import (
	"errors"
	"fmt"
)

// Error taxonomy for the authentication gate. Every failure collapses to a
// single unauthenticated response at the HTTP edge; these values only decide
// rate-limiter mutation, logging and metrics.
var (
	// Request errors
	ErrMalformedToken = errors.New("malformed token")
	ErrRateLimited    = errors.New("rate limited")

	// Provider errors
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrRefreshFailure      = errors.New("refresh failure")
	ErrProviderUnavailable = errors.New("provider unavailable")

	// Storage errors
	ErrStorageFailure = errors.New("storage failure")
	ErrCorruptSession = errors.New("corrupt session record")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// Outcome returns a short label for err suitable for logs and metric
// attributes. A nil error is "authenticated".
func Outcome(err error) string {
	switch {
	case err == nil:
		return "authenticated"
	case errors.Is(err, ErrMalformedToken):
		return "malformed_token"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrRefreshFailure):
		return "refresh_failure"
	case errors.Is(err, ErrCorruptSession), errors.Is(err, ErrStorageFailure):
		return "storage_failure"
	case errors.Is(err, ErrProviderUnavailable):
		return "provider_unavailable"
	default:
		return "internal"
	}
}
