package registry

import "errors"

var (
	// ErrNotFound is returned when a referenced listing or rental does not
	// exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidRequest is returned when a caller-side precondition is
	// violated: missing listing, reversed date window, or wrong status for
	// the attempted transition.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrUnauthorized is returned when the registry rejects a call because
	// the caller lacks the required role, where distinguishable.
	ErrUnauthorized = errors.New("caller not authorized")

	// ErrUnsupported is returned for operations that are not meaningful on
	// the active backend.
	ErrUnsupported = errors.New("operation not supported by this backend")
)
