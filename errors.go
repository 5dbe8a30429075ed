package palisade

import "errors"

var (
	// ErrAccessDenied is returned when an authenticated principal is
	// refused an operation it is not entitled to.
	ErrAccessDenied = errors.New("palisade: access denied")

	// ErrUnauthenticated is returned instead of ErrAccessDenied when
	// the refused principal is anonymous or holds no authorities, so
	// callers can challenge for credentials.
	ErrUnauthenticated = errors.New("palisade: authentication required")

	// ErrUnknownObject is returned when an object of an unrecognized
	// type reaches the engine. This is a configuration error, not an
	// authorization outcome.
	ErrUnknownObject = errors.New("palisade: unknown catalog object type")

	// ErrGroupDepthExceeded is returned when layer group nesting
	// exceeds the configured maximum during policy reduction.
	ErrGroupDepthExceeded = errors.New("palisade: layer group nesting depth exceeded")
)
