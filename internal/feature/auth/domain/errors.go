// Package domain defines domain-level errors for the auth feature.
package domain

import "errors"

// Domain errors for identity operations.
// Backends translate driver-specific failures into these values.
var (
	// ErrUserAlreadyExists indicates that the username or email is already taken in either backend.
	ErrUserAlreadyExists = errors.New("user with this username or email already exists")

	// ErrUserNotFound indicates that no user was found with the given criteria.
	ErrUserNotFound = errors.New("user not found")

	// ErrFlagAlreadyFound is returned by a backend when the slug is already in the user's flags.
	ErrFlagAlreadyFound = errors.New("flag already recorded for user")

	// ErrBackendUnavailable is returned by a backend that could not be connected at startup.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrUnknownBackend is returned when switching to a backend name that is not registered.
	ErrUnknownBackend = errors.New("unknown backend")
)
