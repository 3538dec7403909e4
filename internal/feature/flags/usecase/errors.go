// Package usecase implements flag submission and progress tracking.
package usecase

import "errors"

var (
	// ErrUnknownSlug is returned when the slug is not in the catalog.
	ErrUnknownSlug = errors.New("unknown challenge")

	// ErrWrongFlag is returned when the submitted value does not match the secret.
	ErrWrongFlag = errors.New("wrong flag")

	// ErrAlreadySubmitted is returned when the user already solved the challenge.
	ErrAlreadySubmitted = errors.New("flag already submitted")
)
