// Package usecase implements the business logic for the auth feature.
package usecase

import "errors"

var (
	// ErrValidation is returned when required input is missing or malformed.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidSession is returned when a registration session does not exist.
	ErrInvalidSession = errors.New("invalid registration session")

	// ErrInvalidCredentials is returned when login fails. It does not reveal whether the user exists.
	ErrInvalidCredentials = errors.New("invalid email or password")
)
