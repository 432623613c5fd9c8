// Package errs holds the sentinel errors shared across duochat packages.
package errs

import "errors"

var (
	// ErrNotFound means a referenced user, conversation or message does not exist.
	ErrNotFound = errors.New("not found")
	// ErrPersistenceUnavailable wraps any store failure that is not a lookup miss.
	ErrPersistenceUnavailable = errors.New("persistence unavailable")
	// ErrDeliveryDropped is returned by a connection handle that could not
	// accept an event. Callers treat it as a normal outcome.
	ErrDeliveryDropped = errors.New("delivery dropped")

	ErrInvalidRequest     = errors.New("invalid request")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("user email or password is incorrect")
	ErrTokenGeneration    = errors.New("token generation failed")
	ErrSessionClosed      = errors.New("session closed")
)
