package domain

import "errors"

// Sentinel errors shared across services. Controllers map these to HTTP
// status codes with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")

	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already in use")
	ErrUserLocked     = errors.New("user account is locked")

	// Registration lifecycle failures. These are expected business outcomes,
	// not infrastructure errors.
	ErrEventFull         = errors.New("event is full")
	ErrEventStarted      = errors.New("event has already started")
	ErrEventNotEnded     = errors.New("event has not ended yet")
	ErrEventNotAccepting = errors.New("event is not accepting registrations")
	ErrAlreadyRegistered = errors.New("already registered for this event")

	// ErrAlreadyManager is returned when adding a user who already co-manages the event.
	ErrAlreadyManager = errors.New("already a manager of this event")
)
