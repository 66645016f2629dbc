package domain

import "errors"

// Sentinel errors for the auth and task flows. Handlers never match on these
// directly; the central HTTP error handler maps each to a status code.
var (
	// ErrEmailExists signals a registration attempt with an email that is
	// already taken. The mongo unique index is the authoritative source of
	// this error; the service's pre-insert lookup is only a fast path.
	ErrEmailExists = errors.New("email already registered")

	// ErrInvalidCredentials covers both unknown email and wrong password.
	// The two cases are deliberately indistinguishable to callers.
	ErrInvalidCredentials = errors.New("incorrect email or password")

	ErrUserNotFound = errors.New("user not found")
	ErrTaskNotFound = errors.New("task not found")

	// ErrForbidden means the requester is authenticated but does not own
	// the resource it is acting on.
	ErrForbidden = errors.New("not authorized to access this task")

	// ErrTooManyAttempts is returned when the login throttle trips.
	ErrTooManyAttempts = errors.New("too many failed login attempts")

	// ErrUnavailable wraps store I/O failures. Callers may retry.
	ErrUnavailable = errors.New("store unavailable")
)
