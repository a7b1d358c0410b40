package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Common error types for the sign-in server
var (
	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidCookie   = errors.New("invalid session cookie")

	// Handshake integrity errors
	ErrMissingTokenSecret    = errors.New("no token secret in session")
	ErrMissingCallbackParams = errors.New("missing callback parameters")
	ErrStateMismatch         = errors.New("callback state does not match session")

	// Provider errors
	ErrProviderNotFound    = errors.New("identity provider not found")
	ErrProviderRejected    = errors.New("identity provider rejected the request")
	ErrProviderUnavailable = errors.New("identity provider unavailable")

	// General errors
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal error")
)

// StatusError attaches an HTTP status code to an error. The dispatcher uses
// it to pick the response status; anything without one is a 500.
type StatusError struct {
	Status int
	Err    error
}

func (e *StatusError) Error() string {
	return e.Err.Error()
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// WithStatus wraps err so that StatusOf reports status for it.
func WithStatus(err error, status int) error {
	if err == nil {
		return nil
	}
	return &StatusError{Status: status, Err: err}
}

// StatusOf returns the status carried by the first StatusError in err's chain,
// or http.StatusInternalServerError.
func StatusOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) && se.Status != 0 {
		return se.Status
	}
	return http.StatusInternalServerError
}

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

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
