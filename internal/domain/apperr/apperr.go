// Package apperr defines the error classes every layer wraps and the transport
// edge classifies with errors.Is. Errors that match none of them are treated as
// remote failures of the backing store.
package apperr

import "errors"

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrInvalidInput    = errors.New("invalid input")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")

	// ErrStale marks a response superseded by a later request from the same principal.
	ErrStale = errors.New("stale request")
)
