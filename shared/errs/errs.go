// Package errs defines the error taxonomy shared by the sync engine and the
// HTTP layer: upstream catalog failures, storage failures, and watch-status
// consistency violations. Callers branch with errors.Is / errors.As.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFavorited is returned when a watch-status mutation targets an item
// the profile never favorited. The mutation is a no-op.
var ErrNotFavorited = errors.New("item is not favorited by this profile")

// ExternalServiceError wraps any failure talking to the catalog provider:
// transport errors, non-2xx responses, and malformed payloads. It is never
// retried inline; the next scheduled pass picks the item up again.
type ExternalServiceError struct {
	Op         string // e.g. "tmdb: show details"
	StatusCode int    // zero for transport/decode failures
	Err        error
}

func (e *ExternalServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

// RateLimited reports whether the provider answered 429.
func (e *ExternalServiceError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// NotFound reports whether the provider answered 404.
func (e *ExternalServiceError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// External builds an ExternalServiceError from a transport or decode failure.
func External(op string, err error) *ExternalServiceError {
	return &ExternalServiceError{Op: op, Err: err}
}

// ExternalStatus builds an ExternalServiceError from a non-2xx response.
func ExternalStatus(op string, status int) *ExternalServiceError {
	return &ExternalServiceError{Op: op, StatusCode: status}
}

// PersistenceError wraps storage failures. The enclosing transaction has been
// rolled back by the time the caller sees one.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Persistence wraps err unless it is nil or already classified.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}
