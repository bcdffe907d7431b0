// Package common contains shared sentinel errors and small utilities used
// across the server layers. Callers should use errors.Is to match the
// sentinel values.
package common

import "errors"

var (
	// Request-level errors, mapped to HTTP statuses by the transport.
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")

	// Generic internal flow control.
	ErrInternal = errors.New("internal error")
)
