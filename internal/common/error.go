// Package common contains shared constants and sentinel errors used across
// intramail components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// ErrUnauthenticated signals a credential mismatch. It never triggers
	// fallback to the mirror and is always surfaced to the user.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrNotFound signals that an entity is absent from both the remote
	// service and the local mirror.
	ErrNotFound = errors.New("not found")

	// ErrValidation signals a malformed payload, rejected before any
	// store mutation.
	ErrValidation = errors.New("validation failed")

	// ErrUnavailable signals a transport failure or timeout. The gateway
	// recovers it by falling back to the mirror wherever a local
	// equivalent operation exists; it surfaces only for operations with
	// no offline path (file upload).
	ErrUnavailable = errors.New("system unavailable")
)
