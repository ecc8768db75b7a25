// Package common defines shared constants and sentinel errors used across
// the bucketlist server. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorValidation   = errors.New("validation error")

	// Token errors, ordered from "could not even read it" to
	// "read it, but it does not fit this principal".
	ErrMalformedToken    = errors.New("malformed token")
	ErrSignatureInvalid  = errors.New("invalid token signature")
	ErrTokenExpired      = errors.New("token expired")
	ErrPrincipalMismatch = errors.New("token principal mismatch")
)
