// Package common defines shared constants and sentinel errors used across
// the gatekeeper layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// ErrValidation marks malformed or oversized input. It is not secret and
	// is reported before any timing defence kicks in.
	ErrValidation = errors.New("validation error")

	// ErrAuthenticationFailed covers both "unknown email" and "wrong password";
	// callers must never be able to tell which one happened.
	ErrAuthenticationFailed = errors.New("invalid email or password")

	// ErrResourceExhausted is returned when no password hashing slot is free.
	ErrResourceExhausted = errors.New("resource exhausted")

	// ErrRateLimited is returned when the caller exceeded its request budget.
	ErrRateLimited = errors.New("rate limited")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Sign-up lifecycle errors.
	ErrAlreadyVerified = errors.New("user is already verified")
)
