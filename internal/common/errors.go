// Package common defines shared constants and sentinel errors used across
// the health-tracker backend. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Account lifecycle errors.
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")

	// Refresh token lifecycle errors.
	ErrInvalidToken = errors.New("invalid refresh token")
	ErrTokenRevoked = errors.New("refresh token has been revoked")
	ErrTokenExpired = errors.New("refresh token has expired")

	// Access token errors.
	ErrAccessTokenExpired   = errors.New("access token expired")
	ErrAccessTokenMalformed = errors.New("malformed access token")
	ErrInvalidSignature     = errors.New("invalid token signature")
)
