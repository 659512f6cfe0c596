// Package common defines shared constants and sentinel errors used across
// cliptube components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorBadRequest   = errors.New("bad request")

	// Auth errors (invalid, malformed, or wrong-kind token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")

	// ErrRefreshTokenReused signals that a presented refresh token no longer
	// matches the account's stored value. After a rotation or a logout the
	// previous token is dead even if its signature and expiry still check out.
	ErrRefreshTokenReused = errors.New("refresh token is expired or used")
)
