// Package common defines shared constants and sentinel errors used across
// Lingvera components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Vault errors. Configuration and storage failures are fatal startup
	// conditions; the rest map to per-request responses at the boundary.
	ErrConfiguration      = errors.New("invalid configuration")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrEncryption         = errors.New("encryption failed")
	ErrDecryption         = errors.New("decryption failed")
	ErrValidation         = errors.New("validation error")

	// Project lifecycle errors.
	ErrProjectState = errors.New("operation not allowed in current project state")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
