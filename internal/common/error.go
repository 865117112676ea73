// Package common defines shared constants and sentinel errors used across
// the archivegate layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Manifest-level errors: input so malformed no manifest could be
	// built; reported to the operator log, never to an uploader.
	ErrorUnparseableChanges = errors.New("unparseable changes file")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
