// Package common defines sentinel errors shared across jbkit packages.
// Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// ErrNotPersisted is returned when an operation needs a stored record but
	// was handed one without an identity.
	ErrNotPersisted = errors.New("record not persisted")

	// ErrRelationNotDefined is returned when a relationship is requested for a
	// user variant that does not materialize it.
	ErrRelationNotDefined = errors.New("relation not defined for variant")

	// Auth errors.
	ErrorUnauthorized = errors.New("unauthorized")
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
)
