// Package models defines the records persisted by jbkit repositories.
package models

import "time"

// Base holds the columns shared by every table: a surrogate identity
// assigned on first persistence and the lifecycle timestamps.
type Base struct {
	ID      int64
	Created time.Time
	// Updated is refreshed on every mutating write; nil until the first one.
	Updated *time.Time
	// Deleted is set by soft-delete only. Rows are never removed.
	Deleted *time.Time
}

// Persisted reports whether the record has been assigned an identity.
func (b Base) Persisted() bool {
	return b.ID != 0
}

// IsDeleted reports whether the record has been soft-deleted.
func (b Base) IsDeleted() bool {
	return b.Deleted != nil
}
