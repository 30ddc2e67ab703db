package core

import "github.com/google/uuid"

// NewID returns a fresh identifier for a ledger entity. Uniqueness is a
// correctness requirement: record upserts and import deduplication are both
// keyed by id.
func NewID() string {
	return uuid.NewString()
}
