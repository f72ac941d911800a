package domain

import (
	"github.com/google/uuid"
)

// BucketGroup is a named, ordered collection of buckets.
// Positions of non-system groups form the contiguous sequence 1..N;
// the reserved system group sits outside that sequence at position 0.
type BucketGroup struct {
	ID       uuid.UUID
	Name     string
	Position int
}

// Validate ensures the group adheres to domain rules.
func (g *BucketGroup) Validate() error {
	if g.Name == "" {
		return Validationf("bucket group name cannot be empty")
	}
	if g.Position < 0 {
		return Validationf("bucket group position cannot be negative")
	}
	return nil
}
