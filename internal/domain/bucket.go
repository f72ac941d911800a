package domain

import (
	"github.com/google/uuid"
)

// Bucket is a budget envelope. It accumulates a balance from budgeted
// transactions and manual movements, and carries a history of
// BucketVersions describing its behavioral parameters over time.
type Bucket struct {
	ID        uuid.UUID
	GroupID   uuid.UUID
	Name      string
	Color     string
	TextColor string
	// ValidFrom is the month the bucket starts existing.
	ValidFrom Month
	// IsInactive marks a soft-closed bucket. The bucket stays queryable
	// for history but stops appearing as active from IsInactiveFrom on.
	IsInactive     bool
	IsInactiveFrom Month
}

// Validate ensures the bucket adheres to domain rules.
func (b *Bucket) Validate() error {
	if b.Name == "" {
		return Validationf("bucket name cannot be empty")
	}
	if b.GroupID == uuid.Nil {
		return Validationf("bucket must belong to a group")
	}
	if b.ValidFrom.IsZero() {
		return Validationf("bucket must have a first valid month")
	}
	if b.IsInactive && b.IsInactiveFrom.IsZero() {
		return Validationf("inactive bucket must have an inactivation month")
	}
	return nil
}

// ActiveIn reports whether the bucket counts as active for the given month:
// it already exists and its inactivation, if any, has not taken effect yet.
// A bucket inactivated in a future month still appears as active for all
// months before that cutover.
func (b *Bucket) ActiveIn(month Month) bool {
	if month.Before(b.ValidFrom) {
		return false
	}
	if b.IsInactive && !b.IsInactiveFrom.After(month) {
		return false
	}
	return true
}
