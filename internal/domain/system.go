package domain

import (
	"github.com/google/uuid"
)

// Well-known identifiers for the reserved system entities. Deployments
// normally use these, but the engine only ever sees the SystemIDs it was
// constructed with, so tests can substitute their own.
var (
	DefaultSystemGroupID    = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	DefaultIncomeBucketID   = uuid.MustParse("00000000-0000-0000-0000-000000000002")
	DefaultTransferBucketID = uuid.MustParse("00000000-0000-0000-0000-000000000003")
)

// SystemIDs names the reserved sentinel entities: the system group and the
// Income and Transfer buckets used as targets for unassigned transaction
// categories. They are excluded from ordinary listing, ordering and
// lifecycle logic.
type SystemIDs struct {
	GroupID          uuid.UUID
	IncomeBucketID   uuid.UUID
	TransferBucketID uuid.UUID
}

// DefaultSystemIDs returns the well-known sentinel identifiers.
func DefaultSystemIDs() SystemIDs {
	return SystemIDs{
		GroupID:          DefaultSystemGroupID,
		IncomeBucketID:   DefaultIncomeBucketID,
		TransferBucketID: DefaultTransferBucketID,
	}
}

// IsSystemGroup reports whether id is the reserved system group.
func (s SystemIDs) IsSystemGroup(id uuid.UUID) bool {
	return id == s.GroupID
}

// IsSystemBucket reports whether id is one of the reserved system buckets.
func (s SystemIDs) IsSystemBucket(id uuid.UUID) bool {
	return id == s.IncomeBucketID || id == s.TransferBucketID
}
