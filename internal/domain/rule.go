package domain

import (
	"github.com/google/uuid"
)

// CategoryRule maps transaction attributes to a target bucket. The external
// rule engine owns matching and mutation; this engine only cascades rule
// deletion when the target bucket is removed.
type CategoryRule struct {
	ID             uuid.UUID
	TargetBucketID uuid.UUID
	FieldName      string
	Comparison     string
	Pattern        string
}
