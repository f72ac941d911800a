package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// GroupRepository defines the interface for bucket group persistence.
type GroupRepository interface {
	// GetByID retrieves a group by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*BucketGroup, error)

	// List retrieves all groups, including the system group, ordered by
	// position.
	List(ctx context.Context) ([]*BucketGroup, error)

	// Create creates a new group.
	Create(ctx context.Context, group *BucketGroup) error

	// Update persists changes to an existing group.
	Update(ctx context.Context, group *BucketGroup) error

	// Delete removes a group.
	Delete(ctx context.Context, id uuid.UUID) error
}

// BucketRepository defines the interface for bucket persistence.
type BucketRepository interface {
	// GetByID retrieves a bucket by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*Bucket, error)

	// List retrieves all buckets.
	List(ctx context.Context) ([]*Bucket, error)

	// ListByGroup retrieves all buckets owned by the given group.
	ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*Bucket, error)

	// Create creates a new bucket.
	Create(ctx context.Context, bucket *Bucket) error

	// Update persists changes to an existing bucket.
	Update(ctx context.Context, bucket *Bucket) error

	// Delete removes a bucket.
	Delete(ctx context.Context, id uuid.UUID) error
}

// VersionRepository defines the interface for bucket version persistence.
type VersionRepository interface {
	// ListByBucket retrieves all versions of a bucket ordered by
	// effective month, oldest first.
	ListByBucket(ctx context.Context, bucketID uuid.UUID) ([]*BucketVersion, error)

	// Create creates a new version row.
	Create(ctx context.Context, version *BucketVersion) error

	// Update overwrites an existing version row in place.
	Update(ctx context.Context, version *BucketVersion) error

	// DeleteByBucket removes all versions of a bucket.
	DeleteByBucket(ctx context.Context, bucketID uuid.UUID) error
}

// MovementRepository defines the interface for bucket movement persistence.
// Movements are insert/delete only; there is no update.
type MovementRepository interface {
	// ListByBucketBefore retrieves all movements of a bucket dated
	// strictly before the cutoff, oldest first.
	ListByBucketBefore(ctx context.Context, bucketID uuid.UUID, cutoff time.Time) ([]*BucketMovement, error)

	// CountByBucket returns the number of movements referencing a bucket.
	CountByBucket(ctx context.Context, bucketID uuid.UUID) (int, error)

	// Create creates a single movement.
	Create(ctx context.Context, movement *BucketMovement) error

	// CreateBatch creates several movements as one range insert.
	CreateBatch(ctx context.Context, movements []*BucketMovement) error

	// Delete removes a movement.
	Delete(ctx context.Context, id uuid.UUID) error
}

// BudgetedTransactionRepository defines the read-only interface to the
// bucket assignments owned by the external transaction pipeline.
type BudgetedTransactionRepository interface {
	// ListByBucketBefore retrieves all assignments to a bucket whose
	// underlying transaction date is strictly before the cutoff.
	ListByBucketBefore(ctx context.Context, bucketID uuid.UUID, cutoff time.Time) ([]*BudgetedTransaction, error)

	// CountByBucket returns the number of assignments referencing a bucket.
	CountByBucket(ctx context.Context, bucketID uuid.UUID) (int, error)
}

// RuleRepository defines the cascade surface into the external rule engine's
// storage: rules targeting a removed bucket are deleted with it.
type RuleRepository interface {
	// DeleteByTargetBucket removes every rule targeting the given bucket.
	DeleteByTargetBucket(ctx context.Context, bucketID uuid.UUID) error
}

// Ledger is the store boundary the engine operates against: one repository
// per entity plus the ability to span several repository calls with one
// atomic unit of work.
type Ledger interface {
	Groups() GroupRepository
	Buckets() BucketRepository
	Versions() VersionRepository
	Movements() MovementRepository
	Budgeted() BudgetedTransactionRepository
	Rules() RuleRepository

	// WithinTx runs fn inside one atomic unit of work. Every repository
	// call made through the Ledger passed to fn joins that unit; if fn
	// returns an error all of its writes are rolled back and the error
	// is returned unchanged. Nested calls join the enclosing unit.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Ledger) error) error
}
