package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/openbucketeer/backend/internal/domain"
)

// ruleRepository implements domain.RuleRepository. The rule engine owns the
// rows; the ledger only cascades deletion when a target bucket is removed.
type ruleRepository struct {
	q DBTX
}

// DeleteByTargetBucket removes every rule targeting the given bucket.
func (r *ruleRepository) DeleteByTargetBucket(ctx context.Context, bucketID uuid.UUID) error {
	query := `DELETE FROM category_rules WHERE target_bucket_id = $1`

	if _, err := r.q.ExecContext(ctx, query, bucketID); err != nil {
		return domain.StorageError("failed to delete category rules", err)
	}
	return nil
}
