package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/openbucketeer/backend/internal/domain"
	"github.com/shopspring/decimal"
)

// movementRepository implements domain.MovementRepository
type movementRepository struct {
	q DBTX
}

// ListByBucketBefore retrieves all movements of a bucket dated strictly
// before the cutoff.
func (r *movementRepository) ListByBucketBefore(ctx context.Context, bucketID uuid.UUID, cutoff time.Time) ([]*domain.BucketMovement, error) {
	query := `
		SELECT id, bucket_id, amount, movement_date
		FROM bucket_movements
		WHERE bucket_id = $1 AND movement_date < $2
		ORDER BY movement_date
	`

	rows, err := r.q.QueryContext(ctx, query, bucketID, cutoff)
	if err != nil {
		return nil, domain.StorageError("failed to list bucket movements", err)
	}
	defer rows.Close()

	var movements []*domain.BucketMovement
	for rows.Next() {
		var movement domain.BucketMovement
		var amountStr string

		if err := rows.Scan(&movement.ID, &movement.BucketID, &amountStr, &movement.Date); err != nil {
			return nil, domain.StorageError("failed to scan bucket movement", err)
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, domain.StorageError("failed to parse movement amount", err)
		}
		movement.Amount = amount
		movements = append(movements, &movement)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StorageError("failed to iterate bucket movements", err)
	}

	return movements, nil
}

// CountByBucket returns the number of movements referencing a bucket.
func (r *movementRepository) CountByBucket(ctx context.Context, bucketID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM bucket_movements WHERE bucket_id = $1`

	var count int
	if err := r.q.QueryRowContext(ctx, query, bucketID).Scan(&count); err != nil {
		return 0, domain.StorageError("failed to count bucket movements", err)
	}
	return count, nil
}

// Create creates a single movement.
func (r *movementRepository) Create(ctx context.Context, movement *domain.BucketMovement) error {
	query := `
		INSERT INTO bucket_movements (id, bucket_id, amount, movement_date)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.q.ExecContext(ctx, query,
		movement.ID,
		movement.BucketID,
		movement.Amount.String(),
		movement.Date,
	)
	if err != nil {
		return domain.StorageError("failed to create bucket movement", err)
	}
	return nil
}

// CreateBatch creates several movements as one range insert. Callers run
// this inside a unit of work, so a failure partway aborts the whole batch.
func (r *movementRepository) CreateBatch(ctx context.Context, movements []*domain.BucketMovement) error {
	for _, movement := range movements {
		if err := r.Create(ctx, movement); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a movement.
func (r *movementRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM bucket_movements WHERE id = $1`

	result, err := r.q.ExecContext(ctx, query, id)
	if err != nil {
		return domain.StorageError("failed to delete bucket movement", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return domain.NotFoundf("bucket movement %s not found", id)
	}
	return nil
}
