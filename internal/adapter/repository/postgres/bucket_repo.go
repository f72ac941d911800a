package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/openbucketeer/backend/internal/domain"
)

// bucketRepository implements domain.BucketRepository
type bucketRepository struct {
	q DBTX
}

const bucketColumns = `id, group_id, name, color, text_color, valid_from, is_inactive, is_inactive_from`

// scanBucket scans one bucket row. Month columns are stored as the first
// day of the month in a DATE column.
func scanBucket(scan func(dest ...any) error) (*domain.Bucket, error) {
	var bucket domain.Bucket
	var validFrom time.Time
	var inactiveFrom sql.NullTime

	err := scan(
		&bucket.ID,
		&bucket.GroupID,
		&bucket.Name,
		&bucket.Color,
		&bucket.TextColor,
		&validFrom,
		&bucket.IsInactive,
		&inactiveFrom,
	)
	if err != nil {
		return nil, err
	}

	bucket.ValidFrom = domain.MonthOf(validFrom)
	if inactiveFrom.Valid {
		bucket.IsInactiveFrom = domain.MonthOf(inactiveFrom.Time)
	}
	return &bucket, nil
}

// inactiveFromValue converts the optional inactivation month to its column
// value.
func inactiveFromValue(bucket *domain.Bucket) any {
	if bucket.IsInactiveFrom.IsZero() {
		return nil
	}
	return bucket.IsInactiveFrom.FirstDay()
}

// GetByID retrieves a bucket by its ID.
func (r *bucketRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Bucket, error) {
	query := `SELECT ` + bucketColumns + ` FROM buckets WHERE id = $1`

	bucket, err := scanBucket(r.q.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundf("bucket %s not found", id)
		}
		return nil, domain.StorageError("failed to get bucket", err)
	}
	return bucket, nil
}

// List retrieves all buckets.
func (r *bucketRepository) List(ctx context.Context) ([]*domain.Bucket, error) {
	query := `SELECT ` + bucketColumns + ` FROM buckets ORDER BY name`
	return r.list(ctx, query)
}

// ListByGroup retrieves all buckets owned by the given group.
func (r *bucketRepository) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*domain.Bucket, error) {
	query := `SELECT ` + bucketColumns + ` FROM buckets WHERE group_id = $1 ORDER BY name`
	return r.list(ctx, query, groupID)
}

func (r *bucketRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Bucket, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.StorageError("failed to list buckets", err)
	}
	defer rows.Close()

	var buckets []*domain.Bucket
	for rows.Next() {
		bucket, err := scanBucket(rows.Scan)
		if err != nil {
			return nil, domain.StorageError("failed to scan bucket", err)
		}
		buckets = append(buckets, bucket)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StorageError("failed to iterate buckets", err)
	}
	return buckets, nil
}

// Create creates a new bucket.
func (r *bucketRepository) Create(ctx context.Context, bucket *domain.Bucket) error {
	query := `
		INSERT INTO buckets (id, group_id, name, color, text_color, valid_from, is_inactive, is_inactive_from)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.q.ExecContext(ctx, query,
		bucket.ID,
		bucket.GroupID,
		bucket.Name,
		bucket.Color,
		bucket.TextColor,
		bucket.ValidFrom.FirstDay(),
		bucket.IsInactive,
		inactiveFromValue(bucket),
	)
	if err != nil {
		return domain.StorageError("failed to create bucket", err)
	}
	return nil
}

// Update persists changes to an existing bucket.
func (r *bucketRepository) Update(ctx context.Context, bucket *domain.Bucket) error {
	query := `
		UPDATE buckets
		SET group_id = $2, name = $3, color = $4, text_color = $5, valid_from = $6, is_inactive = $7, is_inactive_from = $8
		WHERE id = $1
	`

	result, err := r.q.ExecContext(ctx, query,
		bucket.ID,
		bucket.GroupID,
		bucket.Name,
		bucket.Color,
		bucket.TextColor,
		bucket.ValidFrom.FirstDay(),
		bucket.IsInactive,
		inactiveFromValue(bucket),
	)
	if err != nil {
		return domain.StorageError("failed to update bucket", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return domain.NotFoundf("bucket %s not found", bucket.ID)
	}
	return nil
}

// Delete removes a bucket.
func (r *bucketRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM buckets WHERE id = $1`

	result, err := r.q.ExecContext(ctx, query, id)
	if err != nil {
		return domain.StorageError("failed to delete bucket", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return domain.NotFoundf("bucket %s not found", id)
	}
	return nil
}
