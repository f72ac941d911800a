package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/openbucketeer/backend/internal/domain"
	"github.com/shopspring/decimal"
)

// versionRepository implements domain.VersionRepository
type versionRepository struct {
	q DBTX
}

// ListByBucket retrieves all versions of a bucket ordered by effective
// month, oldest first.
func (r *versionRepository) ListByBucket(ctx context.Context, bucketID uuid.UUID) ([]*domain.BucketVersion, error) {
	query := `
		SELECT id, bucket_id, version, kind, param, amount, ref_date, notes, valid_from
		FROM bucket_versions
		WHERE bucket_id = $1
		ORDER BY valid_from
	`

	rows, err := r.q.QueryContext(ctx, query, bucketID)
	if err != nil {
		return nil, domain.StorageError("failed to list bucket versions", err)
	}
	defer rows.Close()

	var versions []*domain.BucketVersion
	for rows.Next() {
		var version domain.BucketVersion
		var amountStr string
		var refDate sql.NullTime
		var validFrom time.Time

		err := rows.Scan(
			&version.ID,
			&version.BucketID,
			&version.Version,
			&version.Kind,
			&version.Param,
			&amountStr,
			&refDate,
			&version.Notes,
			&validFrom,
		)
		if err != nil {
			return nil, domain.StorageError("failed to scan bucket version", err)
		}

		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, domain.StorageError("failed to parse version amount", err)
		}
		version.Amount = amount
		if refDate.Valid {
			version.RefDate = refDate.Time
		}
		version.ValidFrom = domain.MonthOf(validFrom)
		versions = append(versions, &version)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StorageError("failed to iterate bucket versions", err)
	}

	return versions, nil
}

// refDateValue converts the optional reference date to its column value.
func refDateValue(version *domain.BucketVersion) any {
	if version.RefDate.IsZero() {
		return nil
	}
	return version.RefDate
}

// Create creates a new version row.
func (r *versionRepository) Create(ctx context.Context, version *domain.BucketVersion) error {
	query := `
		INSERT INTO bucket_versions (id, bucket_id, version, kind, param, amount, ref_date, notes, valid_from)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.q.ExecContext(ctx, query,
		version.ID,
		version.BucketID,
		version.Version,
		string(version.Kind),
		version.Param,
		version.Amount.String(),
		refDateValue(version),
		version.Notes,
		version.ValidFrom.FirstDay(),
	)
	if err != nil {
		return domain.StorageError("failed to create bucket version", err)
	}
	return nil
}

// Update overwrites an existing version row in place.
func (r *versionRepository) Update(ctx context.Context, version *domain.BucketVersion) error {
	query := `
		UPDATE bucket_versions
		SET kind = $2, param = $3, amount = $4, ref_date = $5, notes = $6, valid_from = $7
		WHERE id = $1
	`

	result, err := r.q.ExecContext(ctx, query,
		version.ID,
		string(version.Kind),
		version.Param,
		version.Amount.String(),
		refDateValue(version),
		version.Notes,
		version.ValidFrom.FirstDay(),
	)
	if err != nil {
		return domain.StorageError("failed to update bucket version", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return domain.NotFoundf("bucket version %s not found", version.ID)
	}
	return nil
}

// DeleteByBucket removes all versions of a bucket.
func (r *versionRepository) DeleteByBucket(ctx context.Context, bucketID uuid.UUID) error {
	query := `DELETE FROM bucket_versions WHERE bucket_id = $1`

	if _, err := r.q.ExecContext(ctx, query, bucketID); err != nil {
		return domain.StorageError("failed to delete bucket versions", err)
	}
	return nil
}
