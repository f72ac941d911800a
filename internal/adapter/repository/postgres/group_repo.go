package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/openbucketeer/backend/internal/domain"
)

// groupRepository implements domain.GroupRepository
type groupRepository struct {
	q DBTX
}

// GetByID retrieves a group by its ID.
func (r *groupRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.BucketGroup, error) {
	query := `
		SELECT id, name, position
		FROM bucket_groups
		WHERE id = $1
	`

	var group domain.BucketGroup
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&group.ID,
		&group.Name,
		&group.Position,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundf("bucket group %s not found", id)
		}
		return nil, domain.StorageError("failed to get bucket group", err)
	}

	return &group, nil
}

// List retrieves all groups ordered by position.
func (r *groupRepository) List(ctx context.Context) ([]*domain.BucketGroup, error) {
	query := `
		SELECT id, name, position
		FROM bucket_groups
		ORDER BY position
	`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, domain.StorageError("failed to list bucket groups", err)
	}
	defer rows.Close()

	var groups []*domain.BucketGroup
	for rows.Next() {
		var group domain.BucketGroup
		if err := rows.Scan(&group.ID, &group.Name, &group.Position); err != nil {
			return nil, domain.StorageError("failed to scan bucket group", err)
		}
		groups = append(groups, &group)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StorageError("failed to iterate bucket groups", err)
	}

	return groups, nil
}

// Create creates a new group.
func (r *groupRepository) Create(ctx context.Context, group *domain.BucketGroup) error {
	query := `
		INSERT INTO bucket_groups (id, name, position)
		VALUES ($1, $2, $3)
	`

	_, err := r.q.ExecContext(ctx, query, group.ID, group.Name, group.Position)
	if err != nil {
		return domain.StorageError("failed to create bucket group", err)
	}
	return nil
}

// Update persists changes to an existing group.
func (r *groupRepository) Update(ctx context.Context, group *domain.BucketGroup) error {
	query := `
		UPDATE bucket_groups
		SET name = $2, position = $3
		WHERE id = $1
	`

	result, err := r.q.ExecContext(ctx, query, group.ID, group.Name, group.Position)
	if err != nil {
		return domain.StorageError("failed to update bucket group", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return domain.NotFoundf("bucket group %s not found", group.ID)
	}
	return nil
}

// Delete removes a group.
func (r *groupRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM bucket_groups WHERE id = $1`

	result, err := r.q.ExecContext(ctx, query, id)
	if err != nil {
		return domain.StorageError("failed to delete bucket group", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return domain.NotFoundf("bucket group %s not found", id)
	}
	return nil
}
