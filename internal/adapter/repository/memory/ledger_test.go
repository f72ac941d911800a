package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/openbucketeer/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithinTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger()
	boom := errors.New("boom")

	kept := &domain.BucketGroup{ID: uuid.New(), Name: "Kept", Position: 1}
	require.NoError(t, ledger.Groups().Create(ctx, kept))

	err := ledger.WithinTx(ctx, func(ctx context.Context, tx domain.Ledger) error {
		if err := tx.Groups().Create(ctx, &domain.BucketGroup{ID: uuid.New(), Name: "Discarded", Position: 2}); err != nil {
			return err
		}
		kept.Name = "Renamed"
		if err := tx.Groups().Update(ctx, kept); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	groups, listErr := ledger.Groups().List(ctx)
	require.NoError(t, listErr)
	require.Len(t, groups, 1)
	assert.Equal(t, "Kept", groups[0].Name)
}

func TestWithinTx_CommitsOnSuccess(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger()

	err := ledger.WithinTx(ctx, func(ctx context.Context, tx domain.Ledger) error {
		return tx.Groups().Create(ctx, &domain.BucketGroup{ID: uuid.New(), Name: "Spending", Position: 1})
	})
	require.NoError(t, err)

	groups, err := ledger.Groups().List(ctx)
	require.NoError(t, err)
	assert.Len(t, groups, 1)
}

func TestWithinTx_NestedJoinsOuterUnit(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger()
	boom := errors.New("boom")

	err := ledger.WithinTx(ctx, func(ctx context.Context, tx domain.Ledger) error {
		if err := tx.Groups().Create(ctx, &domain.BucketGroup{ID: uuid.New(), Name: "Outer", Position: 1}); err != nil {
			return err
		}
		// The inner unit is part of the outer one: its writes fall with it.
		if err := tx.WithinTx(ctx, func(ctx context.Context, inner domain.Ledger) error {
			return inner.Groups().Create(ctx, &domain.BucketGroup{ID: uuid.New(), Name: "Inner", Position: 2})
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	groups, listErr := ledger.Groups().List(ctx)
	require.NoError(t, listErr)
	assert.Empty(t, groups)
}

func TestRepositories_ReturnCopies(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger()

	group := &domain.BucketGroup{ID: uuid.New(), Name: "Spending", Position: 1}
	require.NoError(t, ledger.Groups().Create(ctx, group))

	// Mutating what we stored or what we read must not touch the ledger.
	group.Name = "Mutated"
	fetched, err := ledger.Groups().GetByID(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, "Spending", fetched.Name)

	fetched.Name = "Also mutated"
	again, err := ledger.Groups().GetByID(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, "Spending", again.Name)
}

func TestCreate_DuplicateIDFails(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger()

	group := &domain.BucketGroup{ID: uuid.New(), Name: "Spending", Position: 1}
	require.NoError(t, ledger.Groups().Create(ctx, group))
	err := ledger.Groups().Create(ctx, group)
	assert.True(t, domain.IsKind(err, domain.KindStorage))
}

func TestUpdateAndDelete_MissingRowsAreNotFound(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger()

	missing := &domain.BucketGroup{ID: uuid.New(), Name: "Ghost", Position: 1}
	assert.True(t, domain.IsKind(ledger.Groups().Update(ctx, missing), domain.KindNotFound))
	assert.True(t, domain.IsKind(ledger.Groups().Delete(ctx, missing.ID), domain.KindNotFound))
	assert.True(t, domain.IsKind(ledger.Movements().Delete(ctx, uuid.New()), domain.KindNotFound))

	_, err := ledger.Buckets().GetByID(ctx, uuid.New())
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestListByGroup_FiltersBuckets(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger()
	groupID := uuid.New()

	for _, name := range []string{"A", "B"} {
		require.NoError(t, ledger.Buckets().Create(ctx, &domain.Bucket{
			ID:        uuid.New(),
			GroupID:   groupID,
			Name:      name,
			ValidFrom: domain.MustParseMonth("2024-01"),
		}))
	}
	require.NoError(t, ledger.Buckets().Create(ctx, &domain.Bucket{
		ID:        uuid.New(),
		GroupID:   uuid.New(),
		Name:      "Elsewhere",
		ValidFrom: domain.MustParseMonth("2024-01"),
	}))

	buckets, err := ledger.Buckets().ListByGroup(ctx, groupID)
	require.NoError(t, err)
	assert.Len(t, buckets, 2)
}

func TestDeleteByBucket_RemovesAllVersions(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger()
	bucketID := uuid.New()

	for i := 1; i <= 3; i++ {
		require.NoError(t, ledger.Versions().Create(ctx, &domain.BucketVersion{
			ID:        uuid.New(),
			BucketID:  bucketID,
			Version:   i,
			Kind:      domain.VersionKindNone,
			ValidFrom: domain.NewMonth(2024, 1).AddMonths(i),
		}))
	}

	require.NoError(t, ledger.Versions().DeleteByBucket(ctx, bucketID))
	versions, err := ledger.Versions().ListByBucket(ctx, bucketID)
	require.NoError(t, err)
	assert.Empty(t, versions)
}
