package integration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/openbucketeer/backend/internal/adapter/repository/memory"
	"github.com/openbucketeer/backend/internal/domain"
	"github.com/openbucketeer/backend/internal/usecase/balance"
	"github.com/openbucketeer/backend/internal/usecase/distribution"
	"github.com/openbucketeer/backend/internal/usecase/grouping"
	"github.com/openbucketeer/backend/internal/usecase/lifecycle"
	"github.com/openbucketeer/backend/internal/usecase/seeder"
	"github.com/openbucketeer/backend/internal/usecase/versioning"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type engine struct {
	ledger       *memory.Ledger
	grouping     *grouping.Service
	versioning   *versioning.Service
	balance      *balance.Service
	lifecycle    *lifecycle.Service
	distribution *distribution.Service
}

func newEngine(t *testing.T) *engine {
	t.Helper()
	ledger := memory.NewLedger()
	system := domain.DefaultSystemIDs()
	require.NoError(t, seeder.NewSystemSeeder(ledger, system).Seed(context.Background()))
	return &engine{
		ledger:       ledger,
		grouping:     grouping.NewService(ledger, system),
		versioning:   versioning.NewService(ledger, system),
		balance:      balance.NewService(ledger),
		lifecycle:    lifecycle.NewService(ledger, system),
		distribution: distribution.NewService(ledger, system),
	}
}

// A full budgeting cycle: set up groups and buckets, distribute a month's
// budget, spend against it, check the figures, and wind a bucket down.
func TestBudgetingCycle(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)

	spending, err := e.grouping.Create(ctx, "Spending", 0)
	require.NoError(t, err)
	_, err = e.grouping.Create(ctx, "Savings", 0)
	require.NoError(t, err)

	groceries, err := e.versioning.CreateBucket(ctx, versioning.CreateBucketInput{
		Name:      "Groceries",
		GroupID:   spending.ID,
		ValidFrom: domain.MustParseMonth("2024-01"),
		Version: versioning.VersionInput{
			Kind:   domain.VersionKindFixed,
			Amount: decimal.NewFromInt(300),
		},
	})
	require.NoError(t, err)

	rent, err := e.versioning.CreateBucket(ctx, versioning.CreateBucketInput{
		Name:      "Rent",
		GroupID:   spending.ID,
		ValidFrom: domain.MustParseMonth("2024-01"),
		Version: versioning.VersionInput{
			Kind:   domain.VersionKindFixed,
			Amount: decimal.NewFromInt(850),
		},
	})
	require.NoError(t, err)

	january := domain.MustParseMonth("2024-01")
	created, err := e.distribution.Distribute(ctx, january)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	// Spend against the groceries envelope mid-month.
	e.ledger.AddBudgetedTransaction(&domain.BudgetedTransaction{
		ID:              uuid.New(),
		BucketID:        groceries.ID,
		Amount:          decimal.NewFromInt(-120),
		TransactionDate: time.Date(2024, time.January, 14, 0, 0, 0, 0, time.UTC),
	})

	figures, err := e.balance.Figures(ctx, groceries.ID, january, true)
	require.NoError(t, err)
	require.NotNil(t, figures.Balance)
	assert.True(t, figures.Balance.Equal(decimal.NewFromInt(180)))
	assert.True(t, figures.Input.Equal(decimal.NewFromInt(300)))
	assert.True(t, figures.Output.Equal(decimal.NewFromInt(-120)))

	// Raise the rent from February; January's figure is untouched.
	_, err = e.versioning.UpdateBucket(ctx, versioning.UpdateBucketInput{
		BucketID: rent.ID,
		Version: versioning.VersionInput{
			Kind:      domain.VersionKindFixed,
			Amount:    decimal.NewFromInt(900),
			ValidFrom: domain.MustParseMonth("2024-02"),
		},
	})
	require.NoError(t, err)

	february := domain.MustParseMonth("2024-02")
	created, err = e.distribution.Distribute(ctx, february)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	rentBalance, err := e.balance.Balance(ctx, rent.ID, february)
	require.NoError(t, err)
	assert.True(t, rentBalance.Equal(decimal.NewFromInt(1750)), "850 + 900, got %s", rentBalance)

	// Wind groceries down: drain it, then close it in February.
	require.NoError(t, e.ledger.Movements().Create(ctx, &domain.BucketMovement{
		ID:       uuid.New(),
		BucketID: groceries.ID,
		Amount:   decimal.NewFromInt(-480),
		Date:     time.Date(2024, time.February, 20, 0, 0, 0, 0, time.UTC),
	}))

	result, err := e.lifecycle.Close(ctx, groceries.ID, february)
	require.NoError(t, err)
	assert.False(t, result.Deleted)
	assert.Equal(t, domain.MustParseMonth("2024-03"), result.InactiveFrom)

	// February still lists the closed bucket, March does not.
	active, err := e.versioning.ActiveBuckets(ctx, february)
	require.NoError(t, err)
	assert.Len(t, active, 2)
	active, err = e.versioning.ActiveBuckets(ctx, domain.MustParseMonth("2024-03"))
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Rent", active[0].Bucket.Name)

	// March distribution skips the closed bucket.
	created, err = e.distribution.Distribute(ctx, domain.MustParseMonth("2024-03"))
	require.NoError(t, err)
	assert.Equal(t, 1, created)
}

// Deleting a group only works once its buckets are gone, and positions
// close up around the removal.
func TestGroupTeardown(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)

	first, err := e.grouping.Create(ctx, "First", 0)
	require.NoError(t, err)
	second, err := e.grouping.Create(ctx, "Second", 0)
	require.NoError(t, err)
	third, err := e.grouping.Create(ctx, "Third", 0)
	require.NoError(t, err)

	bucket, err := e.versioning.CreateBucket(ctx, versioning.CreateBucketInput{
		Name:      "Holidays",
		GroupID:   second.ID,
		ValidFrom: domain.MustParseMonth("2024-01"),
		Version: versioning.VersionInput{
			Kind:   domain.VersionKindFixed,
			Amount: decimal.NewFromInt(50),
		},
	})
	require.NoError(t, err)

	err = e.grouping.Delete(ctx, second.ID)
	assert.True(t, domain.IsKind(err, domain.KindConstraint))

	require.NoError(t, e.lifecycle.Delete(ctx, bucket.ID))
	require.NoError(t, e.grouping.Delete(ctx, second.ID))

	groups, err := e.grouping.List(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, first.ID, groups[0].ID)
	assert.Equal(t, 1, groups[0].Position)
	assert.Equal(t, third.ID, groups[1].ID)
	assert.Equal(t, 2, groups[1].Position)
}

// The seeded sentinels are invisible to ordering and untouchable by the
// lifecycle operations.
func TestSystemSentinelsAreShielded(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	system := domain.DefaultSystemIDs()

	groups, err := e.grouping.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, groups, "system group must not appear in user listings")

	err = e.grouping.Delete(ctx, system.GroupID)
	assert.True(t, domain.IsKind(err, domain.KindConflict))

	_, err = e.lifecycle.Close(ctx, system.IncomeBucketID, domain.ThisMonth())
	assert.True(t, domain.IsKind(err, domain.KindConflict))
	err = e.lifecycle.Delete(ctx, system.TransferBucketID)
	assert.True(t, domain.IsKind(err, domain.KindConflict))

	// Income can still be used as a balance target.
	e.ledger.AddBudgetedTransaction(&domain.BudgetedTransaction{
		ID:              uuid.New(),
		BucketID:        system.IncomeBucketID,
		Amount:          decimal.NewFromInt(2500),
		TransactionDate: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	})
	bal, err := e.balance.Balance(ctx, system.IncomeBucketID, domain.MustParseMonth("2024-01"))
	require.NoError(t, err)
	assert.True(t, bal.Equal(decimal.NewFromInt(2500)))
}
