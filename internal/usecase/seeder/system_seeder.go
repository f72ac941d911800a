package seeder

import (
	"context"

	"github.com/google/uuid"
	"github.com/openbucketeer/backend/internal/domain"
)

// SystemValidFrom is the effective month of the seeded sentinel entities.
// It predates any plausible user data so sentinel version lookups always
// resolve.
var SystemValidFrom = domain.NewMonth(1970, 1)

// SystemSeeder ensures the reserved sentinel entities exist: the system
// group and the Income and Transfer buckets used as catch-all targets for
// unassigned transaction categories.
type SystemSeeder struct {
	Ledger domain.Ledger
	System domain.SystemIDs
}

// NewSystemSeeder creates a new SystemSeeder instance.
func NewSystemSeeder(ledger domain.Ledger, system domain.SystemIDs) *SystemSeeder {
	return &SystemSeeder{Ledger: ledger, System: system}
}

// Seed creates any missing sentinel entity. Existing ones are left alone,
// so running Seed on every startup is safe.
func (s *SystemSeeder) Seed(ctx context.Context) error {
	return s.Ledger.WithinTx(ctx, func(ctx context.Context, tx domain.Ledger) error {
		if _, err := tx.Groups().GetByID(ctx, s.System.GroupID); err != nil {
			if !domain.IsKind(err, domain.KindNotFound) {
				return err
			}
			group := &domain.BucketGroup{
				ID:   s.System.GroupID,
				Name: "System",
				// Position 0 keeps the system group outside the 1..N
				// ordering of user groups.
				Position: 0,
			}
			if err := tx.Groups().Create(ctx, group); err != nil {
				return err
			}
		}

		sentinels := []*domain.Bucket{
			{ID: s.System.IncomeBucketID, Name: "Income"},
			{ID: s.System.TransferBucketID, Name: "Transfer"},
		}
		for _, bucket := range sentinels {
			if _, err := tx.Buckets().GetByID(ctx, bucket.ID); err == nil {
				continue
			} else if !domain.IsKind(err, domain.KindNotFound) {
				return err
			}
			bucket.GroupID = s.System.GroupID
			bucket.ValidFrom = SystemValidFrom
			if err := bucket.Validate(); err != nil {
				return err
			}
			if err := tx.Buckets().Create(ctx, bucket); err != nil {
				return err
			}
			version := &domain.BucketVersion{
				ID:        uuid.New(),
				BucketID:  bucket.ID,
				Version:   1,
				Kind:      domain.VersionKindNone,
				ValidFrom: SystemValidFrom,
			}
			if err := tx.Versions().Create(ctx, version); err != nil {
				return err
			}
		}
		return nil
	})
}
