// Package distribution applies each bucket's monthly target ("want") as a
// ledger movement in bulk, one movement per wanting bucket, all created as
// a single atomic batch.
package distribution

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/openbucketeer/backend/internal/domain"
)

// Service performs bulk budget distribution.
type Service struct {
	Ledger domain.Ledger
	System domain.SystemIDs
}

// NewService creates a new distribution Service instance.
func NewService(ledger domain.Ledger, system domain.SystemIDs) *Service {
	return &Service{Ledger: ledger, System: system}
}

// Distribute creates one movement dated on the month's first day for every
// active non-system bucket whose current version wants a positive amount.
// The whole batch commits or aborts together; a failure partway leaves no
// partial distribution behind. Balances are not consulted or updated here —
// callers recompute figures afterwards.
//
// Returns the number of movements created.
func (s *Service) Distribute(ctx context.Context, month domain.Month) (int, error) {
	created := 0
	err := s.Ledger.WithinTx(ctx, func(ctx context.Context, tx domain.Ledger) error {
		buckets, err := tx.Buckets().List(ctx)
		if err != nil {
			return err
		}
		// Stable movement order keeps range inserts deterministic.
		sort.Slice(buckets, func(i, j int) bool { return buckets[i].Name < buckets[j].Name })

		movements := make([]*domain.BucketMovement, 0, len(buckets))
		for _, b := range buckets {
			if s.System.IsSystemBucket(b.ID) || !b.ActiveIn(month) {
				continue
			}
			versions, err := tx.Versions().ListByBucket(ctx, b.ID)
			if err != nil {
				return err
			}
			current := domain.CurrentVersion(versions, month)
			if current == nil {
				continue
			}
			want := current.Want()
			if !want.IsPositive() {
				continue
			}
			movements = append(movements, &domain.BucketMovement{
				ID:       uuid.New(),
				BucketID: b.ID,
				Amount:   want,
				Date:     month.FirstDay(),
			})
		}
		if len(movements) == 0 {
			return nil
		}
		if err := tx.Movements().CreateBatch(ctx, movements); err != nil {
			return err
		}
		created = len(movements)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}
