// Package lifecycle implements the bucket close/delete state machine:
// Active buckets soft-close into an Inactive state once their balance is
// zero, and are removed entirely only when nothing references them.
package lifecycle

import (
	"context"

	"github.com/google/uuid"
	"github.com/openbucketeer/backend/internal/domain"
	"github.com/openbucketeer/backend/internal/usecase/balance"
)

// CloseResult reports what Close did to the bucket.
type CloseResult struct {
	// Deleted is true when the bucket had no ledger history at all and
	// was hard-deleted outright instead of being marked inactive.
	Deleted bool
	// InactiveFrom is the month the inactivation takes effect; zero when
	// the bucket was deleted.
	InactiveFrom domain.Month
}

// Service governs bucket close and delete transitions.
type Service struct {
	Ledger domain.Ledger
	System domain.SystemIDs
}

// NewService creates a new lifecycle Service instance.
func NewService(ledger domain.Ledger, system domain.SystemIDs) *Service {
	return &Service{Ledger: ledger, System: system}
}

// Close closes a bucket effective at the end of the given month. The
// bucket's balance at that month must be exactly zero. A bucket that never
// accumulated any ledger entries is hard-deleted outright; otherwise it is
// marked inactive from the following month so that past months keep
// showing it. Closing an already inactive or system bucket is a state
// conflict.
func (s *Service) Close(ctx context.Context, bucketID uuid.UUID, month domain.Month) (CloseResult, error) {
	if s.System.IsSystemBucket(bucketID) {
		return CloseResult{}, domain.Conflictf("system buckets cannot be closed")
	}

	var result CloseResult
	err := s.Ledger.WithinTx(ctx, func(ctx context.Context, tx domain.Ledger) error {
		bucket, err := tx.Buckets().GetByID(ctx, bucketID)
		if err != nil {
			return err
		}
		if bucket.IsInactive {
			return domain.Conflictf("bucket %q is already closed", bucket.Name)
		}

		bal, err := balance.Compute(ctx, tx, bucketID, month, true)
		if err != nil {
			return err
		}
		if !bal.Balance.IsZero() {
			return domain.Validationf("bucket %q has a balance of %s in %s, it must be zero to close", bucket.Name, bal.Balance, month)
		}

		transactions, err := tx.Budgeted().CountByBucket(ctx, bucketID)
		if err != nil {
			return err
		}
		movements, err := tx.Movements().CountByBucket(ctx, bucketID)
		if err != nil {
			return err
		}
		if transactions == 0 && movements == 0 {
			// Nothing ever touched the bucket: no history worth keeping,
			// skip the inactive state entirely.
			result.Deleted = true
			return s.remove(ctx, tx, bucketID)
		}

		bucket.IsInactive = true
		bucket.IsInactiveFrom = month.NextMonth()
		result.InactiveFrom = bucket.IsInactiveFrom
		return tx.Buckets().Update(ctx, bucket)
	})
	if err != nil {
		return CloseResult{}, err
	}
	return result, nil
}

// Delete hard-deletes a bucket together with its whole version history and
// any categorization rules targeting it. A bucket referenced by any
// budgeted transaction or movement cannot be deleted, regardless of its
// lifecycle state.
func (s *Service) Delete(ctx context.Context, bucketID uuid.UUID) error {
	if s.System.IsSystemBucket(bucketID) {
		return domain.Conflictf("system buckets cannot be deleted")
	}

	return s.Ledger.WithinTx(ctx, func(ctx context.Context, tx domain.Ledger) error {
		bucket, err := tx.Buckets().GetByID(ctx, bucketID)
		if err != nil {
			return err
		}

		transactions, err := tx.Budgeted().CountByBucket(ctx, bucketID)
		if err != nil {
			return err
		}
		if transactions > 0 {
			return domain.Constraintf("bucket %q is referenced by %d budgeted transaction(s)", bucket.Name, transactions)
		}
		movements, err := tx.Movements().CountByBucket(ctx, bucketID)
		if err != nil {
			return err
		}
		if movements > 0 {
			return domain.Constraintf("bucket %q is referenced by %d movement(s)", bucket.Name, movements)
		}

		return s.remove(ctx, tx, bucketID)
	})
}

// remove deletes the bucket, its versions and the rules targeting it inside
// the caller's unit of work.
func (s *Service) remove(ctx context.Context, tx domain.Ledger, bucketID uuid.UUID) error {
	if err := tx.Versions().DeleteByBucket(ctx, bucketID); err != nil {
		return err
	}
	if err := tx.Rules().DeleteByTargetBucket(ctx, bucketID); err != nil {
		return err
	}
	return tx.Buckets().Delete(ctx, bucketID)
}
