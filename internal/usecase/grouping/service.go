package grouping

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/openbucketeer/backend/internal/domain"
)

// Service maintains the contiguous position ranking of bucket groups.
// Positions of non-system groups always form the sequence 1..N; the system
// group is excluded from all position arithmetic.
//
// Concurrent callers are not serialized against each other: every operation
// is atomic on its own, but interleaved Move calls from independent callers
// can race to an ordering neither asked for. The store's unit of work keeps
// the sequence contiguous either way.
type Service struct {
	Ledger domain.Ledger
	System domain.SystemIDs
}

// NewService creates a new grouping Service instance.
func NewService(ledger domain.Ledger, system domain.SystemIDs) *Service {
	return &Service{Ledger: ledger, System: system}
}

// List returns all non-system groups ordered by position.
func (s *Service) List(ctx context.Context) ([]*domain.BucketGroup, error) {
	groups, err := s.Ledger.Groups().List(ctx)
	if err != nil {
		return nil, err
	}
	return s.ordered(groups), nil
}

// Create inserts a new group. A non-positive requested position appends the
// group after the last one; otherwise every group at or below the requested
// position is shifted down by one before the insert. All shifts and the
// insert happen in one atomic unit.
func (s *Service) Create(ctx context.Context, name string, requestedPosition int) (*domain.BucketGroup, error) {
	group := &domain.BucketGroup{ID: uuid.New(), Name: name}

	err := s.Ledger.WithinTx(ctx, func(ctx context.Context, tx domain.Ledger) error {
		all, err := tx.Groups().List(ctx)
		if err != nil {
			return err
		}
		others := s.ordered(all)
		count := len(others)

		position := requestedPosition
		if position <= 0 || position > count+1 {
			position = count + 1
		}

		// Make room: shift every group at or below the slot down by one.
		for _, g := range others {
			if g.Position >= position {
				g.Position++
				if err := tx.Groups().Update(ctx, g); err != nil {
					return err
				}
			}
		}

		group.Position = position
		if err := group.Validate(); err != nil {
			return err
		}
		return tx.Groups().Create(ctx, group)
	})
	if err != nil {
		return nil, err
	}
	return group, nil
}

// Delete removes an empty group and closes the position gap it leaves.
// Deleting a group that still owns buckets fails with a constraint error.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if s.System.IsSystemGroup(id) {
		return domain.Conflictf("the system group cannot be deleted")
	}

	return s.Ledger.WithinTx(ctx, func(ctx context.Context, tx domain.Ledger) error {
		group, err := tx.Groups().GetByID(ctx, id)
		if err != nil {
			return err
		}

		buckets, err := tx.Buckets().ListByGroup(ctx, id)
		if err != nil {
			return err
		}
		if len(buckets) > 0 {
			return domain.Constraintf("group %q still contains %d bucket(s)", group.Name, len(buckets))
		}

		if err := tx.Groups().Delete(ctx, id); err != nil {
			return err
		}

		all, err := tx.Groups().List(ctx)
		if err != nil {
			return err
		}
		for _, g := range s.ordered(all) {
			if g.Position > group.Position {
				g.Position--
				if err := tx.Groups().Update(ctx, g); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// Move shifts a group by delta positions, clamped to [1, count]. The group
// is removed from its slot, reinserted at the target, and all non-system
// groups are renumbered 1..N in their new relative order.
func (s *Service) Move(ctx context.Context, id uuid.UUID, delta int) (*domain.BucketGroup, error) {
	if s.System.IsSystemGroup(id) {
		return nil, domain.Conflictf("the system group cannot be moved")
	}

	var moved *domain.BucketGroup
	err := s.Ledger.WithinTx(ctx, func(ctx context.Context, tx domain.Ledger) error {
		group, err := tx.Groups().GetByID(ctx, id)
		if err != nil {
			return err
		}
		moved = group

		all, err := tx.Groups().List(ctx)
		if err != nil {
			return err
		}
		others := s.ordered(all)
		count := len(others)

		target := group.Position + delta
		if target < 1 {
			target = 1
		}
		if target > count {
			target = count
		}
		if target == group.Position {
			return nil
		}

		// Rebuild the ordered list with the group in its new slot, then
		// renumber everything 1..N. The full rewrite is the simplest
		// correct strategy at this entity count.
		reordered := make([]*domain.BucketGroup, 0, count)
		for _, g := range others {
			if g.ID != id {
				reordered = append(reordered, g)
			}
		}
		reordered = append(reordered, nil)
		copy(reordered[target:], reordered[target-1:])
		reordered[target-1] = group

		for i, g := range reordered {
			if g.Position != i+1 {
				g.Position = i + 1
				if err := tx.Groups().Update(ctx, g); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return moved, nil
}

// ordered filters out the system group and sorts the rest by position.
func (s *Service) ordered(groups []*domain.BucketGroup) []*domain.BucketGroup {
	out := make([]*domain.BucketGroup, 0, len(groups))
	for _, g := range groups {
		if !s.System.IsSystemGroup(g.ID) {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}
