package versioning

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/openbucketeer/backend/internal/domain"
	"github.com/shopspring/decimal"
)

// VersionInput carries the parameter set for one bucket version.
type VersionInput struct {
	Kind      domain.VersionKind
	Param     int
	Amount    decimal.Decimal
	RefDate   time.Time
	Notes     string
	ValidFrom domain.Month
}

// CreateBucketInput represents the input for creating a bucket together
// with its initial version.
type CreateBucketInput struct {
	Name      string
	GroupID   uuid.UUID
	Color     string
	TextColor string
	ValidFrom domain.Month
	Version   VersionInput
}

// UpdateBucketInput represents the input for editing a bucket's display
// fields and parameters for a new (or the current) effective month.
type UpdateBucketInput struct {
	BucketID  uuid.UUID
	Name      string
	GroupID   uuid.UUID
	Color     string
	TextColor string
	Version   VersionInput
}

// ActiveBucket is a bucket annotated with the version in effect for the
// query month.
type ActiveBucket struct {
	Bucket  *domain.Bucket
	Version *domain.BucketVersion
}

// Service manages buckets and their temporal parameter history.
type Service struct {
	Ledger domain.Ledger
	System domain.SystemIDs
}

// NewService creates a new versioning Service instance.
func NewService(ledger domain.Ledger, system domain.SystemIDs) *Service {
	return &Service{Ledger: ledger, System: system}
}

// CreateBucket persists a new bucket and its initial version as one atomic
// write. The initial version number is forced to 1 regardless of input.
func (s *Service) CreateBucket(ctx context.Context, input CreateBucketInput) (*domain.Bucket, error) {
	bucket := &domain.Bucket{
		ID:        uuid.New(),
		GroupID:   input.GroupID,
		Name:      input.Name,
		Color:     input.Color,
		TextColor: input.TextColor,
		ValidFrom: input.ValidFrom,
	}
	if err := bucket.Validate(); err != nil {
		return nil, err
	}

	validFrom := input.Version.ValidFrom
	if validFrom.IsZero() {
		validFrom = input.ValidFrom
	}
	version := &domain.BucketVersion{
		ID:        uuid.New(),
		BucketID:  bucket.ID,
		Version:   1,
		Kind:      input.Version.Kind,
		Param:     input.Version.Param,
		Amount:    input.Version.Amount,
		RefDate:   input.Version.RefDate,
		Notes:     input.Version.Notes,
		ValidFrom: validFrom,
	}
	if version.Kind == "" {
		version.Kind = domain.VersionKindNone
	}
	if err := version.Validate(); err != nil {
		return nil, err
	}
	if version.ValidFrom.After(bucket.ValidFrom) {
		return nil, domain.Validationf("initial version cannot become effective after the bucket's first month")
	}

	err := s.Ledger.WithinTx(ctx, func(ctx context.Context, tx domain.Ledger) error {
		if _, err := tx.Groups().GetByID(ctx, input.GroupID); err != nil {
			return err
		}
		if err := tx.Buckets().Create(ctx, bucket); err != nil {
			return err
		}
		return tx.Versions().Create(ctx, version)
	})
	if err != nil {
		return nil, err
	}
	return bucket, nil
}

// CurrentVersion returns the version of a bucket in effect for the query
// month: the one with the greatest effective month not exceeding it.
func (s *Service) CurrentVersion(ctx context.Context, bucketID uuid.UUID, month domain.Month) (*domain.BucketVersion, error) {
	versions, err := s.Ledger.Versions().ListByBucket(ctx, bucketID)
	if err != nil {
		return nil, err
	}
	current := domain.CurrentVersion(versions, month)
	if current == nil {
		return nil, domain.NotFoundf("bucket %s has no version effective in %s", bucketID, month)
	}
	return current, nil
}

// UpdateBucket edits a bucket's fields and parameters. When the new
// effective month equals the latest version's, that version is overwritten
// in place; any other (later) effective month appends a new permanent
// version row with the next version number. An effective month before the
// latest version's is rejected, so version numbers stay aligned with
// effective-month order.
func (s *Service) UpdateBucket(ctx context.Context, input UpdateBucketInput) (*domain.Bucket, error) {
	var bucket *domain.Bucket
	err := s.Ledger.WithinTx(ctx, func(ctx context.Context, tx domain.Ledger) error {
		var err error
		bucket, err = tx.Buckets().GetByID(ctx, input.BucketID)
		if err != nil {
			return err
		}

		if input.Name != "" {
			bucket.Name = input.Name
		}
		if input.GroupID != uuid.Nil {
			if _, err := tx.Groups().GetByID(ctx, input.GroupID); err != nil {
				return err
			}
			bucket.GroupID = input.GroupID
		}
		if input.Color != "" {
			bucket.Color = input.Color
		}
		if input.TextColor != "" {
			bucket.TextColor = input.TextColor
		}
		if err := bucket.Validate(); err != nil {
			return err
		}
		if err := tx.Buckets().Update(ctx, bucket); err != nil {
			return err
		}

		versions, err := tx.Versions().ListByBucket(ctx, input.BucketID)
		if err != nil {
			return err
		}
		if len(versions) == 0 {
			return domain.NotFoundf("bucket %s has no versions", input.BucketID)
		}
		latest := versions[len(versions)-1]

		validFrom := input.Version.ValidFrom
		if validFrom.IsZero() {
			validFrom = latest.ValidFrom
		}
		if validFrom.Before(latest.ValidFrom) {
			return domain.Validationf("effective month %s is before the latest version's %s", validFrom, latest.ValidFrom)
		}

		if validFrom == latest.ValidFrom {
			// Edit within the same effective month: overwrite in place,
			// version number unchanged.
			latest.Kind = input.Version.Kind
			latest.Param = input.Version.Param
			latest.Amount = input.Version.Amount
			latest.RefDate = input.Version.RefDate
			latest.Notes = input.Version.Notes
			if err := latest.Validate(); err != nil {
				return err
			}
			return tx.Versions().Update(ctx, latest)
		}

		next := &domain.BucketVersion{
			ID:        uuid.New(),
			BucketID:  input.BucketID,
			Version:   latest.Version + 1,
			Kind:      input.Version.Kind,
			Param:     input.Version.Param,
			Amount:    input.Version.Amount,
			RefDate:   input.Version.RefDate,
			Notes:     input.Version.Notes,
			ValidFrom: validFrom,
		}
		if err := next.Validate(); err != nil {
			return err
		}
		return tx.Versions().Create(ctx, next)
	})
	if err != nil {
		return nil, err
	}
	return bucket, nil
}

// ActiveBuckets returns every non-system bucket active in the query month,
// each annotated with its current version.
func (s *Service) ActiveBuckets(ctx context.Context, month domain.Month) ([]ActiveBucket, error) {
	buckets, err := s.Ledger.Buckets().List(ctx)
	if err != nil {
		return nil, err
	}

	active := make([]ActiveBucket, 0, len(buckets))
	for _, b := range buckets {
		if s.System.IsSystemBucket(b.ID) || !b.ActiveIn(month) {
			continue
		}
		version, err := s.CurrentVersion(ctx, b.ID, month)
		if err != nil {
			return nil, err
		}
		active = append(active, ActiveBucket{Bucket: b, Version: version})
	}
	return active, nil
}
