package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VersionKind is the type code of a bucket version. It governs how the
// three typed parameters (Param, Amount, RefDate) are interpreted.
type VersionKind string

const (
	// VersionKindNone carries no monthly target.
	VersionKindNone VersionKind = "NONE"
	// VersionKindFixed targets a fixed amount per month (Amount).
	VersionKindFixed VersionKind = "FIXED"
	// VersionKindPercent targets a percentage of monthly income
	// (Param, 0-100). The external rule engine applies it; the engine
	// only stores and validates it.
	VersionKindPercent VersionKind = "PERCENT"
	// VersionKindRecurring estimates a recurring expense: Amount every
	// Param months, next due on RefDate.
	VersionKindRecurring VersionKind = "RECURRING"
)

// BucketVersion is one temporally-scoped snapshot of a bucket's parameters.
// Versions are ordered by ValidFrom with strictly increasing version
// numbers; the version with the greatest ValidFrom not exceeding a query
// month is the one in effect for that month.
type BucketVersion struct {
	ID       uuid.UUID
	BucketID uuid.UUID
	// Version starts at 1 for the bucket's first version and increases
	// by one with every appended version.
	Version int
	Kind    VersionKind
	Param   int
	Amount  decimal.Decimal
	RefDate time.Time
	Notes   string
	// ValidFrom is the month this version becomes effective.
	ValidFrom Month
}

// Validate ensures the version adheres to domain rules.
func (v *BucketVersion) Validate() error {
	if v.BucketID == uuid.Nil {
		return Validationf("bucket version must belong to a bucket")
	}
	if v.Version < 1 {
		return Validationf("bucket version number must be positive")
	}
	if v.ValidFrom.IsZero() {
		return Validationf("bucket version must have an effective month")
	}
	switch v.Kind {
	case VersionKindNone:
	case VersionKindFixed:
		if v.Amount.IsNegative() {
			return Validationf("fixed target amount cannot be negative")
		}
	case VersionKindPercent:
		if v.Param < 0 || v.Param > 100 {
			return Validationf("percentage must be between 0 and 100")
		}
	case VersionKindRecurring:
		if v.Param <= 0 {
			return Validationf("recurrence interval must be positive")
		}
		if v.Amount.IsNegative() {
			return Validationf("recurring expense estimate cannot be negative")
		}
	default:
		return Validationf("unknown bucket version kind %q", v.Kind)
	}
	return nil
}

// Want returns the monthly target amount this version asks for during
// budget distribution, zero if the kind carries none.
func (v *BucketVersion) Want() decimal.Decimal {
	switch v.Kind {
	case VersionKindFixed, VersionKindRecurring:
		return v.Amount
	default:
		return decimal.Zero
	}
}

// CurrentVersion resolves which of the given versions is in effect for the
// query month: the one with the greatest ValidFrom not exceeding it.
// Returns nil if no version is effective yet.
func CurrentVersion(versions []*BucketVersion, month Month) *BucketVersion {
	var current *BucketVersion
	for _, v := range versions {
		if v.ValidFrom.After(month) {
			continue
		}
		if current == nil || v.ValidFrom.After(current.ValidFrom) {
			current = v
		}
	}
	return current
}
