package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BucketMovement is a manual ledger entry against a bucket, not derived
// from a bank transaction (budget distribution, transfers between buckets,
// corrections). Movements are only ever created or deleted, never updated.
type BucketMovement struct {
	ID       uuid.UUID
	BucketID uuid.UUID
	// Amount is signed: positive moves money into the bucket.
	Amount decimal.Decimal
	Date   time.Time
}

// Validate ensures the movement adheres to domain rules.
func (m *BucketMovement) Validate() error {
	if m.BucketID == uuid.Nil {
		return Validationf("bucket movement must belong to a bucket")
	}
	if m.Date.IsZero() {
		return Validationf("bucket movement must have a date")
	}
	return nil
}

// BudgetedTransaction links an external bank transaction to a bucket with a
// possibly partial signed amount, so one transaction can be split across
// buckets. The external transaction pipeline owns these rows; the engine
// only reads them for aggregation and existence checks.
type BudgetedTransaction struct {
	ID       uuid.UUID
	BucketID uuid.UUID
	// Amount is the signed share of the transaction assigned to the bucket.
	Amount decimal.Decimal
	// TransactionDate is the underlying bank transaction's date.
	TransactionDate time.Time
}
