// Package balance computes point-in-time balances and monthly in/out
// figures from the two ledger entry sources: budgeted transactions and
// manual bucket movements. All sums use decimal arithmetic; floating point
// never touches an amount.
package balance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/openbucketeer/backend/internal/domain"
	"github.com/shopspring/decimal"
)

// Figures holds the aggregation results for one bucket and query month.
// Balance is cumulative over all history up to and including the month;
// Input and Output cover only entries dated within the month itself.
// Balance is nil when the caller asked for the in/out-only variant.
type Figures struct {
	Balance *decimal.Decimal
	Input   decimal.Decimal
	Output  decimal.Decimal
}

// Service computes balance figures against a ledger store.
type Service struct {
	Ledger domain.Ledger
}

// NewService creates a new balance Service instance.
func NewService(ledger domain.Ledger) *Service {
	return &Service{Ledger: ledger}
}

// Balance returns the cumulative balance of a bucket at the end of the
// query month: the sum of every budgeted transaction and movement dated
// before the first day of the following month.
func (s *Service) Balance(ctx context.Context, bucketID uuid.UUID, month domain.Month) (decimal.Decimal, error) {
	figures, err := s.Figures(ctx, bucketID, month, true)
	if err != nil {
		return decimal.Zero, err
	}
	return *figures.Balance, nil
}

// InAndOut returns the month's two running totals: every entry dated within
// the query month with a negative amount accumulates into output, every
// non-negative one into input.
func (s *Service) InAndOut(ctx context.Context, bucketID uuid.UUID, month domain.Month) (input, output decimal.Decimal, err error) {
	figures, err := s.Figures(ctx, bucketID, month, false)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return figures.Input, figures.Output, nil
}

// Figures combines both computations in one pass over one query per entry
// source. When withBalance is false the cumulative balance is skipped and
// left nil in the result.
func (s *Service) Figures(ctx context.Context, bucketID uuid.UUID, month domain.Month, withBalance bool) (Figures, error) {
	return Compute(ctx, s.Ledger, bucketID, month, withBalance)
}

// Compute is the aggregation itself, usable against any ledger — in
// particular the transactional view inside another service's unit of work.
func Compute(ctx context.Context, store domain.Ledger, bucketID uuid.UUID, month domain.Month, withBalance bool) (Figures, error) {
	if _, err := store.Buckets().GetByID(ctx, bucketID); err != nil {
		return Figures{}, err
	}

	// Everything dated before the first day of the following month is in
	// scope; the month's own entries are the subset that feeds in/out.
	cutoff := month.NextMonth().FirstDay()

	transactions, err := store.Budgeted().ListByBucketBefore(ctx, bucketID, cutoff)
	if err != nil {
		return Figures{}, err
	}
	movements, err := store.Movements().ListByBucketBefore(ctx, bucketID, cutoff)
	if err != nil {
		return Figures{}, err
	}

	var figures Figures
	total := decimal.Zero
	for _, t := range transactions {
		total = total.Add(t.Amount)
		figures.tally(t.Amount, t.TransactionDate, month)
	}
	for _, m := range movements {
		total = total.Add(m.Amount)
		figures.tally(m.Amount, m.Date, month)
	}
	if withBalance {
		figures.Balance = &total
	}
	return figures, nil
}

// tally adds the amount to the month's input or output total when the entry
// is dated within the query month.
func (f *Figures) tally(amount decimal.Decimal, date time.Time, month domain.Month) {
	if !month.Contains(date) {
		return
	}
	if amount.IsNegative() {
		f.Output = f.Output.Add(amount)
	} else {
		f.Input = f.Input.Add(amount)
	}
}
