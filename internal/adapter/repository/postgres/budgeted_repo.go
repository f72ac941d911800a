package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/openbucketeer/backend/internal/domain"
	"github.com/shopspring/decimal"
)

// budgetedRepository implements domain.BudgetedTransactionRepository.
// The rows are owned by the external transaction pipeline; this adapter
// only reads them.
type budgetedRepository struct {
	q DBTX
}

// ListByBucketBefore retrieves all assignments to a bucket whose underlying
// transaction date is strictly before the cutoff.
func (r *budgetedRepository) ListByBucketBefore(ctx context.Context, bucketID uuid.UUID, cutoff time.Time) ([]*domain.BudgetedTransaction, error) {
	query := `
		SELECT id, bucket_id, amount, transaction_date
		FROM budgeted_transactions
		WHERE bucket_id = $1 AND transaction_date < $2
		ORDER BY transaction_date
	`

	rows, err := r.q.QueryContext(ctx, query, bucketID, cutoff)
	if err != nil {
		return nil, domain.StorageError("failed to list budgeted transactions", err)
	}
	defer rows.Close()

	var transactions []*domain.BudgetedTransaction
	for rows.Next() {
		var t domain.BudgetedTransaction
		var amountStr string

		if err := rows.Scan(&t.ID, &t.BucketID, &amountStr, &t.TransactionDate); err != nil {
			return nil, domain.StorageError("failed to scan budgeted transaction", err)
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, domain.StorageError("failed to parse transaction amount", err)
		}
		t.Amount = amount
		transactions = append(transactions, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StorageError("failed to iterate budgeted transactions", err)
	}

	return transactions, nil
}

// CountByBucket returns the number of assignments referencing a bucket.
func (r *budgetedRepository) CountByBucket(ctx context.Context, bucketID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM budgeted_transactions WHERE bucket_id = $1`

	var count int
	if err := r.q.QueryRowContext(ctx, query, bucketID).Scan(&count); err != nil {
		return 0, domain.StorageError("failed to count budgeted transactions", err)
	}
	return count, nil
}
