package postgres

import (
	"context"

	"github.com/openbucketeer/backend/internal/domain"
)

// Ledger implements domain.Ledger on PostgreSQL. The zero-tx flavor issues
// every repository call directly against the pool; WithinTx hands out a
// flavor bound to one sql.Tx so a multi-row operation commits or rolls
// back as a whole.
type Ledger struct {
	db   *DB
	q    DBTX
	inTx bool
}

// NewLedger creates a new postgres-backed ledger.
func NewLedger(db *DB) *Ledger {
	return &Ledger{db: db, q: db.DB}
}

// WithinTx runs fn inside one database transaction. Nested calls join the
// enclosing transaction.
func (l *Ledger) WithinTx(ctx context.Context, fn func(ctx context.Context, tx domain.Ledger) error) error {
	if l.inTx {
		return fn(ctx, l)
	}

	dbTx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.StorageError("failed to begin unit of work", err)
	}
	defer dbTx.Rollback()

	txLedger := &Ledger{db: l.db, q: dbTx, inTx: true}
	if err := fn(ctx, txLedger); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return domain.StorageError("failed to commit unit of work", err)
	}
	return nil
}

// Groups returns the group repository.
func (l *Ledger) Groups() domain.GroupRepository { return &groupRepository{q: l.q} }

// Buckets returns the bucket repository.
func (l *Ledger) Buckets() domain.BucketRepository { return &bucketRepository{q: l.q} }

// Versions returns the version repository.
func (l *Ledger) Versions() domain.VersionRepository { return &versionRepository{q: l.q} }

// Movements returns the movement repository.
func (l *Ledger) Movements() domain.MovementRepository { return &movementRepository{q: l.q} }

// Budgeted returns the budgeted transaction repository.
func (l *Ledger) Budgeted() domain.BudgetedTransactionRepository { return &budgetedRepository{q: l.q} }

// Rules returns the category rule repository.
func (l *Ledger) Rules() domain.RuleRepository { return &ruleRepository{q: l.q} }
