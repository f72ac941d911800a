// Package memory implements the ledger store with in-memory maps. It backs
// tests and the dev storage backend; the unit-of-work contract is honored
// by snapshotting state before a unit and restoring it on error.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/openbucketeer/backend/internal/domain"
)

var errDuplicateID = errors.New("duplicate id")

// Ledger implements domain.Ledger with in-memory storage.
type Ledger struct {
	mu   *sync.RWMutex
	s    *state
	inTx bool
}

type state struct {
	groups    map[uuid.UUID]*domain.BucketGroup
	buckets   map[uuid.UUID]*domain.Bucket
	versions  map[uuid.UUID]*domain.BucketVersion
	movements map[uuid.UUID]*domain.BucketMovement
	budgeted  map[uuid.UUID]*domain.BudgetedTransaction
	rules     map[uuid.UUID]*domain.CategoryRule
}

func newState() *state {
	return &state{
		groups:    make(map[uuid.UUID]*domain.BucketGroup),
		buckets:   make(map[uuid.UUID]*domain.Bucket),
		versions:  make(map[uuid.UUID]*domain.BucketVersion),
		movements: make(map[uuid.UUID]*domain.BucketMovement),
		budgeted:  make(map[uuid.UUID]*domain.BudgetedTransaction),
		rules:     make(map[uuid.UUID]*domain.CategoryRule),
	}
}

// Entries are stored and returned by value-copy, so a shallow map clone is
// a complete snapshot.
func (s *state) clone() *state {
	c := newState()
	for k, v := range s.groups {
		c.groups[k] = v
	}
	for k, v := range s.buckets {
		c.buckets[k] = v
	}
	for k, v := range s.versions {
		c.versions[k] = v
	}
	for k, v := range s.movements {
		c.movements[k] = v
	}
	for k, v := range s.budgeted {
		c.budgeted[k] = v
	}
	for k, v := range s.rules {
		c.rules[k] = v
	}
	return c
}

// NewLedger creates a new empty in-memory ledger.
func NewLedger() *Ledger {
	return &Ledger{mu: &sync.RWMutex{}, s: newState()}
}

// WithinTx runs fn against a view of the ledger that holds the write lock
// for the whole unit. On error the pre-unit snapshot is restored, so a
// failed unit leaves no visible state. Nested calls join the outer unit.
func (l *Ledger) WithinTx(ctx context.Context, fn func(ctx context.Context, tx domain.Ledger) error) error {
	if l.inTx {
		return fn(ctx, l)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	snapshot := l.s.clone()
	tx := &Ledger{mu: l.mu, s: l.s, inTx: true}
	if err := fn(ctx, tx); err != nil {
		*l.s = *snapshot
		return err
	}
	return nil
}

func (l *Ledger) rlock() {
	if !l.inTx {
		l.mu.RLock()
	}
}

func (l *Ledger) runlock() {
	if !l.inTx {
		l.mu.RUnlock()
	}
}

func (l *Ledger) lock() {
	if !l.inTx {
		l.mu.Lock()
	}
}

func (l *Ledger) unlock() {
	if !l.inTx {
		l.mu.Unlock()
	}
}

// Groups returns the group repository.
func (l *Ledger) Groups() domain.GroupRepository { return &groupRepo{l} }

// Buckets returns the bucket repository.
func (l *Ledger) Buckets() domain.BucketRepository { return &bucketRepo{l} }

// Versions returns the version repository.
func (l *Ledger) Versions() domain.VersionRepository { return &versionRepo{l} }

// Movements returns the movement repository.
func (l *Ledger) Movements() domain.MovementRepository { return &movementRepo{l} }

// Budgeted returns the budgeted transaction repository.
func (l *Ledger) Budgeted() domain.BudgetedTransactionRepository { return &budgetedRepo{l} }

// Rules returns the category rule repository.
func (l *Ledger) Rules() domain.RuleRepository { return &ruleRepo{l} }

// AddBudgetedTransaction inserts an assignment row, standing in for the
// external transaction pipeline that owns them in a real deployment.
func (l *Ledger) AddBudgetedTransaction(t *domain.BudgetedTransaction) {
	l.lock()
	defer l.unlock()
	cp := *t
	l.s.budgeted[t.ID] = &cp
}

// AddRule inserts a categorization rule, standing in for the external rule
// engine that owns them in a real deployment.
func (l *Ledger) AddRule(r *domain.CategoryRule) {
	l.lock()
	defer l.unlock()
	cp := *r
	l.s.rules[r.ID] = &cp
}

// RuleCount returns the number of stored categorization rules.
func (l *Ledger) RuleCount() int {
	l.rlock()
	defer l.runlock()
	return len(l.s.rules)
}

type groupRepo struct{ l *Ledger }

func (r *groupRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.BucketGroup, error) {
	r.l.rlock()
	defer r.l.runlock()
	g, ok := r.l.s.groups[id]
	if !ok {
		return nil, domain.NotFoundf("bucket group %s not found", id)
	}
	cp := *g
	return &cp, nil
}

func (r *groupRepo) List(ctx context.Context) ([]*domain.BucketGroup, error) {
	r.l.rlock()
	defer r.l.runlock()
	out := make([]*domain.BucketGroup, 0, len(r.l.s.groups))
	for _, g := range r.l.s.groups {
		cp := *g
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *groupRepo) Create(ctx context.Context, group *domain.BucketGroup) error {
	r.l.lock()
	defer r.l.unlock()
	if _, ok := r.l.s.groups[group.ID]; ok {
		return domain.StorageError("create bucket group", errDuplicateID)
	}
	cp := *group
	r.l.s.groups[group.ID] = &cp
	return nil
}

func (r *groupRepo) Update(ctx context.Context, group *domain.BucketGroup) error {
	r.l.lock()
	defer r.l.unlock()
	if _, ok := r.l.s.groups[group.ID]; !ok {
		return domain.NotFoundf("bucket group %s not found", group.ID)
	}
	cp := *group
	r.l.s.groups[group.ID] = &cp
	return nil
}

func (r *groupRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.l.lock()
	defer r.l.unlock()
	if _, ok := r.l.s.groups[id]; !ok {
		return domain.NotFoundf("bucket group %s not found", id)
	}
	delete(r.l.s.groups, id)
	return nil
}

type bucketRepo struct{ l *Ledger }

func (r *bucketRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Bucket, error) {
	r.l.rlock()
	defer r.l.runlock()
	b, ok := r.l.s.buckets[id]
	if !ok {
		return nil, domain.NotFoundf("bucket %s not found", id)
	}
	cp := *b
	return &cp, nil
}

func (r *bucketRepo) List(ctx context.Context) ([]*domain.Bucket, error) {
	r.l.rlock()
	defer r.l.runlock()
	out := make([]*domain.Bucket, 0, len(r.l.s.buckets))
	for _, b := range r.l.s.buckets {
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *bucketRepo) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*domain.Bucket, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, b := range all {
		if b.GroupID == groupID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *bucketRepo) Create(ctx context.Context, bucket *domain.Bucket) error {
	r.l.lock()
	defer r.l.unlock()
	if _, ok := r.l.s.buckets[bucket.ID]; ok {
		return domain.StorageError("create bucket", errDuplicateID)
	}
	cp := *bucket
	r.l.s.buckets[bucket.ID] = &cp
	return nil
}

func (r *bucketRepo) Update(ctx context.Context, bucket *domain.Bucket) error {
	r.l.lock()
	defer r.l.unlock()
	if _, ok := r.l.s.buckets[bucket.ID]; !ok {
		return domain.NotFoundf("bucket %s not found", bucket.ID)
	}
	cp := *bucket
	r.l.s.buckets[bucket.ID] = &cp
	return nil
}

func (r *bucketRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.l.lock()
	defer r.l.unlock()
	if _, ok := r.l.s.buckets[id]; !ok {
		return domain.NotFoundf("bucket %s not found", id)
	}
	delete(r.l.s.buckets, id)
	return nil
}

type versionRepo struct{ l *Ledger }

func (r *versionRepo) ListByBucket(ctx context.Context, bucketID uuid.UUID) ([]*domain.BucketVersion, error) {
	r.l.rlock()
	defer r.l.runlock()
	out := make([]*domain.BucketVersion, 0)
	for _, v := range r.l.s.versions {
		if v.BucketID == bucketID {
			cp := *v
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ValidFrom.Before(out[j].ValidFrom)
	})
	return out, nil
}

func (r *versionRepo) Create(ctx context.Context, version *domain.BucketVersion) error {
	r.l.lock()
	defer r.l.unlock()
	if _, ok := r.l.s.versions[version.ID]; ok {
		return domain.StorageError("create bucket version", errDuplicateID)
	}
	cp := *version
	r.l.s.versions[version.ID] = &cp
	return nil
}

func (r *versionRepo) Update(ctx context.Context, version *domain.BucketVersion) error {
	r.l.lock()
	defer r.l.unlock()
	if _, ok := r.l.s.versions[version.ID]; !ok {
		return domain.NotFoundf("bucket version %s not found", version.ID)
	}
	cp := *version
	r.l.s.versions[version.ID] = &cp
	return nil
}

func (r *versionRepo) DeleteByBucket(ctx context.Context, bucketID uuid.UUID) error {
	r.l.lock()
	defer r.l.unlock()
	for id, v := range r.l.s.versions {
		if v.BucketID == bucketID {
			delete(r.l.s.versions, id)
		}
	}
	return nil
}

type movementRepo struct{ l *Ledger }

func (r *movementRepo) ListByBucketBefore(ctx context.Context, bucketID uuid.UUID, cutoff time.Time) ([]*domain.BucketMovement, error) {
	r.l.rlock()
	defer r.l.runlock()
	out := make([]*domain.BucketMovement, 0)
	for _, m := range r.l.s.movements {
		if m.BucketID == bucketID && m.Date.Before(cutoff) {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *movementRepo) CountByBucket(ctx context.Context, bucketID uuid.UUID) (int, error) {
	r.l.rlock()
	defer r.l.runlock()
	n := 0
	for _, m := range r.l.s.movements {
		if m.BucketID == bucketID {
			n++
		}
	}
	return n, nil
}

func (r *movementRepo) Create(ctx context.Context, movement *domain.BucketMovement) error {
	r.l.lock()
	defer r.l.unlock()
	if _, ok := r.l.s.movements[movement.ID]; ok {
		return domain.StorageError("create bucket movement", errDuplicateID)
	}
	cp := *movement
	r.l.s.movements[movement.ID] = &cp
	return nil
}

func (r *movementRepo) CreateBatch(ctx context.Context, movements []*domain.BucketMovement) error {
	for _, m := range movements {
		if err := r.Create(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (r *movementRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.l.lock()
	defer r.l.unlock()
	if _, ok := r.l.s.movements[id]; !ok {
		return domain.NotFoundf("bucket movement %s not found", id)
	}
	delete(r.l.s.movements, id)
	return nil
}

type budgetedRepo struct{ l *Ledger }

func (r *budgetedRepo) ListByBucketBefore(ctx context.Context, bucketID uuid.UUID, cutoff time.Time) ([]*domain.BudgetedTransaction, error) {
	r.l.rlock()
	defer r.l.runlock()
	out := make([]*domain.BudgetedTransaction, 0)
	for _, t := range r.l.s.budgeted {
		if t.BucketID == bucketID && t.TransactionDate.Before(cutoff) {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TransactionDate.Before(out[j].TransactionDate) })
	return out, nil
}

func (r *budgetedRepo) CountByBucket(ctx context.Context, bucketID uuid.UUID) (int, error) {
	r.l.rlock()
	defer r.l.runlock()
	n := 0
	for _, t := range r.l.s.budgeted {
		if t.BucketID == bucketID {
			n++
		}
	}
	return n, nil
}

type ruleRepo struct{ l *Ledger }

func (r *ruleRepo) DeleteByTargetBucket(ctx context.Context, bucketID uuid.UUID) error {
	r.l.lock()
	defer r.l.unlock()
	for id, rule := range r.l.s.rules {
		if rule.TargetBucketID == bucketID {
			delete(r.l.s.rules, id)
		}
	}
	return nil
}
