package mocks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iho/textileledger/internal/domain"
	"github.com/iho/textileledger/internal/usecase"
)

// Store is an in-memory backing for the usecase repositories. Writes made
// through a StoreTx become visible on Commit. GetByIDForUpdate and
// LockCodeSequence hold per-key locks until the transaction ends, the same
// way row locks and advisory locks behave in Postgres.
type Store struct {
	mu           sync.Mutex
	items        map[string]*domain.Item
	transactions []*domain.Transaction
	stakeholders map[string]*domain.Stakeholder
	packaging    map[string]*domain.PackagingStyle
	outbox       []*domain.OutboxEvent
	audit        []*domain.AuditLog
	locks        map[string]*sync.Mutex
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		items:        make(map[string]*domain.Item),
		stakeholders: make(map[string]*domain.Stakeholder),
		packaging:    make(map[string]*domain.PackagingStyle),
		locks:        make(map[string]*sync.Mutex),
	}
}

func (s *Store) lockFor(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

// Transactions returns a copy of every committed ledger transaction.
func (s *Store) Transactions() []*domain.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*domain.Transaction(nil), s.transactions...)
}

// OutboxEvents returns a copy of every committed outbox event.
func (s *Store) OutboxEvents() []*domain.OutboxEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*domain.OutboxEvent(nil), s.outbox...)
}

// AuditLogs returns a copy of every audit entry.
func (s *Store) AuditLogs() []*domain.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*domain.AuditLog(nil), s.audit...)
}

// PutItem stores an item directly, outside any transaction.
func (s *Store) PutItem(item *domain.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *item
	s.items[item.ID] = &cp
}

// PutTransaction stores a transaction directly, outside any transaction.
func (s *Store) PutTransaction(t *domain.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = append(s.transactions, t)
}

// StoreTx is a Store transaction.
type StoreTx struct {
	store   *Store
	pending []func()
	held    []*sync.Mutex
	done    bool

	CommitErr error
}

func (tx *StoreTx) hold(l *sync.Mutex) {
	l.Lock()
	tx.held = append(tx.held, l)
}

func (tx *StoreTx) release() {
	for i := len(tx.held) - 1; i >= 0; i-- {
		tx.held[i].Unlock()
	}
	tx.held = nil
	tx.pending = nil
	tx.done = true
}

// Commit applies the pending writes and releases every held lock.
func (tx *StoreTx) Commit(ctx context.Context) error {
	if tx.done {
		return fmt.Errorf("transaction already closed")
	}
	if tx.CommitErr != nil {
		tx.release()
		return tx.CommitErr
	}

	tx.store.mu.Lock()
	for _, apply := range tx.pending {
		apply()
	}
	tx.store.mu.Unlock()

	tx.release()
	return nil
}

// Rollback drops the pending writes. Calling it after Commit is a no-op.
func (tx *StoreTx) Rollback(ctx context.Context) error {
	if tx.done {
		return nil
	}
	tx.release()
	return nil
}

func (tx *StoreTx) enqueue(apply func()) {
	tx.pending = append(tx.pending, apply)
}

func asStoreTx(tx usecase.Transaction) *StoreTx {
	if st, ok := tx.(*StoreTx); ok {
		return st
	}
	return nil
}

// StoreTxManager begins Store transactions.
type StoreTxManager struct {
	Store *Store

	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

// Begin starts a new transaction.
func (m *StoreTxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &StoreTx{store: m.Store}, nil
}

// StoreItemRepository implements usecase.ItemRepository on a Store.
type StoreItemRepository struct {
	Store *Store

	GetByIDFunc func(ctx context.Context, id string) (*domain.Item, error)
}

func (r *StoreItemRepository) Create(ctx context.Context, tx usecase.Transaction, item *domain.Item) error {
	cp := *item
	write := func() { r.Store.items[cp.ID] = &cp }
	if st := asStoreTx(tx); st != nil {
		st.enqueue(write)
		return nil
	}
	r.Store.mu.Lock()
	defer r.Store.mu.Unlock()
	write()
	return nil
}

func (r *StoreItemRepository) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	if r.GetByIDFunc != nil {
		return r.GetByIDFunc(ctx, id)
	}
	r.Store.mu.Lock()
	defer r.Store.mu.Unlock()
	item, ok := r.Store.items[id]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	cp := *item
	return &cp, nil
}

func (r *StoreItemRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Item, error) {
	if st := asStoreTx(tx); st != nil {
		st.hold(r.Store.lockFor("item:" + id))
	}
	return r.GetByID(ctx, id)
}

func (r *StoreItemRepository) GetByName(ctx context.Context, kind domain.ItemKind, name string) (*domain.Item, error) {
	r.Store.mu.Lock()
	defer r.Store.mu.Unlock()
	for _, item := range r.Store.items {
		if item.Kind == kind && strings.EqualFold(item.Name, name) {
			cp := *item
			return &cp, nil
		}
	}
	return nil, domain.ErrItemNotFound
}

func (r *StoreItemRepository) Update(ctx context.Context, tx usecase.Transaction, item *domain.Item) error {
	cp := *item
	write := func() { r.Store.items[cp.ID] = &cp }
	if st := asStoreTx(tx); st != nil {
		st.enqueue(write)
		return nil
	}
	r.Store.mu.Lock()
	defer r.Store.mu.Unlock()
	write()
	return nil
}

func (r *StoreItemRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	write := func() { delete(r.Store.items, id) }
	if st := asStoreTx(tx); st != nil {
		st.enqueue(write)
		return nil
	}
	r.Store.mu.Lock()
	defer r.Store.mu.Unlock()
	write()
	return nil
}

func (r *StoreItemRepository) List(ctx context.Context, filter usecase.ItemFilter) ([]*domain.Item, error) {
	r.Store.mu.Lock()
	defer r.Store.mu.Unlock()

	var out []*domain.Item
	for _, item := range r.Store.items {
		if filter.Kind != "" && item.Kind != filter.Kind {
			continue
		}
		if filter.Active != nil && item.Active != *filter.Active {
			continue
		}
		cp := *item
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return page(out, filter.Limit, filter.Offset), nil
}

func (r *StoreItemRepository) CountChildren(ctx context.Context, id string) (int64, error) {
	r.Store.mu.Lock()
	defer r.Store.mu.Unlock()
	var n int64
	for _, item := range r.Store.items {
		if item.OriginID != nil && *item.OriginID == id {
			n++
		}
	}
	return n, nil
}

// StoreTransactionRepository implements usecase.TransactionRepository on a Store.
type StoreTransactionRepository struct {
	Store *Store

	CreateFunc   func(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error
	LastCodeFunc func(ctx context.Context, tx usecase.Transaction, dayPrefix string) (string, error)
}

func (r *StoreTransactionRepository) Create(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error {
	if r.CreateFunc != nil {
		return r.CreateFunc(ctx, tx, t)
	}

	cp := *t
	write := func() { r.Store.transactions = append(r.Store.transactions, &cp) }
	if st := asStoreTx(tx); st != nil {
		st.enqueue(write)
		return nil
	}
	r.Store.mu.Lock()
	defer r.Store.mu.Unlock()
	write()
	return nil
}

func (r *StoreTransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	r.Store.mu.Lock()
	defer r.Store.mu.Unlock()
	for _, t := range r.Store.transactions {
		if t.ID == id {
			cp := *t
			return &cp, nil
		}
	}
	return nil, domain.ErrTransactionNotFound
}

// history returns the transactions of itemID ordered by date then id.
// Callers hold Store.mu.
func (r *StoreTransactionRepository) history(itemID string) []*domain.Transaction {
	var out []*domain.Transaction
	for _, t := range r.Store.transactions {
		if t.ItemID == itemID {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *StoreTransactionRepository) Latest(ctx context.Context, tx usecase.Transaction, itemID string) (*domain.Transaction, error) {
	r.Store.mu.Lock()
	defer r.Store.mu.Unlock()
	h := r.history(itemID)
	if len(h) == 0 {
		return nil, nil
	}
	return h[len(h)-1], nil
}

func (r *StoreTransactionRepository) ListByItem(ctx context.Context, itemID string, limit, offset int) ([]*domain.Transaction, error) {
	r.Store.mu.Lock()
	defer r.Store.mu.Unlock()
	h := r.history(itemID)
	for i, j := 0, len(h)-1; i < j; i, j = i+1, j-1 {
		h[i], h[j] = h[j], h[i]
	}
	return page(h, limit, offset), nil
}

func (r *StoreTransactionRepository) History(ctx context.Context, itemID string) ([]*domain.Transaction, error) {
	r.Store.mu.Lock()
	defer r.Store.mu.Unlock()
	return r.history(itemID), nil
}

func (r *StoreTransactionRepository) CountByItem(ctx context.Context, itemID string) (int64, error) {
	r.Store.mu.Lock()
	defer r.Store.mu.Unlock()
	return int64(len(r.history(itemID))), nil
}

func (r *StoreTransactionRepository) LastCode(ctx context.Context, tx usecase.Transaction, dayPrefix string) (string, error) {
	if r.LastCodeFunc != nil {
		return r.LastCodeFunc(ctx, tx, dayPrefix)
	}
	r.Store.mu.Lock()
	defer r.Store.mu.Unlock()
	last := ""
	for _, t := range r.Store.transactions {
		if strings.HasPrefix(t.Code, dayPrefix) && t.Code > last {
			last = t.Code
		}
	}
	return last, nil
}

func (r *StoreTransactionRepository) LockCodeSequence(ctx context.Context, tx usecase.Transaction, dayPrefix string) error {
	if st := asStoreTx(tx); st != nil {
		st.hold(r.Store.lockFor("code:" + dayPrefix))
	}
	return nil
}

// StoreStakeholderRepository implements usecase.StakeholderRepository on a Store.
type StoreStakeholderRepository struct {
	Store *Store
}

func (r *StoreStakeholderRepository) Create(ctx context.Context, s *domain.Stakeholder) error {
	r.Store.mu.Lock()
	defer r.Store.mu.Unlock()
	cp := *s
	r.Store.stakeholders[s.ID] = &cp
	return nil
}

func (r *StoreStakeholderRepository) GetByID(ctx context.Context, id string) (*domain.Stakeholder, error) {
	r.Store.mu.Lock()
	defer r.Store.mu.Unlock()
	s, ok := r.Store.stakeholders[id]
	if !ok {
		return nil, domain.ErrStakeholderNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *StoreStakeholderRepository) GetByName(ctx context.Context, name string) (*domain.Stakeholder, error) {
	r.Store.mu.Lock()
	defer r.Store.mu.Unlock()
	for _, s := range r.Store.stakeholders {
		if strings.EqualFold(s.Name, name) {
			cp := *s
			return &cp, nil
		}
	}
	return nil, domain.ErrStakeholderNotFound
}

func (r *StoreStakeholderRepository) Update(ctx context.Context, s *domain.Stakeholder) error {
	return r.Create(ctx, s)
}

func (r *StoreStakeholderRepository) List(ctx context.Context, limit, offset int) ([]*domain.Stakeholder, error) {
	r.Store.mu.Lock()
	defer r.Store.mu.Unlock()
	var out []*domain.Stakeholder
	for _, s := range r.Store.stakeholders {
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, offset), nil
}

// StorePackagingStyleRepository implements usecase.PackagingStyleRepository on a Store.
type StorePackagingStyleRepository struct {
	Store *Store
}

func (r *StorePackagingStyleRepository) Create(ctx context.Context, p *domain.PackagingStyle) error {
	r.Store.mu.Lock()
	defer r.Store.mu.Unlock()
	cp := *p
	r.Store.packaging[p.ID] = &cp
	return nil
}

func (r *StorePackagingStyleRepository) GetByID(ctx context.Context, id string) (*domain.PackagingStyle, error) {
	r.Store.mu.Lock()
	defer r.Store.mu.Unlock()
	p, ok := r.Store.packaging[id]
	if !ok {
		return nil, domain.ErrPackagingStyleNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *StorePackagingStyleRepository) GetByName(ctx context.Context, name string) (*domain.PackagingStyle, error) {
	r.Store.mu.Lock()
	defer r.Store.mu.Unlock()
	for _, p := range r.Store.packaging {
		if strings.EqualFold(p.Name, name) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrPackagingStyleNotFound
}

func (r *StorePackagingStyleRepository) Update(ctx context.Context, p *domain.PackagingStyle) error {
	return r.Create(ctx, p)
}

func (r *StorePackagingStyleRepository) List(ctx context.Context, limit, offset int) ([]*domain.PackagingStyle, error) {
	r.Store.mu.Lock()
	defer r.Store.mu.Unlock()
	var out []*domain.PackagingStyle
	for _, p := range r.Store.packaging {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, offset), nil
}

// StoreOutboxRepository implements usecase.OutboxRepository on a Store.
type StoreOutboxRepository struct {
	Store *Store
}

func (r *StoreOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	cp := *event
	write := func() { r.Store.outbox = append(r.Store.outbox, &cp) }
	if st := asStoreTx(tx); st != nil {
		st.enqueue(write)
		return nil
	}
	r.Store.mu.Lock()
	defer r.Store.mu.Unlock()
	write()
	return nil
}

func (r *StoreOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	r.Store.mu.Lock()
	defer r.Store.mu.Unlock()
	var out []*domain.OutboxEvent
	for _, e := range r.Store.outbox {
		if !e.Published {
			out = append(out, e)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *StoreOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	r.Store.mu.Lock()
	defer r.Store.mu.Unlock()
	for _, e := range r.Store.outbox {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
		}
	}
	return nil
}

// StoreAuditRepository implements usecase.AuditRepository on a Store.
type StoreAuditRepository struct {
	Store *Store
}

func (r *StoreAuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	r.Store.mu.Lock()
	defer r.Store.mu.Unlock()
	r.Store.audit = append(r.Store.audit, log)
	return nil
}

func (r *StoreAuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	r.Store.mu.Lock()
	defer r.Store.mu.Unlock()
	var out []*domain.AuditLog
	for i := len(r.Store.audit) - 1; i >= 0; i-- {
		l := r.Store.audit[i]
		if filter.UserID != "" && l.UserID != filter.UserID {
			continue
		}
		if filter.Action != "" && l.Action != filter.Action {
			continue
		}
		if filter.ResourceType != "" && l.ResourceType != filter.ResourceType {
			continue
		}
		if filter.ResourceID != "" && l.ResourceID != filter.ResourceID {
			continue
		}
		out = append(out, l)
	}
	return page(out, filter.Limit, filter.Offset), nil
}

// SequentialIDGenerator returns zero-padded, increasing IDs so that string
// order matches creation order, as ULIDs do.
type SequentialIDGenerator struct {
	mu      sync.Mutex
	counter int
}

func (g *SequentialIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return fmt.Sprintf("id-%08d", g.counter)
}

// FixedClock is a Clock that returns a settable time.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixedClock creates a FixedClock set to now.
func NewFixedClock(now time.Time) *FixedClock {
	return &FixedClock{now: now}
}

func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// MemoryIdempotencyStore is an in-memory IdempotencyStore.
type MemoryIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

func NewMemoryIdempotencyStore() *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{
		data: make(map[string][]byte),
	}
}

func (m *MemoryIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	if response != nil {
		m.data[key] = response
	} else {
		m.data[key] = []byte("processing")
	}
	return false, nil, nil
}

func (m *MemoryIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}

func page[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all
}
