package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/textileledger/internal/domain"
)

// ItemFilter narrows item listings.
type ItemFilter struct {
	Kind   domain.ItemKind
	Active *bool
	Limit  int
	Offset int
}

// ItemRepository defines data access for items.
type ItemRepository interface {
	Create(ctx context.Context, tx Transaction, item *domain.Item) error
	GetByID(ctx context.Context, id string) (*domain.Item, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Item, error)
	GetByName(ctx context.Context, kind domain.ItemKind, name string) (*domain.Item, error)
	Update(ctx context.Context, tx Transaction, item *domain.Item) error
	Delete(ctx context.Context, tx Transaction, id string) error
	List(ctx context.Context, filter ItemFilter) ([]*domain.Item, error)
	CountChildren(ctx context.Context, id string) (int64, error)
}

// TransactionRepository defines data access for ledger transactions.
type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction, t *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	// Latest returns the newest transaction of an item ordered by date then id,
	// or nil when the item has none.
	Latest(ctx context.Context, tx Transaction, itemID string) (*domain.Transaction, error)
	ListByItem(ctx context.Context, itemID string, limit, offset int) ([]*domain.Transaction, error)
	// History returns every transaction of an item ordered by date then id ascending.
	History(ctx context.Context, itemID string) ([]*domain.Transaction, error)
	CountByItem(ctx context.Context, itemID string) (int64, error)
	// LastCode returns the greatest code starting with dayPrefix, "" if none.
	LastCode(ctx context.Context, tx Transaction, dayPrefix string) (string, error)
	// LockCodeSequence serialises code allocation for dayPrefix until tx ends.
	LockCodeSequence(ctx context.Context, tx Transaction, dayPrefix string) error
}

// StakeholderRepository defines data access for stakeholders.
type StakeholderRepository interface {
	Create(ctx context.Context, s *domain.Stakeholder) error
	GetByID(ctx context.Context, id string) (*domain.Stakeholder, error)
	GetByName(ctx context.Context, name string) (*domain.Stakeholder, error)
	Update(ctx context.Context, s *domain.Stakeholder) error
	List(ctx context.Context, limit, offset int) ([]*domain.Stakeholder, error)
}

// PackagingStyleRepository defines data access for packaging styles.
type PackagingStyleRepository interface {
	Create(ctx context.Context, p *domain.PackagingStyle) error
	GetByID(ctx context.Context, id string) (*domain.PackagingStyle, error)
	GetByName(ctx context.Context, name string) (*domain.PackagingStyle, error)
	Update(ctx context.Context, p *domain.PackagingStyle) error
	List(ctx context.Context, limit, offset int) ([]*domain.PackagingStyle, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient database conflicts.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Clock supplies the server time.
type Clock interface {
	Now() time.Time
}

// BalanceCache caches the latest balance of an item.
type BalanceCache interface {
	Get(ctx context.Context, itemID string) (*domain.Balance, error)
	// Set stores balance unless an entry with a greater version is cached.
	// version is domain.BalanceVersion of the transaction balance came from.
	Set(ctx context.Context, itemID string, balance domain.Balance, version string) error
	Invalidate(ctx context.Context, itemID string) error
}

// LedgerMetrics records ledger activity.
type LedgerMetrics interface {
	MovementRecorded(kind domain.ItemKind, direction domain.Direction, quantity decimal.Decimal)
	MovementRejected(kind domain.ItemKind, reason string)
	BalanceReset(kind domain.ItemKind)
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
