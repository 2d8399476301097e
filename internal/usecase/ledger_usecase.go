package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/textileledger/internal/domain"
)

// LedgerDeps holds the collaborators of a LedgerUseCase.
type LedgerDeps struct {
	TxManager       TransactionManager
	ItemRepo        ItemRepository
	TransactionRepo TransactionRepository
	StakeholderRepo StakeholderRepository
	PackagingRepo   PackagingStyleRepository
	OutboxRepo      OutboxRepository
	AuditRepo       AuditRepository // optional
	Cache           BalanceCache    // optional
	Retrier         Retrier         // optional
	Metrics         LedgerMetrics   // optional
	IDGen           IDGenerator
	Clock           Clock
}

// LedgerUseCase keeps the running balance of one ledger kind (yarn, raw
// material or full warp beam).
type LedgerUseCase struct {
	kind   domain.ItemKind
	prefix string
	deps   LedgerDeps
	codes  *CodeGenerator
}

// NewLedgerUseCase creates a LedgerUseCase for kind.
func NewLedgerUseCase(kind domain.ItemKind, deps LedgerDeps) *LedgerUseCase {
	if deps.Clock == nil {
		deps.Clock = SystemClock{}
	}
	if deps.Metrics == nil {
		deps.Metrics = noopMetrics{}
	}

	return &LedgerUseCase{
		kind:   kind,
		prefix: domain.PrefixFor(kind),
		deps:   deps,
		codes:  NewCodeGenerator(deps.TransactionRepo),
	}
}

// Kind returns the item kind tracked by this ledger.
func (uc *LedgerUseCase) Kind() domain.ItemKind {
	return uc.kind
}

// RecordMovementInput represents a submitted inbound or outbound movement.
type RecordMovementInput struct {
	ItemID           string
	Direction        domain.Direction
	Quantity         decimal.Decimal
	Count            int64
	StakeholderID    *string
	PackagingStyleID *string
	Date             *time.Time
	InternalRef      string
	ExternalRef      string
	Comment          string
}

// RecordMovement validates a movement against the current balance of the item
// and appends a transaction carrying the new balance.
func (uc *LedgerUseCase) RecordMovement(ctx context.Context, input RecordMovementInput) (*domain.Transaction, error) {
	movement, err := domain.NewMovement(input.Direction, input.Quantity, input.Count)
	if err != nil {
		return nil, err
	}

	if err := uc.validateRecordInput(ctx, input); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	actor := domain.ActorFromContext(ctx)
	now := uc.deps.Clock.Now().UTC()

	date := now
	if input.Date != nil {
		date = input.Date.UTC()
	}
	date = date.Truncate(time.Microsecond)

	var recorded *domain.Transaction
	err = uc.retry(ctx, func() error {
		var err error
		recorded, err = uc.writeMovement(ctx, input, movement, actor, now, date)
		return err
	})
	if err != nil {
		uc.deps.Metrics.MovementRejected(uc.kind, rejectReason(err))
		uc.audit(ctx, domain.AuditActionRecord, input.ItemID, nil, err)
		return nil, err
	}

	uc.deps.Metrics.MovementRecorded(uc.kind, movement.Direction(), movement.Quantity())
	uc.cacheBalance(ctx, recorded)
	uc.audit(ctx, domain.AuditActionRecord, recorded.ID, recorded, nil)

	return recorded, nil
}

func (uc *LedgerUseCase) validateRecordInput(ctx context.Context, input RecordMovementInput) error {
	if err := domain.ValidateComment(input.Comment); err != nil {
		return err
	}
	if err := domain.ValidateReference(input.InternalRef); err != nil {
		return err
	}
	if err := domain.ValidateReference(input.ExternalRef); err != nil {
		return err
	}
	if strings.EqualFold(strings.TrimSpace(input.ExternalRef), domain.ResetMarker) {
		return domain.ErrReservedReference
	}

	if input.StakeholderID != nil {
		if _, err := uc.deps.StakeholderRepo.GetByID(ctx, *input.StakeholderID); err != nil {
			return err
		}
	}
	if input.PackagingStyleID != nil {
		if _, err := uc.deps.PackagingRepo.GetByID(ctx, *input.PackagingStyleID); err != nil {
			return err
		}
	}

	return nil
}

func (uc *LedgerUseCase) writeMovement(
	ctx context.Context,
	input RecordMovementInput,
	movement domain.Movement,
	actor domain.Actor,
	now, date time.Time,
) (*domain.Transaction, error) {
	tx, err := uc.deps.TxManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Row lock serialises writers of the same item.
	item, err := uc.deps.ItemRepo.GetByIDForUpdate(ctx, tx, input.ItemID)
	if err != nil {
		return nil, err
	}
	if err := item.CanTransact(uc.kind); err != nil {
		return nil, err
	}

	latest, err := uc.deps.TransactionRepo.Latest(ctx, tx, item.ID)
	if err != nil {
		return nil, err
	}
	if latest != nil && date.Before(latest.Date) {
		return nil, domain.ErrBackdatedMovement
	}

	previous := domain.BalanceFrom(latest)
	if err := previous.Validate(movement); err != nil {
		return nil, err
	}
	next := previous.Apply(movement)

	code, err := uc.codes.Next(ctx, tx, uc.prefix, now)
	if err != nil {
		return nil, err
	}

	t := &domain.Transaction{
		ID:               uc.deps.IDGen.Generate(),
		Code:             code,
		InternalRef:      strings.TrimSpace(input.InternalRef),
		ExternalRef:      strings.TrimSpace(input.ExternalRef),
		Kind:             uc.kind,
		ItemID:           item.ID,
		Direction:        movement.Direction(),
		Inbound:          movement.Inbound(),
		Outbound:         movement.Outbound(),
		Count:            movement.Count(),
		StakeholderID:    input.StakeholderID,
		PackagingStyleID: input.PackagingStyleID,
		Date:             date,
		Comment:          input.Comment,
		QuantityBalance:  next.Quantity,
		CountBalance:     next.Count,
		CreatedBy:        actor.Name,
		CreatedAt:        now,
	}

	if err := uc.deps.TransactionRepo.Create(ctx, tx, t); err != nil {
		return nil, err
	}

	if err := uc.publish(ctx, tx, domain.EventTypeTransactionRecorded, t, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return t, nil
}

// ResetBalanceInput represents a request to zero an item's balance.
type ResetBalanceInput struct {
	ItemID string
	Reason string
}

// ResetBalance inserts a compensating entry that forces both balances of the
// item to zero.
func (uc *LedgerUseCase) ResetBalance(ctx context.Context, input ResetBalanceInput) (*domain.Transaction, error) {
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, domain.ErrResetReasonRequired
	}
	if err := domain.ValidateComment(reason); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	actor := domain.ActorFromContext(ctx)
	now := uc.deps.Clock.Now().UTC().Truncate(time.Microsecond)

	var recorded *domain.Transaction
	err := uc.retry(ctx, func() error {
		var err error
		recorded, err = uc.writeReset(ctx, input.ItemID, reason, actor, now)
		return err
	})
	if err != nil {
		uc.audit(ctx, domain.AuditActionBalanceReset, input.ItemID, nil, err)
		return nil, err
	}

	uc.deps.Metrics.BalanceReset(uc.kind)
	uc.cacheBalance(ctx, recorded)
	uc.audit(ctx, domain.AuditActionBalanceReset, recorded.ID, recorded, nil)

	return recorded, nil
}

func (uc *LedgerUseCase) writeReset(ctx context.Context, itemID, reason string, actor domain.Actor, now time.Time) (*domain.Transaction, error) {
	tx, err := uc.deps.TxManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	item, err := uc.deps.ItemRepo.GetByIDForUpdate(ctx, tx, itemID)
	if err != nil {
		return nil, err
	}
	if item.Kind != uc.kind {
		return nil, domain.ErrItemKindMismatch
	}

	latest, err := uc.deps.TransactionRepo.Latest(ctx, tx, item.ID)
	if err != nil {
		return nil, err
	}

	date := now
	if latest != nil && latest.Date.After(date) {
		date = latest.Date
	}

	entry, err := domain.BalanceFrom(latest).ResetEntry()
	if err != nil {
		return nil, err
	}

	code, err := uc.codes.Next(ctx, tx, domain.PrefixReset, now)
	if err != nil {
		return nil, err
	}

	t := &domain.Transaction{
		ID:              uc.deps.IDGen.Generate(),
		Code:            code,
		ExternalRef:     domain.ResetMarker,
		Kind:            uc.kind,
		ItemID:          item.ID,
		Direction:       domain.Outbound,
		Inbound:         decimal.Zero,
		Outbound:        entry.Outbound,
		Count:           entry.Count,
		Date:            date,
		Comment:         reason,
		QuantityBalance: decimal.Zero,
		CountBalance:    0,
		CreatedBy:       actor.Name,
		CreatedAt:       now,
	}

	if err := uc.deps.TransactionRepo.Create(ctx, tx, t); err != nil {
		return nil, err
	}

	if err := uc.publish(ctx, tx, domain.EventTypeBalanceReset, t, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return t, nil
}

// LatestBalance returns the balance after the most recent transaction of
// itemID together with that transaction. Unknown items and items without
// transactions yield a zero balance and a nil transaction.
func (uc *LedgerUseCase) LatestBalance(ctx context.Context, itemID string) (domain.Balance, *domain.Transaction, error) {
	latest, err := uc.deps.TransactionRepo.Latest(ctx, nil, itemID)
	if err != nil {
		return domain.Balance{}, nil, err
	}
	return domain.BalanceFrom(latest), latest, nil
}

// GetBalance returns the current balance of an item of this ledger.
func (uc *LedgerUseCase) GetBalance(ctx context.Context, itemID string) (domain.Balance, error) {
	if _, err := uc.getItem(ctx, itemID); err != nil {
		return domain.Balance{}, err
	}

	if uc.deps.Cache != nil {
		if cached, err := uc.deps.Cache.Get(ctx, itemID); err == nil && cached != nil {
			return *cached, nil
		}
	}

	balance, latest, err := uc.LatestBalance(ctx, itemID)
	if err != nil {
		return domain.Balance{}, err
	}

	// The read is not locked: a writer may have committed and cached a newer
	// balance meanwhile, and the versioned Set keeps that one.
	if uc.deps.Cache != nil {
		if err := uc.deps.Cache.Set(ctx, itemID, balance, domain.BalanceVersion(latest)); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("item_id", itemID).Msg("balance cache write failed")
		}
	}

	return balance, nil
}

// GetTransaction retrieves a transaction of this ledger by ID.
func (uc *LedgerUseCase) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	t, err := uc.deps.TransactionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Kind != uc.kind {
		return nil, domain.ErrTransactionNotFound
	}
	return t, nil
}

// ListTransactionsInput represents input for listing an item's transactions.
type ListTransactionsInput struct {
	ItemID string
	Limit  int
	Offset int
}

// ListTransactions lists an item's transactions, newest first.
func (uc *LedgerUseCase) ListTransactions(ctx context.Context, input ListTransactionsInput) ([]*domain.Transaction, error) {
	if _, err := uc.getItem(ctx, input.ItemID); err != nil {
		return nil, err
	}

	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.deps.TransactionRepo.ListByItem(ctx, input.ItemID, limit, offset)
}

// CountTransactions returns the number of transactions recorded for an item.
func (uc *LedgerUseCase) CountTransactions(ctx context.Context, itemID string) (int64, error) {
	if _, err := uc.getItem(ctx, itemID); err != nil {
		return 0, err
	}
	return uc.deps.TransactionRepo.CountByItem(ctx, itemID)
}

// Statement returns an item and its full history, oldest first.
func (uc *LedgerUseCase) Statement(ctx context.Context, itemID string) (*domain.Item, []*domain.Transaction, error) {
	item, err := uc.getItem(ctx, itemID)
	if err != nil {
		return nil, nil, err
	}

	history, err := uc.deps.TransactionRepo.History(ctx, itemID)
	if err != nil {
		return nil, nil, err
	}

	return item, history, nil
}

func (uc *LedgerUseCase) getItem(ctx context.Context, itemID string) (*domain.Item, error) {
	item, err := uc.deps.ItemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.Kind != uc.kind {
		return nil, domain.ErrItemNotFound
	}
	return item, nil
}

func (uc *LedgerUseCase) retry(ctx context.Context, op func() error) error {
	if uc.deps.Retrier == nil {
		return op()
	}
	return uc.deps.Retrier.Retry(ctx, op)
}

func (uc *LedgerUseCase) publish(ctx context.Context, tx Transaction, eventType string, t *domain.Transaction, now time.Time) error {
	if uc.deps.OutboxRepo == nil {
		return nil
	}

	return uc.deps.OutboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.deps.IDGen.Generate(),
		AggregateID:   t.ItemID,
		AggregateType: domain.AggregateTypeItem,
		EventType:     eventType,
		Payload:       domain.TransactionRecordedPayload(t),
		CreatedAt:     now,
	})
}

func (uc *LedgerUseCase) cacheBalance(ctx context.Context, t *domain.Transaction) {
	if uc.deps.Cache == nil {
		return
	}

	if err := uc.deps.Cache.Set(ctx, t.ItemID, t.Balance(), t.Version()); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("item_id", t.ItemID).Msg("balance cache write failed")
		// A stale entry is worse than none.
		_ = uc.deps.Cache.Invalidate(ctx, t.ItemID)
	}
}

func (uc *LedgerUseCase) audit(ctx context.Context, action domain.AuditAction, resourceID string, after *domain.Transaction, failure error) {
	if uc.deps.AuditRepo == nil {
		return
	}

	entry := &domain.AuditLog{
		UserID:       domain.ActorFromContext(ctx).Name,
		Action:       string(action),
		ResourceType: domain.AggregateTypeTransaction,
		ResourceID:   resourceID,
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    uc.deps.Clock.Now().UTC(),
	}
	if after != nil {
		entry.AfterState = domain.MarshalState(domain.TransactionRecordedPayload(after))
	}
	if failure != nil {
		entry.Status = string(domain.AuditStatusFailure)
		entry.ErrorMessage = failure.Error()
	}

	if err := uc.deps.AuditRepo.Create(ctx, entry); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("action", string(action)).Msg("audit log write failed")
	}
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, domain.ErrItemNotFound):
		return "item_not_found"
	case errors.Is(err, domain.ErrItemInactive):
		return "item_inactive"
	case errors.Is(err, domain.ErrItemKindMismatch):
		return "kind_mismatch"
	case errors.Is(err, domain.ErrBackdatedMovement):
		return "backdated"
	case errors.Is(err, domain.ErrCodeGeneration):
		return "code_generation"
	default:
		return "other"
	}
}

type noopMetrics struct{}

func (noopMetrics) MovementRecorded(domain.ItemKind, domain.Direction, decimal.Decimal) {}
func (noopMetrics) MovementRejected(domain.ItemKind, string)                            {}
func (noopMetrics) BalanceReset(domain.ItemKind)                                        {}
