package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/iho/textileledger/internal/domain"
)

// ItemUseCase handles item business logic.
type ItemUseCase struct {
	txManager  TransactionManager
	itemRepo   ItemRepository
	txRepo     TransactionRepository
	outboxRepo OutboxRepository
	auditRepo  AuditRepository
	idGen      IDGenerator
	clock      Clock
}

// NewItemUseCase creates a new ItemUseCase. outboxRepo and auditRepo may be nil.
func NewItemUseCase(
	txManager TransactionManager,
	itemRepo ItemRepository,
	txRepo TransactionRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	clock Clock,
) *ItemUseCase {
	if clock == nil {
		clock = SystemClock{}
	}
	return &ItemUseCase{
		txManager:  txManager,
		itemRepo:   itemRepo,
		txRepo:     txRepo,
		outboxRepo: outboxRepo,
		auditRepo:  auditRepo,
		idGen:      idGen,
		clock:      clock,
	}
}

// CreateItemInput represents input for creating an item.
type CreateItemInput struct {
	Kind     domain.ItemKind
	Name     string
	OriginID *string
	Comment  string
}

// CreateItem creates a new active item.
func (uc *ItemUseCase) CreateItem(ctx context.Context, input CreateItemInput) (*domain.Item, error) {
	if !input.Kind.IsValid() {
		return nil, domain.ErrInvalidItemKind
	}

	name := domain.NormalizeName(input.Name)
	if err := domain.ValidateName(name); err != nil {
		return nil, err
	}
	if err := domain.ValidateComment(input.Comment); err != nil {
		return nil, err
	}
	if err := uc.ensureNameFree(ctx, input.Kind, name, ""); err != nil {
		return nil, err
	}

	id := uc.idGen.Generate()
	if input.OriginID != nil {
		if err := uc.checkOrigin(ctx, id, *input.OriginID); err != nil {
			return nil, err
		}
	}

	now := uc.clock.Now().UTC()
	item := &domain.Item{
		ID:        id,
		Kind:      input.Kind,
		Name:      name,
		Active:    true,
		OriginID:  input.OriginID,
		Comment:   input.Comment,
		CreatedBy: domain.ActorFromContext(ctx).Name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := uc.inTx(ctx, func(tx Transaction) error {
		if err := uc.itemRepo.Create(ctx, tx, item); err != nil {
			return err
		}
		return uc.publish(ctx, tx, domain.EventTypeItemCreated, item)
	})
	if err != nil {
		return nil, err
	}

	uc.audit(ctx, domain.AuditActionItemCreate, item.ID, nil, item)
	return item, nil
}

// GetItem retrieves an item by ID.
func (uc *ItemUseCase) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	return uc.itemRepo.GetByID(ctx, id)
}

// ListItems lists items with pagination.
func (uc *ItemUseCase) ListItems(ctx context.Context, filter ItemFilter) ([]*domain.Item, error) {
	if filter.Kind != "" && !filter.Kind.IsValid() {
		return nil, domain.ErrInvalidItemKind
	}
	filter.Limit, filter.Offset = domain.ValidatePagination(filter.Limit, filter.Offset)
	return uc.itemRepo.List(ctx, filter)
}

// UpdateItemInput represents input for updating an item. Nil fields are left
// unchanged; ClearOrigin removes the origin link.
type UpdateItemInput struct {
	ID          string
	Name        *string
	Comment     *string
	OriginID    *string
	ClearOrigin bool
}

// UpdateItem changes the name, comment or origin of an item.
func (uc *ItemUseCase) UpdateItem(ctx context.Context, input UpdateItemInput) (*domain.Item, error) {
	var before, updated *domain.Item

	err := uc.inTx(ctx, func(tx Transaction) error {
		item, err := uc.itemRepo.GetByIDForUpdate(ctx, tx, input.ID)
		if err != nil {
			return err
		}
		snapshot := *item
		before = &snapshot

		if input.Name != nil {
			name := domain.NormalizeName(*input.Name)
			if err := domain.ValidateName(name); err != nil {
				return err
			}
			if err := uc.ensureNameFree(ctx, item.Kind, name, item.ID); err != nil {
				return err
			}
			item.Name = name
		}

		if input.Comment != nil {
			if err := domain.ValidateComment(*input.Comment); err != nil {
				return err
			}
			item.Comment = *input.Comment
		}

		switch {
		case input.ClearOrigin:
			item.OriginID = nil
		case input.OriginID != nil:
			if err := uc.checkOrigin(ctx, item.ID, *input.OriginID); err != nil {
				return err
			}
			item.OriginID = input.OriginID
		}

		item.UpdatedAt = uc.clock.Now().UTC()
		if err := uc.itemRepo.Update(ctx, tx, item); err != nil {
			return err
		}

		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.audit(ctx, domain.AuditActionItemUpdate, updated.ID, before, updated)
	return updated, nil
}

// SetItemStatus activates or deactivates an item. Inactive items keep their
// history but cannot receive movements.
func (uc *ItemUseCase) SetItemStatus(ctx context.Context, id string, active bool) (*domain.Item, error) {
	var updated *domain.Item
	changed := false

	err := uc.inTx(ctx, func(tx Transaction) error {
		item, err := uc.itemRepo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		updated = item
		if item.Active == active {
			return nil
		}

		item.Active = active
		item.UpdatedAt = uc.clock.Now().UTC()
		if err := uc.itemRepo.Update(ctx, tx, item); err != nil {
			return err
		}
		changed = true

		return uc.publish(ctx, tx, domain.EventTypeItemStatusChanged, item)
	})
	if err != nil {
		return nil, err
	}

	if changed {
		uc.audit(ctx, domain.AuditActionItemStatus, updated.ID, nil, updated)
	}
	return updated, nil
}

// DeleteItem removes an item that has no transactions and no child items.
func (uc *ItemUseCase) DeleteItem(ctx context.Context, id string) error {
	var before *domain.Item

	err := uc.inTx(ctx, func(tx Transaction) error {
		item, err := uc.itemRepo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		before = item

		txCount, err := uc.txRepo.CountByItem(ctx, id)
		if err != nil {
			return err
		}
		children, err := uc.itemRepo.CountChildren(ctx, id)
		if err != nil {
			return err
		}
		if txCount > 0 || children > 0 {
			return domain.ErrItemInUse
		}

		return uc.itemRepo.Delete(ctx, tx, id)
	})
	if err != nil {
		return err
	}

	uc.audit(ctx, domain.AuditActionItemDelete, id, before, nil)
	return nil
}

// Lineage returns the item followed by its chain of origins, nearest first.
func (uc *ItemUseCase) Lineage(ctx context.Context, id string) ([]*domain.Item, error) {
	item, err := uc.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	chain := []*domain.Item{item}
	seen := map[string]bool{item.ID: true}

	for item.OriginID != nil {
		if seen[*item.OriginID] {
			zerolog.Ctx(ctx).Warn().Str("item_id", id).Msg("origin chain loops")
			break
		}

		item, err = uc.itemRepo.GetByID(ctx, *item.OriginID)
		if errors.Is(err, domain.ErrItemNotFound) {
			break
		}
		if err != nil {
			return nil, err
		}

		seen[item.ID] = true
		chain = append(chain, item)
	}

	return chain, nil
}

func (uc *ItemUseCase) checkOrigin(ctx context.Context, itemID, originID string) error {
	if itemID == originID {
		return domain.ErrSelfOrigin
	}

	if _, err := uc.itemRepo.GetByID(ctx, originID); err != nil {
		if errors.Is(err, domain.ErrItemNotFound) {
			return domain.ErrOriginNotFound
		}
		return err
	}

	return domain.CheckOrigin(ctx, itemID, originID, func(ctx context.Context, id string) (*string, error) {
		parent, err := uc.itemRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return parent.OriginID, nil
	})
}

// ensureNameFree rejects a name already used by another item of the same kind.
// Names compare case-insensitively.
func (uc *ItemUseCase) ensureNameFree(ctx context.Context, kind domain.ItemKind, name, selfID string) error {
	existing, err := uc.itemRepo.GetByName(ctx, kind, name)
	if errors.Is(err, domain.ErrItemNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != selfID {
		return domain.ErrDuplicateName
	}
	return nil
}

func (uc *ItemUseCase) inTx(ctx context.Context, fn func(tx Transaction) error) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (uc *ItemUseCase) publish(ctx context.Context, tx Transaction, eventType string, item *domain.Item) error {
	if uc.outboxRepo == nil {
		return nil
	}

	return uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   item.ID,
		AggregateType: domain.AggregateTypeItem,
		EventType:     eventType,
		Payload:       domain.ItemPayload(item),
		CreatedAt:     uc.clock.Now().UTC(),
	})
}

func (uc *ItemUseCase) audit(ctx context.Context, action domain.AuditAction, id string, before, after *domain.Item) {
	if uc.auditRepo == nil {
		return
	}

	entry := &domain.AuditLog{
		UserID:       domain.ActorFromContext(ctx).Name,
		Action:       string(action),
		ResourceType: domain.AggregateTypeItem,
		ResourceID:   id,
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    uc.clock.Now().UTC(),
	}
	if before != nil {
		entry.BeforeState = domain.MarshalState(domain.ItemPayload(before))
	}
	if after != nil {
		entry.AfterState = domain.MarshalState(domain.ItemPayload(after))
	}

	if err := uc.auditRepo.Create(ctx, entry); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("action", string(action)).Msg("audit log write failed")
	}
}
