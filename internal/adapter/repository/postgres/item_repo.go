package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/textileledger/internal/domain"
	"github.com/iho/textileledger/internal/infrastructure/postgres/generated"
	"github.com/iho/textileledger/internal/usecase"
)

// ItemRepository implements usecase.ItemRepository.
type ItemRepository struct {
	queries *generated.Queries
}

// NewItemRepository creates a new ItemRepository.
func NewItemRepository(db generated.DBTX) *ItemRepository {
	return &ItemRepository{queries: generated.New(db)}
}

// Create inserts a new item within a transaction.
func (r *ItemRepository) Create(ctx context.Context, tx usecase.Transaction, item *domain.Item) error {
	queries := generated.New(tx.(*Tx).PgxTx())

	_, err := queries.CreateItem(ctx, generated.CreateItemParams{
		ID:        item.ID,
		Kind:      string(item.Kind),
		Name:      item.Name,
		Active:    item.Active,
		OriginID:  stringPtrToText(item.OriginID),
		Comment:   item.Comment,
		CreatedBy: item.CreatedBy,
		CreatedAt: timeToPgTimestamptz(item.CreatedAt),
		UpdatedAt: timeToPgTimestamptz(item.UpdatedAt),
	})

	return mapItemWriteError(err)
}

// GetByID retrieves an item by ID.
func (r *ItemRepository) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	row, err := r.queries.GetItemByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}

		return nil, err
	}

	return rowToItem(row), nil
}

// GetByIDForUpdate retrieves an item by ID with a FOR UPDATE lock.
func (r *ItemRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Item, error) {
	queries := generated.New(tx.(*Tx).PgxTx())

	row, err := queries.GetItemByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}

		return nil, err
	}

	return rowToItem(row), nil
}

// GetByName retrieves an item of kind by case-insensitive name.
func (r *ItemRepository) GetByName(ctx context.Context, kind domain.ItemKind, name string) (*domain.Item, error) {
	row, err := r.queries.GetItemByName(ctx, generated.GetItemByNameParams{
		Kind: string(kind),
		Name: name,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}

		return nil, err
	}

	return rowToItem(row), nil
}

// Update persists the mutable fields of an item.
func (r *ItemRepository) Update(ctx context.Context, tx usecase.Transaction, item *domain.Item) error {
	queries := generated.New(tx.(*Tx).PgxTx())

	err := queries.UpdateItem(ctx, generated.UpdateItemParams{
		ID:        item.ID,
		Name:      item.Name,
		Active:    item.Active,
		OriginID:  stringPtrToText(item.OriginID),
		Comment:   item.Comment,
		UpdatedAt: timeToPgTimestamptz(item.UpdatedAt),
	})

	return mapItemWriteError(err)
}

// Delete removes an item.
func (r *ItemRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	queries := generated.New(tx.(*Tx).PgxTx())

	err := queries.DeleteItem(ctx, id)
	if hasPgCode(err, pgErrForeignKeyViolation) {
		return domain.ErrItemInUse
	}

	return err
}

// List lists items with optional kind and status filters.
func (r *ItemRepository) List(ctx context.Context, filter usecase.ItemFilter) ([]*domain.Item, error) {
	var active pgtype.Bool
	if filter.Active != nil {
		active = pgtype.Bool{Bool: *filter.Active, Valid: true}
	}

	rows, err := r.queries.ListItems(ctx, generated.ListItemsParams{
		Kind:   string(filter.Kind),
		Active: active,
		Limit:  int32(filter.Limit),
		Offset: int32(filter.Offset),
	})
	if err != nil {
		return nil, err
	}

	items := make([]*domain.Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, rowToItem(row))
	}

	return items, nil
}

// CountChildren returns how many items name id as their origin.
func (r *ItemRepository) CountChildren(ctx context.Context, id string) (int64, error) {
	return r.queries.CountItemChildren(ctx, id)
}

func mapItemWriteError(err error) error {
	switch {
	case err == nil:
		return nil
	case hasPgCode(err, pgErrUniqueViolation):
		return domain.ErrDuplicateName
	case hasPgCode(err, pgErrForeignKeyViolation):
		return domain.ErrOriginNotFound
	}
	return err
}

func rowToItem(row generated.Item) *domain.Item {
	return &domain.Item{
		ID:        row.ID,
		Kind:      domain.ItemKind(row.Kind),
		Name:      row.Name,
		Active:    row.Active,
		OriginID:  textToStringPtr(row.OriginID),
		Comment:   row.Comment,
		CreatedBy: row.CreatedBy,
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}
}
