package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/iho/textileledger/internal/domain"
	"github.com/iho/textileledger/internal/infrastructure/postgres/generated"
	"github.com/iho/textileledger/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	queries *generated.Queries
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db generated.DBTX) *TransactionRepository {
	return &TransactionRepository{queries: generated.New(db)}
}

// Create appends a transaction row within a transaction.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error {
	queries := generated.New(tx.(*Tx).PgxTx())

	_, err := queries.CreateLedgerTransaction(ctx, generated.CreateLedgerTransactionParams{
		ID:               t.ID,
		Code:             t.Code,
		InternalRef:      t.InternalRef,
		ExternalRef:      t.ExternalRef,
		Kind:             string(t.Kind),
		ItemID:           t.ItemID,
		Direction:        string(t.Direction),
		Inbound:          decimalToNumeric(t.Inbound),
		Outbound:         decimalToNumeric(t.Outbound),
		Count:            t.Count,
		StakeholderID:    stringPtrToText(t.StakeholderID),
		PackagingStyleID: stringPtrToText(t.PackagingStyleID),
		Date:             timeToPgTimestamptz(t.Date),
		Comment:          t.Comment,
		QuantityBalance:  decimalToNumeric(t.QuantityBalance),
		CountBalance:     t.CountBalance,
		CreatedBy:        t.CreatedBy,
		CreatedAt:        timeToPgTimestamptz(t.CreatedAt),
	})
	if hasPgCode(err, pgErrUniqueViolation) {
		return fmt.Errorf("%w: code %s already taken", domain.ErrCodeGeneration, t.Code)
	}

	return err
}

// GetByID retrieves a transaction by ID.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	row, err := r.queries.GetTransactionByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}

		return nil, err
	}

	return rowToTransaction(row), nil
}

// Latest returns the newest transaction of itemID or nil. A nil tx reads
// outside of any transaction.
func (r *TransactionRepository) Latest(ctx context.Context, tx usecase.Transaction, itemID string) (*domain.Transaction, error) {
	queries := r.queries
	if tx != nil {
		queries = generated.New(tx.(*Tx).PgxTx())
	}

	row, err := queries.GetLatestTransactionByItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return rowToTransaction(row), nil
}

// ListByItem lists transactions of an item, newest first.
func (r *TransactionRepository) ListByItem(ctx context.Context, itemID string, limit, offset int) ([]*domain.Transaction, error) {
	rows, err := r.queries.ListTransactionsByItem(ctx, generated.ListTransactionsByItemParams{
		ItemID: itemID,
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToTransactions(rows), nil
}

// History returns all transactions of an item in ledger order.
func (r *TransactionRepository) History(ctx context.Context, itemID string) ([]*domain.Transaction, error) {
	rows, err := r.queries.ListTransactionHistory(ctx, itemID)
	if err != nil {
		return nil, err
	}

	return rowsToTransactions(rows), nil
}

// CountByItem returns the number of transactions of an item.
func (r *TransactionRepository) CountByItem(ctx context.Context, itemID string) (int64, error) {
	return r.queries.CountTransactionsByItem(ctx, itemID)
}

// LastCode returns the greatest code issued under dayPrefix.
func (r *TransactionRepository) LastCode(ctx context.Context, tx usecase.Transaction, dayPrefix string) (string, error) {
	queries := generated.New(tx.(*Tx).PgxTx())
	return queries.GetLastCode(ctx, dayPrefix)
}

// LockCodeSequence takes a transaction-scoped advisory lock on dayPrefix.
func (r *TransactionRepository) LockCodeSequence(ctx context.Context, tx usecase.Transaction, dayPrefix string) error {
	queries := generated.New(tx.(*Tx).PgxTx())
	return queries.AcquireCodeLock(ctx, dayPrefix)
}

func rowsToTransactions(rows []generated.LedgerTransaction) []*domain.Transaction {
	txs := make([]*domain.Transaction, 0, len(rows))
	for _, row := range rows {
		txs = append(txs, rowToTransaction(row))
	}
	return txs
}

func rowToTransaction(row generated.LedgerTransaction) *domain.Transaction {
	return &domain.Transaction{
		ID:               row.ID,
		Code:             row.Code,
		InternalRef:      row.InternalRef,
		ExternalRef:      row.ExternalRef,
		Kind:             domain.ItemKind(row.Kind),
		ItemID:           row.ItemID,
		Direction:        domain.Direction(row.Direction),
		Inbound:          numericToDecimal(row.Inbound),
		Outbound:         numericToDecimal(row.Outbound),
		Count:            row.Count,
		StakeholderID:    textToStringPtr(row.StakeholderID),
		PackagingStyleID: textToStringPtr(row.PackagingStyleID),
		Date:             row.Date.Time,
		Comment:          row.Comment,
		QuantityBalance:  numericToDecimal(row.QuantityBalance),
		CountBalance:     row.CountBalance,
		CreatedBy:        row.CreatedBy,
		CreatedAt:        row.CreatedAt.Time,
	}
}
