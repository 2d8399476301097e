package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/iho/textileledger/internal/domain"
)

// ReconciliationUseCase handles balance reconciliation operations
type ReconciliationUseCase struct {
	itemRepo ItemRepository
	txRepo   TransactionRepository
	clock    Clock
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(itemRepo ItemRepository, txRepo TransactionRepository, clock Clock) *ReconciliationUseCase {
	if clock == nil {
		clock = SystemClock{}
	}
	return &ReconciliationUseCase{
		itemRepo: itemRepo,
		txRepo:   txRepo,
		clock:    clock,
	}
}

// ReconciliationResult represents the result of a reconciliation check
type ReconciliationResult struct {
	ItemID        string
	Kind          domain.ItemKind
	Transactions  int
	Recorded      domain.Balance
	Calculated    domain.Balance
	Discrepancies []domain.Discrepancy
	IsReconciled  bool
	LastChecked   time.Time
}

// ReconcileItem replays the history of an item and compares every stored
// balance snapshot with the telescoping sum of the movements before it.
func (uc *ReconciliationUseCase) ReconcileItem(ctx context.Context, itemID string) (*ReconciliationResult, error) {
	item, err := uc.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	history, err := uc.txRepo.History(ctx, item.ID)
	if err != nil {
		return nil, err
	}

	calculated, diffs := domain.Replay(history)

	recorded := domain.ZeroBalance
	if len(history) > 0 {
		recorded = history[len(history)-1].Balance()
	}

	return &ReconciliationResult{
		ItemID:        item.ID,
		Kind:          item.Kind,
		Transactions:  len(history),
		Recorded:      recorded,
		Calculated:    calculated,
		Discrepancies: diffs,
		IsReconciled:  len(diffs) == 0,
		LastChecked:   uc.clock.Now().UTC(),
	}, nil
}

// ReconcileAllItems reconciles all items, optionally restricted to one kind.
func (uc *ReconciliationUseCase) ReconcileAllItems(ctx context.Context, kind domain.ItemKind) ([]*ReconciliationResult, error) {
	var results []*ReconciliationResult

	for offset := 0; ; offset += reconcilePageSize {
		items, err := uc.itemRepo.List(ctx, ItemFilter{Kind: kind, Limit: reconcilePageSize, Offset: offset})
		if err != nil {
			return nil, err
		}

		for _, item := range items {
			result, err := uc.ReconcileItem(ctx, item.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to reconcile item %s: %w", item.ID, err)
			}
			results = append(results, result)
		}

		if len(items) < reconcilePageSize {
			break
		}
	}

	return results, nil
}

// ReconciliationReport represents a full reconciliation report
type ReconciliationReport struct {
	TotalItems      int
	ReconciledItems int
	Discrepancies   []*ReconciliationResult
	CheckedAt       time.Time
}

// GenerateReconciliationReport generates a reconciliation report over all
// items of kind, or of every kind when kind is empty.
func (uc *ReconciliationUseCase) GenerateReconciliationReport(ctx context.Context, kind domain.ItemKind) (*ReconciliationReport, error) {
	if kind != "" && !kind.IsValid() {
		return nil, domain.ErrInvalidItemKind
	}

	results, err := uc.ReconcileAllItems(ctx, kind)
	if err != nil {
		return nil, err
	}

	report := &ReconciliationReport{
		TotalItems:    len(results),
		Discrepancies: make([]*ReconciliationResult, 0),
		CheckedAt:     uc.clock.Now().UTC(),
	}

	for _, result := range results {
		if result.IsReconciled {
			report.ReconciledItems++
		} else {
			report.Discrepancies = append(report.Discrepancies, result)
		}
	}

	return report, nil
}
