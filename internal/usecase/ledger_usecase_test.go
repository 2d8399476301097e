package usecase_test

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/textileledger/internal/domain"
	"github.com/iho/textileledger/internal/usecase"
	"github.com/iho/textileledger/internal/usecase/mocks"
)

var testDay = time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)

type ledgerFixture struct {
	store *mocks.Store
	deps  usecase.LedgerDeps
	clock *mocks.FixedClock
	uc    *usecase.LedgerUseCase
	item  *domain.Item
}

func newLedgerFixture(t *testing.T, kind domain.ItemKind) *ledgerFixture {
	t.Helper()

	store := mocks.NewStore()
	clock := mocks.NewFixedClock(testDay)

	deps := usecase.LedgerDeps{
		TxManager:       &mocks.StoreTxManager{Store: store},
		ItemRepo:        &mocks.StoreItemRepository{Store: store},
		TransactionRepo: &mocks.StoreTransactionRepository{Store: store},
		StakeholderRepo: &mocks.StoreStakeholderRepository{Store: store},
		PackagingRepo:   &mocks.StorePackagingStyleRepository{Store: store},
		OutboxRepo:      &mocks.StoreOutboxRepository{Store: store},
		AuditRepo:       &mocks.StoreAuditRepository{Store: store},
		IDGen:           &mocks.SequentialIDGenerator{},
		Clock:           clock,
	}

	item := &domain.Item{ID: "item-1", Kind: kind, Name: "Cotton 30s", Active: true}
	store.PutItem(item)

	return &ledgerFixture{
		store: store,
		deps:  deps,
		clock: clock,
		uc:    usecase.NewLedgerUseCase(kind, deps),
		item:  item,
	}
}

func (f *ledgerFixture) record(t *testing.T, dir domain.Direction, qty string, count int64) (*domain.Transaction, error) {
	t.Helper()
	return f.uc.RecordMovement(context.Background(), usecase.RecordMovementInput{
		ItemID:    f.item.ID,
		Direction: dir,
		Quantity:  decimal.RequireFromString(qty),
		Count:     count,
	})
}

func TestLedgerUseCase_Scenario(t *testing.T) {
	f := newLedgerFixture(t, domain.ItemKindYarn)
	ctx := domain.WithActor(context.Background(), domain.Actor{ID: "u1", Name: "alice", Role: domain.RoleOperator})

	in, err := f.uc.RecordMovement(ctx, usecase.RecordMovementInput{
		ItemID:    f.item.ID,
		Direction: domain.Inbound,
		Quantity:  decimal.RequireFromString("100.000"),
		Count:     5,
	})
	require.NoError(t, err)
	assert.Equal(t, "100.000", in.QuantityBalance.StringFixed(3))
	assert.Equal(t, int64(5), in.CountBalance)
	assert.Equal(t, "YT-20240315-0001", in.Code)
	assert.Equal(t, "alice", in.CreatedBy)

	out, err := f.record(t, domain.Outbound, "40.000", 2)
	require.NoError(t, err)
	assert.Equal(t, "60.000", out.QuantityBalance.StringFixed(3))
	assert.Equal(t, int64(3), out.CountBalance)
	assert.Equal(t, "YT-20240315-0002", out.Code)

	_, err = f.record(t, domain.Outbound, "1000.000", 1)
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)
	assert.Len(t, f.store.Transactions(), 2)

	balance, err := f.uc.GetBalance(context.Background(), f.item.ID)
	require.NoError(t, err)
	assert.Equal(t, "60.000", balance.Quantity.StringFixed(3))
	assert.Equal(t, int64(3), balance.Count)

	reset, err := f.uc.ResetBalance(context.Background(), usecase.ResetBalanceInput{ItemID: f.item.ID, Reason: "stock count"})
	require.NoError(t, err)
	assert.Equal(t, "60.000", reset.Outbound.StringFixed(3))
	assert.Equal(t, int64(3), reset.Count)
	assert.True(t, reset.QuantityBalance.IsZero())
	assert.Equal(t, int64(0), reset.CountBalance)
	assert.Equal(t, domain.ResetMarker, reset.ExternalRef)
	assert.Equal(t, "stock count", reset.Comment)
	assert.Equal(t, "RST-20240315-0001", reset.Code)
	assert.True(t, reset.IsReset())
}

func TestLedgerUseCase_TelescopingSum(t *testing.T) {
	f := newLedgerFixture(t, domain.ItemKindRaw)
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		dir := domain.Inbound
		if rng.Intn(3) == 0 {
			dir = domain.Outbound
		}
		qty := decimal.New(rng.Int63n(50000)+1, -3)
		_, err := f.uc.RecordMovement(context.Background(), usecase.RecordMovementInput{
			ItemID:    f.item.ID,
			Direction: dir,
			Quantity:  qty,
			Count:     rng.Int63n(5),
		})
		if err != nil {
			require.ErrorIs(t, err, domain.ErrInsufficientBalance)
		}
		f.clock.Advance(time.Minute)
	}

	history := f.store.Transactions()
	require.NotEmpty(t, history)

	sum := decimal.Zero
	for _, tx := range history {
		sum = sum.Add(tx.Inbound).Sub(tx.Outbound)
		assert.True(t, tx.QuantityBalance.Equal(sum), "transaction %s: stored %s, expected %s", tx.Code, tx.QuantityBalance, sum)
		assert.False(t, tx.QuantityBalance.IsNegative())
	}
}

func TestLedgerUseCase_RejectedOutboundLeavesNoRow(t *testing.T) {
	f := newLedgerFixture(t, domain.ItemKindYarn)

	_, err := f.record(t, domain.Inbound, "10", 1)
	require.NoError(t, err)

	_, err = f.record(t, domain.Outbound, "10.001", 0)
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)

	assert.Len(t, f.store.Transactions(), 1)
	assert.Len(t, f.store.OutboxEvents(), 1)

	// Exact balance is allowed.
	tx, err := f.record(t, domain.Outbound, "10", 0)
	require.NoError(t, err)
	assert.True(t, tx.QuantityBalance.IsZero())
}

func TestLedgerUseCase_ReReadAfterWrite(t *testing.T) {
	f := newLedgerFixture(t, domain.ItemKindWarpBeam)

	for _, qty := range []string{"5.5", "2.25", "0.125"} {
		written, err := f.record(t, domain.Inbound, qty, 1)
		require.NoError(t, err)

		balance, latest, err := f.uc.LatestBalance(context.Background(), f.item.ID)
		require.NoError(t, err)
		assert.Equal(t, written.ID, latest.ID)
		assert.True(t, balance.Quantity.Equal(written.QuantityBalance))
		assert.Equal(t, written.CountBalance, balance.Count)
	}
}

func TestLedgerUseCase_CodesAreGapFree(t *testing.T) {
	f := newLedgerFixture(t, domain.ItemKindWarpBeam)

	var codes []string
	for i := 0; i < 12; i++ {
		tx, err := f.record(t, domain.Inbound, "1", 1)
		require.NoError(t, err)
		codes = append(codes, tx.Code)
	}

	for i, code := range codes {
		parts, err := domain.ParseCode(code)
		require.NoError(t, err)
		assert.Equal(t, domain.PrefixWarpBeam, parts.Prefix)
		assert.Equal(t, i+1, parts.Sequence)
	}

	// Next day starts over.
	f.clock.Advance(24 * time.Hour)
	tx, err := f.record(t, domain.Inbound, "1", 1)
	require.NoError(t, err)
	assert.Equal(t, "FWB-20240316-0001", tx.Code)
}

func TestLedgerUseCase_LatestBalanceUnknownItem(t *testing.T) {
	f := newLedgerFixture(t, domain.ItemKindYarn)

	balance, latest, err := f.uc.LatestBalance(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, latest)
	assert.True(t, balance.IsZero())
}

func TestLedgerUseCase_RecordMovementRejections(t *testing.T) {
	stakeholder := "missing-stakeholder"
	earlier := testDay.Add(-time.Hour)

	tests := []struct {
		name   string
		setup  func(t *testing.T, f *ledgerFixture)
		input  func(f *ledgerFixture) usecase.RecordMovementInput
		expect error
	}{
		{
			name: "unknown item",
			input: func(f *ledgerFixture) usecase.RecordMovementInput {
				return usecase.RecordMovementInput{ItemID: "nope", Direction: domain.Inbound, Quantity: decimal.NewFromInt(1)}
			},
			expect: domain.ErrItemNotFound,
		},
		{
			name: "inactive item",
			setup: func(t *testing.T, f *ledgerFixture) {
				f.item.Active = false
				f.store.PutItem(f.item)
			},
			input: func(f *ledgerFixture) usecase.RecordMovementInput {
				return usecase.RecordMovementInput{ItemID: f.item.ID, Direction: domain.Inbound, Quantity: decimal.NewFromInt(1)}
			},
			expect: domain.ErrItemInactive,
		},
		{
			name: "item of another ledger",
			setup: func(t *testing.T, f *ledgerFixture) {
				f.store.PutItem(&domain.Item{ID: "raw-1", Kind: domain.ItemKindRaw, Name: "Polyester", Active: true})
			},
			input: func(f *ledgerFixture) usecase.RecordMovementInput {
				return usecase.RecordMovementInput{ItemID: "raw-1", Direction: domain.Inbound, Quantity: decimal.NewFromInt(1)}
			},
			expect: domain.ErrItemKindMismatch,
		},
		{
			name: "empty movement",
			input: func(f *ledgerFixture) usecase.RecordMovementInput {
				return usecase.RecordMovementInput{ItemID: f.item.ID, Direction: domain.Inbound, Quantity: decimal.Zero}
			},
			expect: domain.ErrEmptyMovement,
		},
		{
			name: "count above maximum",
			input: func(f *ledgerFixture) usecase.RecordMovementInput {
				return usecase.RecordMovementInput{ItemID: f.item.ID, Direction: domain.Inbound, Quantity: decimal.NewFromInt(1), Count: domain.MaxCount + 1}
			},
			expect: domain.ErrInvalidCount,
		},
		{
			name: "bad direction",
			input: func(f *ledgerFixture) usecase.RecordMovementInput {
				return usecase.RecordMovementInput{ItemID: f.item.ID, Direction: "sideways", Quantity: decimal.NewFromInt(1)}
			},
			expect: domain.ErrInvalidDirection,
		},
		{
			name: "reserved external reference",
			input: func(f *ledgerFixture) usecase.RecordMovementInput {
				return usecase.RecordMovementInput{ItemID: f.item.ID, Direction: domain.Inbound, Quantity: decimal.NewFromInt(1), ExternalRef: "balance-reset"}
			},
			expect: domain.ErrReservedReference,
		},
		{
			name: "unknown stakeholder",
			input: func(f *ledgerFixture) usecase.RecordMovementInput {
				return usecase.RecordMovementInput{ItemID: f.item.ID, Direction: domain.Inbound, Quantity: decimal.NewFromInt(1), StakeholderID: &stakeholder}
			},
			expect: domain.ErrStakeholderNotFound,
		},
		{
			name: "backdated movement",
			setup: func(t *testing.T, f *ledgerFixture) {
				_, err := f.record(t, domain.Inbound, "1", 1)
				require.NoError(t, err)
			},
			input: func(f *ledgerFixture) usecase.RecordMovementInput {
				return usecase.RecordMovementInput{ItemID: f.item.ID, Direction: domain.Inbound, Quantity: decimal.NewFromInt(1), Date: &earlier}
			},
			expect: domain.ErrBackdatedMovement,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLedgerFixture(t, domain.ItemKindYarn)
			if tt.setup != nil {
				tt.setup(t, f)
			}
			before := len(f.store.Transactions())

			_, err := f.uc.RecordMovement(context.Background(), tt.input(f))
			require.ErrorIs(t, err, tt.expect)
			assert.Len(t, f.store.Transactions(), before)
		})
	}
}

func TestLedgerUseCase_CountMayGoNegative(t *testing.T) {
	f := newLedgerFixture(t, domain.ItemKindYarn)

	_, err := f.record(t, domain.Inbound, "10", 1)
	require.NoError(t, err)

	tx, err := f.record(t, domain.Outbound, "4", 3)
	require.NoError(t, err)
	assert.Equal(t, int64(-2), tx.CountBalance)

	reset, err := f.uc.ResetBalance(context.Background(), usecase.ResetBalanceInput{ItemID: f.item.ID, Reason: "recount"})
	require.NoError(t, err)
	assert.Equal(t, "6", reset.Outbound.String())
	assert.Equal(t, int64(2), reset.Count)
	assert.True(t, reset.Balance().IsZero())

	report, err := usecase.NewReconciliationUseCase(f.deps.ItemRepo, f.deps.TransactionRepo, f.clock).ReconcileItem(context.Background(), f.item.ID)
	require.NoError(t, err)
	assert.True(t, report.IsReconciled)
}

func TestLedgerUseCase_ResetRejections(t *testing.T) {
	f := newLedgerFixture(t, domain.ItemKindYarn)

	_, err := f.uc.ResetBalance(context.Background(), usecase.ResetBalanceInput{ItemID: f.item.ID, Reason: "  "})
	assert.ErrorIs(t, err, domain.ErrResetReasonRequired)

	_, err = f.uc.ResetBalance(context.Background(), usecase.ResetBalanceInput{ItemID: f.item.ID, Reason: "nothing there"})
	assert.ErrorIs(t, err, domain.ErrNothingToReset)

	assert.Empty(t, f.store.Transactions())
}

func TestLedgerUseCase_CodeGenerationFailureIsHard(t *testing.T) {
	f := newLedgerFixture(t, domain.ItemKindYarn)
	f.deps.TransactionRepo.(*mocks.StoreTransactionRepository).LastCodeFunc = func(context.Context, usecase.Transaction, string) (string, error) {
		return "", errors.New("connection reset")
	}

	_, err := f.record(t, domain.Inbound, "1", 1)
	require.ErrorIs(t, err, domain.ErrCodeGeneration)
	assert.Empty(t, f.store.Transactions())
}

func TestLedgerUseCase_CodeSequenceExhausted(t *testing.T) {
	f := newLedgerFixture(t, domain.ItemKindYarn)
	f.deps.TransactionRepo.(*mocks.StoreTransactionRepository).LastCodeFunc = func(context.Context, usecase.Transaction, string) (string, error) {
		return "YT-20240315-9999", nil
	}

	_, err := f.record(t, domain.Inbound, "1", 1)
	require.ErrorIs(t, err, domain.ErrCodeGeneration)
}

func TestLedgerUseCase_ConcurrentWritersDoNotLoseUpdates(t *testing.T) {
	f := newLedgerFixture(t, domain.ItemKindYarn)

	const writers = 25
	var wg sync.WaitGroup
	errs := make(chan error, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.record(t, domain.Inbound, "2", 1)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	balance, err := f.uc.GetBalance(context.Background(), f.item.ID)
	require.NoError(t, err)
	assert.Equal(t, "50", balance.Quantity.String())
	assert.Equal(t, int64(writers), balance.Count)

	seen := map[string]bool{}
	for _, tx := range f.store.Transactions() {
		assert.False(t, seen[tx.Code], "duplicate code %s", tx.Code)
		seen[tx.Code] = true
	}
}

func TestLedgerUseCase_GetTransactionOtherLedger(t *testing.T) {
	f := newLedgerFixture(t, domain.ItemKindYarn)

	tx, err := f.record(t, domain.Inbound, "1", 0)
	require.NoError(t, err)

	got, err := f.uc.GetTransaction(context.Background(), tx.ID)
	require.NoError(t, err)
	assert.Equal(t, tx.Code, got.Code)

	raw := usecase.NewLedgerUseCase(domain.ItemKindRaw, f.deps)
	_, err = raw.GetTransaction(context.Background(), tx.ID)
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)

	_, err = raw.GetBalance(context.Background(), f.item.ID)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestLedgerUseCase_ListAndStatement(t *testing.T) {
	f := newLedgerFixture(t, domain.ItemKindYarn)

	for i := 0; i < 3; i++ {
		_, err := f.record(t, domain.Inbound, "1", 1)
		require.NoError(t, err)
		f.clock.Advance(time.Hour)
	}

	list, err := f.uc.ListTransactions(context.Background(), usecase.ListTransactionsInput{ItemID: f.item.ID, Limit: 2})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "3", list[0].QuantityBalance.String())
	assert.Equal(t, "2", list[1].QuantityBalance.String())

	total, err := f.uc.CountTransactions(context.Background(), f.item.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	_, err = f.uc.CountTransactions(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrItemNotFound)

	item, history, err := f.uc.Statement(context.Background(), f.item.ID)
	require.NoError(t, err)
	assert.Equal(t, f.item.ID, item.ID)
	require.Len(t, history, 3)
	assert.Equal(t, "1", history[0].QuantityBalance.String())
}

func TestLedgerUseCase_SideEffects(t *testing.T) {
	ctrl := gomock.NewController(t)

	f := newLedgerFixture(t, domain.ItemKindYarn)
	cache := mocks.NewMockBalanceCache(ctrl)
	metrics := mocks.NewMockLedgerMetrics(ctrl)
	retrier := mocks.NewMockRetrier(ctrl)

	f.deps.Cache = cache
	f.deps.Metrics = metrics
	f.deps.Retrier = retrier
	uc := usecase.NewLedgerUseCase(domain.ItemKindYarn, f.deps)

	retrier.EXPECT().Retry(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, op func() error) error { return op() }).
		Times(2)

	metrics.EXPECT().MovementRecorded(domain.ItemKindYarn, domain.Inbound, gomock.Any())
	cache.EXPECT().Set(gomock.Any(), f.item.ID, gomock.Any(), gomock.Any()).Return(nil)

	_, err := uc.RecordMovement(context.Background(), usecase.RecordMovementInput{
		ItemID: f.item.ID, Direction: domain.Inbound, Quantity: decimal.NewFromInt(3), Count: 1,
	})
	require.NoError(t, err)

	metrics.EXPECT().MovementRejected(domain.ItemKindYarn, "insufficient_balance")
	_, err = uc.RecordMovement(context.Background(), usecase.RecordMovementInput{
		ItemID: f.item.ID, Direction: domain.Outbound, Quantity: decimal.NewFromInt(4),
	})
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)

	cache.EXPECT().Get(gomock.Any(), f.item.ID).Return(&domain.Balance{Quantity: decimal.NewFromInt(3), Count: 1}, nil)
	balance, err := uc.GetBalance(context.Background(), f.item.ID)
	require.NoError(t, err)
	assert.Equal(t, "3", balance.Quantity.String())

	events := f.store.OutboxEvents()
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventTypeTransactionRecorded, events[0].EventType)
	assert.Equal(t, f.item.ID, events[0].AggregateID)

	logs := f.store.AuditLogs()
	require.Len(t, logs, 2)
	assert.Equal(t, string(domain.AuditStatusSuccess), logs[0].Status)
	assert.Equal(t, string(domain.AuditStatusFailure), logs[1].Status)
	assert.Equal(t, "system", logs[0].UserID)
}

func TestLedgerUseCase_CacheFailureInvalidates(t *testing.T) {
	ctrl := gomock.NewController(t)

	f := newLedgerFixture(t, domain.ItemKindYarn)
	cache := mocks.NewMockBalanceCache(ctrl)
	f.deps.Cache = cache
	uc := usecase.NewLedgerUseCase(domain.ItemKindYarn, f.deps)

	cache.EXPECT().Set(gomock.Any(), f.item.ID, gomock.Any(), gomock.Any()).Return(errors.New("redis down"))
	cache.EXPECT().Invalidate(gomock.Any(), f.item.ID).Return(nil)

	_, err := uc.RecordMovement(context.Background(), usecase.RecordMovementInput{
		ItemID: f.item.ID, Direction: domain.Inbound, Quantity: decimal.NewFromInt(1),
	})
	require.NoError(t, err)
}
