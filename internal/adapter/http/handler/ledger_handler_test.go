package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/textileledger/internal/adapter/http/dto"
	"github.com/iho/textileledger/internal/domain"
	"github.com/iho/textileledger/internal/usecase"
)

var testDate = time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

func TestLedgerHandler_Record(t *testing.T) {
	var captured usecase.RecordMovementInput
	h := NewLedgerHandler(&ledgerServiceStub{
		kind: domain.ItemKindYarn,
		recordFn: func(ctx context.Context, input usecase.RecordMovementInput) (*domain.Transaction, error) {
			captured = input
			return &domain.Transaction{
				ID: "01HS", Code: "YT-20240315-0001", Kind: domain.ItemKindYarn, ItemID: input.ItemID,
				Direction: input.Direction, Inbound: input.Quantity, Count: input.Count,
				QuantityBalance: input.Quantity, CountBalance: input.Count, Date: testDate,
			}, nil
		},
	}, nil, "")

	body := `{"item_id":"item-1","direction":"inbound","quantity":"18.9","count":10,"external_ref":"INV-4"}`
	rec := serve(http.MethodPost, "/transactions", "/transactions", body, h.Record)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.True(t, captured.Quantity.Equal(decimal.RequireFromString("18.9")))
	assert.Equal(t, domain.Inbound, captured.Direction)
	assert.Equal(t, "INV-4", captured.ExternalRef)

	env := decodeEnvelope[dto.TransactionResponse](t, rec)
	assert.Equal(t, "YT-20240315-0001", env.Data.Code)
	assert.Equal(t, "18.9", env.Data.QuantityBalance)
	assert.Equal(t, int64(10), env.Data.CountBalance)
}

func TestLedgerHandler_RecordErrors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		err      error
		expected int
	}{
		{name: "bad direction", body: `{"item_id":"a","direction":"up","quantity":"1"}`, expected: http.StatusBadRequest},
		{name: "bad quantity", body: `{"item_id":"a","direction":"inbound","quantity":"1kg"}`, expected: http.StatusBadRequest},
		{name: "missing item", body: `{"direction":"inbound","quantity":"1"}`, expected: http.StatusBadRequest},
		{name: "insufficient", body: `{"item_id":"a","direction":"outbound","quantity":"5"}`, err: domain.ErrInsufficientBalance, expected: http.StatusUnprocessableEntity},
		{name: "inactive", body: `{"item_id":"a","direction":"inbound","count":1}`, err: domain.ErrItemInactive, expected: http.StatusUnprocessableEntity},
		{name: "unknown item", body: `{"item_id":"a","direction":"inbound","count":1}`, err: domain.ErrItemNotFound, expected: http.StatusNotFound},
		{name: "database down", body: `{"item_id":"a","direction":"inbound","count":1}`, err: errors.New("conn refused"), expected: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			h := NewLedgerHandler(&ledgerServiceStub{
				kind: domain.ItemKindRaw,
				recordFn: func(ctx context.Context, input usecase.RecordMovementInput) (*domain.Transaction, error) {
					called = true
					return nil, tt.err
				},
			}, nil, "")

			rec := serve(http.MethodPost, "/transactions", "/transactions", tt.body, h.Record)
			assert.Equal(t, tt.expected, rec.Code, rec.Body.String())
			assert.Equal(t, tt.err != nil, called)
		})
	}
}

func TestLedgerHandler_BalanceAndList(t *testing.T) {
	var listInput usecase.ListTransactionsInput
	h := NewLedgerHandler(&ledgerServiceStub{
		kind: domain.ItemKindWarpBeam,
		balanceFn: func(ctx context.Context, itemID string) (domain.Balance, error) {
			return domain.Balance{Quantity: decimal.RequireFromString("-2.5"), Count: -1}, nil
		},
		listFn: func(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.Transaction, error) {
			listInput = input
			return []*domain.Transaction{{ID: "t1", Date: testDate}}, nil
		},
		countFn: func(ctx context.Context, itemID string) (int64, error) {
			return 7, nil
		},
	}, nil, "")

	rec := serve(http.MethodGet, "/items/{id}/balance", "/items/beam-1/balance", "", h.Balance)
	require.Equal(t, http.StatusOK, rec.Code)
	bal := decodeEnvelope[dto.BalanceResponse](t, rec).Data
	assert.Equal(t, dto.BalanceResponse{ItemID: "beam-1", Kind: "warp_beam", Quantity: "-2.5", Count: -1}, bal)

	rec = serve(http.MethodGet, "/transactions", "/transactions", "", h.List)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(http.MethodGet, "/transactions", "/transactions?item_id=beam-1&limit=2", "", h.List)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, usecase.ListTransactionsInput{ItemID: "beam-1", Limit: 2}, listInput)

	page := decodeEnvelope[dto.ListResponse[dto.TransactionResponse]](t, rec).Data
	assert.Equal(t, 1, page.Count)
	require.NotNil(t, page.Total)
	assert.Equal(t, int64(7), *page.Total)
	assert.Equal(t, 2, page.Limit)
}

func TestLedgerHandler_ListReportsServedPage(t *testing.T) {
	var listInput usecase.ListTransactionsInput
	h := NewLedgerHandler(&ledgerServiceStub{
		kind: domain.ItemKindYarn,
		listFn: func(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.Transaction, error) {
			listInput = input
			return nil, nil
		},
		countFn: func(ctx context.Context, itemID string) (int64, error) {
			return 0, nil
		},
	}, nil, "")

	tests := []struct {
		query          string
		expectedLimit  int
		expectedOffset int
	}{
		{"limit=0", 50, 0},
		{"limit=9999&offset=20", 500, 20},
		{"limit=-3&offset=-1", 50, 0},
		{"limit=abc", 50, 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := serve(http.MethodGet, "/transactions", "/transactions?item_id=yarn-1&"+tt.query, "", h.List)
			require.Equal(t, http.StatusOK, rec.Code)

			page := decodeEnvelope[dto.ListResponse[dto.TransactionResponse]](t, rec).Data
			assert.Equal(t, tt.expectedLimit, page.Limit)
			assert.Equal(t, tt.expectedOffset, page.Offset)
			assert.Equal(t, tt.expectedLimit, listInput.Limit)
			assert.Equal(t, 0, page.Count)
			require.NotNil(t, page.Total)
			assert.Zero(t, *page.Total)
		})
	}
}

func TestLedgerHandler_ListCountFailure(t *testing.T) {
	h := NewLedgerHandler(&ledgerServiceStub{
		kind: domain.ItemKindYarn,
		listFn: func(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.Transaction, error) {
			return nil, nil
		},
		countFn: func(ctx context.Context, itemID string) (int64, error) {
			return 0, domain.ErrItemNotFound
		},
	}, nil, "")

	rec := serve(http.MethodGet, "/transactions", "/transactions?item_id=gone", "", h.List)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLedgerHandler_Reset(t *testing.T) {
	var captured usecase.ResetBalanceInput
	h := NewLedgerHandler(&ledgerServiceStub{
		kind: domain.ItemKindYarn,
		resetFn: func(ctx context.Context, input usecase.ResetBalanceInput) (*domain.Transaction, error) {
			captured = input
			return &domain.Transaction{ID: "r1", Code: "RST-20240315-0001", ExternalRef: domain.ResetMarker, Date: testDate}, nil
		},
	}, nil, "")

	rec := serve(http.MethodPost, "/items/{id}/reset", "/items/item-1/reset", `{}`, h.Reset)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(http.MethodPost, "/items/{id}/reset", "/items/item-1/reset", `{"reason":"stock count"}`, h.Reset)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, usecase.ResetBalanceInput{ItemID: "item-1", Reason: "stock count"}, captured)
	assert.True(t, decodeEnvelope[dto.TransactionResponse](t, rec).Data.IsReset)
}

func TestLedgerHandler_Statement(t *testing.T) {
	item := &domain.Item{ID: "item-1", Kind: domain.ItemKindYarn, Name: "Silk"}
	stub := &ledgerServiceStub{
		kind: domain.ItemKindYarn,
		statementFn: func(ctx context.Context, itemID string) (*domain.Item, []*domain.Transaction, error) {
			if itemID != item.ID {
				return nil, nil, domain.ErrItemNotFound
			}
			return item, []*domain.Transaction{{ID: "t1"}}, nil
		},
	}

	var rendered int
	h := NewLedgerHandler(stub, rendererFunc(func(w io.Writer, it *domain.Item, txs []*domain.Transaction) error {
		rendered = len(txs)
		_, err := io.WriteString(w, "xlsx-bytes")
		return err
	}), "application/test")

	rec := serve(http.MethodGet, "/items/{id}/statement.xlsx", "/items/item-1/statement.xlsx", "", h.Statement)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, rendered)
	assert.Equal(t, "application/test", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="yarn-item-1.xlsx"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "xlsx-bytes", rec.Body.String())

	rec = serve(http.MethodGet, "/items/{id}/statement.xlsx", "/items/other/statement.xlsx", "", h.Statement)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	failing := NewLedgerHandler(stub, rendererFunc(func(io.Writer, *domain.Item, []*domain.Transaction) error {
		return errors.New("zip failure")
	}), "application/test")
	rec = serve(http.MethodGet, "/items/{id}/statement.xlsx", "/items/item-1/statement.xlsx", "", failing.Statement)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}
