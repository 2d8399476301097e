package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/iho/textileledger/internal/domain"
	"github.com/iho/textileledger/internal/usecase"
)

type itemServiceStub struct {
	createFn  func(ctx context.Context, input usecase.CreateItemInput) (*domain.Item, error)
	getFn     func(ctx context.Context, id string) (*domain.Item, error)
	listFn    func(ctx context.Context, filter usecase.ItemFilter) ([]*domain.Item, error)
	updateFn  func(ctx context.Context, input usecase.UpdateItemInput) (*domain.Item, error)
	statusFn  func(ctx context.Context, id string, active bool) (*domain.Item, error)
	deleteFn  func(ctx context.Context, id string) error
	lineageFn func(ctx context.Context, id string) ([]*domain.Item, error)
}

func (s *itemServiceStub) CreateItem(ctx context.Context, input usecase.CreateItemInput) (*domain.Item, error) {
	return s.createFn(ctx, input)
}

func (s *itemServiceStub) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	return s.getFn(ctx, id)
}

func (s *itemServiceStub) ListItems(ctx context.Context, filter usecase.ItemFilter) ([]*domain.Item, error) {
	return s.listFn(ctx, filter)
}

func (s *itemServiceStub) UpdateItem(ctx context.Context, input usecase.UpdateItemInput) (*domain.Item, error) {
	return s.updateFn(ctx, input)
}

func (s *itemServiceStub) SetItemStatus(ctx context.Context, id string, active bool) (*domain.Item, error) {
	return s.statusFn(ctx, id, active)
}

func (s *itemServiceStub) DeleteItem(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

func (s *itemServiceStub) Lineage(ctx context.Context, id string) ([]*domain.Item, error) {
	return s.lineageFn(ctx, id)
}

type ledgerServiceStub struct {
	kind        domain.ItemKind
	recordFn    func(ctx context.Context, input usecase.RecordMovementInput) (*domain.Transaction, error)
	resetFn     func(ctx context.Context, input usecase.ResetBalanceInput) (*domain.Transaction, error)
	balanceFn   func(ctx context.Context, itemID string) (domain.Balance, error)
	getFn       func(ctx context.Context, id string) (*domain.Transaction, error)
	listFn      func(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.Transaction, error)
	countFn     func(ctx context.Context, itemID string) (int64, error)
	statementFn func(ctx context.Context, itemID string) (*domain.Item, []*domain.Transaction, error)
}

func (s *ledgerServiceStub) Kind() domain.ItemKind { return s.kind }

func (s *ledgerServiceStub) RecordMovement(ctx context.Context, input usecase.RecordMovementInput) (*domain.Transaction, error) {
	return s.recordFn(ctx, input)
}

func (s *ledgerServiceStub) ResetBalance(ctx context.Context, input usecase.ResetBalanceInput) (*domain.Transaction, error) {
	return s.resetFn(ctx, input)
}

func (s *ledgerServiceStub) GetBalance(ctx context.Context, itemID string) (domain.Balance, error) {
	return s.balanceFn(ctx, itemID)
}

func (s *ledgerServiceStub) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return s.getFn(ctx, id)
}

func (s *ledgerServiceStub) ListTransactions(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.Transaction, error) {
	return s.listFn(ctx, input)
}

func (s *ledgerServiceStub) CountTransactions(ctx context.Context, itemID string) (int64, error) {
	return s.countFn(ctx, itemID)
}

func (s *ledgerServiceStub) Statement(ctx context.Context, itemID string) (*domain.Item, []*domain.Transaction, error) {
	return s.statementFn(ctx, itemID)
}

type rendererFunc func(w io.Writer, item *domain.Item, txs []*domain.Transaction) error

func (f rendererFunc) Render(w io.Writer, item *domain.Item, txs []*domain.Transaction) error {
	return f(w, item, txs)
}

type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func decodeEnvelope[T any](t *testing.T, rec *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return env
}

// serve routes a single request through a chi router so URL params resolve.
func serve(method, pattern, target, body string, h http.HandlerFunc) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.MethodFunc(method, pattern, h)

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}
