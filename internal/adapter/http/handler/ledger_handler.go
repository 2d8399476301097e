package handler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/iho/textileledger/internal/adapter/http/dto"
	"github.com/iho/textileledger/internal/domain"
	"github.com/iho/textileledger/internal/usecase"
)

// LedgerService defines the behavior needed by LedgerHandler.
type LedgerService interface {
	Kind() domain.ItemKind
	RecordMovement(ctx context.Context, input usecase.RecordMovementInput) (*domain.Transaction, error)
	ResetBalance(ctx context.Context, input usecase.ResetBalanceInput) (*domain.Transaction, error)
	GetBalance(ctx context.Context, itemID string) (domain.Balance, error)
	GetTransaction(ctx context.Context, id string) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.Transaction, error)
	CountTransactions(ctx context.Context, itemID string) (int64, error)
	Statement(ctx context.Context, itemID string) (*domain.Item, []*domain.Transaction, error)
}

// StatementRenderer writes a ledger statement document.
type StatementRenderer interface {
	Render(w io.Writer, item *domain.Item, txs []*domain.Transaction) error
}

// LedgerHandler handles the transaction routes of a single ledger kind.
type LedgerHandler struct {
	ledgerUC    LedgerService
	statements  StatementRenderer
	contentType string
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC LedgerService, statements StatementRenderer, contentType string) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC, statements: statements, contentType: contentType}
}

// Kind returns the ledger kind served by the handler.
func (h *LedgerHandler) Kind() domain.ItemKind {
	return h.ledgerUC.Kind()
}

// Record records an inbound or outbound movement.
func (h *LedgerHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req dto.RecordMovementRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		respondError(w, r, err)
		return
	}

	tx, err := h.ledgerUC.RecordMovement(r.Context(), input)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, "transaction recorded", dto.TransactionFromDomain(tx))
}

// Get retrieves a transaction by ID.
func (h *LedgerHandler) Get(w http.ResponseWriter, r *http.Request) {
	tx, err := h.ledgerUC.GetTransaction(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, "", dto.TransactionFromDomain(tx))
}

// List lists an item's transactions, newest first.
func (h *LedgerHandler) List(w http.ResponseWriter, r *http.Request) {
	itemID := r.URL.Query().Get("item_id")
	if itemID == "" {
		writeError(w, http.StatusBadRequest, "item_id query parameter is required")
		return
	}

	limit, offset := parsePage(r)

	txs, err := h.ledgerUC.ListTransactions(r.Context(), usecase.ListTransactionsInput{
		ItemID: itemID,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	total, err := h.ledgerUC.CountTransactions(r.Context(), itemID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, "", dto.ListResponse[*dto.TransactionResponse]{
		Items:  dto.TransactionsFromDomain(txs),
		Count:  len(txs),
		Total:  &total,
		Limit:  limit,
		Offset: offset,
	})
}

// Balance returns the current running balance of an item.
func (h *LedgerHandler) Balance(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "id")

	balance, err := h.ledgerUC.GetBalance(r.Context(), itemID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, "", dto.BalanceFromDomain(itemID, h.ledgerUC.Kind(), balance))
}

// Reset zeroes an item's running balance with a reset entry.
func (h *LedgerHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetBalanceRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	tx, err := h.ledgerUC.ResetBalance(r.Context(), usecase.ResetBalanceInput{
		ItemID: chi.URLParam(r, "id"),
		Reason: req.Reason,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, "balance reset", dto.TransactionFromDomain(tx))
}

// Statement streams the item's full history as a spreadsheet.
func (h *LedgerHandler) Statement(w http.ResponseWriter, r *http.Request) {
	item, txs, err := h.ledgerUC.Statement(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := h.statements.Render(&buf, item, txs); err != nil {
		respondError(w, r, fmt.Errorf("render statement for %s: %w", item.ID, err))
		return
	}

	w.Header().Set("Content-Type", h.contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-%s.xlsx"`, item.Kind, item.ID))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Str("item_id", item.ID).Msg("statement write interrupted")
	}
}
