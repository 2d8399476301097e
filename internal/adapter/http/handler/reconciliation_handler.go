package handler

import (
	"context"
	"net/http"

	"github.com/iho/textileledger/internal/adapter/http/dto"
	"github.com/iho/textileledger/internal/domain"
	"github.com/iho/textileledger/internal/usecase"
)

// ReconciliationService defines the behavior needed by ReconciliationHandler.
type ReconciliationService interface {
	GenerateReconciliationReport(ctx context.Context, kind domain.ItemKind) (*usecase.ReconciliationReport, error)
}

// ReconciliationHandler replays stored transactions and reports drift.
type ReconciliationHandler struct {
	uc ReconciliationService
}

// NewReconciliationHandler creates a new ReconciliationHandler.
func NewReconciliationHandler(uc ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{uc: uc}
}

// Report reconciles every item, or those of ?kind= when given.
func (h *ReconciliationHandler) Report(w http.ResponseWriter, r *http.Request) {
	report, err := h.uc.GenerateReconciliationReport(r.Context(), domain.ItemKind(r.URL.Query().Get("kind")))
	if err != nil {
		respondError(w, r, err)
		return
	}

	message := "all balances reconciled"
	if len(report.Discrepancies) > 0 {
		message = "balance discrepancies found"
	}

	writeJSON(w, http.StatusOK, message, dto.ReconciliationReportFromUseCase(report))
}
