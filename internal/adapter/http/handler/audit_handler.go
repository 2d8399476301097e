package handler

import (
	"context"
	"net/http"

	"github.com/iho/textileledger/internal/adapter/http/dto"
	"github.com/iho/textileledger/internal/domain"
)

// AuditService defines the behavior needed by AuditHandler.
type AuditService interface {
	ListAuditLogs(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

// AuditHandler serves the audit trail.
type AuditHandler struct {
	uc AuditService
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(uc AuditService) *AuditHandler {
	return &AuditHandler{uc: uc}
}

// List lists audit entries, newest first. It filters on the user_id, action,
// resource_type and resource_id query parameters.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset := parsePage(r)

	logs, err := h.uc.ListAuditLogs(r.Context(), domain.AuditFilter{
		UserID:       q.Get("user_id"),
		Action:       q.Get("action"),
		ResourceType: q.Get("resource_type"),
		ResourceID:   q.Get("resource_id"),
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, "", dto.ListResponse[*dto.AuditLogResponse]{
		Items:  dto.AuditLogsFromDomain(logs),
		Count:  len(logs),
		Limit:  limit,
		Offset: offset,
	})
}
