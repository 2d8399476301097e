package usecase

import (
	"context"

	"github.com/iho/textileledger/internal/domain"
)

// AuditUseCase reads the audit trail written by the item and ledger use cases.
type AuditUseCase struct {
	repo AuditRepository
}

// NewAuditUseCase creates a new AuditUseCase.
func NewAuditUseCase(repo AuditRepository) *AuditUseCase {
	return &AuditUseCase{repo: repo}
}

// ListAuditLogs lists audit entries matching filter, newest first.
func (uc *AuditUseCase) ListAuditLogs(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	filter.Limit, filter.Offset = domain.ValidatePagination(filter.Limit, filter.Offset)
	return uc.repo.List(ctx, filter)
}
