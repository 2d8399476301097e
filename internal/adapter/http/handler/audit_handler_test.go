package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/textileledger/internal/adapter/http/dto"
	"github.com/iho/textileledger/internal/domain"
)

type auditServiceFunc func(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)

func (f auditServiceFunc) ListAuditLogs(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	return f(ctx, filter)
}

func TestAuditHandler_List(t *testing.T) {
	var captured domain.AuditFilter
	h := NewAuditHandler(auditServiceFunc(func(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
		captured = filter
		return []*domain.AuditLog{{
			ID:           "a1",
			UserID:       "alice",
			Action:       string(domain.AuditActionRecord),
			ResourceType: domain.AggregateTypeTransaction,
			ResourceID:   "t1",
			Status:       string(domain.AuditStatusSuccess),
			AfterState:   domain.JSON{"code": "Y240315-0001"},
			CreatedAt:    testDate,
		}}, nil
	}))

	rec := serve(http.MethodGet, "/audit", "/audit?action=transaction.record&resource_id=t1&user_id=alice&limit=9999", "", h.List)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, domain.AuditFilter{
		UserID:     "alice",
		Action:     "transaction.record",
		ResourceID: "t1",
		Limit:      500,
	}, captured)

	page := decodeEnvelope[dto.ListResponse[dto.AuditLogResponse]](t, rec).Data
	require.Len(t, page.Items, 1)
	assert.Equal(t, "t1", page.Items[0].ResourceID)
	assert.Equal(t, "Y240315-0001", page.Items[0].AfterState["code"])
	assert.Equal(t, 500, page.Limit)
}

func TestAuditHandler_ListError(t *testing.T) {
	h := NewAuditHandler(auditServiceFunc(func(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
		return nil, errors.New("connection reset")
	}))

	rec := serve(http.MethodGet, "/audit", "/audit", "", h.List)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
