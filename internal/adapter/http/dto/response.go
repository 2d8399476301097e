package dto

import (
	"time"

	"github.com/iho/textileledger/internal/domain"
	"github.com/iho/textileledger/internal/usecase"
)

// Envelope wraps every JSON response of the API.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ItemResponse represents an item in API responses.
type ItemResponse struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	OriginID  *string   `json:"origin_id,omitempty"`
	Comment   string    `json:"comment,omitempty"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ItemFromDomain converts domain item to response.
func ItemFromDomain(i *domain.Item) *ItemResponse {
	return &ItemResponse{
		ID:        i.ID,
		Kind:      string(i.Kind),
		Name:      i.Name,
		Active:    i.Active,
		OriginID:  i.OriginID,
		Comment:   i.Comment,
		CreatedBy: i.CreatedBy,
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}
}

// ItemsFromDomain converts domain items to responses.
func ItemsFromDomain(items []*domain.Item) []*ItemResponse {
	result := make([]*ItemResponse, len(items))
	for i, item := range items {
		result[i] = ItemFromDomain(item)
	}
	return result
}

// ListResponse wraps a page of results. Count is the size of the page and
// Total, when known, the number of results across all pages.
type ListResponse[T any] struct {
	Items  []T    `json:"items"`
	Count  int    `json:"count"`
	Total  *int64 `json:"total,omitempty"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

// TransactionResponse represents a ledger transaction with the balance it produced.
type TransactionResponse struct {
	ID               string    `json:"id"`
	Code             string    `json:"code"`
	Kind             string    `json:"kind"`
	ItemID           string    `json:"item_id"`
	Direction        string    `json:"direction"`
	Inbound          string    `json:"inbound"`
	Outbound         string    `json:"outbound"`
	Count            int64     `json:"count"`
	StakeholderID    *string   `json:"stakeholder_id,omitempty"`
	PackagingStyleID *string   `json:"packaging_style_id,omitempty"`
	Date             time.Time `json:"date"`
	InternalRef      string    `json:"internal_ref,omitempty"`
	ExternalRef      string    `json:"external_ref,omitempty"`
	Comment          string    `json:"comment,omitempty"`
	QuantityBalance  string    `json:"quantity_balance"`
	CountBalance     int64     `json:"count_balance"`
	IsReset          bool      `json:"is_reset"`
	CreatedBy        string    `json:"created_by"`
	CreatedAt        time.Time `json:"created_at"`
}

// TransactionFromDomain converts domain transaction to response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:               t.ID,
		Code:             t.Code,
		Kind:             string(t.Kind),
		ItemID:           t.ItemID,
		Direction:        string(t.Direction),
		Inbound:          t.Inbound.String(),
		Outbound:         t.Outbound.String(),
		Count:            t.Count,
		StakeholderID:    t.StakeholderID,
		PackagingStyleID: t.PackagingStyleID,
		Date:             t.Date,
		InternalRef:      t.InternalRef,
		ExternalRef:      t.ExternalRef,
		Comment:          t.Comment,
		QuantityBalance:  t.QuantityBalance.String(),
		CountBalance:     t.CountBalance,
		IsReset:          t.IsReset(),
		CreatedBy:        t.CreatedBy,
		CreatedAt:        t.CreatedAt,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(txs []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(txs))
	for i, t := range txs {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// BalanceResponse is the current running balance of an item.
type BalanceResponse struct {
	ItemID   string `json:"item_id"`
	Kind     string `json:"kind"`
	Quantity string `json:"quantity"`
	Count    int64  `json:"count"`
}

// BalanceFromDomain converts a balance to response.
func BalanceFromDomain(itemID string, kind domain.ItemKind, b domain.Balance) *BalanceResponse {
	return &BalanceResponse{
		ItemID:   itemID,
		Kind:     string(kind),
		Quantity: b.Quantity.String(),
		Count:    b.Count,
	}
}

// StakeholderResponse represents a supplier or customer.
type StakeholderResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StakeholderFromDomain converts domain stakeholder to response.
func StakeholderFromDomain(s *domain.Stakeholder) *StakeholderResponse {
	return &StakeholderResponse{
		ID:        s.ID,
		Name:      s.Name,
		Kind:      string(s.Kind),
		Phone:     s.Phone,
		Address:   s.Address,
		Active:    s.Active,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// StakeholdersFromDomain converts domain stakeholders to responses.
func StakeholdersFromDomain(list []*domain.Stakeholder) []*StakeholderResponse {
	result := make([]*StakeholderResponse, len(list))
	for i, s := range list {
		result[i] = StakeholderFromDomain(s)
	}
	return result
}

// PackagingStyleResponse represents a packaging style.
type PackagingStyleResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PackagingStyleFromDomain converts domain packaging style to response.
func PackagingStyleFromDomain(p *domain.PackagingStyle) *PackagingStyleResponse {
	return &PackagingStyleResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// PackagingStylesFromDomain converts domain packaging styles to responses.
func PackagingStylesFromDomain(list []*domain.PackagingStyle) []*PackagingStyleResponse {
	result := make([]*PackagingStyleResponse, len(list))
	for i, p := range list {
		result[i] = PackagingStyleFromDomain(p)
	}
	return result
}

// DiscrepancyResponse is a transaction whose stored balance drifted.
type DiscrepancyResponse struct {
	TransactionID    string `json:"transaction_id"`
	Code             string `json:"code"`
	StoredQuantity   string `json:"stored_quantity"`
	StoredCount      int64  `json:"stored_count"`
	ExpectedQuantity string `json:"expected_quantity"`
	ExpectedCount    int64  `json:"expected_count"`
}

// ItemReconciliationResponse is the reconciliation result of a single item.
type ItemReconciliationResponse struct {
	ItemID             string                `json:"item_id"`
	Kind               string                `json:"kind"`
	Transactions       int                   `json:"transactions"`
	RecordedQuantity   string                `json:"recorded_quantity"`
	RecordedCount      int64                 `json:"recorded_count"`
	CalculatedQuantity string                `json:"calculated_quantity"`
	CalculatedCount    int64                 `json:"calculated_count"`
	IsReconciled       bool                  `json:"is_reconciled"`
	Discrepancies      []DiscrepancyResponse `json:"discrepancies,omitempty"`
}

// ReconciliationReportResponse summarises a reconciliation run.
type ReconciliationReportResponse struct {
	TotalItems      int                           `json:"total_items"`
	ReconciledItems int                           `json:"reconciled_items"`
	Discrepancies   []*ItemReconciliationResponse `json:"discrepancies"`
	CheckedAt       time.Time                     `json:"checked_at"`
}

// ReconciliationReportFromUseCase converts a reconciliation report to response.
func ReconciliationReportFromUseCase(r *usecase.ReconciliationReport) *ReconciliationReportResponse {
	resp := &ReconciliationReportResponse{
		TotalItems:      r.TotalItems,
		ReconciledItems: r.ReconciledItems,
		Discrepancies:   make([]*ItemReconciliationResponse, len(r.Discrepancies)),
		CheckedAt:       r.CheckedAt,
	}

	for i, res := range r.Discrepancies {
		item := &ItemReconciliationResponse{
			ItemID:             res.ItemID,
			Kind:               string(res.Kind),
			Transactions:       res.Transactions,
			RecordedQuantity:   res.Recorded.Quantity.String(),
			RecordedCount:      res.Recorded.Count,
			CalculatedQuantity: res.Calculated.Quantity.String(),
			CalculatedCount:    res.Calculated.Count,
			IsReconciled:       res.IsReconciled,
		}
		for _, d := range res.Discrepancies {
			item.Discrepancies = append(item.Discrepancies, DiscrepancyResponse{
				TransactionID:    d.TransactionID,
				Code:             d.Code,
				StoredQuantity:   d.Stored.Quantity.String(),
				StoredCount:      d.Stored.Count,
				ExpectedQuantity: d.Expected.Quantity.String(),
				ExpectedCount:    d.Expected.Count,
			})
		}
		resp.Discrepancies[i] = item
	}

	return resp
}

// AuditLogResponse represents an audit trail entry.
type AuditLogResponse struct {
	ID           string      `json:"id"`
	UserID       string      `json:"user_id"`
	Action       string      `json:"action"`
	ResourceType string      `json:"resource_type"`
	ResourceID   string      `json:"resource_id"`
	RequestID    string      `json:"request_id,omitempty"`
	BeforeState  domain.JSON `json:"before_state,omitempty"`
	AfterState   domain.JSON `json:"after_state,omitempty"`
	Status       string      `json:"status"`
	ErrorMessage string      `json:"error_message,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

// AuditLogsFromDomain converts audit entries to responses.
func AuditLogsFromDomain(logs []*domain.AuditLog) []*AuditLogResponse {
	result := make([]*AuditLogResponse, len(logs))
	for i, l := range logs {
		result[i] = &AuditLogResponse{
			ID:           l.ID,
			UserID:       l.UserID,
			Action:       l.Action,
			ResourceType: l.ResourceType,
			ResourceID:   l.ResourceID,
			RequestID:    l.RequestID,
			BeforeState:  l.BeforeState,
			AfterState:   l.AfterState,
			Status:       l.Status,
			ErrorMessage: l.ErrorMessage,
			CreatedAt:    l.CreatedAt,
		}
	}
	return result
}
