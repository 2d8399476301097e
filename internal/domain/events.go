package domain

import "time"

// Event types
const (
	EventTypeTransactionRecorded = "transaction.recorded"
	EventTypeBalanceReset        = "balance.reset"
	EventTypeItemCreated         = "item.created"
	EventTypeItemStatusChanged   = "item.status_changed"
)

// Aggregate types
const (
	AggregateTypeItem        = "item"
	AggregateTypeTransaction = "transaction"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// TransactionRecordedPayload builds the payload of transaction.recorded and
// balance.reset events.
func TransactionRecordedPayload(t *Transaction) map[string]any {
	return map[string]any{
		"transaction_id":   t.ID,
		"code":             t.Code,
		"kind":             string(t.Kind),
		"item_id":          t.ItemID,
		"direction":        string(t.Direction),
		"inbound":          t.Inbound.String(),
		"outbound":         t.Outbound.String(),
		"count":            t.Count,
		"quantity_balance": t.QuantityBalance.String(),
		"count_balance":    t.CountBalance,
		"date":             t.Date.Format(time.RFC3339),
		"created_by":       t.CreatedBy,
	}
}

// ItemPayload builds the payload of item events.
func ItemPayload(i *Item) map[string]any {
	return map[string]any{
		"item_id": i.ID,
		"kind":    string(i.Kind),
		"name":    i.Name,
		"active":  i.Active,
	}
}
