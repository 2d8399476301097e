package generated

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type AuditLog struct {
	ID           pgtype.UUID        `json:"id"`
	UserID       string             `json:"user_id"`
	Action       string             `json:"action"`
	ResourceType string             `json:"resource_type"`
	ResourceID   string             `json:"resource_id"`
	RequestID    pgtype.Text        `json:"request_id"`
	BeforeState  []byte             `json:"before_state"`
	AfterState   []byte             `json:"after_state"`
	Status       string             `json:"status"`
	ErrorMessage pgtype.Text        `json:"error_message"`
	CreatedAt    pgtype.Timestamptz `json:"created_at"`
}

type Item struct {
	ID        string             `json:"id"`
	Kind      string             `json:"kind"`
	Name      string             `json:"name"`
	Active    bool               `json:"active"`
	OriginID  pgtype.Text        `json:"origin_id"`
	Comment   string             `json:"comment"`
	CreatedBy string             `json:"created_by"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

type LedgerTransaction struct {
	ID               string             `json:"id"`
	Code             string             `json:"code"`
	InternalRef      string             `json:"internal_ref"`
	ExternalRef      string             `json:"external_ref"`
	Kind             string             `json:"kind"`
	ItemID           string             `json:"item_id"`
	Direction        string             `json:"direction"`
	Inbound          pgtype.Numeric     `json:"inbound"`
	Outbound         pgtype.Numeric     `json:"outbound"`
	Count            int64              `json:"count"`
	StakeholderID    pgtype.Text        `json:"stakeholder_id"`
	PackagingStyleID pgtype.Text        `json:"packaging_style_id"`
	Date             pgtype.Timestamptz `json:"date"`
	Comment          string             `json:"comment"`
	QuantityBalance  pgtype.Numeric     `json:"quantity_balance"`
	CountBalance     int64              `json:"count_balance"`
	CreatedBy        string             `json:"created_by"`
	CreatedAt        pgtype.Timestamptz `json:"created_at"`
}

type OutboxEvent struct {
	ID            string             `json:"id"`
	AggregateID   string             `json:"aggregate_id"`
	AggregateType string             `json:"aggregate_type"`
	EventType     string             `json:"event_type"`
	Payload       []byte             `json:"payload"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
	PublishedAt   pgtype.Timestamptz `json:"published_at"`
	Published     bool               `json:"published"`
}

type PackagingStyle struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Active      bool               `json:"active"`
	CreatedAt   pgtype.Timestamptz `json:"created_at"`
	UpdatedAt   pgtype.Timestamptz `json:"updated_at"`
}

type Stakeholder struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Kind      string             `json:"kind"`
	Phone     string             `json:"phone"`
	Address   string             `json:"address"`
	Active    bool               `json:"active"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}
