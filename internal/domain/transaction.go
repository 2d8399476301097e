package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single movement against an item together with the
// balance snapshot it produced. Transactions are never updated.
type Transaction struct {
	ID               string
	Code             string
	InternalRef      string
	ExternalRef      string
	Kind             ItemKind
	ItemID           string
	Direction        Direction
	Inbound          decimal.Decimal
	Outbound         decimal.Decimal
	Count            int64
	StakeholderID    *string
	PackagingStyleID *string
	Date             time.Time
	Comment          string
	QuantityBalance  decimal.Decimal
	CountBalance     int64
	CreatedBy        string
	CreatedAt        time.Time
}

// Balance returns the balance snapshot carried by t.
func (t *Transaction) Balance() Balance {
	return Balance{Quantity: t.QuantityBalance, Count: t.CountBalance}
}

// IsReset reports whether t is a balance-reset entry.
func (t *Transaction) IsReset() bool {
	return t.ExternalRef == ResetMarker
}

// Net returns Inbound - Outbound.
func (t *Transaction) Net() decimal.Decimal {
	return t.Inbound.Sub(t.Outbound)
}

// versionLayout is fixed width so versions compare as plain strings.
const versionLayout = "20060102T150405.000000000"

// Version orders the transactions of one item the same way the latest
// balance is chosen: by date, then by ID.
func (t *Transaction) Version() string {
	return t.Date.UTC().Format(versionLayout) + "/" + t.ID
}

// BalanceVersion returns the version of the balance taken from latest. An
// item without transactions has the empty version, which sorts first.
func BalanceVersion(latest *Transaction) string {
	if latest == nil {
		return ""
	}
	return latest.Version()
}

// CountDelta returns the signed count change of t.
func (t *Transaction) CountDelta() int64 {
	return countDelta(t.Inbound, t.Outbound, t.Count)
}

// Movement reconstructs the movement carried by t.
func (t *Transaction) Movement() (Movement, error) {
	qty := t.Inbound
	if t.Direction == Outbound {
		qty = t.Outbound
	}
	return NewMovement(t.Direction, qty, t.Count)
}
