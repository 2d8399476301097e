package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ResetMarker is the external reference carried by balance-reset entries.
const ResetMarker = "BALANCE-RESET"

// Balance is the cumulative quantity and count of an item after a transaction.
type Balance struct {
	Quantity decimal.Decimal
	Count    int64
}

// ZeroBalance is the balance of an item without transactions.
var ZeroBalance = Balance{Quantity: decimal.Zero}

// BalanceFrom returns the balance recorded on the latest transaction, or
// ZeroBalance when there is none.
func BalanceFrom(latest *Transaction) Balance {
	if latest == nil {
		return ZeroBalance
	}
	return Balance{Quantity: latest.QuantityBalance, Count: latest.CountBalance}
}

// Validate rejects an outbound movement that exceeds the quantity balance.
// Count is not checked and may go negative.
func (b Balance) Validate(m Movement) error {
	if m.Direction() == Outbound && m.Quantity().GreaterThan(b.Quantity) {
		return fmt.Errorf("%w: requested %s, available %s",
			ErrInsufficientBalance, m.Quantity().StringFixed(3), b.Quantity.StringFixed(3))
	}
	return nil
}

// Apply returns the balance after m. The count only moves on the side whose
// quantity is positive, so a zero-quantity movement leaves the count balance
// unchanged.
func (b Balance) Apply(m Movement) Balance {
	return Balance{
		Quantity: b.Quantity.Add(m.Inbound()).Sub(m.Outbound()),
		Count:    b.Count + countDelta(m.Inbound(), m.Outbound(), m.Count()),
	}
}

func countDelta(inbound, outbound decimal.Decimal, count int64) int64 {
	var delta int64
	if inbound.IsPositive() {
		delta += count
	}
	if outbound.IsPositive() {
		delta -= count
	}
	return delta
}

// IsZero reports whether both quantity and count are zero.
func (b Balance) IsZero() bool {
	return b.Quantity.IsZero() && b.Count == 0
}

// Reset describes the compensating entry that forces a balance to zero.
type Reset struct {
	Outbound decimal.Decimal
	Count    int64
}

// ResetEntry computes the compensating entry for b: an outbound equal to the
// positive quantity balance and a count equal to the absolute count balance.
func (b Balance) ResetEntry() (Reset, error) {
	if b.IsZero() {
		return Reset{}, ErrNothingToReset
	}

	out := decimal.Zero
	if b.Quantity.IsPositive() {
		out = b.Quantity
	}

	count := b.Count
	if count < 0 {
		count = -count
	}

	return Reset{Outbound: out, Count: count}, nil
}
