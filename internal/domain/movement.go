package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Direction is the side of the ledger a movement hits.
type Direction string

const (
	Inbound  Direction = "inbound"
	Outbound Direction = "outbound"
)

// ParseDirection parses a direction string.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case Inbound, Outbound:
		return Direction(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// Movement is a single inbound or outbound quantity/count change.
// A movement can only be built through NewInbound or NewOutbound, so a
// transaction never carries both sides at once.
type Movement struct {
	direction Direction
	quantity  decimal.Decimal
	count     int64
}

// NewInbound creates an inbound movement.
func NewInbound(quantity decimal.Decimal, count int64) (Movement, error) {
	return newMovement(Inbound, quantity, count)
}

// NewOutbound creates an outbound movement.
func NewOutbound(quantity decimal.Decimal, count int64) (Movement, error) {
	return newMovement(Outbound, quantity, count)
}

// NewMovement creates a movement for the given direction.
func NewMovement(direction Direction, quantity decimal.Decimal, count int64) (Movement, error) {
	if _, err := ParseDirection(string(direction)); err != nil {
		return Movement{}, err
	}
	return newMovement(direction, quantity, count)
}

func newMovement(direction Direction, quantity decimal.Decimal, count int64) (Movement, error) {
	if err := ValidateQuantity(quantity); err != nil {
		return Movement{}, err
	}
	if err := ValidateCount(count); err != nil {
		return Movement{}, err
	}
	if quantity.IsZero() && count == 0 {
		return Movement{}, ErrEmptyMovement
	}

	return Movement{direction: direction, quantity: quantity, count: count}, nil
}

// Direction returns the movement direction.
func (m Movement) Direction() Direction { return m.direction }

// Quantity returns the moved quantity.
func (m Movement) Quantity() decimal.Decimal { return m.quantity }

// Count returns the moved unit count.
func (m Movement) Count() int64 { return m.count }

// Inbound returns the inbound quantity, zero for outbound movements.
func (m Movement) Inbound() decimal.Decimal {
	if m.direction == Inbound {
		return m.quantity
	}
	return decimal.Zero
}

// Outbound returns the outbound quantity, zero for inbound movements.
func (m Movement) Outbound() decimal.Decimal {
	if m.direction == Outbound {
		return m.quantity
	}
	return decimal.Zero
}
