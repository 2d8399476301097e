package domain

import "time"

// ItemKind identifies which ledger an item is tracked in.
type ItemKind string

const (
	ItemKindYarn     ItemKind = "yarn"
	ItemKindRaw      ItemKind = "raw"
	ItemKindWarpBeam ItemKind = "warp_beam"
)

// ItemKinds returns every ledger kind in display order.
func ItemKinds() []ItemKind {
	return []ItemKind{ItemKindYarn, ItemKindRaw, ItemKindWarpBeam}
}

// IsValid reports whether k is a known item kind.
func (k ItemKind) IsValid() bool {
	switch k {
	case ItemKindYarn, ItemKindRaw, ItemKindWarpBeam:
		return true
	}
	return false
}

// Item is a tracked inventory entity with a running balance.
type Item struct {
	ID        string
	Kind      ItemKind
	Name      string
	Active    bool
	OriginID  *string
	Comment   string
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CanTransact checks that the item may receive a movement in the ledger of kind.
func (i *Item) CanTransact(kind ItemKind) error {
	if i.Kind != kind {
		return ErrItemKindMismatch
	}
	if !i.Active {
		return ErrItemInactive
	}
	return nil
}

// StakeholderKind describes the counterparty role.
type StakeholderKind string

const (
	StakeholderSupplier StakeholderKind = "supplier"
	StakeholderCustomer StakeholderKind = "customer"
	StakeholderBoth     StakeholderKind = "both"
)

// IsValid reports whether k is a known stakeholder kind.
func (k StakeholderKind) IsValid() bool {
	switch k {
	case StakeholderSupplier, StakeholderCustomer, StakeholderBoth:
		return true
	}
	return false
}

// Stakeholder is a counterparty (supplier or customer) of a transaction.
type Stakeholder struct {
	ID        string
	Name      string
	Kind      StakeholderKind
	Phone     string
	Address   string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PackagingStyle describes how goods of a transaction were packed.
type PackagingStyle struct {
	ID          string
	Name        string
	Description string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
