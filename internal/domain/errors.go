package domain

import "errors"

var (
	// Item errors
	ErrItemNotFound     = errors.New("item not found")
	ErrItemInactive     = errors.New("item is inactive")
	ErrItemKindMismatch = errors.New("item does not belong to this ledger")
	ErrItemInUse        = errors.New("item is referenced by transactions or other items")
	ErrInvalidItemKind  = errors.New("invalid item kind")

	// Hierarchy errors
	ErrOriginNotFound = errors.New("origin item not found")
	ErrSelfOrigin     = errors.New("item cannot be its own origin")
	ErrOriginCycle    = errors.New("origin link would create a cycle")

	// Reference entity errors
	ErrStakeholderNotFound    = errors.New("stakeholder not found")
	ErrPackagingStyleNotFound = errors.New("packaging style not found")
	ErrDuplicateName          = errors.New("name already in use")
	ErrInvalidStakeholderKind = errors.New("stakeholder kind must be supplier, customer or both")

	// Transaction errors
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrEmptyMovement       = errors.New("movement quantity and count are both zero")
	ErrInvalidDirection    = errors.New("direction must be inbound or outbound")
	ErrCodeGeneration      = errors.New("failed to generate transaction code")
	ErrInvalidCode         = errors.New("invalid transaction code")
	ErrResetReasonRequired = errors.New("reset reason is required")
	ErrReservedReference   = errors.New("external reference is reserved for balance resets")
	ErrBackdatedMovement   = errors.New("movement date precedes the latest transaction of the item")
	ErrNothingToReset      = errors.New("balance is already zero")
)
