package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a ledger write,
	// including the item row lock wait
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// reconcilePageSize is the number of items fetched per reconciliation page
	reconcilePageSize = 200
)
