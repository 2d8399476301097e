package domain

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidName      = errors.New("invalid name")
	ErrInvalidQuantity  = errors.New("invalid quantity")
	ErrInvalidCount     = errors.New("invalid count")
	ErrCommentTooLong   = errors.New("comment exceeds maximum length")
	ErrReferenceTooLong = errors.New("reference code exceeds maximum length")
)

// Validation constants
const (
	MaxNameLength      = 200
	MinNameLength      = 1
	MaxCommentLength   = 2000
	MaxReferenceLength = 64
	MaxQuantity        = "100000000" // 100 million kg
	MaxCount           = 1_000_000_000
	QuantityScale      = 3
)

var maxQuantity = decimal.RequireFromString(MaxQuantity)

// ValidateName validates an item or reference entity name.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)

	if utf8.RuneCountInString(name) < MinNameLength {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}

	if utf8.RuneCountInString(name) > MaxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, MaxNameLength)
	}

	return nil
}

// NormalizeName trims and collapses inner whitespace.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// ValidateComment validates free text.
func ValidateComment(comment string) error {
	if utf8.RuneCountInString(comment) > MaxCommentLength {
		return fmt.Errorf("%w: limit is %d characters", ErrCommentTooLong, MaxCommentLength)
	}
	return nil
}

// ValidateReference validates an internal or external reference code.
func ValidateReference(ref string) error {
	if len(ref) > MaxReferenceLength {
		return fmt.Errorf("%w: limit is %d characters", ErrReferenceTooLong, MaxReferenceLength)
	}
	return nil
}

// ValidateQuantity validates a movement quantity: non-negative, at most
// three decimal places and below the configured maximum.
func ValidateQuantity(q decimal.Decimal) error {
	if q.IsNegative() {
		return fmt.Errorf("%w: must not be negative", ErrInvalidQuantity)
	}

	if q.Exponent() < -QuantityScale && !q.Equal(q.Truncate(QuantityScale)) {
		return fmt.Errorf("%w: at most %d decimal places", ErrInvalidQuantity, QuantityScale)
	}

	if q.GreaterThan(maxQuantity) {
		return fmt.Errorf("%w: maximum is %s", ErrInvalidQuantity, MaxQuantity)
	}

	return nil
}

// ValidateCount validates a unit count. The bound keeps running count
// balances far from int64 overflow.
func ValidateCount(c int64) error {
	if c < 0 {
		return fmt.Errorf("%w: must not be negative", ErrInvalidCount)
	}
	if c > MaxCount {
		return fmt.Errorf("%w: maximum is %d", ErrInvalidCount, MaxCount)
	}
	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int) {
	const MaxPageSize = 500
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
