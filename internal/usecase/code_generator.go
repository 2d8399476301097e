package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/iho/textileledger/internal/domain"
)

// CodeGenerator allocates human-readable transaction codes of the form
// {PREFIX}-{yyyyMMdd}-{NNNN}. Sequences restart at 1 every day.
type CodeGenerator struct {
	txRepo TransactionRepository
}

// NewCodeGenerator creates a new CodeGenerator.
func NewCodeGenerator(txRepo TransactionRepository) *CodeGenerator {
	return &CodeGenerator{txRepo: txRepo}
}

// Next returns the next free code for prefix on day. It must run inside tx;
// the sequence lock is held until tx commits or rolls back. Any lookup
// failure is returned as ErrCodeGeneration.
func (g *CodeGenerator) Next(ctx context.Context, tx Transaction, prefix string, day time.Time) (string, error) {
	dayPrefix := domain.CodeDayPrefix(prefix, day)

	if err := g.txRepo.LockCodeSequence(ctx, tx, dayPrefix); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrCodeGeneration, err)
	}

	last, err := g.txRepo.LastCode(ctx, tx, dayPrefix)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrCodeGeneration, err)
	}

	seq := 1
	if last != "" {
		parts, err := domain.ParseCode(last)
		if err != nil {
			return "", fmt.Errorf("%w: %w", domain.ErrCodeGeneration, err)
		}
		seq = parts.Sequence + 1
	}

	return domain.FormatCode(prefix, day, seq)
}
