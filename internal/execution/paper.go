package execution

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"rug-surfer/internal/storage"
)

// PaperExecutor fills every order instantly at the quoted price. It performs
// no IO and never fails on a well-formed order, which keeps paper sessions
// deterministic.
type PaperExecutor struct{}

// NewPaperExecutor creates a simulated executor.
func NewPaperExecutor() *PaperExecutor {
	return &PaperExecutor{}
}

var _ Executor = (*PaperExecutor)(nil)

// Buy fills immediately at price.
func (e *PaperExecutor) Buy(ctx context.Context, mint string, amountBase float64, price float64) (*Settlement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if mint == "" || amountBase <= 0 || price <= 0 {
		return nil, fmt.Errorf("paper buy %q amount=%v price=%v: %w", mint, amountBase, price, storage.ErrInvalidInput)
	}
	return &Settlement{
		Signature:  "paper-" + uuid.NewString(),
		Price:      price,
		Tokens:     amountBase / price,
		FilledAtMs: nowMs(),
	}, nil
}

// Sell fills immediately at price.
func (e *PaperExecutor) Sell(ctx context.Context, mint string, amountTokens float64, price float64) (*Settlement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if mint == "" || amountTokens <= 0 || price <= 0 {
		return nil, fmt.Errorf("paper sell %q tokens=%v price=%v: %w", mint, amountTokens, price, storage.ErrInvalidInput)
	}
	return &Settlement{
		Signature:  "paper-" + uuid.NewString(),
		Price:      price,
		Tokens:     amountTokens,
		FilledAtMs: nowMs(),
	}, nil
}
