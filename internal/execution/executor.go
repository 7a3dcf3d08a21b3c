// Package execution turns trade decisions into fills. The paper executor
// settles immediately; the Jupiter executor builds and sends real swaps.
package execution

import (
	"context"
	"errors"
	"time"
)

// ErrNoRoute is returned when the swap aggregator finds no route for a pair.
var ErrNoRoute = errors.New("execution: no route found")

// Settlement is the result of a filled order.
type Settlement struct {
	// Signature identifies the fill. For paper trades this is a generated
	// id, for live trades the transaction signature.
	Signature string
	// Price is the effective fill price in base units per token.
	Price float64
	// Tokens is the token quantity bought or sold.
	Tokens float64
	// FilledAtMs is the settlement time in unix milliseconds.
	FilledAtMs int64
}

// Executor places orders against a venue.
type Executor interface {
	// Buy spends amountBase of the base currency on the mint's token.
	Buy(ctx context.Context, mint string, amountBase float64, price float64) (*Settlement, error)
	// Sell liquidates amountTokens of the mint's token back to base.
	Sell(ctx context.Context, mint string, amountTokens float64, price float64) (*Settlement, error)
}

func nowMs() int64 {
	return time.Now().UnixMilli()
}
