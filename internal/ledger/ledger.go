// Package ledger owns the set of open positions. It is the single writer for
// position state: every open and close goes through its mutex, which is what
// upholds the at-most-one-open-position-per-mint invariant under the engine's
// concurrent per-instrument evaluation.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"rug-surfer/internal/domain"
	"rug-surfer/internal/idhash"
	"rug-surfer/internal/storage"
)

var (
	// ErrPositionExists is returned by Open when a live position already
	// exists for the mint. A conflict, not a failure.
	ErrPositionExists = errors.New("position already open for mint")

	// ErrNoPosition is returned by Close when no live position exists for
	// the mint. The second close of an already-closed mint hits this.
	ErrNoPosition = errors.New("no open position for mint")
)

// Ledger tracks open positions and emits closed trades. A close is complete
// only once its trade-log append succeeded; a failed append leaves the
// position open so no trade event is silently dropped.
type Ledger struct {
	mu        sync.Mutex
	positions map[string]*domain.Position // keyed by mint

	tradeLog storage.TradeLogStore
	logger   *log.Logger

	// virtualBalance accumulates realized simulated pnl in SOL.
	virtualBalance float64
}

// OpenParams describes the position to create.
type OpenParams struct {
	Mint        string
	EntryPrice  float64
	EntryTimeMs int64
	SizeBase    float64
	PRugEntry   float64
	Simulated   bool
	AutoOpened  bool
}

// New creates a ledger writing closed trades to tradeLog.
func New(tradeLog storage.TradeLogStore, logger *log.Logger) *Ledger {
	return &Ledger{
		positions: make(map[string]*domain.Position),
		tradeLog:  tradeLog,
		logger:    logger,
	}
}

// Open creates a live position for the mint. Returns ErrPositionExists if one
// is already open; the existing position is left untouched.
func (l *Ledger) Open(_ context.Context, p OpenParams) (*domain.Position, error) {
	if p.Mint == "" || p.EntryPrice <= 0 || p.SizeBase <= 0 {
		return nil, storage.ErrInvalidInput
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.positions[p.Mint]; exists {
		return nil, ErrPositionExists
	}

	pos := &domain.Position{
		ID:          uuid.NewString(),
		Mint:        p.Mint,
		EntryPrice:  p.EntryPrice,
		EntryTimeMs: p.EntryTimeMs,
		SizeBase:    p.SizeBase,
		SizeTokens:  p.SizeBase / p.EntryPrice,
		PRugEntry:   p.PRugEntry,
		Simulated:   p.Simulated,
		AutoOpened:  p.AutoOpened,
	}
	l.positions[p.Mint] = pos

	clone := *pos
	return &clone, nil
}

// Close removes the position for the mint and emits the immutable ClosedTrade
// after exactly one successful trade-log append. Returns ErrNoPosition when
// the mint is flat, so a repeated close is a no-op.
func (l *Ledger) Close(ctx context.Context, mint string, exitPrice float64, exitTimeMs int64, reason string, pRugExit float64, features *domain.FeatureVector) (*domain.ClosedTrade, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	pos, exists := l.positions[mint]
	if !exists {
		return nil, ErrNoPosition
	}

	pnlPercent := (exitPrice - pos.EntryPrice) / pos.EntryPrice
	trade := &domain.ClosedTrade{
		TradeID:     idhash.ComputeTradeID(mint, pos.EntryTimeMs, exitTimeMs, pos.Simulated),
		Mint:        mint,
		EntryTimeMs: pos.EntryTimeMs,
		ExitTimeMs:  exitTimeMs,
		EntryPrice:  pos.EntryPrice,
		ExitPrice:   exitPrice,
		PnlPercent:  pnlPercent,
		PnlBase:     pos.SizeBase * pnlPercent,
		ExitReason:  reason,
		PRugEntry:   pos.PRugEntry,
		PRugExit:    pRugExit,
		Simulated:   pos.Simulated,
	}
	if features != nil {
		trade.Features = *features
	}

	// The append and the position removal form one unit of work: an append
	// failure leaves the position open for a later retry.
	if err := l.tradeLog.Append(ctx, trade); err != nil {
		return nil, fmt.Errorf("append closed trade %s: %w", trade.TradeID, err)
	}

	delete(l.positions, mint)
	if pos.Simulated {
		l.virtualBalance += trade.PnlBase
	}

	l.logger.Printf("closed %s reason=%s pnl=%.2f%%", mint, reason, pnlPercent*100)
	return trade, nil
}

// Get returns a copy of the live position for the mint, or nil when flat.
func (l *Ledger) Get(mint string) *domain.Position {
	l.mu.Lock()
	defer l.mu.Unlock()

	pos, exists := l.positions[mint]
	if !exists {
		return nil
	}
	clone := *pos
	return &clone
}

// ListOpen returns a point-in-time copy of all live positions. Callers
// iterating it are unaffected by concurrent opens and closes.
func (l *Ledger) ListOpen() []*domain.Position {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]*domain.Position, 0, len(l.positions))
	for _, pos := range l.positions {
		clone := *pos
		out = append(out, &clone)
	}
	return out
}

// OpenCount returns the number of live positions.
func (l *Ledger) OpenCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.positions)
}

// VirtualBalance returns accumulated simulated pnl in SOL.
func (l *Ledger) VirtualBalance() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.virtualBalance
}
