package storage

import (
	"context"
	"errors"

	"rug-surfer/internal/domain"
)

// FanoutTradeLog appends every trade to all underlying stores. The first
// store is the primary and serves List; a duplicate on any secondary is
// tolerated so a retried append stays idempotent across sinks.
type FanoutTradeLog struct {
	stores []TradeLogStore
}

// NewFanoutTradeLog creates a fanout over the given stores. At least one
// store is required; it becomes the primary.
func NewFanoutTradeLog(stores ...TradeLogStore) *FanoutTradeLog {
	return &FanoutTradeLog{stores: stores}
}

var _ TradeLogStore = (*FanoutTradeLog)(nil)

// Append writes to all stores. A failure on the primary fails the append; a
// secondary ErrDuplicateKey is skipped.
func (f *FanoutTradeLog) Append(ctx context.Context, t *domain.ClosedTrade) error {
	for i, s := range f.stores {
		err := s.Append(ctx, t)
		if err == nil {
			continue
		}
		if i > 0 && errors.Is(err, ErrDuplicateKey) {
			continue
		}
		return err
	}
	return nil
}

// List reads from the primary store.
func (f *FanoutTradeLog) List(ctx context.Context) ([]*domain.ClosedTrade, error) {
	return f.stores[0].List(ctx)
}
