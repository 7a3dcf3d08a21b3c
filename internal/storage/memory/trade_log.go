package memory

import (
	"context"
	"sort"
	"sync"

	"rug-surfer/internal/domain"
	"rug-surfer/internal/storage"
)

// TradeLog is an in-memory implementation of storage.TradeLogStore.
type TradeLog struct {
	mu   sync.RWMutex
	data map[string]*domain.ClosedTrade // keyed by trade_id
}

// NewTradeLog creates a new in-memory trade log.
func NewTradeLog() *TradeLog {
	return &TradeLog{
		data: make(map[string]*domain.ClosedTrade),
	}
}

var _ storage.TradeLogStore = (*TradeLog)(nil)

// Append adds a closed trade. Returns ErrDuplicateKey if trade_id exists.
func (s *TradeLog) Append(_ context.Context, t *domain.ClosedTrade) error {
	if t == nil || t.TradeID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[t.TradeID]; exists {
		return storage.ErrDuplicateKey
	}

	clone := *t
	s.data[t.TradeID] = &clone
	return nil
}

// List retrieves all closed trades ordered by exit time ASC.
func (s *TradeLog) List(_ context.Context) ([]*domain.ClosedTrade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.ClosedTrade, 0, len(s.data))
	for _, t := range s.data {
		clone := *t
		out = append(out, &clone)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].ExitTimeMs == out[j].ExitTimeMs {
			return out[i].TradeID < out[j].TradeID
		}
		return out[i].ExitTimeMs < out[j].ExitTimeMs
	})

	return out, nil
}

// Len returns the number of recorded trades.
func (s *TradeLog) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
