// Package feed supplies market snapshots to the engine: a bounded
// per-instrument history, a simulated source for paper trading, and a
// WebSocket source for live feeds.
package feed

import (
	"sync"

	"rug-surfer/internal/domain"
)

// DefaultHistoryDepth bounds the per-mint snapshot history.
const DefaultHistoryDepth = 50

// History keeps the last N snapshots per mint, append-only with oldest
// eviction. Insertion order matters: the momentum window reads the tail.
type History struct {
	mu    sync.RWMutex
	data  map[string][]*domain.Snapshot
	depth int
}

// NewHistory creates a history bounded to depth entries per mint.
// A non-positive depth falls back to DefaultHistoryDepth.
func NewHistory(depth int) *History {
	if depth <= 0 {
		depth = DefaultHistoryDepth
	}
	return &History{
		data:  make(map[string][]*domain.Snapshot),
		depth: depth,
	}
}

// Append records a snapshot for its mint, evicting the oldest entry once the
// bound is reached.
func (h *History) Append(s *domain.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	series := h.data[s.Mint]
	series = append(series, s)
	if len(series) > h.depth {
		series = series[1:]
	}
	h.data[s.Mint] = series
}

// Recent returns a copy of the stored series for the mint, oldest first.
func (h *History) Recent(mint string) []*domain.Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()

	series := h.data[mint]
	out := make([]*domain.Snapshot, len(series))
	copy(out, series)
	return out
}

// Drop discards the stored series for a mint. Used when the operator
// refocuses tracking on a token.
func (h *History) Drop(mint string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.data, mint)
}

// Len returns the stored series length for a mint.
func (h *History) Len(mint string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.data[mint])
}
