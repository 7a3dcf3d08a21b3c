// Package storage defines the persistence interfaces for closed trades and
// snapshot archival, with in-memory, CSV, PostgreSQL and ClickHouse
// implementations in subpackages.
package storage

import (
	"context"

	"rug-surfer/internal/domain"
)

// TradeLogStore is the durable, append-only record of closed trades.
// One row per closed trade, never rewritten.
type TradeLogStore interface {
	// Append adds a closed trade. Returns ErrDuplicateKey if trade_id exists.
	Append(ctx context.Context, t *domain.ClosedTrade) error

	// List retrieves all closed trades ordered by exit time ASC.
	List(ctx context.Context) ([]*domain.ClosedTrade, error)
}

// SnapshotArchive persists drained market snapshots for offline analysis.
// Best-effort: the engine tolerates archive failures.
type SnapshotArchive interface {
	// InsertBatch stores one tick's worth of snapshots.
	InsertBatch(ctx context.Context, snapshots []*domain.Snapshot) error
}
