package feed

import (
	"context"

	"rug-surfer/internal/domain"
)

// Source produces snapshots keyed by mint. The engine drains Snapshots()
// once per tick; sources must never block on a slow consumer — when the
// buffer is full the snapshot is dropped (a newer one supersedes it anyway).
type Source interface {
	// Start begins producing snapshots until ctx is cancelled.
	Start(ctx context.Context) error

	// Snapshots is the bounded queue of produced snapshots.
	Snapshots() <-chan *domain.Snapshot

	// Close releases the source's resources.
	Close() error
}

// FocusSetter is implemented by sources that can track a single operator
// chosen token.
type FocusSetter interface {
	SetFocus(mint string)
}

// snapshotQueueDepth bounds a source's output buffer.
const snapshotQueueDepth = 256

// offer pushes a snapshot without blocking, reporting whether it was queued.
func offer(ch chan *domain.Snapshot, s *domain.Snapshot) bool {
	select {
	case ch <- s:
		return true
	default:
		return false
	}
}
