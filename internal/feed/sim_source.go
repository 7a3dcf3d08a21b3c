package feed

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"rug-surfer/internal/domain"
)

// simDefaultMint is emitted when no focus token is set.
const simDefaultMint = "SimToken11111111111111111111111111111111111"

// SimSource generates synthetic snapshots so the full pipeline runs without a
// live feed. Prices random-walk around the previous value; risk metrics
// jitter inside plausible ranges.
type SimSource struct {
	interval time.Duration
	logger   *log.Logger
	rng      *rand.Rand

	mu    sync.Mutex
	focus string
	prev  map[string]*domain.Snapshot

	out  chan *domain.Snapshot
	done chan struct{}
}

// NewSimSource creates a simulated source emitting one snapshot per interval.
func NewSimSource(interval time.Duration, seed int64, logger *log.Logger) *SimSource {
	return &SimSource{
		interval: interval,
		logger:   logger,
		rng:      rand.New(rand.NewSource(seed)),
		prev:     make(map[string]*domain.Snapshot),
		out:      make(chan *domain.Snapshot, snapshotQueueDepth),
		done:     make(chan struct{}),
	}
}

var _ Source = (*SimSource)(nil)
var _ FocusSetter = (*SimSource)(nil)

// SetFocus switches generation to the given mint and resets its series.
func (s *SimSource) SetFocus(mint string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.focus = mint
	delete(s.prev, mint)
}

// Start emits snapshots until ctx is cancelled.
func (s *SimSource) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.done:
			return nil
		case <-ticker.C:
			snap := s.generate()
			if !offer(s.out, snap) {
				s.logger.Printf("snapshot queue full, dropping %s", snap.Mint)
			}
		}
	}
}

// Snapshots returns the output queue.
func (s *SimSource) Snapshots() <-chan *domain.Snapshot {
	return s.out
}

// Close stops the source.
func (s *SimSource) Close() error {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	return nil
}

func (s *SimSource) generate() *domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	mint := s.focus
	if mint == "" {
		mint = simDefaultMint
	}

	prev := s.prev[mint]
	price := 0.001
	liquidity := 15000.0
	marketCap := 50000.0
	age := 0.0
	buyVolume, sellVolume := 0.0, 0.0
	if prev != nil {
		price = prev.Price
		liquidity = prev.Liquidity
		marketCap = prev.MarketCap
		age = prev.AgeSeconds
		buyVolume = prev.BuyVolume
		sellVolume = prev.SellVolume
	}

	price *= 1 + (s.rng.Float64()-0.5)*0.01
	whaleSellVolume := s.rng.Float64() * liquidity * 0.05
	whaleSellCount := float64(s.rng.Intn(3))

	snap := &domain.Snapshot{
		Mint:              mint,
		PoolAddress:       "SimPool11111111111111111111111111111111111",
		Price:             price,
		Liquidity:         liquidity,
		MarketCap:         marketCap,
		AgeSeconds:        age + s.interval.Seconds(),
		RugSupplyShare:    s.rng.Float64() * 0.05,
		RugSupplyDelta:    s.rng.Float64() * 0.02,
		ConcentrationTop3: 0.2 + s.rng.Float64()*0.3,
		LiqToMcRatio:      liquidity / marketCap,
		BetaRugVolume:     s.rng.Float64(),
		BuyVolume:         buyVolume*0.8 + s.rng.Float64()*1000,
		SellVolume:        sellVolume*0.8 + s.rng.Float64()*1000,
		BuySpeed:          s.rng.Float64() * 5,
		FlashPatternScore: s.rng.Float64(),
		MultiWalletScore:  s.rng.Float64(),
		WhaleDumpScore:    whaleSellVolume/liquidity*100 + whaleSellCount,
		Holders:           100 + int64(s.rng.Intn(50)),
		LastUpdatedMs:     time.Now().UnixMilli(),
	}
	s.prev[mint] = snap
	return snap
}
