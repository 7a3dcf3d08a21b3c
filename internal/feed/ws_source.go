package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"rug-surfer/internal/domain"
)

// WSConfig configures WebSocket source behavior.
type WSConfig struct {
	// ReconnectDelay is the initial delay before a reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay caps the exponential reconnect backoff.
	MaxReconnectDelay time.Duration
	// PingInterval is the interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is the timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is the timeout for writing control frames.
	WriteTimeout time.Duration
}

// DefaultWSConfig returns default WebSocket configuration.
func DefaultWSConfig() WSConfig {
	return WSConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// snapshotFrame is the wire shape of one feed message.
type snapshotFrame struct {
	Mint              string  `json:"mint"`
	PoolAddress       string  `json:"pool_address"`
	Price             float64 `json:"price"`
	Liquidity         float64 `json:"liquidity"`
	MarketCap         float64 `json:"market_cap"`
	AgeSeconds        float64 `json:"age_seconds"`
	RugSupplyShare    float64 `json:"rug_supply_share"`
	RugSupplyDelta    float64 `json:"rug_supply_delta"`
	ConcentrationTop3 float64 `json:"concentration_top3"`
	LiqToMcRatio      float64 `json:"liq_to_mc_ratio"`
	BetaRugVolume     float64 `json:"beta_rug_volume"`
	BuyVolume         float64 `json:"buy_volume"`
	SellVolume        float64 `json:"sell_volume"`
	BuySpeed          float64 `json:"buy_speed"`
	FlashPatternScore float64 `json:"flash_pattern_score"`
	MultiWalletScore  float64 `json:"multi_wallet_score"`
	WhaleDumpScore    float64 `json:"whale_dump_score"`
	Holders           int64   `json:"holders"`
	TimestampMs       int64   `json:"timestamp_ms"`
}

// WSSource consumes snapshot frames from a WebSocket feed. It reconnects
// with exponential backoff and never blocks the engine: frames that arrive
// faster than the tick loop drains them are dropped.
type WSSource struct {
	endpoint string
	config   WSConfig
	logger   *log.Logger

	out       chan *domain.Snapshot
	closed    atomic.Bool
	done      chan struct{}
	closeOnce sync.Once
	dropped   atomic.Uint64
}

// NewWSSource creates a WebSocket feed source for the endpoint.
func NewWSSource(endpoint string, config *WSConfig, logger *log.Logger) *WSSource {
	cfg := DefaultWSConfig()
	if config != nil {
		cfg = *config
	}
	return &WSSource{
		endpoint: endpoint,
		config:   cfg,
		logger:   logger,
		out:      make(chan *domain.Snapshot, snapshotQueueDepth),
		done:     make(chan struct{}),
	}
}

var _ Source = (*WSSource)(nil)

// Start connects and consumes frames until ctx is cancelled, reconnecting on
// read failures.
func (s *WSSource) Start(ctx context.Context) error {
	delay := s.config.ReconnectDelay

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if s.closed.Load() {
			return nil
		}

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.endpoint, nil)
		if err != nil {
			s.logger.Printf("dial %s: %v (retry in %s)", s.endpoint, err, delay)
			if !sleepCtx(ctx, delay) {
				return ctx.Err()
			}
			delay = nextDelay(delay, s.config.MaxReconnectDelay)
			continue
		}

		delay = s.config.ReconnectDelay
		if err := s.consume(ctx, conn); err != nil && ctx.Err() == nil && !s.closed.Load() {
			s.logger.Printf("feed connection lost: %v (reconnecting)", err)
		}
		conn.Close()
	}
}

// consume reads frames from one connection until it fails or ctx ends.
// Cancellation closes the connection to unblock the pending read.
func (s *WSSource) consume(ctx context.Context, conn *websocket.Conn) error {
	pingDone := make(chan struct{})
	defer close(pingDone)
	go s.pingLoop(conn, pingDone)
	go func() {
		select {
		case <-ctx.Done():
		case <-s.done:
		case <-pingDone:
			return
		}
		conn.Close()
	}()

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if s.closed.Load() {
			return nil
		}

		conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read frame: %w", err)
		}

		var frame snapshotFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			s.logger.Printf("skipping malformed frame: %v", err)
			continue
		}
		if frame.Mint == "" {
			continue
		}

		if !offer(s.out, frameToSnapshot(&frame)) {
			s.dropped.Add(1)
		}
	}
}

func (s *WSSource) pingLoop(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(s.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			deadline := time.Now().Add(s.config.WriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		}
	}
}

// Snapshots returns the output queue.
func (s *WSSource) Snapshots() <-chan *domain.Snapshot {
	return s.out
}

// Close stops the source. An in-flight read is unblocked by closing the
// connection.
func (s *WSSource) Close() error {
	s.closed.Store(true)
	s.closeOnce.Do(func() { close(s.done) })
	return nil
}

// Dropped reports frames discarded because the queue was full.
func (s *WSSource) Dropped() uint64 {
	return s.dropped.Load()
}

func frameToSnapshot(f *snapshotFrame) *domain.Snapshot {
	ts := f.TimestampMs
	if ts == 0 {
		ts = time.Now().UnixMilli()
	}
	return &domain.Snapshot{
		Mint:              f.Mint,
		PoolAddress:       f.PoolAddress,
		Price:             f.Price,
		Liquidity:         f.Liquidity,
		MarketCap:         f.MarketCap,
		AgeSeconds:        f.AgeSeconds,
		RugSupplyShare:    f.RugSupplyShare,
		RugSupplyDelta:    f.RugSupplyDelta,
		ConcentrationTop3: f.ConcentrationTop3,
		LiqToMcRatio:      f.LiqToMcRatio,
		BetaRugVolume:     f.BetaRugVolume,
		BuyVolume:         f.BuyVolume,
		SellVolume:        f.SellVolume,
		BuySpeed:          f.BuySpeed,
		FlashPatternScore: f.FlashPatternScore,
		MultiWalletScore:  f.MultiWalletScore,
		WhaleDumpScore:    f.WhaleDumpScore,
		Holders:           f.Holders,
		LastUpdatedMs:     ts,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func nextDelay(current, max time.Duration) time.Duration {
	next := current * 2
	if next > max {
		next = max
	}
	return next
}
