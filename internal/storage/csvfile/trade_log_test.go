package csvfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rug-surfer/internal/domain"
	"rug-surfer/internal/storage"
)

func sampleTrade(id string, exitMs int64) *domain.ClosedTrade {
	return &domain.ClosedTrade{
		TradeID:     id,
		Mint:        "MintA",
		EntryTimeMs: exitMs - 60000,
		ExitTimeMs:  exitMs,
		EntryPrice:  1.0,
		ExitPrice:   1.06,
		PnlPercent:  0.06,
		PnlBase:     0.012,
		ExitReason:  domain.ExitReasonTP,
		PRugEntry:   0.1,
		PRugExit:    0.12,
		Simulated:   true,
		Features: domain.FeatureVector{
			Mint:      "MintA",
			Price:     1.06,
			Liquidity: 20000,
			MarketCap: 60000,
			Momentum:  1.8,
		},
	}
}

func TestTradeLog_HeaderWrittenOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades_log.csv")
	ctx := context.Background()

	log, err := NewTradeLog(path)
	if err != nil {
		t.Fatalf("NewTradeLog: %v", err)
	}
	if err := log.Append(ctx, sampleTrade("t1", 1000)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := log.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Reopen and append again: no second header.
	log, err = NewTradeLog(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if err := log.Append(ctx, sampleTrade("t2", 2000)); err != nil {
		t.Fatalf("second Append: %v", err)
	}
	log.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got := strings.Count(string(data), "trade_id,"); got != 1 {
		t.Errorf("expected exactly one header row, found %d", got)
	}
	lines := strings.Count(strings.TrimSpace(string(data)), "\n") + 1
	if lines != 3 {
		t.Errorf("expected header + 2 rows, got %d lines", lines)
	}
}

func TestTradeLog_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades_log.csv")
	ctx := context.Background()

	log, err := NewTradeLog(path)
	if err != nil {
		t.Fatalf("NewTradeLog: %v", err)
	}
	defer log.Close()

	want := sampleTrade("t1", 1000)
	if err := log.Append(ctx, want); err != nil {
		t.Fatalf("Append: %v", err)
	}

	got, err := log.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(got))
	}
	tr := got[0]
	if tr.TradeID != "t1" || tr.Mint != "MintA" || tr.ExitReason != domain.ExitReasonTP {
		t.Errorf("row mismatch: %+v", tr)
	}
	if tr.PnlPercent != 0.06 || tr.Features.Liquidity != 20000 || !tr.Simulated {
		t.Errorf("numeric fields mismatch: %+v", tr)
	}
}

func TestTradeLog_DuplicateWithinRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades_log.csv")
	ctx := context.Background()

	log, err := NewTradeLog(path)
	if err != nil {
		t.Fatalf("NewTradeLog: %v", err)
	}
	defer log.Close()

	if err := log.Append(ctx, sampleTrade("t1", 1000)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := log.Append(ctx, sampleTrade("t1", 1000)); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
}
