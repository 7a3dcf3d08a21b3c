// Package csvfile persists closed trades as a flat CSV journal, one row per
// trade, header written once on first use.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"

	"rug-surfer/internal/domain"
	"rug-surfer/internal/storage"
)

var header = []string{
	"trade_id",
	"token_mint",
	"entry_time_ms",
	"exit_time_ms",
	"entry_price",
	"exit_price",
	"pnl_percent",
	"pnl_sol",
	"exit_reason",
	"liquidity",
	"market_cap",
	"rug_supply_share",
	"rug_supply_delta",
	"concentration_top3",
	"liq_to_mc_ratio",
	"beta_rug_volume",
	"buy_volume",
	"sell_volume",
	"buy_speed",
	"flash_pattern_score",
	"multi_wallet_score",
	"whale_dump_score",
	"p_rug_entry",
	"p_rug_exit",
	"simulation",
}

// TradeLog is a CSV-backed implementation of storage.TradeLogStore.
type TradeLog struct {
	mu   sync.Mutex
	path string
	file *os.File
	w    *csv.Writer
	seen map[string]struct{} // trade ids written this run
}

// NewTradeLog opens (or creates) the journal at path. The header row is
// written only when the file is new or empty.
func NewTradeLog(path string) (*TradeLog, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open trade journal: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat trade journal: %w", err)
	}

	w := csv.NewWriter(file)
	if info.Size() == 0 {
		if err := w.Write(header); err != nil {
			file.Close()
			return nil, fmt.Errorf("write journal header: %w", err)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			file.Close()
			return nil, fmt.Errorf("flush journal header: %w", err)
		}
	}

	return &TradeLog{
		path: path,
		file: file,
		w:    w,
		seen: make(map[string]struct{}),
	}, nil
}

var _ storage.TradeLogStore = (*TradeLog)(nil)

// Append writes one row and flushes it to disk.
func (s *TradeLog) Append(_ context.Context, t *domain.ClosedTrade) error {
	if t == nil || t.TradeID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.seen[t.TradeID]; dup {
		return storage.ErrDuplicateKey
	}

	f := t.Features
	row := []string{
		t.TradeID,
		t.Mint,
		strconv.FormatInt(t.EntryTimeMs, 10),
		strconv.FormatInt(t.ExitTimeMs, 10),
		formatFloat(t.EntryPrice),
		formatFloat(t.ExitPrice),
		formatFloat(t.PnlPercent),
		formatFloat(t.PnlBase),
		t.ExitReason,
		formatFloat(f.Liquidity),
		formatFloat(f.MarketCap),
		formatFloat(f.RugSupplyShare),
		formatFloat(f.RugSupplyDelta),
		formatFloat(f.ConcentrationTop3),
		formatFloat(f.LiqToMcRatio),
		formatFloat(f.BetaRugVolume),
		formatFloat(f.BuyVolume),
		formatFloat(f.SellVolume),
		formatFloat(f.BuySpeed),
		formatFloat(f.FlashPatternScore),
		formatFloat(f.MultiWalletScore),
		formatFloat(f.WhaleDumpScore),
		formatFloat(t.PRugEntry),
		formatFloat(t.PRugExit),
		strconv.FormatBool(t.Simulated),
	}

	if err := s.w.Write(row); err != nil {
		return fmt.Errorf("write trade row: %w", err)
	}
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		return fmt.Errorf("flush trade row: %w", err)
	}

	s.seen[t.TradeID] = struct{}{}
	return nil
}

// List reads the journal back. Rows appear in append order, which is exit
// time order for a single engine run.
func (s *TradeLog) List(_ context.Context) ([]*domain.ClosedTrade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read trade journal: %w", err)
	}
	return ParseJournal(data)
}

// Close flushes and closes the underlying file.
func (s *TradeLog) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.w.Flush()
	if err := s.w.Error(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
