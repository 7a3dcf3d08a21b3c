package postgres

import (
	"context"
	"fmt"

	"rug-surfer/internal/domain"
	"rug-surfer/internal/storage"
)

// TradeLogStore implements storage.TradeLogStore using PostgreSQL.
type TradeLogStore struct {
	pool *Pool
}

// NewTradeLogStore creates a new TradeLogStore.
func NewTradeLogStore(pool *Pool) *TradeLogStore {
	return &TradeLogStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeLogStore = (*TradeLogStore)(nil)

// Append adds a closed trade. Returns ErrDuplicateKey if trade_id exists.
func (s *TradeLogStore) Append(ctx context.Context, t *domain.ClosedTrade) error {
	if t == nil || t.TradeID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO trade_log (
			trade_id, token_mint,
			entry_time_ms, exit_time_ms, entry_price, exit_price,
			pnl_percent, pnl_sol, exit_reason,
			liquidity, market_cap, rug_supply_share, rug_supply_delta,
			concentration_top3, liq_to_mc_ratio, beta_rug_volume,
			buy_volume, sell_volume, buy_speed,
			flash_pattern_score, multi_wallet_score, whale_dump_score,
			momentum, p_rug_entry, p_rug_exit, simulation
		) VALUES (
			$1, $2,
			$3, $4, $5, $6,
			$7, $8, $9,
			$10, $11, $12, $13,
			$14, $15, $16,
			$17, $18, $19,
			$20, $21, $22,
			$23, $24, $25, $26
		)
	`

	f := t.Features
	_, err := s.pool.Exec(ctx, query,
		t.TradeID, t.Mint,
		t.EntryTimeMs, t.ExitTimeMs, t.EntryPrice, t.ExitPrice,
		t.PnlPercent, t.PnlBase, t.ExitReason,
		f.Liquidity, f.MarketCap, f.RugSupplyShare, f.RugSupplyDelta,
		f.ConcentrationTop3, f.LiqToMcRatio, f.BetaRugVolume,
		f.BuyVolume, f.SellVolume, f.BuySpeed,
		f.FlashPatternScore, f.MultiWalletScore, f.WhaleDumpScore,
		f.Momentum, t.PRugEntry, t.PRugExit, t.Simulated,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert closed trade: %w", err)
	}
	return nil
}

// List retrieves all closed trades ordered by exit time ASC.
func (s *TradeLogStore) List(ctx context.Context) ([]*domain.ClosedTrade, error) {
	query := `
		SELECT
			trade_id, token_mint,
			entry_time_ms, exit_time_ms, entry_price, exit_price,
			pnl_percent, pnl_sol, exit_reason,
			liquidity, market_cap, rug_supply_share, rug_supply_delta,
			concentration_top3, liq_to_mc_ratio, beta_rug_volume,
			buy_volume, sell_volume, buy_speed,
			flash_pattern_score, multi_wallet_score, whale_dump_score,
			momentum, p_rug_entry, p_rug_exit, simulation
		FROM trade_log
		ORDER BY exit_time_ms ASC, trade_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query trade log: %w", err)
	}
	defer rows.Close()

	var trades []*domain.ClosedTrade
	for rows.Next() {
		var t domain.ClosedTrade
		f := &t.Features
		err := rows.Scan(
			&t.TradeID, &t.Mint,
			&t.EntryTimeMs, &t.ExitTimeMs, &t.EntryPrice, &t.ExitPrice,
			&t.PnlPercent, &t.PnlBase, &t.ExitReason,
			&f.Liquidity, &f.MarketCap, &f.RugSupplyShare, &f.RugSupplyDelta,
			&f.ConcentrationTop3, &f.LiqToMcRatio, &f.BetaRugVolume,
			&f.BuyVolume, &f.SellVolume, &f.BuySpeed,
			&f.FlashPatternScore, &f.MultiWalletScore, &f.WhaleDumpScore,
			&f.Momentum, &t.PRugEntry, &t.PRugExit, &t.Simulated,
		)
		if err != nil {
			return nil, fmt.Errorf("scan trade row: %w", err)
		}
		f.Mint = t.Mint
		f.Price = t.ExitPrice
		trades = append(trades, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade rows: %w", err)
	}

	return trades, nil
}
