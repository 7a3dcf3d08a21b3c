package clickhouse

import (
	"context"
	"fmt"

	"rug-surfer/internal/domain"
	"rug-surfer/internal/storage"
)

// SnapshotArchive implements storage.SnapshotArchive using ClickHouse.
// MergeTree does not enforce uniqueness; the archive is a raw observation
// log, so repeated snapshots are acceptable.
type SnapshotArchive struct {
	conn *Conn
}

// NewSnapshotArchive creates a new SnapshotArchive.
func NewSnapshotArchive(conn *Conn) *SnapshotArchive {
	return &SnapshotArchive{conn: conn}
}

// Compile-time interface check.
var _ storage.SnapshotArchive = (*SnapshotArchive)(nil)

// InsertBatch stores one tick's worth of snapshots.
func (s *SnapshotArchive) InsertBatch(ctx context.Context, snapshots []*domain.Snapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO token_snapshots (
			mint, pool_address, timestamp_ms,
			price, liquidity, market_cap, age_seconds,
			rug_supply_share, rug_supply_delta, concentration_top3,
			liq_to_mc_ratio, beta_rug_volume,
			buy_volume, sell_volume, buy_speed,
			flash_pattern_score, multi_wallet_score, whale_dump_score,
			holders
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, snap := range snapshots {
		err = batch.Append(
			snap.Mint, snap.PoolAddress, snap.LastUpdatedMs,
			snap.Price, snap.Liquidity, snap.MarketCap, snap.AgeSeconds,
			snap.RugSupplyShare, snap.RugSupplyDelta, snap.ConcentrationTop3,
			snap.LiqToMcRatio, snap.BetaRugVolume,
			snap.BuyVolume, snap.SellVolume, snap.BuySpeed,
			snap.FlashPatternScore, snap.MultiWalletScore, snap.WhaleDumpScore,
			snap.Holders,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// CountByMint returns the number of archived snapshots for a mint.
func (s *SnapshotArchive) CountByMint(ctx context.Context, mint string) (uint64, error) {
	var count uint64
	query := `SELECT count() FROM token_snapshots WHERE mint = ?`
	if err := s.conn.QueryRow(ctx, query, mint).Scan(&count); err != nil {
		return 0, fmt.Errorf("count snapshots: %w", err)
	}
	return count, nil
}
