package feature

import (
	"math"
	"testing"

	"rug-surfer/internal/domain"
)

func snapshotWithPrice(price float64) *domain.Snapshot {
	return &domain.Snapshot{Mint: "MintA", Price: price}
}

func TestDerive_EmptyHistoryMomentumIsNeutral(t *testing.T) {
	s := snapshotWithPrice(0.002)

	fv := Derive(s, nil)

	if fv.Momentum != 1.0 {
		t.Errorf("expected neutral momentum 1.0, got %f", fv.Momentum)
	}
}

func TestDerive_MomentumUsesTrailingWindow(t *testing.T) {
	// 7 history entries; only the last 5 (prices 1.0) should enter the mean.
	history := []*domain.Snapshot{
		snapshotWithPrice(100.0),
		snapshotWithPrice(100.0),
		snapshotWithPrice(1.0),
		snapshotWithPrice(1.0),
		snapshotWithPrice(1.0),
		snapshotWithPrice(1.0),
		snapshotWithPrice(1.0),
	}

	fv := Derive(snapshotWithPrice(2.0), history)

	if math.Abs(fv.Momentum-2.0) > 1e-9 {
		t.Errorf("expected momentum 2.0 over trailing window, got %f", fv.Momentum)
	}
}

func TestDerive_ZeroMeanPriceFallsBackToNeutral(t *testing.T) {
	history := []*domain.Snapshot{snapshotWithPrice(0)}

	fv := Derive(snapshotWithPrice(0.5), history)

	if fv.Momentum != 1.0 {
		t.Errorf("expected fallback momentum 1.0 on zero mean, got %f", fv.Momentum)
	}
}

func TestDerive_CopiesSnapshotFields(t *testing.T) {
	s := &domain.Snapshot{
		Mint:              "MintB",
		Price:             0.01,
		Liquidity:         20000,
		MarketCap:         60000,
		RugSupplyShare:    0.04,
		RugSupplyDelta:    0.01,
		ConcentrationTop3: 0.3,
		LiqToMcRatio:      0.33,
		BetaRugVolume:     0.5,
		AgeSeconds:        120,
		BuySpeed:          2.5,
		FlashPatternScore: 0.2,
		MultiWalletScore:  0.1,
		BuyVolume:         1500,
		SellVolume:        900,
	}

	fv := Derive(s, nil)

	if fv.Mint != "MintB" || fv.Liquidity != 20000 || fv.MarketCap != 60000 {
		t.Errorf("snapshot fields not carried: %+v", fv)
	}
	if fv.WhaleDumpScore != 0 {
		t.Errorf("missing whale dump score should default to 0, got %f", fv.WhaleDumpScore)
	}
}
