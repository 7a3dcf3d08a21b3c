// Package feature derives the fixed-shape feature vector consumed by the risk
// model and the decision policy from a raw snapshot plus recent history.
package feature

import "rug-surfer/internal/domain"

// MomentumWindow is the number of trailing history entries averaged for the
// momentum ratio.
const MomentumWindow = 5

// Derive builds a FeatureVector from a snapshot and the bounded history for
// the same mint. Pure and total: it has no failure mode.
//
// Momentum defaults to 1.0 (neutral) when history is empty so a token with no
// prior data can never pass the momentum entry gate by accident. A missing
// whale-dump score is carried as 0.
func Derive(s *domain.Snapshot, history []*domain.Snapshot) *domain.FeatureVector {
	return &domain.FeatureVector{
		Mint:              s.Mint,
		Price:             s.Price,
		Liquidity:         s.Liquidity,
		MarketCap:         s.MarketCap,
		RugSupplyShare:    s.RugSupplyShare,
		RugSupplyDelta:    s.RugSupplyDelta,
		ConcentrationTop3: s.ConcentrationTop3,
		LiqToMcRatio:      s.LiqToMcRatio,
		BetaRugVolume:     s.BetaRugVolume,
		AgeSeconds:        s.AgeSeconds,
		BuySpeed:          s.BuySpeed,
		FlashPatternScore: s.FlashPatternScore,
		MultiWalletScore:  s.MultiWalletScore,
		WhaleDumpScore:    s.WhaleDumpScore,
		BuyVolume:         s.BuyVolume,
		SellVolume:        s.SellVolume,
		Momentum:          momentum(s.Price, history),
	}
}

// momentum returns price divided by the mean price of the last MomentumWindow
// history entries. Insertion order of history matters: the newest entries are
// at the end.
func momentum(price float64, history []*domain.Snapshot) float64 {
	if len(history) == 0 {
		return 1.0
	}

	start := len(history) - MomentumWindow
	if start < 0 {
		start = 0
	}

	var sum float64
	window := history[start:]
	for _, h := range window {
		sum += h.Price
	}

	avg := sum / float64(len(window))
	if avg == 0 {
		return 1.0
	}
	return price / avg
}
