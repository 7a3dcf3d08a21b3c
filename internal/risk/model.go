// Package risk maps feature vectors to a probability of catastrophic failure
// before a profitable exit, plus a fast-path spike detector.
package risk

import (
	"math"

	"rug-surfer/internal/domain"
)

// liqRatioEpsilon keeps the reciprocal liquidity term finite when the
// liquidity/mcap ratio is zero.
const liqRatioEpsilon = 1e-4

// whaleDumpNudge scales the additive whale-dump adjustment on top of the
// logistic output.
const whaleDumpNudge = 0.01

// Probability returns the modeled rug probability in [0,1].
//
// The liquidity ratio and age enter as reciprocals rather than linear terms:
// risk rises sharply as liquidity thins toward zero and while the token is
// extremely new.
func Probability(f *domain.FeatureVector, c domain.RiskCoefficients) float64 {
	score := c.A0 +
		c.A1*f.RugSupplyShare +
		c.A2*f.RugSupplyDelta +
		c.A3*f.ConcentrationTop3 +
		c.A4*(1/(f.LiqToMcRatio+liqRatioEpsilon)) +
		c.A5*f.BetaRugVolume +
		c.A6*(1/(f.AgeSeconds+1)) +
		c.A7*f.BuySpeed +
		c.A8*f.FlashPatternScore +
		c.A9*f.MultiWalletScore

	p := sigmoid(score) + f.WhaleDumpScore*whaleDumpNudge
	return clamp01(p)
}

// EmergencySpike reports whether the whale-dump score crossed the configured
// threshold. This is a hard override independent of the logistic score: the
// logistic model is a slow-moving signal, the spike detector is a circuit
// breaker for sudden coordinated sells.
func EmergencySpike(f *domain.FeatureVector, threshold float64) bool {
	return f.WhaleDumpScore >= threshold
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
