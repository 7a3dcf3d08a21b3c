package risk

import (
	"math"
	"testing"

	"rug-surfer/internal/domain"
)

func TestProbability_BoundedForExtremeInputs(t *testing.T) {
	coeffs := domain.DefaultRiskCoefficients()

	vectors := []*domain.FeatureVector{
		{}, // all zeros: reciprocal terms at their maxima
		{RugSupplyShare: 1e9, ConcentrationTop3: 1e9, MultiWalletScore: 1e9},
		{RugSupplyShare: -1e9, BetaRugVolume: -1e9, BuySpeed: -1e9},
		{LiqToMcRatio: 1e12, AgeSeconds: 1e12},
		{WhaleDumpScore: 1e6},
	}

	for i, fv := range vectors {
		p := Probability(fv, coeffs)
		if p < 0 || p > 1 || math.IsNaN(p) {
			t.Errorf("vector %d: probability out of [0,1]: %f", i, p)
		}
	}
}

func TestProbability_WhaleDumpNudgesUpward(t *testing.T) {
	coeffs := domain.RiskCoefficients{A0: 0}
	base := &domain.FeatureVector{LiqToMcRatio: 1e9, AgeSeconds: 1e9}
	dumped := &domain.FeatureVector{LiqToMcRatio: 1e9, AgeSeconds: 1e9, WhaleDumpScore: 5}

	p0 := Probability(base, coeffs)
	p1 := Probability(dumped, coeffs)

	if math.Abs(p1-p0-0.05) > 1e-9 {
		t.Errorf("expected +0.05 nudge for score 5, got %f -> %f", p0, p1)
	}
}

func TestProbability_NudgeClampsAtOne(t *testing.T) {
	coeffs := domain.RiskCoefficients{A0: 50} // saturated sigmoid
	fv := &domain.FeatureVector{WhaleDumpScore: 100, LiqToMcRatio: 1, AgeSeconds: 1}

	if p := Probability(fv, coeffs); p != 1 {
		t.Errorf("expected clamp at 1, got %f", p)
	}
}

func TestEmergencySpike_ThresholdIsInclusive(t *testing.T) {
	cases := []struct {
		score     float64
		threshold float64
		want      bool
	}{
		{5, 3, true},
		{3, 3, true},
		{2.99, 3, false},
		{0, 3, false},
	}

	for _, tc := range cases {
		fv := &domain.FeatureVector{WhaleDumpScore: tc.score}
		if got := EmergencySpike(fv, tc.threshold); got != tc.want {
			t.Errorf("EmergencySpike(score=%f, threshold=%f) = %t, want %t",
				tc.score, tc.threshold, got, tc.want)
		}
	}
}
