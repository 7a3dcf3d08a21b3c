package domain

// RiskCoefficients are the logistic model weights: intercept A0 plus nine
// feature weights. Any finite value is legal; the sigmoid saturates the output
// regardless. Immutable for the lifetime of a run.
type RiskCoefficients struct {
	A0 float64 // intercept
	A1 float64 // rug supply share
	A2 float64 // rug supply delta
	A3 float64 // top-3 concentration
	A4 float64 // reciprocal liquidity/mcap ratio
	A5 float64 // abnormal-volume beta
	A6 float64 // reciprocal age
	A7 float64 // buy speed
	A8 float64 // flash pattern score
	A9 float64 // multi-wallet coordination score
}

// DefaultRiskCoefficients returns the shipped weight set.
func DefaultRiskCoefficients() RiskCoefficients {
	return RiskCoefficients{
		A0: -2.0,
		A1: 2.5,
		A2: 1.5,
		A3: 2.0,
		A4: 1.2,
		A5: 1.8,
		A6: 1.0,
		A7: 0.8,
		A8: 1.5,
		A9: 1.5,
	}
}
