package domain

// FeatureVector is the per-tick derived input to the risk model and the
// decision policy. One vector is produced per snapshot and not retained.
type FeatureVector struct {
	Mint string

	Price     float64
	Liquidity float64
	MarketCap float64

	RugSupplyShare    float64
	RugSupplyDelta    float64
	ConcentrationTop3 float64
	LiqToMcRatio      float64
	BetaRugVolume     float64
	AgeSeconds        float64
	BuySpeed          float64
	FlashPatternScore float64
	MultiWalletScore  float64
	WhaleDumpScore    float64

	BuyVolume  float64
	SellVolume float64

	// Momentum is latest price divided by the mean price of the trailing
	// history window. 1.0 when no history exists yet.
	Momentum float64
}
