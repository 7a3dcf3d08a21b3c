package domain

// Snapshot is one observed market state for a mint, as delivered by a feed
// source. Snapshots are raw inputs: the feature deriver turns them into a
// FeatureVector, the history ring retains the recent ones per mint, and the
// archive stores every drained batch.
type Snapshot struct {
	Mint        string
	PoolAddress string

	Price     float64
	Liquidity float64
	MarketCap float64
	// AgeSeconds is the token age since pool creation.
	AgeSeconds float64

	RugSupplyShare    float64
	RugSupplyDelta    float64
	ConcentrationTop3 float64
	LiqToMcRatio      float64
	BetaRugVolume     float64

	BuyVolume  float64
	SellVolume float64
	BuySpeed   float64

	FlashPatternScore float64
	MultiWalletScore  float64
	// WhaleDumpScore is the spike detector input; values at or above the
	// configured threshold trigger the emergency exit.
	WhaleDumpScore float64

	Holders       int64
	LastUpdatedMs int64 // unix ms of the observation
}
