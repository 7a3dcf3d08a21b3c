package policy

import "rug-surfer/internal/domain"

// Action is the per-tick outcome for one instrument.
type Action string

const (
	ActionNone  Action = "NONE"
	ActionEnter Action = "ENTER"
	ActionExit  Action = "EXIT"
)

// Thresholds is the slice of runtime configuration the policy reads. The
// engine snapshots it from config once per tick; the policy never reaches for
// globals.
type Thresholds struct {
	ProfitTarget       float64 // e.g. 0.05 = 5%
	LossEstimate       float64 // assumed loss on a failed trade
	MinLiquidity       float64
	MinMarketCap       float64
	TradeSizeNormal    float64 // SOL
	TradeSizeMicro     float64 // SOL
	WhaleDumpThreshold float64
}

// Input carries everything one evaluation needs.
type Input struct {
	Features   *domain.FeatureVector
	PRug       float64
	Position   *domain.Position // nil when flat
	Thresholds Thresholds
}

// GateResult records one entry gate with its observed value, for signal
// messages and logs.
type GateResult struct {
	Name      string
	Threshold string
	Actual    string
	Pass      bool
}

// Decision is the pure policy outcome. ExitReason is set only for ActionExit,
// SizeBase only for ActionEnter.
type Decision struct {
	Action        Action
	ExitReason    string
	SizeBase      float64
	PMax          float64
	ExpectedValue float64
	PnlPercent    float64 // populated when a position exists
	Gates         []GateResult
}
