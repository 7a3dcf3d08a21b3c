package domain

// Position is one live holding, keyed by mint. At most one live Position
// exists per mint at any time; the ledger enforces this.
type Position struct {
	ID          string // uuid, assigned by the ledger
	Mint        string
	EntryPrice  float64
	EntryTimeMs int64
	SizeBase    float64 // position size in SOL
	SizeTokens  float64 // position size in token units
	PRugEntry   float64 // risk probability at entry
	Simulated   bool    // paper execution, no real settlement
	AutoOpened  bool    // opened by the engine rather than an operator
}

// ClosedTrade is the immutable record produced when a position is closed.
// It is appended to the trade log exactly once and never mutated.
type ClosedTrade struct {
	TradeID string // deterministic hash, see idhash

	Mint        string
	EntryTimeMs int64
	ExitTimeMs  int64
	EntryPrice  float64
	ExitPrice   float64

	PnlPercent float64 // (exit - entry) / entry
	PnlBase    float64 // SizeBase * PnlPercent

	ExitReason string
	PRugEntry  float64
	PRugExit   float64
	Simulated  bool

	// Feature snapshot at exit.
	Features FeatureVector
}

// Exit reason codes, in decision precedence order.
const (
	ExitReasonEmergency = "RUG_EMERGENCY_EXIT"
	ExitReasonTP        = "TP"
	ExitReasonRugRisk   = "RUG_RISK"
	ExitReasonMomentum  = "MOMENTUM"
	ExitReasonManual    = "MANUAL"
)
