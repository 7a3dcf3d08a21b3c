// Package reporting summarizes the trade log into session reports.
package reporting

import "time"

// Report is the session summary rendered by cmd/report.
type Report struct {
	// Metadata
	GeneratedAt time.Time

	// Totals
	TotalTrades     int
	SimulatedTrades int
	LiveTrades      int
	WinRate         float64

	// Pnl distribution (percent)
	PnlMean   float64
	PnlMedian float64
	PnlBest   float64
	PnlWorst  float64

	// Realized pnl in base units
	TotalPnlBase float64

	// Session range
	FirstExitMs int64
	LastExitMs  int64

	// Per exit reason breakdown (sorted by reason)
	ByExitReason []ExitReasonRow
}

// ExitReasonRow aggregates the trades that closed for one reason.
type ExitReasonRow struct {
	Reason   string
	Trades   int
	WinRate  float64
	PnlMean  float64
	PnlTotal float64 // base units
	MeanPRug float64 // pRug at exit
}
