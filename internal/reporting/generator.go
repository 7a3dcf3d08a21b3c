package reporting

import (
	"context"
	"sort"
	"time"

	"rug-surfer/internal/domain"
	"rug-surfer/internal/storage"
)

// Generator produces session reports from the trade log.
type Generator struct {
	tradeLog storage.TradeLogStore
	now      func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a report generator reading from tradeLog.
func NewGenerator(tradeLog storage.TradeLogStore) *Generator {
	return &Generator{
		tradeLog: tradeLog,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate loads all closed trades and computes the summary.
func (g *Generator) Generate(ctx context.Context) (*Report, error) {
	trades, err := g.tradeLog.List(ctx)
	if err != nil {
		return nil, err
	}

	r := &Report{
		GeneratedAt: g.now(),
		TotalTrades: len(trades),
	}
	if len(trades) == 0 {
		return r, nil
	}

	pnls := make([]float64, 0, len(trades))
	wins := 0
	byReason := make(map[string][]*domain.ClosedTrade)

	r.FirstExitMs = trades[0].ExitTimeMs
	r.LastExitMs = trades[0].ExitTimeMs
	r.PnlBest = trades[0].PnlPercent
	r.PnlWorst = trades[0].PnlPercent

	for _, t := range trades {
		pnls = append(pnls, t.PnlPercent)
		if t.PnlPercent > 0 {
			wins++
		}
		if t.Simulated {
			r.SimulatedTrades++
		} else {
			r.LiveTrades++
		}
		if t.ExitTimeMs < r.FirstExitMs {
			r.FirstExitMs = t.ExitTimeMs
		}
		if t.ExitTimeMs > r.LastExitMs {
			r.LastExitMs = t.ExitTimeMs
		}
		if t.PnlPercent > r.PnlBest {
			r.PnlBest = t.PnlPercent
		}
		if t.PnlPercent < r.PnlWorst {
			r.PnlWorst = t.PnlPercent
		}
		r.TotalPnlBase += t.PnlBase
		byReason[t.ExitReason] = append(byReason[t.ExitReason], t)
	}

	r.WinRate = float64(wins) / float64(len(trades))
	r.PnlMean = mean(pnls)
	r.PnlMedian = median(pnls)
	r.ByExitReason = reasonRows(byReason)

	return r, nil
}

func reasonRows(byReason map[string][]*domain.ClosedTrade) []ExitReasonRow {
	rows := make([]ExitReasonRow, 0, len(byReason))
	for reason, trades := range byReason {
		row := ExitReasonRow{Reason: reason, Trades: len(trades)}
		wins := 0
		for _, t := range trades {
			if t.PnlPercent > 0 {
				wins++
			}
			row.PnlMean += t.PnlPercent
			row.PnlTotal += t.PnlBase
			row.MeanPRug += t.PRugExit
		}
		row.WinRate = float64(wins) / float64(len(trades))
		row.PnlMean /= float64(len(trades))
		row.MeanPRug /= float64(len(trades))
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Reason < rows[j].Reason })
	return rows
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
