// Package policy is the pure entry/exit decision state machine. Each
// instrument is FLAT or OPEN; transitions are evaluated once per tick in a
// fixed priority order so simultaneous conditions resolve deterministically.
//
// There is deliberately no hard price-based stop-loss beyond the
// risk/momentum/TP triggers; loss containment is the pre-trade expected-value
// gate. Flagged for review, not to be silently added here.
package policy

import (
	"fmt"

	"rug-surfer/internal/domain"
	"rug-surfer/internal/risk"
)

// Evaluator evaluates entry and exit criteria.
type Evaluator struct{}

// NewEvaluator creates a new decision evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Breakeven returns p_max, the breakeven risk probability implied by the
// configured payoff ratio. In (0,1) for positive profitTarget and lossEstimate.
func Breakeven(profitTarget, lossEstimate float64) float64 {
	return profitTarget / (profitTarget + lossEstimate)
}

// Evaluate produces the decision for one instrument. Pure: it cannot fail and
// touches no state.
func (e *Evaluator) Evaluate(in Input) *Decision {
	pMax := Breakeven(in.Thresholds.ProfitTarget, in.Thresholds.LossEstimate)
	ev := (1-in.PRug)*in.Thresholds.ProfitTarget - in.PRug*in.Thresholds.LossEstimate

	if in.Position != nil {
		return e.evaluateExit(in, pMax, ev)
	}
	return e.evaluateEntry(in, pMax, ev)
}

// evaluateExit checks exit triggers in precedence order. The emergency spike
// always wins regardless of any other reason that is simultaneously true.
func (e *Evaluator) evaluateExit(in Input, pMax, ev float64) *Decision {
	pnlPercent := (in.Features.Price - in.Position.EntryPrice) / in.Position.EntryPrice

	d := &Decision{
		Action:        ActionNone,
		PMax:          pMax,
		ExpectedValue: ev,
		PnlPercent:    pnlPercent,
	}

	switch {
	case risk.EmergencySpike(in.Features, in.Thresholds.WhaleDumpThreshold):
		d.Action = ActionExit
		d.ExitReason = domain.ExitReasonEmergency
	case pnlPercent >= in.Thresholds.ProfitTarget:
		d.Action = ActionExit
		d.ExitReason = domain.ExitReasonTP
	case in.PRug >= pMax:
		d.Action = ActionExit
		d.ExitReason = domain.ExitReasonRugRisk
	case in.Features.Momentum <= 1.0:
		d.Action = ActionExit
		d.ExitReason = domain.ExitReasonMomentum
	}

	return d
}

// evaluateEntry checks the five entry gates. ENTER only when all pass.
func (e *Evaluator) evaluateEntry(in Input, pMax, ev float64) *Decision {
	f := in.Features
	th := in.Thresholds

	gates := []GateResult{
		{
			Name:      "liquidity floor",
			Threshold: fmt.Sprintf(">= %.0f", th.MinLiquidity),
			Actual:    fmt.Sprintf("%.0f", f.Liquidity),
			Pass:      f.Liquidity >= th.MinLiquidity,
		},
		{
			Name:      "market cap floor",
			Threshold: fmt.Sprintf(">= %.0f", th.MinMarketCap),
			Actual:    fmt.Sprintf("%.0f", f.MarketCap),
			Pass:      f.MarketCap >= th.MinMarketCap,
		},
		{
			Name:      "risk below breakeven",
			Threshold: fmt.Sprintf("< %.4f", pMax),
			Actual:    fmt.Sprintf("%.4f", in.PRug),
			Pass:      in.PRug < pMax,
		},
		{
			// Strictly greater-than: a tie at 1.5 does not qualify.
			Name:      "momentum confirmation",
			Threshold: "> 1.5",
			Actual:    fmt.Sprintf("%.4f", f.Momentum),
			Pass:      f.Momentum > 1.5,
		},
		{
			Name:      "positive expected value",
			Threshold: "> 0",
			Actual:    fmt.Sprintf("%.6f", ev),
			Pass:      ev > 0,
		},
	}

	d := &Decision{
		Action:        ActionNone,
		PMax:          pMax,
		ExpectedValue: ev,
		Gates:         gates,
	}

	for _, g := range gates {
		if !g.Pass {
			return d
		}
	}

	d.Action = ActionEnter
	d.SizeBase = entrySize(in.PRug, pMax, th)
	return d
}

// entrySize halves position size once risk crosses the midpoint of the safety
// margin rather than betting full size right up to the breakeven boundary.
// Strict less-than: p_rug exactly at the midpoint takes the micro size.
func entrySize(pRug, pMax float64, th Thresholds) float64 {
	if pRug < 0.5*pMax {
		return th.TradeSizeNormal
	}
	return th.TradeSizeMicro
}
