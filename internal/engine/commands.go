package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rug-surfer/internal/config"
	"rug-surfer/internal/domain"
	"rug-surfer/internal/feature"
	"rug-surfer/internal/feed"
	"rug-surfer/internal/ledger"
	"rug-surfer/internal/notify"
	"rug-surfer/internal/risk"
)

// applyCommands drains the operator command queue. Commands apply between
// evaluations, so a toggle always takes effect for the whole next tick.
func (e *Engine) applyCommands(ctx context.Context) {
	if e.commands == nil {
		return
	}
	for {
		select {
		case cmd := <-e.commands.Commands():
			e.applyCommand(ctx, cmd)
		default:
			return
		}
	}
}

func (e *Engine) applyCommand(ctx context.Context, cmd notify.Command) {
	switch cmd.Kind {
	case notify.CmdStart:
		cfg := e.cfgStore.Get()
		e.notifier.Info(fmt.Sprintf(
			"Bot started. paperTrading=%v autoTrading=%v sizes normal=%.2f micro=%.2f SOL",
			cfg.PaperTrading, cfg.AutoTrading, cfg.TradeSizeNormal, cfg.TradeSizeMicro))
	case notify.CmdStatus:
		e.notifier.Info(e.statusText())
	case notify.CmdAutoOn:
		e.cfgStore.Update(func(c *config.Config) { c.AutoTrading = true })
		e.notifier.Info("Auto-trading enabled.")
	case notify.CmdAutoOff:
		e.cfgStore.Update(func(c *config.Config) { c.AutoTrading = false })
		e.notifier.Info("Auto-trading disabled.")
	case notify.CmdPaperOn:
		e.cfgStore.Update(func(c *config.Config) { c.PaperTrading = true })
		e.notifier.Info("Paper mode selected.")
	case notify.CmdPaperOff:
		if e.liveExec == nil {
			e.notifier.Info("Live mode unavailable: no executor configured.")
			return
		}
		e.cfgStore.Update(func(c *config.Config) { c.PaperTrading = false })
		e.notifier.Info("Live mode selected.")
	case notify.CmdTrack:
		e.track(cmd.Arg)
	case notify.CmdClose:
		e.closeManual(ctx, cmd.Arg)
	case notify.CmdRugRisk:
		e.reportRugRisk()
	}
}

// track points the feed at a new focus instrument. Accepts a bare mint or an
// axiom.trade URL.
func (e *Engine) track(arg string) {
	mint, err := feed.ExtractMint(arg)
	if err != nil {
		e.notifier.Info(fmt.Sprintf("Cannot track %q: %v", arg, err))
		return
	}
	e.cfgStore.Update(func(c *config.Config) { c.FocusMint = mint })
	if setter, ok := e.source.(feed.FocusSetter); ok {
		setter.SetFocus(mint)
	}
	e.notifier.Info("Tracking " + mint)
}

// closeManual liquidates the position for the mint at the latest seen price.
func (e *Engine) closeManual(ctx context.Context, mint string) {
	pos := e.ledger.Get(mint)
	if pos == nil {
		e.notifier.Info("No open position for " + mint)
		return
	}

	cfg := e.cfgStore.Get()
	price, features := e.latestState(mint)
	if price <= 0 {
		// No fresh market data; fall back to the entry price.
		price = pos.EntryPrice
	}
	if features == nil {
		features = &domain.FeatureVector{Mint: mint, Price: price, Momentum: 1.0}
	}

	exec := e.executor(cfg)
	if exec == nil {
		e.notifier.Info("Cannot close " + mint + ": no executor for current mode.")
		return
	}

	settle, err := exec.Sell(ctx, mint, pos.SizeTokens, price)
	if err != nil {
		e.notifier.Info(fmt.Sprintf("Manual close %s failed: %v", mint, err))
		return
	}

	pRug := risk.Probability(features, cfg.RiskCoefficients())
	trade, err := e.ledger.Close(ctx, mint, settle.Price, settle.FilledAtMs,
		domain.ExitReasonManual, pRug, features)
	if err != nil {
		if errors.Is(err, ledger.ErrNoPosition) {
			e.notifier.Info("No open position for " + mint)
			return
		}
		e.notifier.Info(fmt.Sprintf("Manual close %s failed: %v", mint, err))
		return
	}
	e.notifier.Exit(trade.Mint, trade.ExitReason, trade.PnlPercent, trade.Simulated)
}

// reportRugRisk sends the current rug probability of the focus instrument.
func (e *Engine) reportRugRisk() {
	cfg := e.cfgStore.Get()
	if cfg.FocusMint == "" {
		e.notifier.Info("No focus instrument. Use /track <mint>.")
		return
	}
	_, features := e.latestState(cfg.FocusMint)
	if features == nil {
		e.notifier.Info("No data yet for " + cfg.FocusMint)
		return
	}
	pRug := risk.Probability(features, cfg.RiskCoefficients())
	e.notifier.Info(fmt.Sprintf("p_rug for %s: %.2f%%", cfg.FocusMint, pRug*100))
}

// latestState derives price and features from the newest history entry for
// the mint, or zero values when none exists.
func (e *Engine) latestState(mint string) (float64, *domain.FeatureVector) {
	recent := e.history.Recent(mint)
	if len(recent) == 0 {
		return 0, nil
	}
	newest := recent[len(recent)-1]
	return newest.Price, feature.Derive(newest, recent)
}

func (e *Engine) statusText() string {
	cfg := e.cfgStore.Get()
	mode := "LIVE"
	if cfg.PaperTrading {
		mode = "SIMULATION"
	}
	auto := "OFF"
	if cfg.AutoTrading {
		auto = "ON"
	}

	lines := []string{
		"Focus: " + orNone(cfg.FocusMint),
		"Mode: " + mode,
		"Auto-trading: " + auto,
		fmt.Sprintf("Open positions: %d", e.ledger.OpenCount()),
		fmt.Sprintf("Virtual balance: %.4f SOL", e.ledger.VirtualBalance()),
	}
	if price, _ := e.latestState(cfg.FocusMint); price > 0 {
		lines = append(lines, fmt.Sprintf("Price: %.8f", price))
	}
	return strings.Join(lines, "\n")
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
