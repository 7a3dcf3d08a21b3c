// Package engine runs the tick loop: drain the feed, evaluate each updated
// instrument, execute decisions and record the results. One goroutine owns
// the loop; per-instrument evaluation fans out behind a bounded semaphore
// with an in-flight guard so a slow external call is skipped over, never
// cancelled or overlapped.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"rug-surfer/internal/advisory"
	"rug-surfer/internal/config"
	"rug-surfer/internal/domain"
	"rug-surfer/internal/execution"
	"rug-surfer/internal/feature"
	"rug-surfer/internal/feed"
	"rug-surfer/internal/ledger"
	"rug-surfer/internal/notify"
	"rug-surfer/internal/observability"
	"rug-surfer/internal/policy"
	"rug-surfer/internal/risk"
	"rug-surfer/internal/storage"
)

// defaultMaxInFlight bounds concurrent per-instrument evaluations.
const defaultMaxInFlight = 8

// Options wires the engine's collaborators. Source, ConfigStore, Ledger,
// History and PaperExecutor are required; the rest are optional.
type Options struct {
	Source      feed.Source
	History     *feed.History
	Ledger      *ledger.Ledger
	ConfigStore *config.Store

	// PaperExecutor fills simulated orders; LiveExecutor fills real ones.
	// The active one follows the PaperTrading toggle. LiveExecutor may be
	// nil, in which case flipping to live is rejected.
	PaperExecutor execution.Executor
	LiveExecutor  execution.Executor

	Notifier notify.Notifier
	Commands notify.CommandSource
	Advisor  advisory.Advisor
	Archive  storage.SnapshotArchive
	Metrics  *observability.Metrics
	Logger   *log.Logger

	// MaxInFlight bounds concurrent evaluations; 0 means the default.
	MaxInFlight int
}

// Engine is the tick-driven trading loop.
type Engine struct {
	source      feed.Source
	history     *feed.History
	ledger      *ledger.Ledger
	cfgStore    *config.Store
	paperExec   execution.Executor
	liveExec    execution.Executor
	notifier    notify.Notifier
	commands    notify.CommandSource
	advisor     advisory.Advisor
	archive     storage.SnapshotArchive
	metrics     *observability.Metrics
	logger      *log.Logger
	evaluator   *policy.Evaluator
	maxInFlight int

	mu       sync.Mutex
	inFlight map[string]bool
	alerted  map[string]bool

	wg  sync.WaitGroup
	sem chan struct{}
}

// New creates an engine from opts.
func New(opts Options) (*Engine, error) {
	if opts.Source == nil || opts.History == nil || opts.Ledger == nil ||
		opts.ConfigStore == nil || opts.PaperExecutor == nil {
		return nil, errors.New("engine: missing required collaborator")
	}

	maxInFlight := opts.MaxInFlight
	if maxInFlight <= 0 {
		maxInFlight = defaultMaxInFlight
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.NewLogNotifier(logger)
	}

	return &Engine{
		source:      opts.Source,
		history:     opts.History,
		ledger:      opts.Ledger,
		cfgStore:    opts.ConfigStore,
		paperExec:   opts.PaperExecutor,
		liveExec:    opts.LiveExecutor,
		notifier:    notifier,
		commands:    opts.Commands,
		advisor:     opts.Advisor,
		archive:     opts.Archive,
		metrics:     opts.Metrics,
		logger:      logger,
		evaluator:   policy.NewEvaluator(),
		maxInFlight: maxInFlight,
		inFlight:    make(map[string]bool),
		alerted:     make(map[string]bool),
		sem:         make(chan struct{}, maxInFlight),
	}, nil
}

// Run ticks at the configured refresh interval until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	interval := e.cfgStore.Get().RefreshInterval
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	e.logger.Printf("[ENGINE] started, tick interval %s", interval)
	for {
		select {
		case <-ctx.Done():
			e.Wait()
			e.logger.Printf("[ENGINE] stopped")
			return ctx.Err()
		case <-ticker.C:
			e.Tick(ctx)
		}
	}
}

// Tick runs one engine cycle: apply operator commands, drain the feed, then
// evaluate every instrument that produced a fresh snapshot.
func (e *Engine) Tick(ctx context.Context) {
	start := time.Now()
	if e.metrics != nil {
		e.metrics.TicksTotal.Inc()
	}

	e.applyCommands(ctx)

	latest, all := e.drain()
	if len(all) > 0 && e.archive != nil {
		e.archiveBatch(ctx, all)
	}

	for mint, snap := range latest {
		e.history.Append(snap)
		if !e.tryAcquire(mint) {
			if e.metrics != nil {
				e.metrics.EvaluationsSkipped.Inc()
			}
			continue
		}

		e.wg.Add(1)
		e.sem <- struct{}{}
		go func(mint string, snap *domain.Snapshot) {
			defer func() {
				<-e.sem
				e.release(mint)
				e.wg.Done()
			}()
			e.evaluate(ctx, snap)
		}(mint, snap)
	}

	if e.metrics != nil {
		e.metrics.TickDuration.Observe(time.Since(start).Seconds())
		e.metrics.OpenPositions.Set(float64(e.ledger.OpenCount()))
	}
}

// Wait blocks until all in-flight evaluations finish.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// drain empties the feed queue, keeping the newest snapshot per mint and the
// full batch for archiving.
func (e *Engine) drain() (map[string]*domain.Snapshot, []*domain.Snapshot) {
	latest := make(map[string]*domain.Snapshot)
	var all []*domain.Snapshot
	for {
		select {
		case snap := <-e.source.Snapshots():
			if snap == nil {
				return latest, all
			}
			latest[snap.Mint] = snap
			all = append(all, snap)
			if e.metrics != nil {
				e.metrics.SnapshotsDrained.Inc()
			}
		default:
			return latest, all
		}
	}
}

func (e *Engine) archiveBatch(ctx context.Context, batch []*domain.Snapshot) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		if err := e.archive.InsertBatch(ctx, batch); err != nil {
			e.logger.Printf("[ENGINE] archive batch of %d: %v", len(batch), err)
			return
		}
		if e.metrics != nil {
			e.metrics.SnapshotsArchived.Add(float64(len(batch)))
		}
	}()
}

func (e *Engine) tryAcquire(mint string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inFlight[mint] {
		return false
	}
	e.inFlight[mint] = true
	return true
}

func (e *Engine) release(mint string) {
	e.mu.Lock()
	delete(e.inFlight, mint)
	e.mu.Unlock()
}

// evaluate scores one instrument and acts on the decision. Execution happens
// before the ledger records the result, so position state never claims a fill
// that did not happen.
func (e *Engine) evaluate(ctx context.Context, snap *domain.Snapshot) {
	cfg := e.cfgStore.Get()

	features := feature.Derive(snap, e.history.Recent(snap.Mint))
	pRug := risk.Probability(features, cfg.RiskCoefficients())
	pos := e.ledger.Get(snap.Mint)

	th := thresholdsFrom(cfg)
	pMax := policy.Breakeven(th.ProfitTarget, th.LossEstimate)

	if cfg.AdvisoryEnabled && e.advisor != nil {
		pRug = e.advise(ctx, features, pos, pRug, pMax, cfg.AdvisoryAllowFlip)
	}

	e.alertOnSpike(features, pos, th)

	decision := e.evaluator.Evaluate(policy.Input{
		Features:   features,
		PRug:       pRug,
		Position:   pos,
		Thresholds: th,
	})
	if e.metrics != nil {
		e.metrics.DecisionsTotal.WithLabelValues(string(decision.Action)).Inc()
	}

	switch decision.Action {
	case policy.ActionEnter:
		e.enter(ctx, cfg, features, decision, pRug)
	case policy.ActionExit:
		e.exit(ctx, cfg, features, decision, pRug)
	}
}

// advise asks the advisor for an annotation and applies its bounded nudge.
// Advisory failures degrade to the unadjusted probability.
func (e *Engine) advise(ctx context.Context, features *domain.FeatureVector, pos *domain.Position, pRug, pMax float64, allowFlip bool) float64 {
	start := time.Now()
	ann, err := e.advisor.Analyze(ctx, features, pos, pRug)
	if e.metrics != nil {
		e.metrics.AdvisoryLatency.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		e.logger.Printf("[ENGINE] advisory for %s: %v", features.Mint, err)
		return pRug
	}
	if ann.Commentary != "" {
		e.logger.Printf("[ENGINE] advisory %s: %s", features.Mint, ann.Commentary)
	}
	return advisory.AdjustProbability(pRug, pMax, ann, allowFlip)
}

// alertOnSpike raises one alert per spike episode for instruments we are not
// positioned in. Positioned instruments get the emergency exit instead.
func (e *Engine) alertOnSpike(features *domain.FeatureVector, pos *domain.Position, th policy.Thresholds) {
	spiking := risk.EmergencySpike(features, th.WhaleDumpThreshold)

	e.mu.Lock()
	seen := e.alerted[features.Mint]
	if spiking {
		e.alerted[features.Mint] = true
	} else {
		delete(e.alerted, features.Mint)
	}
	e.mu.Unlock()

	if spiking && !seen && pos == nil {
		e.notifier.Alert(fmt.Sprintf("whale dump spike on %s (score %.2f)",
			features.Mint, features.WhaleDumpScore))
	}
}

func (e *Engine) executor(cfg *config.Config) execution.Executor {
	if cfg.PaperTrading {
		return e.paperExec
	}
	return e.liveExec
}

func (e *Engine) enter(ctx context.Context, cfg *config.Config, features *domain.FeatureVector, d *policy.Decision, pRug float64) {
	if !cfg.AutoTrading {
		e.notifier.Signal(features.Mint,
			fmt.Sprintf("entry criteria met, p_rug %.4f, size %.4f SOL", pRug, d.SizeBase),
			cfg.PaperTrading)
		return
	}

	exec := e.executor(cfg)
	if exec == nil {
		e.logger.Printf("[ENGINE] no live executor, skipping entry on %s", features.Mint)
		return
	}

	start := time.Now()
	settle, err := exec.Buy(ctx, features.Mint, d.SizeBase, features.Price)
	e.observeExecution("buy", start, err)
	if err != nil {
		e.logger.Printf("[ENGINE] buy %s: %v", features.Mint, err)
		return
	}

	pos, err := e.ledger.Open(ctx, ledger.OpenParams{
		Mint:        features.Mint,
		EntryPrice:  settle.Price,
		EntryTimeMs: settle.FilledAtMs,
		SizeBase:    d.SizeBase,
		PRugEntry:   pRug,
		Simulated:   cfg.PaperTrading,
		AutoOpened:  true,
	})
	if err != nil {
		if errors.Is(err, ledger.ErrPositionExists) {
			// Lost the race to another entry path; the fill stands.
			e.logger.Printf("[ENGINE] position already open on %s", features.Mint)
			return
		}
		e.logger.Printf("[ENGINE] record entry %s: %v", features.Mint, err)
		return
	}
	e.notifier.Entry(pos)
}

func (e *Engine) exit(ctx context.Context, cfg *config.Config, features *domain.FeatureVector, d *policy.Decision, pRug float64) {
	pos := e.ledger.Get(features.Mint)
	if pos == nil {
		return
	}
	if e.metrics != nil {
		e.metrics.ExitsTotal.WithLabelValues(d.ExitReason).Inc()
	}

	exec := e.executor(cfg)
	if exec == nil {
		e.logger.Printf("[ENGINE] no live executor, cannot exit %s", features.Mint)
		return
	}

	start := time.Now()
	settle, err := exec.Sell(ctx, features.Mint, pos.SizeTokens, features.Price)
	e.observeExecution("sell", start, err)
	if err != nil {
		e.logger.Printf("[ENGINE] sell %s (%s): %v", features.Mint, d.ExitReason, err)
		e.notifier.Alert(fmt.Sprintf("exit %s (%s) failed: %v", features.Mint, d.ExitReason, err))
		return
	}

	trade, err := e.ledger.Close(ctx, features.Mint, settle.Price, settle.FilledAtMs, d.ExitReason, pRug, features)
	if err != nil {
		e.logger.Printf("[ENGINE] record exit %s: %v", features.Mint, err)
		return
	}
	if e.metrics != nil {
		e.metrics.RecordRealizedPnl(trade.PnlBase)
	}
	e.notifier.Exit(trade.Mint, trade.ExitReason, trade.PnlPercent, trade.Simulated)
}

func (e *Engine) observeExecution(side string, start time.Time, err error) {
	if e.metrics == nil {
		return
	}
	e.metrics.ExecutionLatency.WithLabelValues(side).Observe(time.Since(start).Seconds())
	result := "ok"
	if err != nil {
		result = "error"
	}
	e.metrics.ExecutionsTotal.WithLabelValues(side, result).Inc()
}

func thresholdsFrom(cfg *config.Config) policy.Thresholds {
	return policy.Thresholds{
		ProfitTarget:       cfg.ProfitTarget,
		LossEstimate:       cfg.LossEstimate,
		MinLiquidity:       cfg.MinLiquidity,
		MinMarketCap:       cfg.MinMarketCap,
		TradeSizeNormal:    cfg.TradeSizeNormal,
		TradeSizeMicro:     cfg.TradeSizeMicro,
		WhaleDumpThreshold: cfg.WhaleDumpThreshold,
	}
}
