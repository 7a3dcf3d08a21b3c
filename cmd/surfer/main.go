package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rug-surfer/internal/advisory"
	"rug-surfer/internal/config"
	"rug-surfer/internal/engine"
	"rug-surfer/internal/execution"
	"rug-surfer/internal/feed"
	"rug-surfer/internal/ledger"
	"rug-surfer/internal/notify"
	"rug-surfer/internal/observability"
	"rug-surfer/internal/storage"
	chstore "rug-surfer/internal/storage/clickhouse"
	"rug-surfer/internal/storage/csvfile"
	"rug-surfer/internal/storage/migrations"
	pgstore "rug-surfer/internal/storage/postgres"
)

func main() {
	logger := log.New(os.Stdout, "[surfer] ", log.LstdFlags|log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Config: %v", err)
	}
	cfgStore := config.NewStore(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Metrics server
	metrics := observability.NewMetrics("")
	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})
			logger.Printf("Starting metrics server on %s", cfg.MetricsAddr)
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil && err != http.ErrServerClosed {
				logger.Printf("Metrics server error: %v", err)
			}
		}()
	}

	// Trade log: postgres primary when configured, CSV journal always kept.
	csvLog, err := csvfile.NewTradeLog(cfg.TradeLogPath)
	if err != nil {
		logger.Fatalf("CSV trade log: %v", err)
	}
	defer csvLog.Close()

	var tradeLog storage.TradeLogStore = csvLog
	if cfg.PostgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			logger.Fatalf("Postgres: %v", err)
		}
		defer pool.Close()
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			logger.Fatalf("Postgres migrations: %v", err)
		}
		tradeLog = storage.NewFanoutTradeLog(pgstore.NewTradeLogStore(pool), csvLog)
		logger.Println("Trade log: postgres + csv journal")
	} else {
		logger.Printf("Trade log: csv journal at %s", cfg.TradeLogPath)
	}

	// Snapshot archive (optional)
	var archive storage.SnapshotArchive
	if cfg.ClickhouseDSN != "" {
		conn, err := chstore.NewConn(ctx, cfg.ClickhouseDSN)
		if err != nil {
			logger.Fatalf("Clickhouse: %v", err)
		}
		defer conn.Close()
		if err := migrations.RunClickhouseMigrations(ctx, conn); err != nil {
			logger.Fatalf("Clickhouse migrations: %v", err)
		}
		archive = chstore.NewSnapshotArchive(conn)
		logger.Println("Snapshot archive: clickhouse")
	}

	// Feed
	var source feed.Source
	if cfg.FeedWSEndpoint != "" {
		source = feed.NewWSSource(cfg.FeedWSEndpoint, nil, logger)
		logger.Printf("Feed: websocket %s", cfg.FeedWSEndpoint)
	} else {
		source = feed.NewSimSource(cfg.RefreshInterval, time.Now().UnixNano(), logger)
		logger.Println("Feed: simulated")
	}
	if cfg.FocusMint != "" {
		if setter, ok := source.(feed.FocusSetter); ok {
			setter.SetFocus(cfg.FocusMint)
		}
	}

	// Notifier and operator commands
	var notifier notify.Notifier
	var commands notify.CommandSource
	if cfg.TelegramToken != "" {
		tgOpts := []notify.TelegramOption{}
		if cfg.TelegramChatID != 0 {
			tgOpts = append(tgOpts, notify.WithChatID(cfg.TelegramChatID))
		}
		tg := notify.NewTelegramNotifier(cfg.TelegramToken, logger, tgOpts...)
		notifier = tg
		commands = tg
		go func() {
			if err := tg.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Printf("Telegram poller stopped: %v", err)
			}
		}()
		logger.Println("Notifier: telegram")
	} else {
		notifier = notify.NewLogNotifier(logger)
		logger.Println("Notifier: log only")
	}

	// Executors
	paperExec := execution.NewPaperExecutor()
	var liveExec execution.Executor
	if cfg.SolanaRPCEndpoint != "" && cfg.WalletAddress != "" {
		if err := execution.ValidateWalletAddress(cfg.WalletAddress); err != nil {
			logger.Fatalf("Wallet: %v", err)
		}
		liveExec = execution.NewJupiterExecutor(cfg.SolanaRPCEndpoint, cfg.WalletAddress, logger,
			execution.WithSlippageBps(cfg.SlippageBps))
		logger.Println("Live execution: jupiter")
	}

	// Advisory (optional)
	var advisor advisory.Advisor
	if cfg.AdvisoryEnabled {
		if cfg.OpenAIAPIKey == "" {
			logger.Fatal("ADVISORY_ENABLED requires OPENAI_API_KEY")
		}
		advisor = advisory.NewOpenAIAdvisor(cfg.OpenAIAPIKey, advisory.WithModel(cfg.OpenAIModel))
		logger.Printf("Advisory: openai model %s", cfg.OpenAIModel)
	}

	eng, err := engine.New(engine.Options{
		Source:        source,
		History:       feed.NewHistory(cfg.HistoryDepth),
		Ledger:        ledger.New(tradeLog, logger),
		ConfigStore:   cfgStore,
		PaperExecutor: paperExec,
		LiveExecutor:  liveExec,
		Notifier:      notifier,
		Commands:      commands,
		Advisor:       advisor,
		Archive:       archive,
		Metrics:       metrics,
		Logger:        logger,
	})
	if err != nil {
		logger.Fatalf("Engine: %v", err)
	}

	go func() {
		if err := source.Start(ctx); err != nil && ctx.Err() == nil {
			logger.Printf("Feed stopped: %v", err)
			cancel()
		}
	}()
	defer source.Close()

	// Handle shutdown signals with graceful timeout
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()
		select {
		case <-sigCh:
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		}
	}()

	if err := eng.Run(ctx); err != nil && err != context.Canceled {
		logger.Fatalf("Engine: %v", err)
	}
	logger.Println("Shutdown complete")
}
