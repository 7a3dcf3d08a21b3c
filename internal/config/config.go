// Package config loads engine configuration from the environment, with an
// optional .env file for local runs.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"rug-surfer/internal/domain"
	"rug-surfer/internal/execution"
	"rug-surfer/internal/feed"
)

// Config is the full engine configuration. Every field maps to an
// environment variable; toggles flip at runtime via operator commands.
type Config struct {
	// Trading thresholds.
	ProfitTarget       float64 `envconfig:"PROFIT_TARGET" default:"0.05"`
	LossEstimate       float64 `envconfig:"LOSS_ESTIMATE" default:"0.2"`
	TradeSizeNormal    float64 `envconfig:"TRADE_SIZE_NORMAL" default:"0.2"`
	TradeSizeMicro     float64 `envconfig:"TRADE_SIZE_MICRO" default:"0.05"`
	MinLiquidity       float64 `envconfig:"MIN_LIQUIDITY" default:"10000"`
	MinMarketCap       float64 `envconfig:"MIN_MARKET_CAP" default:"20000"`
	WhaleDumpThreshold float64 `envconfig:"WHALE_DUMP_THRESHOLD" default:"3"`

	// Risk model coefficients.
	RiskA0 float64 `envconfig:"RISK_A0" default:"-2.0"`
	RiskA1 float64 `envconfig:"RISK_A1" default:"2.5"`
	RiskA2 float64 `envconfig:"RISK_A2" default:"1.5"`
	RiskA3 float64 `envconfig:"RISK_A3" default:"2.0"`
	RiskA4 float64 `envconfig:"RISK_A4" default:"1.2"`
	RiskA5 float64 `envconfig:"RISK_A5" default:"1.8"`
	RiskA6 float64 `envconfig:"RISK_A6" default:"1.0"`
	RiskA7 float64 `envconfig:"RISK_A7" default:"0.8"`
	RiskA8 float64 `envconfig:"RISK_A8" default:"1.5"`
	RiskA9 float64 `envconfig:"RISK_A9" default:"1.5"`

	// Engine behavior.
	RefreshInterval time.Duration `envconfig:"REFRESH_INTERVAL" default:"300ms"`
	HistoryDepth    int           `envconfig:"HISTORY_DEPTH" default:"50"`
	PaperTrading    bool          `envconfig:"PAPER_TRADING" default:"true"`
	AutoTrading     bool          `envconfig:"AUTO_TRADING" default:"false"`
	FocusMint       string        `envconfig:"FOCUS_MINT"`

	// Feed.
	FeedWSEndpoint string `envconfig:"FEED_WS_ENDPOINT"`

	// Execution (live mode).
	SolanaRPCEndpoint string `envconfig:"SOLANA_RPC_ENDPOINT"`
	WalletAddress     string `envconfig:"WALLET_ADDRESS"`
	SlippageBps       int    `envconfig:"SLIPPAGE_BPS" default:"100"`

	// Storage.
	PostgresDSN   string `envconfig:"POSTGRES_DSN"`
	ClickhouseDSN string `envconfig:"CLICKHOUSE_DSN"`
	TradeLogPath  string `envconfig:"TRADE_LOG_PATH" default:"trades.csv"`

	// Integrations.
	TelegramToken  string `envconfig:"TELEGRAM_TOKEN"`
	TelegramChatID int64  `envconfig:"TELEGRAM_CHAT_ID"`

	// Advisory.
	AdvisoryEnabled   bool   `envconfig:"ADVISORY_ENABLED" default:"false"`
	AdvisoryAllowFlip bool   `envconfig:"ADVISORY_ALLOW_FLIP" default:"false"`
	OpenAIAPIKey      string `envconfig:"OPENAI_API_KEY"`
	OpenAIModel       string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`

	// Observability.
	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9090"`
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the engine cannot run with. Live trading
// additionally needs an RPC endpoint and a valid wallet address.
func (c *Config) Validate() error {
	if c.ProfitTarget <= 0 {
		return fmt.Errorf("PROFIT_TARGET must be positive, got %v", c.ProfitTarget)
	}
	if c.LossEstimate <= 0 {
		return fmt.Errorf("LOSS_ESTIMATE must be positive, got %v", c.LossEstimate)
	}
	if c.TradeSizeNormal <= 0 || c.TradeSizeMicro <= 0 {
		return fmt.Errorf("trade sizes must be positive, got normal=%v micro=%v", c.TradeSizeNormal, c.TradeSizeMicro)
	}
	if c.TradeSizeMicro > c.TradeSizeNormal {
		return fmt.Errorf("TRADE_SIZE_MICRO %v exceeds TRADE_SIZE_NORMAL %v", c.TradeSizeMicro, c.TradeSizeNormal)
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("REFRESH_INTERVAL must be positive, got %v", c.RefreshInterval)
	}
	if c.HistoryDepth <= 0 {
		return fmt.Errorf("HISTORY_DEPTH must be positive, got %v", c.HistoryDepth)
	}
	if c.FocusMint != "" {
		if err := feed.ValidateMint(c.FocusMint); err != nil {
			return fmt.Errorf("FOCUS_MINT: %w", err)
		}
	}
	if !c.PaperTrading {
		if c.SolanaRPCEndpoint == "" {
			return fmt.Errorf("live trading requires SOLANA_RPC_ENDPOINT")
		}
		if c.WalletAddress == "" {
			return fmt.Errorf("live trading requires WALLET_ADDRESS")
		}
		if err := execution.ValidateWalletAddress(c.WalletAddress); err != nil {
			return fmt.Errorf("WALLET_ADDRESS: %w", err)
		}
	}
	return nil
}

// RiskCoefficients assembles the model weights from the config fields.
func (c *Config) RiskCoefficients() domain.RiskCoefficients {
	return domain.RiskCoefficients{
		A0: c.RiskA0, A1: c.RiskA1, A2: c.RiskA2, A3: c.RiskA3, A4: c.RiskA4,
		A5: c.RiskA5, A6: c.RiskA6, A7: c.RiskA7, A8: c.RiskA8, A9: c.RiskA9,
	}
}
