package config

import (
	"sync"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ProfitTarget != 0.05 {
		t.Errorf("expected default profit target 0.05, got %v", cfg.ProfitTarget)
	}
	if cfg.LossEstimate != 0.2 {
		t.Errorf("expected default loss estimate 0.2, got %v", cfg.LossEstimate)
	}
	if cfg.RefreshInterval != 300*time.Millisecond {
		t.Errorf("expected default refresh interval 300ms, got %v", cfg.RefreshInterval)
	}
	if !cfg.PaperTrading {
		t.Error("paper trading should default to on")
	}
	if cfg.AutoTrading {
		t.Error("auto trading should default to off")
	}
	if cfg.HistoryDepth != 50 {
		t.Errorf("expected default history depth 50, got %v", cfg.HistoryDepth)
	}
	if cfg.WhaleDumpThreshold != 3 {
		t.Errorf("expected default whale dump threshold 3, got %v", cfg.WhaleDumpThreshold)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("PROFIT_TARGET", "0.1")
	t.Setenv("AUTO_TRADING", "true")
	t.Setenv("REFRESH_INTERVAL", "1s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ProfitTarget != 0.1 {
		t.Errorf("expected profit target 0.1, got %v", cfg.ProfitTarget)
	}
	if !cfg.AutoTrading {
		t.Error("expected auto trading on")
	}
	if cfg.RefreshInterval != time.Second {
		t.Errorf("expected refresh interval 1s, got %v", cfg.RefreshInterval)
	}
}

func TestValidate_RejectsBadValues(t *testing.T) {
	base := func() *Config {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		return cfg
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero profit target", func(c *Config) { c.ProfitTarget = 0 }},
		{"negative loss estimate", func(c *Config) { c.LossEstimate = -1 }},
		{"micro above normal", func(c *Config) { c.TradeSizeMicro = 1; c.TradeSizeNormal = 0.2 }},
		{"zero refresh interval", func(c *Config) { c.RefreshInterval = 0 }},
		{"zero history depth", func(c *Config) { c.HistoryDepth = 0 }},
		{"bad focus mint", func(c *Config) { c.FocusMint = "not-a-mint" }},
		{"live without rpc", func(c *Config) { c.PaperTrading = false }},
		{"live without wallet", func(c *Config) {
			c.PaperTrading = false
			c.SolanaRPCEndpoint = "http://localhost:8899"
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestRiskCoefficients(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	coeffs := cfg.RiskCoefficients()
	if coeffs.A0 != -2.0 {
		t.Errorf("expected A0 -2.0, got %v", coeffs.A0)
	}
	if coeffs.A1 != 2.5 {
		t.Errorf("expected A1 2.5, got %v", coeffs.A1)
	}
}

func TestStore_UpdateInstallsCopy(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	store := NewStore(cfg)

	before := store.Get()
	store.Update(func(c *Config) { c.AutoTrading = true })
	after := store.Get()

	if before.AutoTrading {
		t.Error("old snapshot must be unchanged")
	}
	if !after.AutoTrading {
		t.Error("new snapshot must carry the update")
	}
	if before == after {
		t.Error("update must install a new pointer")
	}
}

func TestStore_ConcurrentUpdates(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.TradeSizeMicro = 0
	store := NewStore(cfg)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Update(func(c *Config) { c.TradeSizeMicro++ })
		}()
	}
	wg.Wait()

	if got := store.Get().TradeSizeMicro; got != 50 {
		t.Errorf("expected 50 applied updates, got %v", got)
	}
}
