package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NotNil(t, cfg)
	assert.Equal(t, "BTC_USD", cfg.Trading.Asset)
	assert.Equal(t, 10000.0, cfg.Trading.InitialCapital)
	assert.Equal(t, 0.05, cfg.Trading.PositionSize)
	assert.Equal(t, -2.0, cfg.Trading.StopLossPct)
	assert.Equal(t, 3.0, cfg.Trading.TakeProfitPct)
	assert.Equal(t, "dual", cfg.Strategy.Name)
	assert.Equal(t, 15*time.Minute, cfg.Risk.PauseDuration)
	assert.NoError(t, cfg.Validate())

	cls, err := cfg.Classifier()
	require.NoError(t, err)
	assert.Equal(t, "dual", cls.Name())
	assert.Equal(t, "bitcoin", cfg.Asset().CoinGeckoID)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mod    func(*Config)
		errMsg string
	}{
		{"valid config", func(*Config) {}, ""},
		{"unknown asset", func(c *Config) { c.Trading.Asset = "DOGE_EUR" }, "unknown asset"},
		{"bad position size", func(c *Config) { c.Trading.PositionSize = 2 }, "position size"},
		{"size above exposure cap", func(c *Config) { c.Trading.PositionSize = 0.2 }, "max exposure fraction"},
		{"positive stop loss", func(c *Config) { c.Trading.StopLossPct = 1 }, "stop loss"},
		{"loss streak", func(c *Config) { c.Risk.LossStreak = 0 }, "loss streak"},
		{"unknown strategy", func(c *Config) { c.Strategy.Name = "yolo" }, "unknown strategy"},
		{"fast not below slow", func(c *Config) { c.Strategy.Fast = 20 }, "strategy dual"},
		{"unknown provider", func(c *Config) { c.Feed.Provider = "oanda" }, "feed.provider"},
		{"csv without path", func(c *Config) { c.Feed.Provider = "csv" }, "feed.csv_path"},
		{"unknown backend", func(c *Config) { c.State.Backend = "etcd" }, "state.backend"},
		{"redis without addr", func(c *Config) {
			c.State.Backend = "redis"
			c.State.Redis.Addr = ""
		}, "state.redis.addr"},
		{"zero interval", func(c *Config) { c.Live.Interval = 0 }, "live.interval"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mod(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSaveAndLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trader.yaml")

	cfg := Default()
	cfg.Strategy.Name = "conservative"
	cfg.Strategy.Overbought = 80
	cfg.Risk.PauseDuration = 30 * time.Minute
	require.NoError(t, cfg.SaveToFile(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "pause_duration: 30m0s")
	assert.Contains(t, string(b), "overbought: 80")

	got, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestSaveAndLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trader.json")
	cfg := Default()
	cfg.Trading.Asset = "ETH_USD"
	require.NoError(t, cfg.SaveToFile(path))

	got, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ETH_USD", got.Trading.Asset)
	assert.Equal(t, cfg.Risk, got.Risk)
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trader.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
strategy:
  name: aggressive
risk:
  pause_duration: 1h
`), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "aggressive", cfg.Strategy.Name)
	assert.Equal(t, time.Hour, cfg.Risk.PauseDuration)
	assert.Equal(t, 3, cfg.Risk.LossStreak)
	assert.Equal(t, 10000.0, cfg.Trading.InitialCapital)
	assert.Equal(t, 0.2, cfg.Trading.PositionSize)
	assert.Equal(t, -0.8, cfg.Trading.StopLossPct)
	assert.Zero(t, cfg.Risk.MaxExposureFraction)
}

func TestDefaultForVariants(t *testing.T) {
	tests := []struct {
		name     string
		size     float64
		sl, tp   float64
		exposure float64
	}{
		{"aggressive", 0.20, -0.8, 1.0, 0},
		{"conservative", 0.05, -1.5, 2.0, 0},
		{"dual", 0.05, -2.0, 3.0, 0.10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultFor(tt.name)
			assert.Equal(t, tt.name, cfg.Strategy.Name)
			assert.Equal(t, tt.size, cfg.Trading.PositionSize)
			assert.Equal(t, tt.sl, cfg.Trading.StopLossPct)
			assert.Equal(t, tt.tp, cfg.Trading.TakeProfitPct)
			assert.Equal(t, tt.exposure, cfg.Risk.MaxExposureFraction)
			assert.NoError(t, cfg.Validate())
		})
	}

	cfg := DefaultFor("yolo")
	assert.Equal(t, 0.05, cfg.Trading.PositionSize)
	assert.Error(t, cfg.Validate())
}

func TestUseStrategyKeepsExplicitValues(t *testing.T) {
	cfg := Default()
	cfg.Trading.TakeProfitPct = 4
	cfg.UseStrategy("aggressive")

	assert.Equal(t, "aggressive", cfg.Strategy.Name)
	assert.Equal(t, 0.2, cfg.Trading.PositionSize)
	assert.Equal(t, -0.8, cfg.Trading.StopLossPct)
	assert.Equal(t, 4.0, cfg.Trading.TakeProfitPct)
	assert.NoError(t, cfg.Validate())

	cfg.UseStrategy("conservative")
	assert.Equal(t, 0.05, cfg.Trading.PositionSize)
	assert.Equal(t, -1.5, cfg.Trading.StopLossPct)
	assert.Equal(t, 4.0, cfg.Trading.TakeProfitPct)
}

func TestLoadFileTradingOverridesVariant(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trader.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
trading:
  stop_loss_pct: -2
strategy:
  name: aggressive
`), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, -2.0, cfg.Trading.StopLossPct)
	assert.Equal(t, 1.0, cfg.Trading.TakeProfitPct)
	assert.Equal(t, 0.2, cfg.Trading.PositionSize)
}

func TestLoadFromFileErrors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("trading: [unclosed"), 0o644))
	_, err = LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")

	require.NoError(t, os.WriteFile(path, []byte("strategy:\n  name: nope\n"), 0o644))
	_, err = LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("PAPERTRADER_ASSET", "SOL_USD")
	t.Setenv("PAPERTRADER_STRATEGY", "aggressive")
	t.Setenv("PAPERTRADER_POSITION_SIZE", "0.1")
	t.Setenv("PAPERTRADER_LOSS_STREAK", "5")
	t.Setenv("PAPERTRADER_PAUSE", "45m")
	t.Setenv("PAPERTRADER_LOOP", "no")
	t.Setenv("PAPERTRADER_REDIS_ADDR", "redis:6379")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "SOL_USD", cfg.Trading.Asset)
	assert.Equal(t, "aggressive", cfg.Strategy.Name)
	assert.Equal(t, 0.1, cfg.Trading.PositionSize)
	assert.Equal(t, -0.8, cfg.Trading.StopLossPct)
	assert.Zero(t, cfg.Risk.MaxExposureFraction)
	assert.Equal(t, 5, cfg.Risk.LossStreak)
	assert.Equal(t, 45*time.Minute, cfg.Risk.PauseDuration)
	assert.False(t, cfg.Live.Loop)
	assert.Equal(t, "redis:6379", cfg.State.Redis.Addr)
}

func TestApplyEnvMalformed(t *testing.T) {
	t.Setenv("PAPERTRADER_INITIAL_CAPITAL", "lots")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PAPERTRADER_INITIAL_CAPITAL")
}

func TestApplyEnvInvalidResult(t *testing.T) {
	t.Setenv("PAPERTRADER_KILL_FRACTION", "1.5")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kill fraction")
}
