// Package config loads the trader configuration from YAML or JSON with
// PAPERTRADER_* environment overrides.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/papertrader/engine"
	"github.com/rustyeddy/papertrader/market"
	"github.com/rustyeddy/papertrader/risk"
	"github.com/rustyeddy/papertrader/store"
	"github.com/rustyeddy/papertrader/strategies"
)

// Config represents the complete trader configuration
type Config struct {
	Trading  engine.Config  `json:"trading" yaml:"trading"`
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Risk     risk.Policy    `json:"risk" yaml:"risk"`
	Feed     FeedConfig     `json:"feed" yaml:"feed"`
	State    StateConfig    `json:"state" yaml:"state"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
	Live     LiveConfig     `json:"live" yaml:"live"`
	Backtest BacktestConfig `json:"backtest" yaml:"backtest"`
}

// StrategyConfig picks a classifier and optionally overrides its defaults
type StrategyConfig struct {
	Name              string `json:"name" yaml:"name"` // aggressive|conservative|dual
	strategies.Tuning `yaml:",inline"`
}

// FeedConfig selects where live prices come from
type FeedConfig struct {
	Provider string `json:"provider" yaml:"provider"` // failover|cryptocompare|coingecko|csv
	Hours    int    `json:"hours" yaml:"hours"`
	CSVPath  string `json:"csv_path,omitempty" yaml:"csv_path,omitempty"`
}

// StateConfig selects the snapshot store
type StateConfig struct {
	Backend string            `json:"backend" yaml:"backend"` // file|redis
	Dir     string            `json:"dir" yaml:"dir"`
	Redis   store.RedisConfig `json:"redis" yaml:"redis"`
}

// JournalConfig lists the trade log sinks; empty paths are disabled
type JournalConfig struct {
	JSONL  string `json:"jsonl,omitempty" yaml:"jsonl,omitempty"`
	CSV    string `json:"csv,omitempty" yaml:"csv,omitempty"`
	SQLite string `json:"sqlite,omitempty" yaml:"sqlite,omitempty"`
}

type LiveConfig struct {
	Interval    time.Duration `json:"interval" yaml:"interval"`
	Loop        bool          `json:"loop" yaml:"loop"`
	MetricsAddr string        `json:"metrics_addr,omitempty" yaml:"metrics_addr,omitempty"`
}

type BacktestConfig struct {
	Warmup  int    `json:"warmup" yaml:"warmup"`
	Hours   int    `json:"hours" yaml:"hours"` // history fetched when no data file is given
	DataCSV string `json:"data_csv,omitempty" yaml:"data_csv,omitempty"`
	OrgPath string `json:"org_path,omitempty" yaml:"org_path,omitempty"`
}

var (
	providers = []string{"failover", "cryptocompare", "coingecko", "csv"}
	backends  = []string{"file", "redis"}
)

// variant is the sizing and exits a strategy was tuned with.
type variant struct {
	PositionSize  float64
	StopLossPct   float64
	TakeProfitPct float64
	MaxExposure   float64
}

var variants = map[string]variant{
	"aggressive":   {PositionSize: 0.20, StopLossPct: -0.8, TakeProfitPct: 1.0},
	"conservative": {PositionSize: 0.05, StopLossPct: -1.5, TakeProfitPct: 2.0},
	"dual":         {PositionSize: 0.05, StopLossPct: -2.0, TakeProfitPct: 3.0, MaxExposure: 0.10},
}

// Default returns the dual-strategy configuration with its documented
// defaults
func Default() *Config {
	return DefaultFor("dual")
}

// DefaultFor returns the defaults for the named strategy, including its
// position size, exits and exposure cap. Unknown names get the dual
// trading defaults and fail Validate.
func DefaultFor(name string) *Config {
	cfg := base()
	cfg.UseStrategy(name)
	return cfg
}

// UseStrategy switches to the named strategy. Sizing and exit fields still
// holding the previous strategy's defaults move to the new strategy's;
// values set explicitly are kept.
func (c *Config) UseStrategy(name string) {
	from, okFrom := variants[strings.ToLower(strings.TrimSpace(c.Strategy.Name))]
	to, okTo := variants[strings.ToLower(strings.TrimSpace(name))]
	c.Strategy.Name = name
	if !okFrom || !okTo {
		return
	}
	rebase(&c.Trading.PositionSize, from.PositionSize, to.PositionSize)
	rebase(&c.Trading.StopLossPct, from.StopLossPct, to.StopLossPct)
	rebase(&c.Trading.TakeProfitPct, from.TakeProfitPct, to.TakeProfitPct)
	rebase(&c.Risk.MaxExposureFraction, from.MaxExposure, to.MaxExposure)
}

func rebase(dst *float64, from, to float64) {
	if *dst == from {
		*dst = to
	}
}

func base() *Config {
	return &Config{
		Trading:  engine.DefaultConfig(),
		Strategy: StrategyConfig{Name: "dual"},
		Risk:     risk.DefaultPolicy(),
		Feed:     FeedConfig{Provider: "failover", Hours: 168},
		State: StateConfig{
			Backend: "file",
			Dir:     "./state",
			Redis:   store.RedisConfig{Addr: "localhost:6379", Prefix: "papertrader"},
		},
		Journal: JournalConfig{
			JSONL:  "./state/trades.jsonl",
			SQLite: "./state/trades.db",
		},
		Live: LiveConfig{
			Interval: 30 * time.Minute,
			Loop:     false,
		},
		Backtest: BacktestConfig{
			Warmup: 20,
			Hours:  168,
		},
	}
}

// Load reads path when given, otherwise starts from Default, then applies
// the environment and validates.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = LoadFromFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a file on top of Default. Missing
// keys keep their defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// the file's strategy picks the defaults its other keys override
	var head struct {
		Strategy struct {
			Name string `json:"name" yaml:"name"`
		} `json:"strategy" yaml:"strategy"`
	}
	if yaml.Unmarshal(data, &head) != nil {
		_ = json.Unmarshal(data, &head)
	}
	fresh := Default
	if head.Strategy.Name != "" {
		fresh = func() *Config { return DefaultFor(head.Strategy.Name) }
	}
	cfg := fresh()

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		cfg = fresh()
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if _, ok := market.LookupAsset(c.Trading.Asset); !ok {
		return fmt.Errorf("unknown asset: %s", c.Trading.Asset)
	}
	if err := c.Trading.Validate(); err != nil {
		return fmt.Errorf("trading: %w", err)
	}
	if err := c.Risk.Validate(); err != nil {
		return fmt.Errorf("risk: %w", err)
	}
	if err := c.Trading.ValidatePolicy(c.Risk); err != nil {
		return fmt.Errorf("trading: %w", err)
	}
	if _, err := c.Classifier(); err != nil {
		return err
	}
	if !oneOf(c.Feed.Provider, providers) {
		return fmt.Errorf("feed.provider must be one of %s", strings.Join(providers, ", "))
	}
	if c.Feed.Provider == "csv" && c.Feed.CSVPath == "" {
		return fmt.Errorf("feed.csv_path required for csv provider")
	}
	if c.Feed.Hours < 0 {
		return fmt.Errorf("feed.hours must not be negative")
	}
	if !oneOf(c.State.Backend, backends) {
		return fmt.Errorf("state.backend must be one of %s", strings.Join(backends, ", "))
	}
	if c.State.Backend == "file" && c.State.Dir == "" {
		return fmt.Errorf("state.dir required for file backend")
	}
	if c.State.Backend == "redis" && c.State.Redis.Addr == "" {
		return fmt.Errorf("state.redis.addr required for redis backend")
	}
	if c.Live.Interval <= 0 {
		return fmt.Errorf("live.interval must be positive")
	}
	if c.Backtest.Warmup < 0 {
		return fmt.Errorf("backtest.warmup must not be negative")
	}
	return nil
}

// Asset resolves Trading.Asset.
func (c *Config) Asset() market.Asset {
	a, _ := market.LookupAsset(c.Trading.Asset)
	return a
}

// Classifier builds the configured strategy.
func (c *Config) Classifier() (strategies.Classifier, error) {
	return strategies.ByName(c.Strategy.Name, c.Strategy.Tuning)
}

func oneOf(s string, set []string) bool {
	for _, v := range set {
		if s == v {
			return true
		}
	}
	return false
}
