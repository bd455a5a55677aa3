package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix namespaces every override variable.
const EnvPrefix = "PAPERTRADER_"

func getEnv(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(EnvPrefix + key))
	return v, v != ""
}

func envString(key string, dst *string) {
	if v, ok := getEnv(key); ok {
		*dst = v
	}
}

func envFloat(key string, dst *float64) error {
	v, ok := getEnv(key)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
	}
	*dst = f
	return nil
}

func envInt(key string, dst *int) error {
	v, ok := getEnv(key)
	if !ok {
		return nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
	}
	*dst = i
	return nil
}

func envBool(key string, dst *bool) error {
	v, ok := getEnv(key)
	if !ok {
		return nil
	}
	switch strings.ToLower(v) {
	case "1", "true", "y", "yes":
		*dst = true
	case "0", "false", "n", "no":
		*dst = false
	default:
		return fmt.Errorf("%s%s: not a boolean: %q", EnvPrefix, key, v)
	}
	return nil
}

func envDuration(key string, dst *time.Duration) error {
	v, ok := getEnv(key)
	if !ok {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
	}
	*dst = d
	return nil
}

// ApplyEnv overrides fields from PAPERTRADER_* variables. Unset or empty
// variables leave the field alone; malformed values are an error.
func (c *Config) ApplyEnv() error {
	envString("ASSET", &c.Trading.Asset)
	if v, ok := getEnv("STRATEGY"); ok {
		c.UseStrategy(v)
	}
	envString("FEED", &c.Feed.Provider)
	envString("FEED_CSV", &c.Feed.CSVPath)
	envString("STATE_BACKEND", &c.State.Backend)
	envString("STATE_DIR", &c.State.Dir)
	envString("REDIS_ADDR", &c.State.Redis.Addr)
	envString("REDIS_PASSWORD", &c.State.Redis.Password)
	envString("REDIS_PREFIX", &c.State.Redis.Prefix)
	envString("JOURNAL_JSONL", &c.Journal.JSONL)
	envString("JOURNAL_CSV", &c.Journal.CSV)
	envString("JOURNAL_SQLITE", &c.Journal.SQLite)
	envString("METRICS_ADDR", &c.Live.MetricsAddr)

	for _, f := range []func() error{
		func() error { return envFloat("INITIAL_CAPITAL", &c.Trading.InitialCapital) },
		func() error { return envFloat("POSITION_SIZE", &c.Trading.PositionSize) },
		func() error { return envFloat("STOP_LOSS_PCT", &c.Trading.StopLossPct) },
		func() error { return envFloat("TAKE_PROFIT_PCT", &c.Trading.TakeProfitPct) },
		func() error { return envFloat("KILL_FRACTION", &c.Trading.KillFraction) },
		func() error { return envFloat("DAILY_LOSS_LIMIT_PCT", &c.Risk.DailyLossLimitPct) },
		func() error { return envInt("LOSS_STREAK", &c.Risk.LossStreak) },
		func() error { return envDuration("PAUSE", &c.Risk.PauseDuration) },
		func() error { return envFloat("MAX_EXPOSURE", &c.Risk.MaxExposureFraction) },
		func() error { return envInt("FEED_HOURS", &c.Feed.Hours) },
		func() error { return envInt("REDIS_DB", &c.State.Redis.DB) },
		func() error { return envDuration("INTERVAL", &c.Live.Interval) },
		func() error { return envBool("LOOP", &c.Live.Loop) },
	} {
		if err := f(); err != nil {
			return err
		}
	}
	return nil
}
