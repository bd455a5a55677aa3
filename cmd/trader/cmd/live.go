package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/papertrader/engine"
	"github.com/rustyeddy/papertrader/live"
	"github.com/rustyeddy/papertrader/metrics"
)

var liveCmd = &cobra.Command{
	Use:   "live",
	Short: "Paper trade against live prices",
	Long: `Fetch the latest hourly history, manage open positions and open new
ones, then save state. State is reloaded on every start, so a cron job can
run one tick per invocation; --loop keeps the process running and ticks every
--interval instead.

The command exits non-zero once the portfolio falls below the kill threshold.

Examples:
  trader live
  trader live --loop --interval 30m --metrics-addr :9100
  trader live --redis-addr localhost:6379`,
	Args: cobra.NoArgs,
	RunE: runLive,
}

var (
	liveLoop        bool
	liveInterval    time.Duration
	liveStateDir    string
	liveMetricsAddr string
	liveRedisAddr   string
)

func init() {
	rootCmd.AddCommand(liveCmd)

	liveCmd.Flags().BoolVar(&liveLoop, "loop", false, "keep running and tick every --interval")
	liveCmd.Flags().DurationVar(&liveInterval, "interval", 0, "time between ticks in loop mode (overrides config)")
	liveCmd.Flags().StringVar(&liveStateDir, "state-dir", "", "directory for sim-state.json and risk-state.json (overrides config)")
	liveCmd.Flags().StringVar(&liveMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9100")
	liveCmd.Flags().StringVar(&liveRedisAddr, "redis-addr", "", "keep state in Redis at this address instead of files")
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("loop") {
		cfg.Live.Loop = liveLoop
	}
	if liveInterval > 0 {
		cfg.Live.Interval = liveInterval
	}
	if liveStateDir != "" {
		cfg.State.Backend = "file"
		cfg.State.Dir = liveStateDir
	}
	if liveRedisAddr != "" {
		cfg.State.Backend = "redis"
		cfg.State.Redis.Addr = liveRedisAddr
	}
	if liveMetricsAddr != "" {
		cfg.Live.MetricsAddr = liveMetricsAddr
	}

	cls, err := cfg.Classifier()
	if err != nil {
		return err
	}
	st, closeStore, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open state: %w", err)
	}
	defer closeStore()
	j, err := openJournal(cfg)
	if err != nil {
		return err
	}
	defer j.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var obs engine.Observer
	if cfg.Live.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		obs = metrics.NewRecorder(reg)
		go func() {
			if err := metrics.Serve(ctx, cfg.Live.MetricsAddr, reg); err != nil {
				log.Printf("[metrics] %v", err)
			}
		}()
	}

	eng, err := engine.New(ctx, engine.Options{
		Config:     cfg.Trading,
		Policy:     cfg.Risk,
		Source:     openSource(cfg, cfg.Feed.Hours),
		Classifier: cls,
		Store:      st,
		Journal:    j,
		Observer:   obs,
		Out:        cmd.OutOrStdout(),
		Now:        time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	mode := "single tick"
	if cfg.Live.Loop {
		mode = "loop every " + cfg.Live.Interval.String()
	}
	fmt.Fprintf(out, "Live %s on %s (%s)\n", cls.Name(), cfg.Trading.Asset, mode)

	err = eng.Run(ctx, live.NewInterval(cfg.Live.Interval, !cfg.Live.Loop))
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return nil
	case errors.Is(err, engine.ErrKilled):
		fmt.Fprintln(out, "Portfolio halted by the kill switch. Reset state to trade again.")
		return err
	default:
		return err
	}
}
