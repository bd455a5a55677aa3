package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/papertrader/backtest"
	"github.com/rustyeddy/papertrader/config"
	"github.com/rustyeddy/papertrader/journal"
	"github.com/rustyeddy/papertrader/pkg/id"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay price history through a strategy",
	Long: `Replay hourly bars through the configured strategy and risk rules and
print a summary.

Bars come from a time,close CSV file (--data) or are fetched from the
configured provider. The first --warmup bars only seed the indicators.
Positions still open at the end are closed as CLOSE_END.

Examples:
  trader backtest --strategy dual
  trader backtest --data btc-hourly.csv --strategy conservative --org run.org`,
	Args: cobra.NoArgs,
	RunE: runBacktest,
}

var (
	btData     string
	btStrategy string
	btWarmup   int
	btOrg      string
	btJSONL    string
	btVerbose  bool
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVarP(&btData, "data", "d", "", "CSV file of time,close bars (fetch from the provider when empty)")
	backtestCmd.Flags().StringVarP(&btStrategy, "strategy", "s", "", "aggressive|conservative|dual (overrides config)")
	backtestCmd.Flags().IntVar(&btWarmup, "warmup", 0, "bars used only for indicator warmup (overrides config)")
	backtestCmd.Flags().StringVar(&btOrg, "org", "", "write an Org-mode report to this path")
	backtestCmd.Flags().StringVar(&btJSONL, "jsonl", "", "also write trade events to this JSONL file")
	backtestCmd.Flags().BoolVarP(&btVerbose, "verbose", "v", false, "print a status line per tick")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if btStrategy != "" {
		cfg.UseStrategy(btStrategy)
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
	}
	if btWarmup > 0 {
		cfg.Backtest.Warmup = btWarmup
	}
	if btOrg == "" {
		btOrg = cfg.Backtest.OrgPath
	}
	dataPath := btData
	if dataPath == "" {
		dataPath = cfg.Backtest.DataCSV
	}

	cls, err := cfg.Classifier()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	bars, dataset, err := loadHistory(ctx, cfg, dataPath)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Backtest %s on %s: %d bars, warmup %d\n", cls.Name(), cfg.Trading.Asset, len(bars), cfg.Backtest.Warmup)

	r := &backtest.Runner{
		Config:     cfg.Trading,
		Policy:     cfg.Risk,
		Classifier: cls,
		Bars:       bars,
		Dataset:    dataset,
		Warmup:     cfg.Backtest.Warmup,
	}
	if btVerbose {
		r.Out = out
	}
	if btJSONL != "" {
		j, err := journal.NewJSONL(btJSONL)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer j.Close()
		r.Journal = j
	}

	res, err := r.Run(ctx)
	if err != nil {
		return err
	}
	backtest.PrintResult(out, res)

	if btOrg != "" {
		if err := os.MkdirAll(filepath.Dir(btOrg), 0o755); err != nil {
			return err
		}
		rep := backtest.Report{
			Result:  res,
			RunID:   id.New(),
			Created: time.Now(),
			Params:  renderParams(cfg),
		}
		if err := rep.SaveOrg(btOrg); err != nil {
			return fmt.Errorf("write org report: %w", err)
		}
		fmt.Fprintf(out, "Org report: %s\n", btOrg)
	}
	return nil
}

func renderParams(cfg *config.Config) string {
	b, err := yaml.Marshal(struct {
		Trading  any `yaml:"trading"`
		Strategy any `yaml:"strategy"`
		Risk     any `yaml:"risk"`
	}{cfg.Trading, cfg.Strategy, cfg.Risk})
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}
