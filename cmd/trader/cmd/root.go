package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/papertrader/config"
)

var rootCmd = &cobra.Command{
	Use:   "trader",
	Short: "A single-asset crypto paper trader",
	Long: `Trader runs an EMA/RSI signal engine against live or historical prices
with a simulated portfolio.

It provides tools for:
  - Backtesting the aggressive, conservative and dual strategies
  - Live paper trading that resumes from saved state
  - A daily loss limit, losing-streak pause and portfolio kill switch
  - Querying the trade journal

Every parameter lives in a YAML or JSON config file (trader config init) and
can be overridden with PAPERTRADER_* environment variables.`,
	SilenceUsage: true,
}

var cfgFile string

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON); defaults are used when empty")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
