package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/papertrader/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Generate or validate configuration files",
	Long: `Manage trader configuration files.

Subcommands:
  init     - Generate a default configuration file
  validate - Validate an existing configuration file

Examples:
  trader config init -o trader.yaml
  trader config validate -f trader.yaml`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default configuration file",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

var (
	configInitOutput   string
	configValidatePath string
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)

	configInitCmd.Flags().StringVarP(&configInitOutput, "output", "o", "trader.yaml", "output config file path (.yaml or .json)")
	configValidateCmd.Flags().StringVarP(&configValidatePath, "file", "f", "", "path to config file (required)")
	_ = configValidateCmd.MarkFlagRequired("file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if err := cfg.SaveToFile(configInitOutput); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created default configuration: %s\n", configInitOutput)
	fmt.Fprintln(out, "\nEdit the file and run with:")
	fmt.Fprintf(out, "  trader --config %s backtest\n", configInitOutput)
	fmt.Fprintf(out, "  trader --config %s live --loop\n", configInitOutput)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(configValidatePath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Configuration valid: %s\n", configValidatePath)
	fmt.Fprintf(out, "  Asset:    %s ($%.2f, size %.0f%%)\n", cfg.Trading.Asset, cfg.Trading.InitialCapital, cfg.Trading.PositionSize*100)
	fmt.Fprintf(out, "  Exits:    SL %.2f%% / TP %.2f%%, kill below %.0f%%\n",
		cfg.Trading.StopLossPct, cfg.Trading.TakeProfitPct, cfg.Trading.KillFraction*100)
	fmt.Fprintf(out, "  Strategy: %s\n", cfg.Strategy.Name)
	fmt.Fprintf(out, "  Risk:     daily limit %.1f%%, pause %s after %d losses\n",
		cfg.Risk.DailyLossLimitPct, cfg.Risk.PauseDuration, cfg.Risk.LossStreak)
	fmt.Fprintf(out, "  Feed:     %s, state: %s\n", cfg.Feed.Provider, cfg.State.Backend)
	return nil
}
