package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/papertrader/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the saved portfolio and risk state",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

var statusStateDir string

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().StringVar(&statusStateDir, "state-dir", "", "state directory (overrides config)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if statusStateDir != "" {
		cfg.State.Backend = "file"
		cfg.State.Dir = statusStateDir
	}
	st, closeStore, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open state: %w", err)
	}
	defer closeStore()

	out := cmd.OutOrStdout()
	snap, err := st.Load(cmd.Context())
	if errors.Is(err, store.ErrNoState) {
		fmt.Fprintln(out, "No saved state.")
		return nil
	}
	if err != nil {
		return err
	}

	pf := snap.Portfolio
	fmt.Fprintf(out, "Cash:        $%.2f\n", pf.Cash)
	fmt.Fprintf(out, "Exposure:    $%.2f\n", pf.Exposure())
	fmt.Fprintf(out, "Trades:      %d\n", pf.TotalTrades)
	fmt.Fprintf(out, "Started:     %s\n", fmtTime(pf.Start))
	fmt.Fprintf(out, "Last check:  %s\n", fmtTime(pf.LastCheck))
	fmt.Fprintf(out, "Last signal: %s\n", fmtTime(pf.LastSignal))
	if pf.Halted {
		fmt.Fprintln(out, "Halted:      yes")
	}
	for _, p := range pf.Positions {
		fmt.Fprintf(out, "  [%s] %s %.6f @ $%.2f (collateral $%.2f, %s)\n",
			p.Strategy, p.Side, p.Quantity, p.Entry, p.Collateral, fmtTime(p.OpenTime))
	}

	rs := snap.Risk
	fmt.Fprintf(out, "Risk:        day %s start $%.2f, %d consecutive losses\n",
		rs.DailyDate, rs.DailyStartCapital, rs.ConsecutiveLosses)
	if !rs.PausedUntil.IsZero() {
		fmt.Fprintf(out, "Paused:      %s until %s\n", rs.PauseReason, fmtTime(rs.PausedUntil))
	}
	return nil
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}
