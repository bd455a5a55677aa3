package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/papertrader/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query trade journal data",
	Long: `Query and display trade events from the SQLite journal.

Subcommands:
  trade  - Show one event by ID
  today  - List events from today (UTC)
  day    - List events from a specific day
  tail   - Show the most recent events

Examples:
  trader journal trade 01HV3K8Q...
  trader journal today
  trader journal day 2025-03-01
  trader journal tail -n 20`,
}

var journalTradeCmd = &cobra.Command{
	Use:   "trade <event-id>",
	Short: "Show one event",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalTrade,
}

var journalTodayCmd = &cobra.Command{
	Use:   "today",
	Short: "List events from today",
	Args:  cobra.NoArgs,
	RunE:  runJournalToday,
}

var journalDayCmd = &cobra.Command{
	Use:   "day <YYYY-MM-DD>",
	Short: "List events from a specific day",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalDay,
}

var journalTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Show the most recent events",
	Args:  cobra.NoArgs,
	RunE:  runJournalTail,
}

var (
	journalDBPath string
	journalTailN  int
	journalCloses bool
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalTradeCmd)
	journalCmd.AddCommand(journalTodayCmd)
	journalCmd.AddCommand(journalDayCmd)
	journalCmd.AddCommand(journalTailCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "", "path to SQLite journal (default from config)")
	journalCmd.PersistentFlags().BoolVar(&journalCloses, "closes", false, "only closed trades")
	journalTailCmd.Flags().IntVarP(&journalTailN, "count", "n", 10, "number of events")
}

func openJournalDB() (*journal.SQLite, error) {
	path := journalDBPath
	if path == "" {
		cfg, err := loadConfig()
		if err != nil {
			return nil, err
		}
		path = cfg.Journal.SQLite
	}
	if path == "" {
		return nil, fmt.Errorf("no SQLite journal configured; pass --db")
	}
	j, err := journal.NewSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return j, nil
}

func runJournalTrade(cmd *cobra.Command, args []string) error {
	j, err := openJournalDB()
	if err != nil {
		return err
	}
	defer j.Close()

	e, err := j.GetEvent(args[0])
	if err != nil {
		return fmt.Errorf("get event: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatEventOrg(e))
	return nil
}

func runJournalToday(cmd *cobra.Command, args []string) error {
	return listDay(cmd, time.Now().UTC())
}

func runJournalDay(cmd *cobra.Command, args []string) error {
	day, err := time.ParseInLocation("2006-01-02", args[0], time.UTC)
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}
	return listDay(cmd, day)
}

func listDay(cmd *cobra.Command, day time.Time) error {
	j, err := openJournalDB()
	if err != nil {
		return err
	}
	defer j.Close()

	start, end := journal.DayBounds(day)
	list := j.ListEventsBetween
	if journalCloses {
		list = j.ListClosesBetween
	}
	events, err := list(start, end)
	if err != nil {
		return fmt.Errorf("query events: %w", err)
	}
	printEvents(cmd, events)
	return nil
}

func runJournalTail(cmd *cobra.Command, args []string) error {
	j, err := openJournalDB()
	if err != nil {
		return err
	}
	defer j.Close()

	events, err := j.Tail(journalTailN)
	if err != nil {
		return fmt.Errorf("query events: %w", err)
	}
	if journalCloses {
		var closes []journal.Event
		for _, e := range events {
			if e.Action.IsClose() {
				closes = append(closes, e)
			}
		}
		events = closes
	}
	printEvents(cmd, events)
	return nil
}

func printEvents(cmd *cobra.Command, events []journal.Event) {
	out := cmd.OutOrStdout()
	if len(events) == 0 {
		fmt.Fprintln(out, "No events.")
		return
	}
	fmt.Fprintln(out, journal.FormatEventsOrg(events))
	s := journal.Summarize(events)
	fmt.Fprintf(out, "\n# %d events, %d closed trades, %d wins (%.1f%%)\n",
		len(events), s.Trades, s.Wins, s.WinRate()*100)
}
