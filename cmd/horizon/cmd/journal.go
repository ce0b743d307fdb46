package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/horizon/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query position journal data",
	Long: `Query and display journal records from the SQLite database.

Subcommands:
  close     - Get details of a specific closed position by ID
  closes    - List positions closed on a day
  decisions - List exit decisions recorded on a day

Examples:
  horizon journal close <position-id>
  horizon journal closes today
  horizon journal closes 2025-03-14
  horizon journal decisions 2025-03-14`,
}

var journalCloseCmd = &cobra.Command{
	Use:   "close <position-id>",
	Short: "Get details of a closed position",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalClose,
}

var journalClosesCmd = &cobra.Command{
	Use:   "closes <YYYY-MM-DD|today>",
	Short: "List positions closed on a day",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalCloses,
}

var journalDecisionsCmd = &cobra.Command{
	Use:   "decisions <YYYY-MM-DD|today>",
	Short: "List exit decisions recorded on a day",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalDecisions,
}

var journalDBPath string

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalCloseCmd)
	journalCmd.AddCommand(journalClosesCmd)
	journalCmd.AddCommand(journalDecisionsCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./horizon.sqlite", "path to SQLite journal DB")
}

func runJournalClose(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	rec, err := j.GetClose(args[0])
	if err != nil {
		return fmt.Errorf("get close: %w", err)
	}

	fmt.Println(journal.FormatCloseOrg(rec))
	return nil
}

func runJournalCloses(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	start, end, err := dayBounds(time.Local, args[0])
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}

	recs, err := j.ListClosesBetween(start, end)
	if err != nil {
		return fmt.Errorf("query closes: %w", err)
	}

	fmt.Println(journal.FormatClosesOrg(recs))
	return nil
}

func runJournalDecisions(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	start, end, err := dayBounds(time.Local, args[0])
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}

	recs, err := j.ListDecisionsBetween(start, end)
	if err != nil {
		return fmt.Errorf("query decisions: %w", err)
	}

	fmt.Println(journal.FormatDecisionsOrg(recs))
	return nil
}

func dayBounds(loc *time.Location, day string) (time.Time, time.Time, error) {
	if day == "today" {
		day = time.Now().In(loc).Format("2006-01-02")
	}
	t, err := time.ParseInLocation("2006-01-02", day, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	end := start.Add(24 * time.Hour)
	return start, end, nil
}
