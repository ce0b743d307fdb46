package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "horizon",
	Short: "A trading-signal capital router with trend exit management",
	Long: `Horizon routes incoming trading signals across capital accounts and
manages the exits of its trend positions.

It provides tools for:
  - Classifying signals into scalp or squeeze-trend intents
  - Routing fills into per-intent capital accounts with allocation ceilings
  - Daily trend exit evaluation (reversal, trailing stops, timeouts)
  - Journaling opens, closes and exit decisions to CSV or SQLite
  - Replaying signal and snapshot history from CSV files

Complete documentation is available at https://github.com/rustyeddy/horizon`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
