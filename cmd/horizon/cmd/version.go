package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the horizon CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("horizon version %s\n", version)
		fmt.Println("A trading-signal capital router with trend exit management")
		fmt.Println("https://github.com/rustyeddy/horizon")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
