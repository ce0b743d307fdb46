package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/horizon/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Generate or validate configuration files",
	Long: `Manage configuration files for the capital router.

Subcommands:
  init     - Generate a default configuration file
  validate - Validate an existing configuration file

Examples:
  horizon config init -o my-config.yaml
  horizon config validate -f my-config.yaml`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default configuration file",
	Long: `Create a new configuration file with default settings.

Example:
  horizon config init -o horizon.yaml`,
	RunE: runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Check if a configuration file is valid and can be loaded.

Example:
  horizon config validate -f horizon.yaml`,
	RunE: runConfigValidate,
}

var (
	configInitOutput   string
	configValidatePath string
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)

	configInitCmd.Flags().StringVarP(&configInitOutput, "output", "o", "horizon.yaml", "output config file path")
	configValidateCmd.Flags().StringVarP(&configValidatePath, "file", "f", "", "path to config file (required)")
	configValidateCmd.MarkFlagRequired("file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if err := cfg.SaveToFile(configInitOutput); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Printf("✓ Created default configuration: %s\n", configInitOutput)
	fmt.Println("\nEdit the file and run with:")
	fmt.Printf("  horizon run -f %s -s signals.csv -m snapshots.csv\n", configInitOutput)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(configValidatePath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Printf("✓ Configuration valid: %s\n", configValidatePath)
	fmt.Printf("  Capital: $%.2f %s\n", cfg.Capital.Total, cfg.Capital.Currency)
	fmt.Printf("  Accounts: %s (%.0f%%), %s (%.0f%%)\n",
		cfg.Accounts.Scalp.ID, cfg.Accounts.Scalp.Fraction*100,
		cfg.Accounts.Trend.ID, cfg.Accounts.Trend.Fraction*100)
	fmt.Printf("  Exit: arm %.1f%%, tighten %.1f%%, hold limit %d days\n",
		cfg.Exit.ArmPct*100, cfg.Exit.TightenPct*100, cfg.Exit.MaxHoldDays)
	fmt.Printf("  Journal: %s\n", cfg.Journal.Type)
	return nil
}
