package config

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/horizon/trend"
)

// Config represents the complete router configuration
type Config struct {
	Capital  CapitalConfig  `json:"capital" yaml:"capital"`
	Accounts AccountsConfig `json:"accounts" yaml:"accounts"`
	Sizing   SizingConfig   `json:"sizing" yaml:"sizing"`
	Exit     ExitConfig     `json:"exit" yaml:"exit"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
	Logging  LoggingConfig  `json:"logging" yaml:"logging"`
	Metrics  MetricsConfig  `json:"metrics" yaml:"metrics"`
}

// CapitalConfig is the total capital the two accounts carve up
type CapitalConfig struct {
	Total    float64 `json:"total" yaml:"total"`
	Currency string  `json:"currency" yaml:"currency"`
}

// AccountConfig names one capital account and its slice of the total
type AccountConfig struct {
	ID       string  `json:"id" yaml:"id"`
	Fraction float64 `json:"fraction" yaml:"fraction"`
}

// AccountsConfig holds the scalp and trend account setups
type AccountsConfig struct {
	Scalp AccountConfig `json:"scalp" yaml:"scalp"`
	Trend AccountConfig `json:"trend" yaml:"trend"`
}

// SizingConfig contains fill sizing parameters
type SizingConfig struct {
	PerTradePct float64 `json:"per_trade_pct" yaml:"per_trade_pct"`
}

// ExitConfig contains the trend exit engine parameters
type ExitConfig struct {
	ArmPct           float64 `json:"arm_pct" yaml:"arm_pct"`
	TightenPct       float64 `json:"tighten_pct" yaml:"tighten_pct"`
	GivebackLoosePct float64 `json:"giveback_loose_pct" yaml:"giveback_loose_pct"`
	GivebackTightPct float64 `json:"giveback_tight_pct" yaml:"giveback_tight_pct"`
	MaxHoldDays      int     `json:"max_hold_days" yaml:"max_hold_days"`
}

// Params converts the exit section into engine parameters
func (e ExitConfig) Params() trend.Params {
	return trend.Params{
		ArmPct:           e.ArmPct,
		TightenPct:       e.TightenPct,
		GivebackLoosePct: e.GivebackLoosePct,
		GivebackTightPct: e.GivebackTightPct,
		MaxHoldDays:      e.MaxHoldDays,
	}
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type          string `json:"type" yaml:"type"` // "csv", "sqlite" or "none"
	OpensFile     string `json:"opens_file,omitempty" yaml:"opens_file,omitempty"`
	ClosesFile    string `json:"closes_file,omitempty" yaml:"closes_file,omitempty"`
	DecisionsFile string `json:"decisions_file,omitempty" yaml:"decisions_file,omitempty"`
	DBPath        string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LoggingConfig contains log output parameters
type LoggingConfig struct {
	Level string `json:"level" yaml:"level"`
}

// MetricsConfig contains the metrics endpoint parameters; an empty
// address disables the endpoint
type MetricsConfig struct {
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`
}

// LoadFromFile loads configuration from a file (JSON or YAML based on extension)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	// Determine format by extension
	if (len(path) > 5 && path[len(path)-5:] == ".yaml") || (len(path) > 4 && path[len(path)-4:] == ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Capital.Total <= 0 {
		return fmt.Errorf("capital.total must be positive")
	}
	if c.Capital.Currency == "" {
		return fmt.Errorf("capital.currency is required")
	}
	if c.Accounts.Scalp.ID == "" || c.Accounts.Trend.ID == "" {
		return fmt.Errorf("accounts.scalp.id and accounts.trend.id are required")
	}
	if c.Accounts.Scalp.ID == c.Accounts.Trend.ID {
		return fmt.Errorf("accounts.scalp.id and accounts.trend.id must differ")
	}
	if c.Accounts.Scalp.Fraction <= 0 || c.Accounts.Scalp.Fraction > 1 {
		return fmt.Errorf("accounts.scalp.fraction must be between 0 and 1")
	}
	if c.Accounts.Trend.Fraction <= 0 || c.Accounts.Trend.Fraction > 1 {
		return fmt.Errorf("accounts.trend.fraction must be between 0 and 1")
	}
	if c.Accounts.Scalp.Fraction+c.Accounts.Trend.Fraction > 1 {
		return fmt.Errorf("account fractions must not sum past 1")
	}
	if c.Sizing.PerTradePct <= 0 || c.Sizing.PerTradePct > 1 {
		return fmt.Errorf("sizing.per_trade_pct must be between 0 and 1")
	}
	if c.Exit.ArmPct <= 0 {
		return fmt.Errorf("exit.arm_pct must be positive")
	}
	if c.Exit.TightenPct <= c.Exit.ArmPct {
		return fmt.Errorf("exit.tighten_pct must be greater than exit.arm_pct")
	}
	if c.Exit.GivebackLoosePct <= 0 || c.Exit.GivebackTightPct <= 0 {
		return fmt.Errorf("exit giveback percentages must be positive")
	}
	if c.Exit.GivebackTightPct >= c.Exit.GivebackLoosePct {
		return fmt.Errorf("exit.giveback_tight_pct must be smaller than exit.giveback_loose_pct")
	}
	if c.Exit.MaxHoldDays <= 0 {
		return fmt.Errorf("exit.max_hold_days must be positive")
	}
	switch c.Journal.Type {
	case "csv":
		if c.Journal.OpensFile == "" || c.Journal.ClosesFile == "" || c.Journal.DecisionsFile == "" {
			return fmt.Errorf("journal opens_file, closes_file and decisions_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	case "none":
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite' or 'none'")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Capital: CapitalConfig{
			Total:    100000,
			Currency: "USD",
		},
		Accounts: AccountsConfig{
			Scalp: AccountConfig{ID: "scalp-book", Fraction: 0.6},
			Trend: AccountConfig{ID: "trend-book", Fraction: 0.4},
		},
		Sizing: SizingConfig{
			PerTradePct: 0.1,
		},
		Exit: ExitConfig{
			ArmPct:           0.04,
			TightenPct:       0.08,
			GivebackLoosePct: 0.04,
			GivebackTightPct: 0.015,
			MaxHoldDays:      20,
		},
		Journal: JournalConfig{
			Type:          "csv",
			OpensFile:     "./opens.csv",
			ClosesFile:    "./closes.csv",
			DecisionsFile: "./decisions.csv",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
