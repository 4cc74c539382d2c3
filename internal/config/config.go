// Package config loads marketsim configuration from YAML with environment
// variable overrides.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for marketsim.
type Config struct {
	Storage    Storage          `yaml:"storage"`
	Alpaca     Alpaca           `yaml:"alpaca"`
	Logging    Logging          `yaml:"logging"`
	Simulation SimulationConfig `yaml:"simulation"`
	Gather     GatherConfig     `yaml:"gather"`
	Report     ReportConfig     `yaml:"report"`
}

// Storage holds paths for data persistence. Ticks can come from a one-off
// CSV file or from the Parquet data directory; results go to SQLite.
type Storage struct {
	DataDir    string `yaml:"data_dir"`
	SQLitePath string `yaml:"sqlite_path"`
	CSVPath    string `yaml:"csv_path"`
}

// Alpaca holds credentials and endpoints for the Alpaca market-data API.
type Alpaca struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	DataURL   string `yaml:"data_url"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// SimulationConfig sets the parameters of a simulation run.
type SimulationConfig struct {
	InitialCash        float64          `yaml:"initial_cash"`
	FailureProbability float64          `yaml:"failure_probability"`
	Seed               int64            `yaml:"seed"` // 0 means time-seeded
	AllowShort         bool             `yaml:"allow_short"`
	RiskFreeRate       float64          `yaml:"risk_free_rate"`
	Strategies         []StrategyConfig `yaml:"strategies"`
}

// StrategyConfig selects and parameterises one strategy instance.
type StrategyConfig struct {
	Type     string  `yaml:"type"` // "sma-cross" or "momentum"
	Short    int     `yaml:"short"`
	Long     int     `yaml:"long"`
	Lookback int     `yaml:"lookback"`
	Quantity float64 `yaml:"quantity"`
}

// GatherConfig holds parameters for the data gathering job.
type GatherConfig struct {
	Symbols         []string `yaml:"symbols"`
	StartDate       string   `yaml:"start_date"`
	EndDate         string   `yaml:"end_date"`
	RateLimitPerMin int      `yaml:"rate_limit_per_min"`
}

// ReportConfig controls report output.
type ReportConfig struct {
	OutputDir string `yaml:"output_dir"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path, parses it into a
// Config struct, and then applies environment variable overrides. Defaults
// are applied before parsing, so absent keys keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Storage: Storage{
			DataDir:    "data",
			SQLitePath: "data/marketsim.db",
		},
		Logging: Logging{
			Level:  "info",
			Format: "json",
		},
		Simulation: SimulationConfig{
			InitialCash:        100000,
			FailureProbability: 0.01,
		},
		Gather: GatherConfig{
			RateLimitPerMin: 200,
		},
		Report: ReportConfig{
			OutputDir: "reports",
		},
	}
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}

	if v := os.Getenv("ALPACA_API_KEY"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("ALPACA_API_SECRET"); v != "" {
		cfg.Alpaca.APISecret = v
	}
	if v := os.Getenv("ALPACA_DATA_URL"); v != "" {
		cfg.Alpaca.DataURL = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// Standard Alpaca env vars (highest priority — canonical names used by SDK).
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.Alpaca.APISecret = v
	}
}
