package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file settings.
const (
	EnvDB          = "LEDGERENGINE_DB"
	EnvLogLevel    = "LEDGERENGINE_LOG_LEVEL"
	EnvLateFeeRate = "LEDGERENGINE_LATE_FEE_RATE"
)

// Config represents the top-level ledgerengine.yaml configuration.
type Config struct {
	Business BusinessConfig `yaml:"business"`
	Store    StoreConfig    `yaml:"store"`
	Loans    LoansConfig    `yaml:"loans"`
	Log      LogConfig      `yaml:"log"`
}

// BusinessConfig identifies the business entity.
type BusinessConfig struct {
	Name       string `yaml:"name"`
	EntityType string `yaml:"entity_type"`
	Currency   string `yaml:"currency"`
}

// StoreConfig locates the SQLite database, relative to the config file's
// directory unless absolute. Ledger selects where committed postings go:
// "sqlite" (default) or "csv" for month files under journal/.
type StoreConfig struct {
	Path   string `yaml:"path"`
	Ledger string `yaml:"ledger"`
}

// Ledger backends.
const (
	LedgerSQLite = "sqlite"
	LedgerCSV    = "csv"
)

// LoansConfig holds loan policy.
type LoansConfig struct {
	LateFeeDailyRatePercent decimal.Decimal `yaml:"late_fee_daily_rate_percent"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads a ledgerengine.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default("")
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default(businessName string) *Config {
	return &Config{
		Business: BusinessConfig{
			Name:       businessName,
			EntityType: "trading",
			Currency:   "IDR",
		},
		Store: StoreConfig{
			Path:   "ledger.db",
			Ledger: LedgerSQLite,
		},
		Loans: LoansConfig{
			LateFeeDailyRatePercent: decimal.RequireFromString("0.1"),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ApplyEnv loads envFile (if it exists) into the process environment without
// replacing variables already set, then applies the LEDGERENGINE_* overrides
// to cfg. An empty envFile skips the file.
func ApplyEnv(cfg *Config, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	if v := os.Getenv(EnvDB); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv(EnvLateFeeRate); v != "" {
		rate, err := decimal.NewFromString(v)
		if err != nil {
			return fmt.Errorf("%s: invalid rate %q: %w", EnvLateFeeRate, v, err)
		}
		if rate.IsNegative() {
			return fmt.Errorf("%s: rate must not be negative", EnvLateFeeRate)
		}
		cfg.Loans.LateFeeDailyRatePercent = rate
	}
	return nil
}
