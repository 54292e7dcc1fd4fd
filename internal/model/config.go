package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// AccountConfig describes one monitored mailbox in the config file.
type AccountConfig struct {
	Email    string `mapstructure:"email" yaml:"email"`
	Provider string `mapstructure:"provider" yaml:"provider"`
	Bank     string `mapstructure:"bank" yaml:"bank"`

	// UseOAuth selects XOAUTH2 instead of password login.
	UseOAuth bool `mapstructure:"use_oauth" yaml:"use_oauth"`

	// Host and Port override IMAP server resolution when set.
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`

	Active bool `mapstructure:"active" yaml:"active"`
}

// SearchConfig bounds the server-side message search.
type SearchConfig struct {
	// ResultLimit caps how many messages one run will fetch.
	ResultLimit int `mapstructure:"result_limit" yaml:"result_limit"`

	// LookbackDays sets the default since-date window.
	LookbackDays int `mapstructure:"lookback_days" yaml:"lookback_days"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	// Database is the SQLite file path.
	Database string `mapstructure:"database" yaml:"database"`

	// DefaultCurrency is applied to expenses whose currency could not
	// be determined during extraction.
	DefaultCurrency string `mapstructure:"default_currency" yaml:"default_currency"`

	// AmountCeiling is the upper sanity bound; extracted amounts at or
	// above it are rejected as garbled.
	AmountCeiling string `mapstructure:"amount_ceiling" yaml:"amount_ceiling"`

	Search   SearchConfig    `mapstructure:"search" yaml:"search"`
	Accounts []AccountConfig `mapstructure:"accounts" yaml:"accounts"`
}

// DefaultConfigPath returns the default path for the configuration
// file, located at ~/.config/bancamail/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "bancamail", "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Database:        filepath.Join(filepath.Dir(DefaultConfigPath()), "bancamail.db"),
		DefaultCurrency: DefaultCurrency,
		AmountCeiling:   "10000000",
		Search: SearchConfig{
			ResultLimit:  100,
			LookbackDays: 30,
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using
// Viper. If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("database", defaultAppConfig().Database)
	v.SetDefault("default_currency", DefaultCurrency)
	v.SetDefault("amount_ceiling", "10000000")
	v.SetDefault("search.result_limit", 100)
	v.SetDefault("search.lookback_days", 30)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	// Viper unmarshals missing bools as false; treat unset as true so
	// listing an account is enough to activate it.
	for i := range cfg.Accounts {
		key := fmt.Sprintf("accounts.%d.active", i)
		if !cfg.Accounts[i].Active && !v.IsSet(key) {
			cfg.Accounts[i].Active = true
		}
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("database", cfg.Database)
	v.Set("default_currency", cfg.DefaultCurrency)
	v.Set("amount_ceiling", cfg.AmountCeiling)
	v.Set("search", cfg.Search)
	v.Set("accounts", cfg.Accounts)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
