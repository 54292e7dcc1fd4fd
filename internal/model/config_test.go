package model

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if cfg.DefaultCurrency != DefaultCurrency {
		t.Errorf("default currency = %q, want %q", cfg.DefaultCurrency, DefaultCurrency)
	}
	if cfg.AmountCeiling != "10000000" {
		t.Errorf("amount ceiling = %q, want 10000000", cfg.AmountCeiling)
	}
	if cfg.Search.ResultLimit != 100 {
		t.Errorf("result limit = %d, want 100", cfg.Search.ResultLimit)
	}
	if cfg.Search.LookbackDays != 30 {
		t.Errorf("lookback days = %d, want 30", cfg.Search.LookbackDays)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
database: /tmp/test.db
default_currency: usd
search:
  result_limit: 25
accounts:
  - email: ana@gmail.com
    provider: gmail
    bank: bac
  - email: jose@outlook.com
    bank: bcr
    active: false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if cfg.Database != "/tmp/test.db" {
		t.Errorf("database = %q, want /tmp/test.db", cfg.Database)
	}
	if cfg.DefaultCurrency != "usd" {
		t.Errorf("default currency = %q, want usd", cfg.DefaultCurrency)
	}
	if cfg.Search.ResultLimit != 25 {
		t.Errorf("result limit = %d, want 25", cfg.Search.ResultLimit)
	}
	// Unset falls back to the default.
	if cfg.Search.LookbackDays != 30 {
		t.Errorf("lookback days = %d, want default 30", cfg.Search.LookbackDays)
	}

	if len(cfg.Accounts) != 2 {
		t.Fatalf("got %d accounts, want 2", len(cfg.Accounts))
	}
	// Listing an account without an active key activates it; an explicit
	// false stays false.
	if !cfg.Accounts[0].Active {
		t.Error("accounts[0].Active = false, want true when unset")
	}
	if cfg.Accounts[1].Active {
		t.Error("accounts[1].Active = true, want explicit false honored")
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	want := &AppConfig{
		Database:        "/tmp/test.db",
		DefaultCurrency: "crc",
		AmountCeiling:   "5000000",
		Search:          SearchConfig{ResultLimit: 50, LookbackDays: 7},
		Accounts: []AccountConfig{
			{Email: "ana@gmail.com", Provider: "gmail", Bank: "bac", Active: true},
		},
	}
	if err := SaveConfig(path, want); err != nil {
		t.Fatalf("SaveConfig() error: %v", err)
	}

	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if got.Database != want.Database || got.AmountCeiling != want.AmountCeiling {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if len(got.Accounts) != 1 || got.Accounts[0].Email != "ana@gmail.com" {
		t.Errorf("accounts = %+v, want the saved account", got.Accounts)
	}
}
