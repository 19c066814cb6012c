// Package config loads application configuration from a toml file and the
// environment, env taking precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Ledger     LedgerConfig
	Statements StatementsConfig
	Cache      CacheConfig
	UI         UIConfig
}

// LedgerConfig holds wallet service settings. Email and password normally
// arrive through MONEYMOVER_LEDGER_EMAIL / MONEYMOVER_LEDGER_PASSWORD.
type LedgerConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	TokenURL string        `mapstructure:"token_url"`
	Email    string        `mapstructure:"email"`
	Password string        `mapstructure:"password"`
	WalletID string        `mapstructure:"wallet_id"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

// StatementsConfig holds bank statement input settings.
type StatementsConfig struct {
	Dir         string
	PresetsPath string `mapstructure:"presets_path"`
}

// CacheConfig holds sqlite cache settings.
type CacheConfig struct {
	Path           string
	MigrationsPath string `mapstructure:"migrations_path"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	CurrencyCode string `mapstructure:"currency_code"`
	Timezone     string
}

// Load reads configuration from file and env. Env var overrides use prefix MONEYMOVER_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("ledger.base_url", "https://web.moneylover.me/api")
	v.SetDefault("ledger.token_url", "https://oauth.moneylover.me/token")
	v.SetDefault("ledger.email", "")
	v.SetDefault("ledger.password", "")
	v.SetDefault("ledger.wallet_id", "")
	v.SetDefault("ledger.token_ttl", 5*24*time.Hour)
	v.SetDefault("statements.dir", "bank_statements")
	v.SetDefault("statements.presets_path", "presets.json")
	v.SetDefault("cache.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "moneymover", "cache.db"))
	v.SetDefault("cache.migrations_path", "internal/database/migrations")
	v.SetDefault("ui.currency_code", "EUR")
	v.SetDefault("ui.timezone", "Europe/Amsterdam")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("MONEYMOVER_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "moneymover"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("MONEYMOVER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Save writes the provided config to disk, creating the config directory if
// needed. Credentials are never written; they stay in the environment.
func Save(cfg Config) error {
	path := os.Getenv("MONEYMOVER_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "moneymover", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("ledger.base_url", cfg.Ledger.BaseURL)
	v.Set("ledger.token_url", cfg.Ledger.TokenURL)
	v.Set("ledger.wallet_id", cfg.Ledger.WalletID)
	v.Set("ledger.token_ttl", cfg.Ledger.TokenTTL.String())
	v.Set("statements.dir", cfg.Statements.Dir)
	v.Set("statements.presets_path", cfg.Statements.PresetsPath)
	v.Set("cache.path", cfg.Cache.Path)
	v.Set("cache.migrations_path", cfg.Cache.MigrationsPath)
	v.Set("ui.currency_code", cfg.UI.CurrencyCode)
	v.Set("ui.timezone", cfg.UI.Timezone)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
