// Package config loads the YAML configuration file, with environment
// variable overrides for secrets so tokens can stay out of the file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultCategories is the menu offered when the config names none.
var DefaultCategories = []string{
	"Groceries", "Delivery", "Cafe", "Eating out", "Transport", "Other",
}

// Duration wraps time.Duration so YAML can carry "5m"-style values.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the full process configuration.
type Config struct {
	BotToken          string      `yaml:"bot_token"`
	Database          string      `yaml:"database"`
	ServiceAccountKey string      `yaml:"service_account_key"`
	Spreadsheet       Spreadsheet `yaml:"spreadsheet"`
	Categories        []string    `yaml:"categories"`
	Currency          string      `yaml:"currency"`
	Menu              Menu        `yaml:"menu"`
	Sync              Sync        `yaml:"sync"`
}

// Spreadsheet identifies the remote append target.
type Spreadsheet struct {
	ID        string `yaml:"id"`
	SheetName string `yaml:"sheet_name"`
}

// Menu controls the selection cache lifecycle.
type Menu struct {
	TTL           Duration `yaml:"ttl"`
	SweepInterval Duration `yaml:"sweep_interval"`
}

// Sync controls the outbox push retry policy.
type Sync struct {
	MaxAttempts int      `yaml:"max_attempts"`
	BaseDelay   Duration `yaml:"base_delay"`
}

// defaults returns a config pre-filled with everything that has a
// sensible default. Secrets and spreadsheet identity do not.
func defaults() *Config {
	return &Config{
		Database:   "spendlog.db",
		Categories: DefaultCategories,
		Currency:   "RSD",
		Menu: Menu{
			TTL:           Duration(5 * time.Minute),
			SweepInterval: Duration(time.Minute),
		},
		Sync: Sync{
			MaxAttempts: 5,
			BaseDelay:   Duration(100 * time.Millisecond),
		},
	}
}

// Load reads the config file at path, applies .env and environment
// overrides, and validates the result.
func Load(path string) (*Config, error) {
	// Best-effort: a missing .env file just means plain environment.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides lets secrets come from the environment instead of
// the config file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SPENDLOG_BOT_TOKEN"); v != "" {
		cfg.BotToken = v
	}
	if v := os.Getenv("SPENDLOG_DATABASE"); v != "" {
		cfg.Database = v
	}
	if v := os.Getenv("SPENDLOG_SPREADSHEET_ID"); v != "" {
		cfg.Spreadsheet.ID = v
	}
	if v := os.Getenv("SPENDLOG_SERVICE_ACCOUNT_KEY"); v != "" {
		cfg.ServiceAccountKey = v
	}
}

func (c *Config) validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("bot_token is required")
	}
	if c.Spreadsheet.ID == "" {
		return fmt.Errorf("spreadsheet.id is required")
	}
	if c.Spreadsheet.SheetName == "" {
		return fmt.Errorf("spreadsheet.sheet_name is required")
	}
	if c.ServiceAccountKey == "" {
		return fmt.Errorf("service_account_key is required")
	}
	if c.Database == "" {
		return fmt.Errorf("database is required")
	}
	if len(c.Categories) == 0 {
		return fmt.Errorf("categories must not be empty")
	}
	if c.Menu.TTL <= 0 {
		return fmt.Errorf("menu.ttl must be positive")
	}
	if c.Menu.SweepInterval <= 0 {
		return fmt.Errorf("menu.sweep_interval must be positive")
	}
	if c.Sync.MaxAttempts < 1 {
		return fmt.Errorf("sync.max_attempts must be at least 1")
	}
	if c.Sync.BaseDelay <= 0 {
		return fmt.Errorf("sync.base_delay must be positive")
	}
	return nil
}
