// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml), with ${VAR} expansion
//  2. Environment variables (fallback), optionally seeded from a .env file
//
// Example usage:
//
//	config.LoadDotEnv()
//	cfg := config.LoadOrEnv()
//	dbPath := cfg.Storage.DatabasePath
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config represents the entire application configuration
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Storage       StorageConfig       `yaml:"storage"`
	Rules         RulesConfig         `yaml:"rules"`
	Display       DisplayConfig       `yaml:"display"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// StorageConfig holds database configuration
type StorageConfig struct {
	Driver       string `yaml:"driver"`
	DatabasePath string `yaml:"database_path"` // sqlite
	DSN          string `yaml:"dsn"`           // postgres
}

// RulesConfig holds rule engine settings
type RulesConfig struct {
	BulkApplyTimeout time.Duration `yaml:"bulk_apply_timeout"`
	ApplyOnWrite     *bool         `yaml:"apply_on_write"`
}

// ApplyRulesOnWrite reports whether transaction writes run the rule engine.
// Defaults to true.
func (r RulesConfig) ApplyRulesOnWrite() bool {
	return r.ApplyOnWrite == nil || *r.ApplyOnWrite
}

// DisplayConfig holds formatting preferences
type DisplayConfig struct {
	CurrencySymbol string `yaml:"currency_symbol"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Defaults
const (
	DefaultPort             = 8085
	DefaultDatabasePath     = "finpal.db"
	DefaultBulkApplyTimeout = 2 * time.Minute
	DefaultCurrencySymbol   = "$"
)

// Load reads and parses the config file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${FINPAL_DB_DSN})
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromEnv loads configuration from environment variables only
func LoadFromEnv() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnvInt("FINPAL_PORT", DefaultPort),
			AllowedOrigins: getEnvList("FINPAL_ALLOWED_ORIGINS"),
		},
		Storage: StorageConfig{
			Driver:       getEnv("FINPAL_DB_DRIVER", DriverSQLite),
			DatabasePath: getEnv("FINPAL_DB_PATH", DefaultDatabasePath),
			DSN:          os.Getenv("FINPAL_DB_DSN"),
		},
		Rules: RulesConfig{
			BulkApplyTimeout: getEnvDuration("FINPAL_BULK_APPLY_TIMEOUT", DefaultBulkApplyTimeout),
		},
		Display: DisplayConfig{
			CurrencySymbol: getEnv("FINPAL_CURRENCY_SYMBOL", DefaultCurrencySymbol),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "text"),
			},
		},
	}
	if v := os.Getenv("FINPAL_APPLY_RULES_ON_WRITE"); v != "" {
		on := v == "true" || v == "1"
		cfg.Rules.ApplyOnWrite = &on
	}
	cfg.applyDefaults()
	return cfg
}

// LoadOrEnv tries to load from config.yaml, falls back to environment variables
func LoadOrEnv() *Config {
	return LoadOrEnv_WithPath("config.yaml")
}

// LoadOrEnv_WithPath tries to load from specified path, falls back to environment variables
func LoadOrEnv_WithPath(path string) *Config {
	if cfg, err := Load(path); err == nil {
		return cfg
	}
	return LoadFromEnv()
}

// LoadDotEnv loads a .env file into the process environment. Without a path
// it tries ./.env and ignores a missing file.
func LoadDotEnv(path ...string) error {
	if len(path) > 0 && path[0] != "" {
		if err := godotenv.Load(path[0]); err != nil {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
		return nil
	}
	_ = godotenv.Load()
	return nil
}

// Validate checks values that cannot be defaulted
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverSQLite:
	case DriverPostgres:
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverSQLite
	}
	if c.Storage.DatabasePath == "" {
		c.Storage.DatabasePath = DefaultDatabasePath
	}
	if c.Rules.BulkApplyTimeout <= 0 {
		c.Rules.BulkApplyTimeout = DefaultBulkApplyTimeout
	}
	if c.Display.CurrencySymbol == "" {
		c.Display.CurrencySymbol = DefaultCurrencySymbol
	}
	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = "info"
	}
	if c.Observability.Logging.Format == "" {
		c.Observability.Logging.Format = "text"
	}
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var result int
		if _, err := fmt.Sscanf(val, "%d", &result); err == nil {
			return result
		}
	}
	return fallback
}

// getEnvDuration retrieves a duration (e.g. "90s") with a fallback default
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}

// getEnvList splits a comma separated variable, dropping blanks
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
