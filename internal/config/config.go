// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration. Values come from an
// optional YAML file overridden by environment variables.
type Config struct {
	Port        string `yaml:"port"`
	FrontendURL string `yaml:"frontend_url"`

	// Store selects the session store driver: "sqlite", "postgres"
	// or "memory".
	Store       string `yaml:"store"`
	DBPath      string `yaml:"db_path"`
	PostgresDSN string `yaml:"postgres_dsn"`

	SupabaseURL string `yaml:"supabase_url"`
	SupabaseKey string `yaml:"supabase_key"`

	TelegramToken string `yaml:"telegram_token"`

	// SessionTTL prunes abandoned wizard sessions. Zero disables the
	// retention worker.
	SessionTTL      time.Duration `yaml:"session_ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`

	CatalogTimeout time.Duration `yaml:"catalog_timeout"`
	StoreTimeout   time.Duration `yaml:"store_timeout"`
}

// Load reads configuration from the YAML file named by CONFIG_FILE (if
// set) and then from environment variables, which take precedence.
func Load() (*Config, error) {
	cfg := &Config{
		Port:            "8080",
		Store:           "sqlite",
		DBPath:          "./data/partswizard.db",
		CleanupInterval: time.Hour,
		CatalogTimeout:  5 * time.Second,
		StoreTimeout:    5 * time.Second,
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.FrontendURL = getEnv("FRONTEND_URL", cfg.FrontendURL)
	cfg.Store = getEnv("SESSION_STORE", cfg.Store)
	cfg.DBPath = getEnv("DB_PATH", cfg.DBPath)
	cfg.PostgresDSN = getEnv("POSTGRES_DSN", cfg.PostgresDSN)
	cfg.SupabaseURL = getEnv("SUPABASE_URL", cfg.SupabaseURL)
	cfg.SupabaseKey = getEnv("SUPABASE_KEY", cfg.SupabaseKey)
	cfg.TelegramToken = getEnv("TELEGRAM_TOKEN", cfg.TelegramToken)
	cfg.SessionTTL = getEnvDuration("SESSION_TTL", cfg.SessionTTL)
	cfg.CleanupInterval = getEnvDuration("CLEANUP_INTERVAL", cfg.CleanupInterval)
	cfg.CatalogTimeout = getEnvDuration("CATALOG_TIMEOUT", cfg.CatalogTimeout)
	cfg.StoreTimeout = getEnvDuration("STORE_TIMEOUT", cfg.StoreTimeout)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	switch c.Store {
	case "sqlite":
		if c.DBPath == "" {
			return fmt.Errorf("DB_PATH cannot be empty for the sqlite store")
		}
	case "postgres":
		if c.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN cannot be empty for the postgres store")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown session store %q", c.Store)
	}
	if (c.SupabaseURL == "") != (c.SupabaseKey == "") {
		return fmt.Errorf("SUPABASE_URL and SUPABASE_KEY must be set together")
	}
	if c.SessionTTL < 0 {
		return fmt.Errorf("SESSION_TTL cannot be negative")
	}
	if c.SessionTTL > 0 && c.CleanupInterval <= 0 {
		return fmt.Errorf("CLEANUP_INTERVAL must be > 0 when SESSION_TTL is set")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value = strings.TrimSpace(value)
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	// Bare numbers are read as minutes.
	if n, err := strconv.Atoi(value); err == nil {
		return time.Duration(n) * time.Minute
	}
	return fallback
}
