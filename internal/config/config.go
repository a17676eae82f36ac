package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/glebk/relay-bot/internal/domain"
)

// Supported database drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds application configuration
type Config struct {
	TelegramToken string
	AdminIDs      []int64
	Database      DatabaseConfig
	Retraction    RetractionConfig
	LogLevel      string
	LogFormat     string
}

// DatabaseConfig selects and locates the recipient store
type DatabaseConfig struct {
	Driver string
	Path   string
	URL    string
}

// RetractionConfig controls when and how delivered messages are retracted
type RetractionConfig struct {
	Delay   time.Duration
	Persist bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	return FromEnv()
}

// FromEnv builds the configuration from the current environment only
func FromEnv() (*Config, error) {
	cfg := &Config{
		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		Database: DatabaseConfig{
			Driver: strings.ToLower(getEnv("DATABASE_DRIVER", DriverSQLite)),
			Path:   getEnv("DATABASE_PATH", "./relay_bot.db"),
			URL:    os.Getenv("DATABASE_URL"),
		},
		Retraction: RetractionConfig{
			Delay: domain.DefaultRetractionDelay,
		},
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	adminIDs, err := ParseAdminIDs(os.Getenv("ADMIN_IDS"))
	if err != nil {
		return nil, err
	}
	cfg.AdminIDs = adminIDs

	if v := os.Getenv("RETRACTION_DELAY"); v != "" {
		delay, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid RETRACTION_DELAY %q: %w", v, err)
		}
		cfg.Retraction.Delay = delay
	}

	if v := os.Getenv("RETRACTION_PERSIST"); v != "" {
		persist, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid RETRACTION_PERSIST %q: %w", v, err)
		}
		cfg.Retraction.Persist = persist
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required settings are present and consistent
func (c *Config) Validate() error {
	if c.TelegramToken == "" {
		return errors.New("TELEGRAM_BOT_TOKEN is required")
	}
	if len(c.AdminIDs) == 0 {
		return errors.New("ADMIN_IDS must list at least one admin")
	}
	if c.Retraction.Delay <= 0 {
		return fmt.Errorf("retraction delay must be positive, got %s", c.Retraction.Delay)
	}

	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return errors.New("DATABASE_PATH is required for sqlite")
		}
	case DriverPostgres:
		if c.Database.URL == "" {
			return errors.New("DATABASE_URL is required for postgres")
		}
	default:
		return fmt.Errorf("unknown DATABASE_DRIVER %q", c.Database.Driver)
	}

	return nil
}

// ParseAdminIDs parses a comma-separated list of Telegram user IDs
func ParseAdminIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid admin ID %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
