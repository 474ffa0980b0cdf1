package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the bot needs from the environment.
type Config struct {
	TelegramToken string
	APIBaseURL    string
	StateDBPath   string
	// ReminderInterval is how often reminder states are re-evaluated for
	// long-lived chats; every interaction re-evaluates from scratch anyway.
	ReminderInterval time.Duration
}

// Load reads configuration from a .env file (when present) and the
// environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{
		TelegramToken:    os.Getenv("TELEGRAM_TOKEN"),
		APIBaseURL:       getEnv("EXPENSE_API_URL", "http://localhost:8081/api"),
		StateDBPath:      getEnv("STATE_DB_PATH", "./data/easyfin.db"),
		ReminderInterval: getEnvDuration("REMINDER_CHECK_INTERVAL", 24*time.Hour),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the loaded values before anything is wired up.
func (c *Config) Validate() error {
	if c.TelegramToken == "" {
		return errors.New("TELEGRAM_TOKEN is required")
	}
	parsed, err := url.Parse(c.APIBaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid EXPENSE_API_URL %q", c.APIBaseURL)
	}
	if c.StateDBPath == "" {
		return errors.New("STATE_DB_PATH cannot be empty")
	}
	if c.ReminderInterval <= 0 {
		return errors.New("REMINDER_CHECK_INTERVAL must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}
