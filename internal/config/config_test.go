package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("EXPENSE_API_URL", "")
	t.Setenv("STATE_DB_PATH", "")
	t.Setenv("REMINDER_CHECK_INTERVAL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "123:abc", cfg.TelegramToken)
	assert.Equal(t, "http://localhost:8081/api", cfg.APIBaseURL)
	assert.Equal(t, "./data/easyfin.db", cfg.StateDBPath)
	assert.Equal(t, 24*time.Hour, cfg.ReminderInterval)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("EXPENSE_API_URL", "https://api.example.com/api")
	t.Setenv("STATE_DB_PATH", "/var/lib/easyfin/state.db")
	t.Setenv("REMINDER_CHECK_INTERVAL", "1h")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/api", cfg.APIBaseURL)
	assert.Equal(t, "/var/lib/easyfin/state.db", cfg.StateDBPath)
	assert.Equal(t, time.Hour, cfg.ReminderInterval)
}

func TestValidate(t *testing.T) {
	valid := Config{
		TelegramToken:    "123:abc",
		APIBaseURL:       "http://localhost:8081/api",
		StateDBPath:      "./state.db",
		ReminderInterval: time.Hour,
	}
	assert.NoError(t, valid.Validate())

	missingToken := valid
	missingToken.TelegramToken = ""
	assert.Error(t, missingToken.Validate())

	badURL := valid
	badURL.APIBaseURL = "not-a-url"
	assert.Error(t, badURL.Validate())

	badInterval := valid
	badInterval.ReminderInterval = 0
	assert.Error(t, badInterval.Validate())
}

func TestBadDurationFallsBack(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("REMINDER_CHECK_INTERVAL", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, cfg.ReminderInterval)
}
