// Package store persists per-chat client state: the auth credential, the
// reminder configuration and the cached reminder status. It is the single
// local store; everything else is always re-fetched from the API.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	_ "github.com/mattn/go-sqlite3"

	"github.com/AbhishekS200607/easyfin/internal/model"
	"github.com/AbhishekS200607/easyfin/internal/reminder"
)

// Keys mirror the browser client this replaces, scoped by chat ID.
const (
	keyToken           = "token"
	keyUser            = "user"
	keyMonthlyIncome   = "monthlyIncome"
	keyIncomeDay       = "incomeDay"
	keyLowBalanceAlert = "lowBalanceAlert"
	keyEnableReminders = "enableReminders"
	keyLastIncomeMonth = "lastIncomeMonth"
	keyReminderStatus  = "reminderStatus"
)

const defaultIncomeDay = 1

const schema = `
CREATE TABLE IF NOT EXISTS settings (
	chat_id    INTEGER NOT NULL,
	key        TEXT    NOT NULL,
	value      TEXT    NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (chat_id, key)
)`

// SQLite is a key-value settings store backed by a local SQLite file.
type SQLite struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (and if needed creates) the settings database at path.
func Open(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize state schema: %w", err)
	}
	return &SQLite{db: db, logger: slog.Default().With("component", "store")}, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) get(chatID int64, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(
		`SELECT value FROM settings WHERE chat_id = ? AND key = ?`, chatID, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLite) set(chatID int64, key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (chat_id, key, value) VALUES (?, ?, ?)
		 ON CONFLICT (chat_id, key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		chatID, key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to write setting %s: %w", key, err)
	}
	return nil
}

func (s *SQLite) delete(chatID int64, keys ...string) error {
	for _, key := range keys {
		if _, err := s.db.Exec(
			`DELETE FROM settings WHERE chat_id = ? AND key = ?`, chatID, key,
		); err != nil {
			return fmt.Errorf("failed to delete setting %s: %w", key, err)
		}
	}
	return nil
}

// Token returns the stored auth token for the chat, empty when absent.
func (s *SQLite) Token(chatID int64) (string, error) {
	token, _, err := s.get(chatID, keyToken)
	return token, err
}

// SetCredentials stores the token and user profile after a login.
func (s *SQLite) SetCredentials(chatID int64, token string, user model.User) error {
	if err := s.set(chatID, keyToken, token); err != nil {
		return err
	}
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	return s.set(chatID, keyUser, string(data))
}

// ClearCredentials removes the token and profile, logging the chat out.
func (s *SQLite) ClearCredentials(chatID int64) error {
	return s.delete(chatID, keyToken, keyUser)
}

// User returns the stored profile, or nil when absent or unreadable.
func (s *SQLite) User(chatID int64) (*model.User, error) {
	raw, ok, err := s.get(chatID, keyUser)
	if err != nil || !ok {
		return nil, err
	}
	var user model.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		// Malformed persisted state degrades to "not logged in metadata",
		// it never fails a load.
		s.logger.Warn("discarding malformed user profile", "chat_id", chatID, "error", err)
		return nil, nil
	}
	return &user, nil
}

// ReminderConfig assembles the persisted reminder settings. Missing or
// malformed values fall back to defaults.
func (s *SQLite) ReminderConfig(chatID int64) (reminder.Config, error) {
	cfg := reminder.Config{IncomeDay: defaultIncomeDay}

	if raw, ok, err := s.get(chatID, keyEnableReminders); err != nil {
		return cfg, err
	} else if ok {
		cfg.Enabled = raw == "true"
	}
	if raw, ok, err := s.get(chatID, keyMonthlyIncome); err != nil {
		return cfg, err
	} else if ok {
		if amount, err := strconv.ParseFloat(raw, 64); err == nil {
			cfg.MonthlyAmount = amount
		}
	}
	if raw, ok, err := s.get(chatID, keyIncomeDay); err != nil {
		return cfg, err
	} else if ok {
		if day, err := strconv.Atoi(raw); err == nil && day >= 1 && day <= 31 {
			cfg.IncomeDay = day
		}
	}
	if raw, ok, err := s.get(chatID, keyLastIncomeMonth); err != nil {
		return cfg, err
	} else if ok {
		cfg.LastIncomeMonth = raw
	}
	return cfg, nil
}

// SetReminderConfig persists the reminder settings. LastIncomeMonth is not
// written here; only a successful income submission may advance it.
func (s *SQLite) SetReminderConfig(chatID int64, cfg reminder.Config) error {
	if err := s.set(chatID, keyEnableReminders, strconv.FormatBool(cfg.Enabled)); err != nil {
		return err
	}
	if err := s.set(chatID, keyMonthlyIncome, strconv.FormatFloat(cfg.MonthlyAmount, 'f', -1, 64)); err != nil {
		return err
	}
	return s.set(chatID, keyIncomeDay, strconv.Itoa(cfg.IncomeDay))
}

// SetLastIncomeMonth marks the month whose income has been logged.
func (s *SQLite) SetLastIncomeMonth(chatID int64, month string) error {
	return s.set(chatID, keyLastIncomeMonth, month)
}

// LowBalanceAlert returns the configured alert threshold (default 100).
func (s *SQLite) LowBalanceAlert(chatID int64) (float64, error) {
	raw, ok, err := s.get(chatID, keyLowBalanceAlert)
	if err != nil || !ok {
		return 100, err
	}
	threshold, perr := strconv.ParseFloat(raw, 64)
	if perr != nil {
		return 100, nil
	}
	return threshold, nil
}

func (s *SQLite) SetLowBalanceAlert(chatID int64, threshold float64) error {
	return s.set(chatID, keyLowBalanceAlert, strconv.FormatFloat(threshold, 'f', -1, 64))
}

// ReminderStatus returns the cached evaluated state, or nil when absent or
// unreadable. The cache is advisory; any caller can recompute from config.
func (s *SQLite) ReminderStatus(chatID int64) (*reminder.State, error) {
	raw, ok, err := s.get(chatID, keyReminderStatus)
	if err != nil || !ok {
		return nil, err
	}
	var state reminder.State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		s.logger.Warn("discarding malformed reminder status", "chat_id", chatID, "error", err)
		return nil, nil
	}
	return &state, nil
}

func (s *SQLite) SetReminderStatus(chatID int64, state reminder.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode reminder status: %w", err)
	}
	return s.set(chatID, keyReminderStatus, string(data))
}

// ReminderChats lists the chats that have reminders switched on, for the
// periodic re-check.
func (s *SQLite) ReminderChats() ([]int64, error) {
	rows, err := s.db.Query(
		`SELECT chat_id FROM settings WHERE key = ? AND value = 'true'`, keyEnableReminders,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminder chats: %w", err)
	}
	defer rows.Close()

	var chats []int64
	for rows.Next() {
		var chatID int64
		if err := rows.Scan(&chatID); err != nil {
			return nil, fmt.Errorf("failed to scan chat id: %w", err)
		}
		chats = append(chats, chatID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reminder chats: %w", err)
	}
	return chats, nil
}
