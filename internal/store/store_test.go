package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbhishekS200607/easyfin/internal/model"
	"github.com/AbhishekS200607/easyfin/internal/reminder"
)

func openTestStore(t *testing.T) *SQLite {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCredentials(t *testing.T) {
	s := openTestStore(t)
	const chatID = int64(1001)

	token, err := s.Token(chatID)
	require.NoError(t, err)
	assert.Empty(t, token)

	user := model.User{ID: 7, Username: "sam", Email: "sam@example.com"}
	require.NoError(t, s.SetCredentials(chatID, "tok-123", user))

	token, err = s.Token(chatID)
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)

	stored, err := s.User(chatID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "sam", stored.Username)

	require.NoError(t, s.ClearCredentials(chatID))
	token, err = s.Token(chatID)
	require.NoError(t, err)
	assert.Empty(t, token)
	stored, err = s.User(chatID)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestCredentialsAreScopedByChat(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.SetCredentials(1, "tok-a", model.User{Username: "a"}))
	require.NoError(t, s.SetCredentials(2, "tok-b", model.User{Username: "b"}))

	token, err := s.Token(1)
	require.NoError(t, err)
	assert.Equal(t, "tok-a", token)
	token, err = s.Token(2)
	require.NoError(t, err)
	assert.Equal(t, "tok-b", token)
}

func TestReminderConfigDefaults(t *testing.T) {
	s := openTestStore(t)

	cfg, err := s.ReminderConfig(1001)
	require.NoError(t, err)
	assert.False(t, cfg.Enabled)
	assert.Zero(t, cfg.MonthlyAmount)
	assert.Equal(t, 1, cfg.IncomeDay)
	assert.Empty(t, cfg.LastIncomeMonth)
}

func TestReminderConfigRoundTrip(t *testing.T) {
	s := openTestStore(t)
	const chatID = int64(1001)

	in := reminder.Config{Enabled: true, MonthlyAmount: 5000.5, IncomeDay: 5}
	require.NoError(t, s.SetReminderConfig(chatID, in))
	require.NoError(t, s.SetLastIncomeMonth(chatID, "2024-01"))

	out, err := s.ReminderConfig(chatID)
	require.NoError(t, err)
	assert.True(t, out.Enabled)
	assert.Equal(t, 5000.5, out.MonthlyAmount)
	assert.Equal(t, 5, out.IncomeDay)
	assert.Equal(t, "2024-01", out.LastIncomeMonth)
}

func TestReminderConfigIgnoresMalformedValues(t *testing.T) {
	s := openTestStore(t)
	const chatID = int64(1001)

	require.NoError(t, s.set(chatID, keyMonthlyIncome, "not-a-number"))
	require.NoError(t, s.set(chatID, keyIncomeDay, "40"))

	cfg, err := s.ReminderConfig(chatID)
	require.NoError(t, err)
	assert.Zero(t, cfg.MonthlyAmount)
	assert.Equal(t, 1, cfg.IncomeDay)
}

func TestReminderStatusCache(t *testing.T) {
	s := openTestStore(t)
	const chatID = int64(1001)

	cached, err := s.ReminderStatus(chatID)
	require.NoError(t, err)
	assert.Nil(t, cached)

	state := reminder.Evaluate(
		reminder.Config{Enabled: true, MonthlyAmount: 5000, IncomeDay: 5, LastIncomeMonth: "2023-12"},
		time.Date(2024, time.January, 10, 9, 0, 0, 0, time.UTC),
	)
	require.NoError(t, s.SetReminderStatus(chatID, state))

	cached, err = s.ReminderStatus(chatID)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, reminder.ModeDue, cached.Mode)
	assert.True(t, cached.ShouldShowReminder)
	assert.Equal(t, "2024-01", cached.CurrentMonth)
}

func TestMalformedJSONDegradesToNil(t *testing.T) {
	s := openTestStore(t)
	const chatID = int64(1001)

	require.NoError(t, s.set(chatID, keyReminderStatus, "{not json"))
	cached, err := s.ReminderStatus(chatID)
	require.NoError(t, err)
	assert.Nil(t, cached)

	require.NoError(t, s.set(chatID, keyUser, "{not json"))
	user, err := s.User(chatID)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestLowBalanceAlert(t *testing.T) {
	s := openTestStore(t)
	const chatID = int64(1001)

	threshold, err := s.LowBalanceAlert(chatID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, threshold)

	require.NoError(t, s.SetLowBalanceAlert(chatID, 250))
	threshold, err = s.LowBalanceAlert(chatID)
	require.NoError(t, err)
	assert.Equal(t, 250.0, threshold)
}

func TestReminderChats(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.SetReminderConfig(1, reminder.Config{Enabled: true, MonthlyAmount: 100, IncomeDay: 1}))
	require.NoError(t, s.SetReminderConfig(2, reminder.Config{Enabled: false, MonthlyAmount: 100, IncomeDay: 1}))
	require.NoError(t, s.SetReminderConfig(3, reminder.Config{Enabled: true, MonthlyAmount: 200, IncomeDay: 15}))

	chats, err := s.ReminderChats()
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{1, 3}, chats)
}
