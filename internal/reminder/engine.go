// Package reminder implements the monthly-income reminder state machine.
// Evaluate is a pure function over the persisted config and the current
// date; it touches no storage and no network, so any surface can recompute
// the state from scratch at any time.
package reminder

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Mode is the display mode of an evaluated reminder.
type Mode string

const (
	// ModeDisabled: reminders are off or no monthly amount is configured.
	// This is a normal quiescent state, not an error.
	ModeDisabled Mode = "disabled"
	// ModeSatisfied: income for the current month has already been logged.
	ModeSatisfied Mode = "satisfied"
	// ModeDue: the income day has passed and this month is not logged yet.
	ModeDue Mode = "due"
	// ModePending: the income day is still ahead this month.
	ModePending Mode = "pending"
)

// Config is the persisted reminder configuration. It is the single source
// of truth; evaluated states are disposable projections of it.
type Config struct {
	Enabled         bool
	MonthlyAmount   float64
	IncomeDay       int
	LastIncomeMonth string
}

// State is the derived reminder state for a given instant. It carries its
// inputs so a cached copy can be rendered without re-reading the config.
type State struct {
	Mode               Mode      `json:"mode"`
	CurrentMonth       string    `json:"currentMonth"`
	CurrentDay         int       `json:"currentDay"`
	ShouldShowReminder bool      `json:"shouldShowReminder"`
	DaysUntilDue       int       `json:"daysUntilDue,omitempty"`
	MonthlyAmount      float64   `json:"monthlyAmount"`
	IncomeDay          int       `json:"incomeDay"`
	LastIncomeMonth    string    `json:"lastIncomeMonth,omitempty"`
	CheckedAt          time.Time `json:"checkedAt"`
}

// MonthKey returns the canonical year-month key for t, zero-padded ISO
// style ("2024-01").
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// NormalizeMonthKey converts a stored year-month key to canonical form.
// Older clients persisted unpadded keys ("2024-1"); both spellings must
// compare equal. Unparsable input normalizes to the empty key.
func NormalizeMonthKey(key string) string {
	parts := strings.SplitN(strings.TrimSpace(key), "-", 2)
	if len(parts) != 2 {
		return ""
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil || year < 1 {
		return ""
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return ""
	}
	return fmt.Sprintf("%04d-%02d", year, month)
}

// Evaluate computes the reminder state for cfg at the given instant.
//
// Decision order: disabled config wins, then an already-satisfied month,
// then due (day-of-month reached), else pending with a day countdown.
func Evaluate(cfg Config, now time.Time) State {
	state := State{
		CurrentMonth:    MonthKey(now),
		CurrentDay:      now.Day(),
		MonthlyAmount:   cfg.MonthlyAmount,
		IncomeDay:       cfg.IncomeDay,
		LastIncomeMonth: NormalizeMonthKey(cfg.LastIncomeMonth),
		CheckedAt:       now,
	}

	switch {
	case !cfg.Enabled || cfg.MonthlyAmount <= 0:
		state.Mode = ModeDisabled
	case state.LastIncomeMonth == state.CurrentMonth:
		state.Mode = ModeSatisfied
	case state.CurrentDay >= cfg.IncomeDay:
		state.Mode = ModeDue
		state.ShouldShowReminder = true
	default:
		state.Mode = ModePending
		state.DaysUntilDue = cfg.IncomeDay - state.CurrentDay
	}
	return state
}
