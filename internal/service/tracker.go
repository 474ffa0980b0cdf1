// Package service implements the client-side workflows: authentication,
// transaction submission, category management and the monthly-income
// reminder flow. It talks to the remote API and the local store through
// interfaces so the surfaces and the tests stay independent of both.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/AbhishekS200607/easyfin/internal/api"
	"github.com/AbhishekS200607/easyfin/internal/model"
	"github.com/AbhishekS200607/easyfin/internal/reminder"
)

// ErrNotAuthenticated means no token is stored for the chat; the user has
// to log in before the operation can be retried.
var ErrNotAuthenticated = errors.New("not logged in")

// salaryCategoryName is matched case-insensitively when auto-logging the
// monthly income.
const salaryCategoryName = "Salary"

// SubmitMode selects between creating a transaction and replacing an
// existing one by ID.
type SubmitMode int

const (
	SubmitCreate SubmitMode = iota
	SubmitUpdate
)

// API is the slice of the remote client the tracker needs.
type API interface {
	Login(ctx context.Context, username, password string) (*api.LoginResponse, error)
	Register(ctx context.Context, username, email, password string) error
	Categories(ctx context.Context, token string) ([]model.Category, error)
	CreateCategory(ctx context.Context, token, name string, ctype model.CategoryType) (*model.Category, error)
	Transactions(ctx context.Context, token string) ([]model.Transaction, error)
	CreateTransaction(ctx context.Context, token string, txn *model.Transaction) (*model.Transaction, error)
	UpdateTransaction(ctx context.Context, token string, id int64, txn *model.Transaction) (*model.Transaction, error)
	DeleteTransaction(ctx context.Context, token string, id int64) error
	Summary(ctx context.Context, token string) (*model.Summary, error)
}

// Store is the slice of the local settings store the tracker needs.
type Store interface {
	Token(chatID int64) (string, error)
	SetCredentials(chatID int64, token string, user model.User) error
	ClearCredentials(chatID int64) error
	User(chatID int64) (*model.User, error)
	ReminderConfig(chatID int64) (reminder.Config, error)
	SetReminderConfig(chatID int64, cfg reminder.Config) error
	SetLastIncomeMonth(chatID int64, month string) error
	ReminderStatus(chatID int64) (*reminder.State, error)
	SetReminderStatus(chatID int64, state reminder.State) error
	ReminderChats() ([]int64, error)
	LowBalanceAlert(chatID int64) (float64, error)
	SetLowBalanceAlert(chatID int64, threshold float64) error
}

// Tracker wires the workflows together.
type Tracker struct {
	api    API
	store  Store
	logger *slog.Logger
}

func NewTracker(apiClient API, store Store) *Tracker {
	return &Tracker{
		api:    apiClient,
		store:  store,
		logger: slog.Default().With("component", "service"),
	}
}

// Login authenticates against the API and stores the credential.
func (t *Tracker) Login(ctx context.Context, chatID int64, username, password string) (*model.User, error) {
	resp, err := t.api.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if err := t.store.SetCredentials(chatID, resp.Token, resp.User); err != nil {
		return nil, err
	}
	t.logger.Info("logged in", "chat_id", chatID, "username", resp.User.Username)
	return &resp.User, nil
}

func (t *Tracker) Register(ctx context.Context, username, email, password string) error {
	return t.api.Register(ctx, username, email, password)
}

// Logout drops the stored credential. Errors from the remote side cannot
// occur; the token is purely local.
func (t *Tracker) Logout(chatID int64) error {
	return t.store.ClearCredentials(chatID)
}

func (t *Tracker) User(chatID int64) (*model.User, error) {
	return t.store.User(chatID)
}

func (t *Tracker) token(chatID int64) (string, error) {
	token, err := t.store.Token(chatID)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", ErrNotAuthenticated
	}
	return token, nil
}

// SubmitTransaction validates txn against the known categories and, only
// if validation passes, dispatches the create or update request. On
// validation failure no network call is made, so the caller's pending form
// state survives for a retry.
func (t *Tracker) SubmitTransaction(ctx context.Context, chatID int64, txn *model.Transaction, mode SubmitMode, categories *CategorySet) (*model.Transaction, error) {
	if err := txn.Validate(categories.All()); err != nil {
		return nil, err
	}
	token, err := t.token(chatID)
	if err != nil {
		return nil, err
	}

	switch mode {
	case SubmitCreate:
		created, err := t.api.CreateTransaction(ctx, token, txn)
		if err != nil {
			return nil, err
		}
		t.logger.Info("transaction created", "chat_id", chatID, "id", created.ID, "type", created.Type, "amount", created.Amount)
		return created, nil
	case SubmitUpdate:
		if txn.ID == 0 {
			return nil, &model.ValidationError{Field: "id", Message: "No transaction selected for update"}
		}
		updated, err := t.api.UpdateTransaction(ctx, token, txn.ID, txn)
		if err != nil {
			return nil, err
		}
		t.logger.Info("transaction updated", "chat_id", chatID, "id", txn.ID)
		return updated, nil
	default:
		return nil, fmt.Errorf("unknown submit mode %d", mode)
	}
}

// DeleteTransaction removes a transaction by ID. Interactive confirmation
// happens at the surface before this is called.
func (t *Tracker) DeleteTransaction(ctx context.Context, chatID, id int64) error {
	token, err := t.token(chatID)
	if err != nil {
		return err
	}
	if err := t.api.DeleteTransaction(ctx, token, id); err != nil {
		return err
	}
	t.logger.Info("transaction deleted", "chat_id", chatID, "id", id)
	return nil
}

// Transactions fetches the full current server state; the client keeps no
// authoritative cache between actions.
func (t *Tracker) Transactions(ctx context.Context, chatID int64) ([]model.Transaction, error) {
	token, err := t.token(chatID)
	if err != nil {
		return nil, err
	}
	return t.api.Transactions(ctx, token)
}

func (t *Tracker) Summary(ctx context.Context, chatID int64) (*model.Summary, error) {
	token, err := t.token(chatID)
	if err != nil {
		return nil, err
	}
	return t.api.Summary(ctx, token)
}

// SaveReminderSettings persists the reminder configuration and returns the
// freshly evaluated state.
func (t *Tracker) SaveReminderSettings(chatID int64, cfg reminder.Config, now time.Time) (reminder.State, error) {
	if err := t.store.SetReminderConfig(chatID, cfg); err != nil {
		return reminder.State{}, err
	}
	return t.EvaluateReminder(chatID, now)
}

// EvaluateReminder recomputes the reminder state from the persisted config
// and refreshes the cross-surface status cache.
func (t *Tracker) EvaluateReminder(chatID int64, now time.Time) (reminder.State, error) {
	cfg, err := t.store.ReminderConfig(chatID)
	if err != nil {
		return reminder.State{}, err
	}
	state := reminder.Evaluate(cfg, now)
	if err := t.store.SetReminderStatus(chatID, state); err != nil {
		return state, err
	}
	return state, nil
}

// ReminderConfig exposes the persisted config for the settings surface.
func (t *Tracker) ReminderConfig(chatID int64) (reminder.Config, error) {
	return t.store.ReminderConfig(chatID)
}

// ReminderChats lists chats for the periodic re-check.
func (t *Tracker) ReminderChats() ([]int64, error) {
	return t.store.ReminderChats()
}

// LowBalanceAlert is the threshold below which the summary view warns.
func (t *Tracker) LowBalanceAlert(chatID int64) (float64, error) {
	return t.store.LowBalanceAlert(chatID)
}

func (t *Tracker) SetLowBalanceAlert(chatID int64, threshold float64) error {
	return t.store.SetLowBalanceAlert(chatID, threshold)
}

// AddMonthlyIncome logs this month's salary: it finds (or creates) the
// income category named "Salary" and submits a transaction for the
// configured monthly amount. Only after the transaction is accepted does
// it advance lastIncomeMonth; any earlier failure leaves the reminder due
// so the user can retry. The category-create/transaction-create pair is
// not transactional - an orphan Salary category is reusable on retry.
func (t *Tracker) AddMonthlyIncome(ctx context.Context, chatID int64, now time.Time) (*model.Transaction, error) {
	cfg, err := t.store.ReminderConfig(chatID)
	if err != nil {
		return nil, err
	}
	if cfg.MonthlyAmount <= 0 {
		return nil, &model.ValidationError{Field: "monthlyAmount", Message: "Please set monthly income amount first"}
	}
	token, err := t.token(chatID)
	if err != nil {
		return nil, err
	}

	categories, err := t.api.Categories(ctx, token)
	if err != nil {
		return nil, err
	}
	var salary *model.Category
	for i := range categories {
		if categories[i].Type == model.TypeIncome && strings.EqualFold(categories[i].Name, salaryCategoryName) {
			salary = &categories[i]
			break
		}
	}
	if salary == nil {
		salary, err = t.api.CreateCategory(ctx, token, salaryCategoryName, model.TypeIncome)
		if err != nil {
			return nil, err
		}
		t.logger.Info("salary category created", "chat_id", chatID, "id", salary.ID)
	}

	txn := &model.Transaction{
		CategoryID:  salary.ID,
		Amount:      cfg.MonthlyAmount,
		Description: fmt.Sprintf("Monthly salary - %s", now.Format("January 2006")),
		Date:        model.NewDate(now),
		Type:        model.TypeIncome,
	}
	created, err := t.api.CreateTransaction(ctx, token, txn)
	if err != nil {
		return nil, err
	}

	if err := t.store.SetLastIncomeMonth(chatID, reminder.MonthKey(now)); err != nil {
		return created, err
	}
	if _, err := t.EvaluateReminder(chatID, now); err != nil {
		return created, err
	}
	t.logger.Info("monthly income added", "chat_id", chatID, "amount", cfg.MonthlyAmount, "month", reminder.MonthKey(now))
	return created, nil
}
