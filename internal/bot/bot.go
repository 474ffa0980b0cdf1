// Package bot is the Telegram surface of the expense tracker. It owns the
// per-chat interaction state and translates messages and button presses
// into service workflow calls. All business rules live on the API server.
package bot

import (
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/AbhishekS200607/easyfin/internal/api"
	"github.com/AbhishekS200607/easyfin/internal/charts"
	"github.com/AbhishekS200607/easyfin/internal/model"
	"github.com/AbhishekS200607/easyfin/internal/service"
)

// Awaited actions for a chat, driving how the next free-text message is
// interpreted.
const (
	awaitingCategory    = "category"
	awaitingAmount      = "amount"
	awaitingNewCategory = "new_category"
	awaitingSettings    = "settings"
)

// UserState is the explicit per-chat form state: the selected category set
// and filters, the pending transaction being entered, and edit mode. It is
// owned here and passed into workflow calls, never read implicitly.
type UserState struct {
	Categories         *service.CategorySet
	TransactionType    model.CategoryType
	SelectedCategoryID int64
	// EditingID is nonzero while updating an existing transaction; its
	// fields were copied into this state when edit mode was entered.
	EditingID   int64
	Description string
	// Date is the original transaction date in edit mode; zero for a new
	// entry, which is dated today on submit.
	Date     model.Date
	Awaiting string
}

// telegram is the slice of the Telegram client the bot uses.
type telegram interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
}

type Bot struct {
	api     telegram
	tracker *service.Tracker
	charts  *charts.Generator
	states  map[int64]*UserState
	logger  *slog.Logger
}

func NewBot(token string, tracker *service.Tracker) (*Bot, error) {
	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Bot{
		api:     botAPI,
		tracker: tracker,
		charts:  charts.NewGenerator(),
		states:  make(map[int64]*UserState),
		logger:  slog.Default().With("component", "bot"),
	}, nil
}

// Start runs the bot in long-polling mode and re-checks reminders on the
// given interval. Updates are handled one at a time; the reminder tick
// only sends advisory notifications, every interaction recomputes state
// from scratch anyway.
func (b *Bot) Start(reminderInterval time.Duration) error {
	go b.reminderLoop(reminderInterval)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	for update := range updates {
		if err := b.handleUpdate(update); err != nil {
			b.logger.Error("failed to handle update", "error", err)
		}
	}
	return nil
}

// HandleWebhook is the entry point for webhook deployments.
func (b *Bot) HandleWebhook(body []byte) error {
	var update tgbotapi.Update
	if err := json.Unmarshal(body, &update); err != nil {
		return err
	}
	return b.handleUpdate(update)
}

func (b *Bot) handleUpdate(update tgbotapi.Update) error {
	if update.Message == nil && update.CallbackQuery == nil {
		return nil
	}
	if update.Message != nil && update.Message.IsCommand() {
		return b.handleCommand(update.Message)
	}
	if update.CallbackQuery != nil {
		return b.handleCallback(update.CallbackQuery)
	}
	return b.handleMessage(update.Message)
}

func (b *Bot) reminderLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		b.checkReminders(time.Now())
	}
}

// checkReminders re-evaluates every opted-in chat and pushes a
// notification where the salary is due.
func (b *Bot) checkReminders(now time.Time) {
	chats, err := b.tracker.ReminderChats()
	if err != nil {
		b.logger.Error("failed to list reminder chats", "error", err)
		return
	}
	for _, chatID := range chats {
		state, err := b.tracker.EvaluateReminder(chatID, now)
		if err != nil {
			b.logger.Error("failed to evaluate reminder", "chat_id", chatID, "error", err)
			continue
		}
		if !state.ShouldShowReminder {
			continue
		}
		msg := tgbotapi.NewMessage(chatID, reminderText(state))
		msg.ReplyMarkup = addSalaryKeyboard()
		b.send(msg)
	}
}

func (b *Bot) state(chatID int64) *UserState {
	state, ok := b.states[chatID]
	if !ok {
		state = &UserState{}
		b.states[chatID] = state
	}
	return state
}

// resetForm clears the pending entry back to defaults, as after a
// successful create.
func (b *Bot) resetForm(chatID int64) {
	delete(b.states, chatID)
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		b.logger.Error("failed to send message", "error", err)
	}
}

func (b *Bot) sendText(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

// replyError converts a workflow failure into a user-visible message.
// Validation and API errors keep the current form state so the user can
// retry; auth failures route back to login.
func (b *Bot) replyError(chatID int64, err error, fallback string) {
	var validationErr *model.ValidationError
	switch {
	case errors.As(err, &validationErr):
		b.sendText(chatID, "⚠️ "+validationErr.Message)
	case errors.Is(err, service.ErrNotAuthenticated):
		b.sendText(chatID, "🔒 Please log in first: /login <username> <password>")
	case errors.Is(err, api.ErrUnauthorized):
		if logoutErr := b.tracker.Logout(chatID); logoutErr != nil {
			b.logger.Error("failed to clear credentials", "chat_id", chatID, "error", logoutErr)
		}
		b.sendText(chatID, "🔒 Session expired. Please log in again: /login <username> <password>")
	default:
		b.sendText(chatID, "❌ "+api.Message(err, fallback))
	}
}
