package bot

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/AbhishekS200607/easyfin/internal/model"
	"github.com/AbhishekS200607/easyfin/internal/reminder"
	"github.com/AbhishekS200607/easyfin/internal/service"
)

const maxListedTransactions = 10

func (b *Bot) handleCommand(message *tgbotapi.Message) error {
	chatID := message.Chat.ID

	switch message.Command() {
	case "start":
		b.handleStart(chatID)
	case "login":
		b.handleLogin(chatID, message.CommandArguments())
	case "register":
		b.handleRegister(chatID, message.CommandArguments())
	case "logout":
		b.handleLogout(chatID)
	case "income":
		b.startEntry(chatID, model.TypeIncome)
	case "expense":
		b.startEntry(chatID, model.TypeExpense)
	case "transactions":
		b.showTransactions(chatID)
	case "summary":
		b.showSummary(chatID)
	case "categories":
		b.showCategories(chatID)
	case "settings":
		b.showSettings(chatID)
	}
	return nil
}

func (b *Bot) handleStart(chatID int64) {
	text := "Welcome to your expense tracker! 💰\n\n" +
		"I talk to your expense account and help you:\n\n" +
		"• Add incomes and expenses\n" +
		"• Browse and edit transactions\n" +
		"• See summary charts\n" +
		"• Remind you to log your monthly salary\n\n" +
		"Log in with /login <username> <password>, then choose an action:"
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = mainKeyboard()
	b.send(msg)
}

func (b *Bot) handleLogin(chatID int64, args string) {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		b.sendText(chatID, "Usage: /login <username> <password>")
		return
	}
	user, err := b.tracker.Login(context.Background(), chatID, fields[0], fields[1])
	if err != nil {
		b.replyError(chatID, err, "Login failed")
		return
	}
	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("✅ Logged in as %s", user.Username))
	msg.ReplyMarkup = mainKeyboard()
	b.send(msg)
}

func (b *Bot) handleRegister(chatID int64, args string) {
	fields := strings.Fields(args)
	if len(fields) != 3 {
		b.sendText(chatID, "Usage: /register <username> <email> <password>")
		return
	}
	if err := b.tracker.Register(context.Background(), fields[0], fields[1], fields[2]); err != nil {
		b.replyError(chatID, err, "Registration failed")
		return
	}
	b.sendText(chatID, "✅ Registration successful! Now log in with /login <username> <password>")
}

func (b *Bot) handleLogout(chatID int64) {
	b.resetForm(chatID)
	if err := b.tracker.Logout(chatID); err != nil {
		b.replyError(chatID, err, "Logout failed")
		return
	}
	b.sendText(chatID, "👋 Logged out.")
}

// startEntry begins a manual income/expense entry: load the category set,
// reset the form and offer the type-filtered category keyboard.
func (b *Bot) startEntry(chatID int64, ctype model.CategoryType) {
	set, err := b.tracker.LoadCategories(context.Background(), chatID)
	if err != nil {
		b.replyError(chatID, err, "Failed to load categories")
		return
	}
	state := b.state(chatID)
	*state = UserState{Categories: set, TransactionType: ctype, Awaiting: awaitingCategory}
	b.sendCategoryKeyboard(chatID, state, "")
}

// sendCategoryKeyboard renders the type-filtered, search-filtered category
// selection. The filtered view is recomputed from the full set every time.
func (b *Bot) sendCategoryKeyboard(chatID int64, state *UserState, search string) {
	filtered := state.Categories.Filter(state.TransactionType, search)

	label := "income"
	if state.TransactionType == model.TypeExpense {
		label = "expense"
	}
	var text string
	switch {
	case search != "" && len(filtered) == 0:
		text = fmt.Sprintf("No %s categories match %q. Type another search or add one:", label, search)
	case search != "":
		text = fmt.Sprintf("Categories matching %q:", search)
	default:
		text = fmt.Sprintf("Select %s category (or type to search):", label)
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = categoriesKeyboard(filtered, state.TransactionType)
	b.send(msg)
}

func (b *Bot) handleCallback(callback *tgbotapi.CallbackQuery) error {
	chatID := callback.Message.Chat.ID
	data := callback.Data

	switch {
	case strings.HasPrefix(data, "category_"):
		b.handleCategoryChosen(chatID, strings.TrimPrefix(data, "category_"))
	case strings.HasPrefix(data, "newcat_"):
		b.handleNewCategoryRequested(chatID, model.CategoryType(strings.TrimPrefix(data, "newcat_")))
	case strings.HasPrefix(data, "edit_"):
		b.handleEditRequested(chatID, strings.TrimPrefix(data, "edit_"))
	case strings.HasPrefix(data, "del_"):
		b.handleDeleteRequested(chatID, strings.TrimPrefix(data, "del_"))
	case strings.HasPrefix(data, "delyes_"):
		b.handleDeleteConfirmed(chatID, strings.TrimPrefix(data, "delyes_"))
	case data == "delno":
		// Cancellation sends no request and changes nothing.
		b.sendText(chatID, "Deletion cancelled.")
	case data == "add_salary":
		b.handleAddSalary(chatID)
	case data == "settings_edit":
		state := b.state(chatID)
		state.Awaiting = awaitingSettings
		b.sendText(chatID, "Send your settings as: <monthly amount> <salary day 1-31> <on|off> [low balance alert]\n\nExample: 5000 5 on 100")
	}

	// Answer the callback to clear the loading indicator.
	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		b.logger.Error("failed to answer callback", "error", err)
	}
	return nil
}

func (b *Bot) handleCategoryChosen(chatID int64, rawID string) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		b.sendText(chatID, "⚠️ Unknown category")
		return
	}
	state := b.state(chatID)
	if state.Categories == nil {
		set, loadErr := b.tracker.LoadCategories(context.Background(), chatID)
		if loadErr != nil {
			b.replyError(chatID, loadErr, "Failed to load categories")
			return
		}
		state.Categories = set
	}
	cat := state.Categories.ByID(id)
	if cat == nil {
		b.sendText(chatID, "⚠️ Unknown category")
		return
	}
	state.SelectedCategoryID = id
	state.TransactionType = cat.Type
	state.Awaiting = awaitingAmount

	b.sendText(chatID, fmt.Sprintf("Category: %s\nEnter amount and optional description, e.g.:\n1500.50 groceries", cat.Name))
}

func (b *Bot) handleNewCategoryRequested(chatID int64, ctype model.CategoryType) {
	if !ctype.Valid() {
		return
	}
	state := b.state(chatID)
	state.TransactionType = ctype
	state.Awaiting = awaitingNewCategory
	b.sendText(chatID, "Enter the new category name:")
}

// handleEditRequested enters edit mode: the target transaction's fields
// are copied into the form state and the submit path switches to update.
func (b *Bot) handleEditRequested(chatID int64, rawID string) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return
	}
	ctx := context.Background()
	transactions, err := b.tracker.Transactions(ctx, chatID)
	if err != nil {
		b.replyError(chatID, err, "Failed to load transactions")
		return
	}
	var target *model.Transaction
	for i := range transactions {
		if transactions[i].ID == id {
			target = &transactions[i]
			break
		}
	}
	if target == nil {
		b.sendText(chatID, "⚠️ Transaction not found")
		return
	}
	set, err := b.tracker.LoadCategories(ctx, chatID)
	if err != nil {
		b.replyError(chatID, err, "Failed to load categories")
		return
	}

	state := b.state(chatID)
	*state = UserState{
		Categories:         set,
		TransactionType:    target.Type,
		SelectedCategoryID: target.CategoryID,
		EditingID:          target.ID,
		Description:        target.Description,
		Date:               target.Date,
		Awaiting:           awaitingAmount,
	}

	categoryName := "?"
	if cat := set.ByID(target.CategoryID); cat != nil {
		categoryName = cat.Name
	}
	b.sendText(chatID, fmt.Sprintf(
		"✏️ Editing #%d: %s %.2f in %s on %s\nEnter new amount and optional description (description is kept if omitted):",
		target.ID, typeEmoji(target.Type), target.Amount, categoryName, target.Date))
}

func (b *Bot) handleDeleteRequested(chatID int64, rawID string) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return
	}
	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("Delete transaction #%d? This cannot be undone.", id))
	msg.ReplyMarkup = confirmDeleteKeyboard(id)
	b.send(msg)
}

func (b *Bot) handleDeleteConfirmed(chatID int64, rawID string) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return
	}
	if err := b.tracker.DeleteTransaction(context.Background(), chatID, id); err != nil {
		b.replyError(chatID, err, "Failed to delete transaction")
		return
	}
	b.sendText(chatID, "🗑 Transaction deleted.")
	b.sendBalance(chatID)
}

func (b *Bot) handleAddSalary(chatID int64) {
	now := time.Now()
	created, err := b.tracker.AddMonthlyIncome(context.Background(), chatID, now)
	if err != nil {
		// lastIncomeMonth was not advanced; the reminder stays due for a retry.
		b.replyError(chatID, err, "Failed to add monthly income")
		return
	}
	b.sendText(chatID, fmt.Sprintf("💰 Monthly salary added! (%.2f, %s)", created.Amount, created.Description))

	state, err := b.tracker.EvaluateReminder(chatID, now)
	if err == nil {
		b.sendText(chatID, reminderText(state))
	}
	b.sendBalance(chatID)
}

func (b *Bot) handleMessage(message *tgbotapi.Message) error {
	chatID := message.Chat.ID
	text := strings.TrimSpace(message.Text)

	// Main keyboard buttons work from any state and abandon the current flow.
	switch text {
	case "💰 Add Income":
		b.startEntry(chatID, model.TypeIncome)
		return nil
	case "💸 Add Expense":
		b.startEntry(chatID, model.TypeExpense)
		return nil
	case "📋 Transactions":
		b.resetForm(chatID)
		b.showTransactions(chatID)
		return nil
	case "📊 Summary":
		b.resetForm(chatID)
		b.showSummary(chatID)
		return nil
	case "⚙️ Settings":
		b.resetForm(chatID)
		b.showSettings(chatID)
		return nil
	}

	state, exists := b.states[chatID]
	if !exists || state.Awaiting == "" {
		msg := tgbotapi.NewMessage(chatID, "Choose an action:")
		msg.ReplyMarkup = mainKeyboard()
		b.send(msg)
		return nil
	}

	switch state.Awaiting {
	case awaitingCategory:
		// Free text while selecting acts as a search filter.
		b.sendCategoryKeyboard(chatID, state, text)
	case awaitingNewCategory:
		b.handleNewCategoryName(chatID, state, text)
	case awaitingAmount:
		b.handleAmountEntered(chatID, state, text)
	case awaitingSettings:
		b.handleSettingsEntered(chatID, state, text)
	}
	return nil
}

func (b *Bot) handleNewCategoryName(chatID int64, state *UserState, name string) {
	created, set, err := b.tracker.CreateCategory(context.Background(), chatID, name, state.TransactionType)
	if err != nil {
		b.replyError(chatID, err, "Failed to add category")
		return
	}
	// The set is fully reloaded from the server, never patched locally.
	state.Categories = set
	state.Awaiting = awaitingCategory
	b.sendText(chatID, fmt.Sprintf("✅ Category %q created!", created.Name))
	b.sendCategoryKeyboard(chatID, state, "")
}

func (b *Bot) handleAmountEntered(chatID int64, state *UserState, text string) {
	parts := strings.SplitN(text, " ", 2)
	amount, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		b.sendText(chatID, "⚠️ Invalid amount. Use a number first, e.g.: 1500.50 groceries")
		return
	}
	description := state.Description
	if len(parts) == 2 {
		description = strings.TrimSpace(parts[1])
	}
	// Edit mode keeps the original date; a new entry is dated today.
	date := state.Date
	if date.IsZero() {
		date = model.NewDate(time.Now())
	}

	txn := &model.Transaction{
		ID:          state.EditingID,
		CategoryID:  state.SelectedCategoryID,
		Amount:      amount,
		Description: description,
		Date:        date,
		Type:        state.TransactionType,
	}
	mode := service.SubmitCreate
	if state.EditingID != 0 {
		mode = service.SubmitUpdate
	}

	submitted, err := b.tracker.SubmitTransaction(context.Background(), chatID, txn, mode, state.Categories)
	if err != nil {
		// Entered values are preserved; the user can correct and resend.
		fallback := "Failed to add " + strings.ToLower(string(state.TransactionType))
		if mode == service.SubmitUpdate {
			fallback = "Failed to update transaction"
		}
		b.replyError(chatID, err, fallback)
		return
	}

	if mode == service.SubmitUpdate {
		b.sendText(chatID, fmt.Sprintf("✅ Transaction #%d updated!", submitted.ID))
	} else if state.TransactionType == model.TypeIncome {
		b.sendText(chatID, "🎉 Income added successfully!")
	} else {
		b.sendText(chatID, "🎉 Expense added successfully!")
	}
	b.resetForm(chatID)
	b.sendBalance(chatID)
}

func (b *Bot) handleSettingsEntered(chatID int64, state *UserState, text string) {
	fields := strings.Fields(text)
	if len(fields) != 3 && len(fields) != 4 {
		b.sendText(chatID, "⚠️ Use: <monthly amount> <salary day 1-31> <on|off> [low balance alert]")
		return
	}
	amount, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || amount < 0 {
		b.sendText(chatID, "⚠️ Invalid monthly amount")
		return
	}
	day, err := strconv.Atoi(fields[1])
	if err != nil || day < 1 || day > 31 {
		b.sendText(chatID, "⚠️ Salary day must be between 1 and 31")
		return
	}
	var enabled bool
	switch strings.ToLower(fields[2]) {
	case "on", "true", "yes":
		enabled = true
	case "off", "false", "no":
		enabled = false
	default:
		b.sendText(chatID, "⚠️ Reminders must be on or off")
		return
	}

	var threshold float64
	hasThreshold := len(fields) == 4
	if hasThreshold {
		threshold, err = strconv.ParseFloat(fields[3], 64)
		if err != nil || threshold < 0 {
			b.sendText(chatID, "⚠️ Invalid low balance alert amount")
			return
		}
	}

	cfg, err := b.tracker.ReminderConfig(chatID)
	if err != nil {
		b.replyError(chatID, err, "Failed to load settings")
		return
	}
	cfg.Enabled = enabled
	cfg.MonthlyAmount = amount
	cfg.IncomeDay = day

	// The threshold is written only after the reminder config is stored.
	reminderState, err := b.tracker.SaveReminderSettings(chatID, cfg, time.Now())
	if err != nil {
		b.replyError(chatID, err, "Failed to save settings")
		return
	}
	if hasThreshold {
		if err := b.tracker.SetLowBalanceAlert(chatID, threshold); err != nil {
			b.replyError(chatID, err, "Failed to save settings")
			return
		}
	}
	state.Awaiting = ""
	b.sendText(chatID, "💾 Settings saved successfully!")
	b.sendReminderBox(chatID, reminderState)
}

func (b *Bot) showTransactions(chatID int64) {
	ctx := context.Background()
	transactions, err := b.tracker.Transactions(ctx, chatID)
	if err != nil {
		b.replyError(chatID, err, "Failed to load transactions")
		return
	}
	if len(transactions) == 0 {
		b.sendText(chatID, "No transactions yet. Add one with 💰 or 💸!")
		return
	}
	set, err := b.tracker.LoadCategories(ctx, chatID)
	if err != nil {
		b.replyError(chatID, err, "Failed to load categories")
		return
	}

	sort.Slice(transactions, func(i, j int) bool {
		return transactions[i].Date.After(transactions[j].Date.Time)
	})
	if len(transactions) > maxListedTransactions {
		transactions = transactions[:maxListedTransactions]
	}

	var sb strings.Builder
	sb.WriteString("📋 Recent transactions:\n\n")
	for _, txn := range transactions {
		categoryName := "?"
		if cat := set.ByID(txn.CategoryID); cat != nil {
			categoryName = cat.Name
		}
		sb.WriteString(fmt.Sprintf("#%d  %s  %s %.2f  %s", txn.ID, txn.Date, typeEmoji(txn.Type), txn.Amount, categoryName))
		if txn.Description != "" {
			sb.WriteString(" — " + txn.Description)
		}
		sb.WriteString("\n")
	}

	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ReplyMarkup = transactionsKeyboard(transactions)
	b.send(msg)
}

func (b *Bot) showSummary(chatID int64) {
	ctx := context.Background()
	summary, err := b.tracker.Summary(ctx, chatID)
	if err != nil {
		b.replyError(chatID, err, "Failed to load summary")
		return
	}

	text := fmt.Sprintf(
		"📊 Summary\n\n💰 Income: %.2f\n💸 Expense: %.2f\n💵 Balance: %.2f",
		summary.TotalIncome, summary.TotalExpense, summary.Balance)
	if threshold, terr := b.tracker.LowBalanceAlert(chatID); terr == nil && summary.Balance < threshold {
		text += fmt.Sprintf("\n\n⚠️ Balance is below your %.2f alert threshold!", threshold)
	}
	b.sendText(chatID, text)

	if png, cerr := b.charts.SummaryChart(summary); cerr == nil && png != nil {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "summary.png", Bytes: png})
		b.send(photo)
	} else if cerr != nil {
		b.logger.Error("failed to render summary chart", "error", cerr)
	}

	// The breakdown needs the raw transactions; skip it quietly if the
	// fetch fails, the totals above are already on screen.
	transactions, err := b.tracker.Transactions(ctx, chatID)
	if err != nil {
		return
	}
	set, err := b.tracker.LoadCategories(ctx, chatID)
	if err != nil {
		return
	}
	if png, cerr := b.charts.ExpenseBreakdown(transactions, set.All()); cerr == nil && png != nil {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "breakdown.png", Bytes: png})
		b.send(photo)
	} else if cerr != nil {
		b.logger.Error("failed to render expense breakdown", "error", cerr)
	}
}

func (b *Bot) showCategories(chatID int64) {
	set, err := b.tracker.LoadCategories(context.Background(), chatID)
	if err != nil {
		b.replyError(chatID, err, "Failed to load categories")
		return
	}

	var sb strings.Builder
	sb.WriteString("📋 Your categories:\n\n💰 Income:\n")
	for _, cat := range set.Filter(model.TypeIncome, "") {
		sb.WriteString("• " + cat.Name + "\n")
	}
	sb.WriteString("\n💸 Expense:\n")
	for _, cat := range set.Filter(model.TypeExpense, "") {
		sb.WriteString("• " + cat.Name + "\n")
	}

	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ReplyMarkup = manageCategoriesKeyboard()
	b.send(msg)
}

func (b *Bot) showSettings(chatID int64) {
	cfg, err := b.tracker.ReminderConfig(chatID)
	if err != nil {
		b.replyError(chatID, err, "Failed to load settings")
		return
	}
	threshold, err := b.tracker.LowBalanceAlert(chatID)
	if err != nil {
		b.replyError(chatID, err, "Failed to load settings")
		return
	}

	enabled := "off"
	if cfg.Enabled {
		enabled = "on"
	}
	b.sendText(chatID, fmt.Sprintf(
		"⚙️ Settings\n\nMonthly income: %.2f\nSalary day: %d of each month\nLow balance alert: %.2f\nReminders: %s",
		cfg.MonthlyAmount, cfg.IncomeDay, threshold, enabled))

	state, err := b.tracker.EvaluateReminder(chatID, time.Now())
	if err != nil {
		b.replyError(chatID, err, "Failed to check reminder")
		return
	}
	b.sendReminderBox(chatID, state)
}

// sendReminderBox renders the evaluated reminder state with the matching
// actions: edit settings always, add-salary only while due.
func (b *Bot) sendReminderBox(chatID int64, state reminder.State) {
	msg := tgbotapi.NewMessage(chatID, reminderText(state))
	msg.ReplyMarkup = settingsKeyboard(state.ShouldShowReminder)
	b.send(msg)
}

// sendBalance refreshes the on-screen totals after a mutation; the fetch
// is a full idempotent reload of the server state.
func (b *Bot) sendBalance(chatID int64) {
	summary, err := b.tracker.Summary(context.Background(), chatID)
	if err != nil {
		b.replyError(chatID, err, "Failed to load summary")
		return
	}
	text := fmt.Sprintf("💵 Balance: %.2f (income %.2f / expense %.2f)",
		summary.Balance, summary.TotalIncome, summary.TotalExpense)
	if threshold, terr := b.tracker.LowBalanceAlert(chatID); terr == nil && summary.Balance < threshold {
		text += fmt.Sprintf("\n⚠️ Balance is below your %.2f alert threshold!", threshold)
	}
	b.sendText(chatID, text)
}

func reminderText(state reminder.State) string {
	switch state.Mode {
	case reminder.ModeSatisfied:
		return fmt.Sprintf("✅ Monthly salary for %s already added!\nAmount: %.2f",
			state.CheckedAt.Format("January"), state.MonthlyAmount)
	case reminder.ModeDue:
		return fmt.Sprintf("🔔 Time to add your monthly salary!\nAmount: %.2f\nSalary day: %d of each month",
			state.MonthlyAmount, state.IncomeDay)
	case reminder.ModePending:
		plural := "s"
		if state.DaysUntilDue == 1 {
			plural = ""
		}
		return fmt.Sprintf("📅 Next salary in %d day%s\nAmount: %.2f\nSalary day: %d of each month",
			state.DaysUntilDue, plural, state.MonthlyAmount, state.IncomeDay)
	default:
		return "Enable reminders and set monthly income to get notifications."
	}
}

func typeEmoji(ctype model.CategoryType) string {
	if ctype == model.TypeIncome {
		return "💰"
	}
	return "💸"
}
