package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/AbhishekS200607/easyfin/internal/model"
)

func mainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("💰 Add Income"),
			tgbotapi.NewKeyboardButton("💸 Add Expense"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("📋 Transactions"),
			tgbotapi.NewKeyboardButton("📊 Summary"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("⚙️ Settings"),
		),
	)
}

// categoriesKeyboard lists the filtered categories one per row, with an
// inline-creation button for the current type at the bottom.
func categoriesKeyboard(categories []model.Category, ctype model.CategoryType) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, category := range categories {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				category.Name,
				fmt.Sprintf("category_%d", category.ID),
			),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("➕ New category", "newcat_"+string(ctype)),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func transactionsKeyboard(transactions []model.Transaction) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, txn := range transactions {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("✏️ #%d", txn.ID),
				fmt.Sprintf("edit_%d", txn.ID),
			),
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("🗑 #%d", txn.ID),
				fmt.Sprintf("del_%d", txn.ID),
			),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func confirmDeleteKeyboard(id int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Delete", fmt.Sprintf("delyes_%d", id)),
			tgbotapi.NewInlineKeyboardButtonData("🔙 Cancel", "delno"),
		),
	)
}

func manageCategoriesKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Income category", "newcat_"+string(model.TypeIncome)),
			tgbotapi.NewInlineKeyboardButtonData("➕ Expense category", "newcat_"+string(model.TypeExpense)),
		),
	)
}

func settingsKeyboard(salaryDue bool) tgbotapi.InlineKeyboardMarkup {
	row := []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("✏️ Edit settings", "settings_edit"),
	}
	if salaryDue {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("💰 Add salary now", "add_salary"))
	}
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(row...))
}

func addSalaryKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💰 Add salary now", "add_salary"),
		),
	)
}
