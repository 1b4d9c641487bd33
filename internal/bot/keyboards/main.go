package keyboards

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback data carried by the inline buttons.
const (
	CallbackToday    = "today"
	CallbackWeek     = "week"
	CallbackHistory  = "history"
	CallbackLog      = "log_meal"
	CallbackEstimate = "estimate_meal"
	CallbackMainMenu = "main_menu"
)

// MainMenu creates the main menu keyboard
func MainMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📅 Today", CallbackToday),
			tgbotapi.NewInlineKeyboardButtonData("📊 This week", CallbackWeek),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🕘 History", CallbackHistory),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Log a meal", CallbackLog),
			tgbotapi.NewInlineKeyboardButtonData("🔎 Estimate", CallbackEstimate),
		),
	)
}

// Navigation is attached under every report.
func Navigation() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📅 Today", CallbackToday),
			tgbotapi.NewInlineKeyboardButtonData("📊 Week", CallbackWeek),
			tgbotapi.NewInlineKeyboardButtonData("🕘 History", CallbackHistory),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ Main menu", CallbackMainMenu),
		),
	)
}
