package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/nutrition-tracker/internal/bot/menus"
	"github.com/vladimiradmaev/nutrition-tracker/internal/bot/state"
)

// CommandHandler handles bot commands
type CommandHandler struct {
	deps         Dependencies
	views        views
	stateManager state.StateManager
}

// NewCommandHandler creates a new command handler
func NewCommandHandler(deps Dependencies, stateManager state.StateManager) *CommandHandler {
	return &CommandHandler{deps: deps, views: views{deps: deps}, stateManager: stateManager}
}

// Handle processes a command message. Any command abandons a pending
// conversation step.
func (h *CommandHandler) Handle(ctx context.Context, message *tgbotapi.Message, telegramID int64, userID string) error {
	chatID := message.Chat.ID
	h.stateManager.ClearUserState(ctx, telegramID)

	switch message.Command() {
	case "start":
		return menus.SendMainMenu(h.deps.API, chatID)
	case "help":
		return menus.SendText(h.deps.API, chatID, menus.HelpText)
	case "today":
		return h.views.sendToday(ctx, chatID, userID)
	case "week":
		return h.views.sendWeek(ctx, chatID, userID)
	case "history":
		return h.views.sendHistory(ctx, chatID, userID)
	case "log":
		_, err := h.views.logMeal(ctx, chatID, userID, message.CommandArguments())
		return err
	default:
		return menus.SendText(h.deps.API, chatID, "Unknown command. Send /help to see what I can do.")
	}
}
