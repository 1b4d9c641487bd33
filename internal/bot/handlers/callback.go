package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/nutrition-tracker/internal/bot/keyboards"
	"github.com/vladimiradmaev/nutrition-tracker/internal/bot/menus"
	"github.com/vladimiradmaev/nutrition-tracker/internal/bot/state"
)

// CallbackHandler handles callback query messages
type CallbackHandler struct {
	deps         Dependencies
	views        views
	stateManager state.StateManager
}

// NewCallbackHandler creates a new callback handler
func NewCallbackHandler(deps Dependencies, stateManager state.StateManager) *CallbackHandler {
	return &CallbackHandler{deps: deps, views: views{deps: deps}, stateManager: stateManager}
}

// Handle processes a callback query
func (h *CallbackHandler) Handle(ctx context.Context, query *tgbotapi.CallbackQuery, telegramID int64, userID string) error {
	// Answer the callback query first
	if _, err := h.deps.API.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		return err
	}
	if query.Message == nil {
		return nil
	}
	chatID := query.Message.Chat.ID

	switch query.Data {
	case keyboards.CallbackToday:
		return h.views.sendToday(ctx, chatID, userID)
	case keyboards.CallbackWeek:
		return h.views.sendWeek(ctx, chatID, userID)
	case keyboards.CallbackHistory:
		return h.views.sendHistory(ctx, chatID, userID)
	case keyboards.CallbackLog:
		h.stateManager.SetUserState(ctx, telegramID, state.WaitingForLog)
		return menus.SendText(h.deps.API, chatID, "Send calories, protein and an optional name, e.g. 450 30 chicken salad")
	case keyboards.CallbackEstimate:
		if h.deps.Estimator == nil {
			return menus.SendText(h.deps.API, chatID, userMessage(errEstimatorDisabled))
		}
		h.stateManager.SetUserState(ctx, telegramID, state.WaitingForDescription)
		return menus.SendText(h.deps.API, chatID, "Describe the meal, optionally starting with its weight in grams, e.g. 250 beef noodle soup")
	case keyboards.CallbackMainMenu:
		h.stateManager.ClearUserState(ctx, telegramID)
		return menus.SendMainMenu(h.deps.API, chatID)
	default:
		return menus.SendText(h.deps.API, chatID, "Unknown action. Send /start to open the menu.")
	}
}
