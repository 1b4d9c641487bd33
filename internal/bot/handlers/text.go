package handlers

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/nutrition-tracker/internal/bot/menus"
	"github.com/vladimiradmaev/nutrition-tracker/internal/bot/state"
	apperrors "github.com/vladimiradmaev/nutrition-tracker/internal/errors"
)

var errEstimatorDisabled = apperrors.NewExternalAPIError(nil, "estimator")

// TextHandler handles text messages
type TextHandler struct {
	deps         Dependencies
	views        views
	stateManager state.StateManager
}

// NewTextHandler creates a new text handler
func NewTextHandler(deps Dependencies, stateManager state.StateManager) *TextHandler {
	return &TextHandler{deps: deps, views: views{deps: deps}, stateManager: stateManager}
}

// Handle processes a text message
func (h *TextHandler) Handle(ctx context.Context, message *tgbotapi.Message, telegramID int64, userID string) error {
	chatID := message.Chat.ID

	switch h.stateManager.GetUserState(ctx, telegramID) {
	case state.WaitingForLog:
		stored, err := h.views.logMeal(ctx, chatID, userID, message.Text)
		if stored {
			h.stateManager.ClearUserState(ctx, telegramID)
		}
		return err
	case state.WaitingForDescription:
		h.stateManager.ClearUserState(ctx, telegramID)
		return h.handleDescription(ctx, chatID, message.Text)
	default:
		return menus.SendText(h.deps.API, chatID, "Use /log <calories> <protein> [name] to record a meal, or /start for the menu.")
	}
}

func (h *TextHandler) handleDescription(ctx context.Context, chatID int64, text string) error {
	if h.deps.Estimator == nil {
		return menus.SendText(h.deps.API, chatID, userMessage(errEstimatorDisabled))
	}
	description, grams := SplitGrams(text)
	est, err := h.deps.Estimator.Estimate(ctx, description, grams)
	if err != nil {
		return h.views.sendError(ctx, chatID, err)
	}
	return menus.SendReport(h.deps.API, chatID, menus.FormatEstimate(est))
}

// SplitGrams peels a leading weight off a meal description: "250 beef
// noodle soup" and "250g beef noodle soup" both give 250 grams.
func SplitGrams(text string) (string, float64) {
	text = strings.TrimSpace(text)
	first, rest, found := strings.Cut(text, " ")
	if !found {
		return text, 0
	}
	grams, err := strconv.ParseFloat(strings.TrimSuffix(strings.ToLower(first), "g"), 64)
	if err != nil || grams <= 0 {
		return text, 0
	}
	return strings.TrimSpace(rest), grams
}
