package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/nutrition-tracker/internal/bot/state"
)

// UpdateHandler handles all types of updates
type UpdateHandler struct {
	deps            Dependencies
	commandHandler  *CommandHandler
	callbackHandler *CallbackHandler
	textHandler     *TextHandler
}

// NewUpdateHandler creates a new update handler
func NewUpdateHandler(deps Dependencies, stateManager state.StateManager) *UpdateHandler {
	return &UpdateHandler{
		deps:            deps,
		commandHandler:  NewCommandHandler(deps, stateManager),
		callbackHandler: NewCallbackHandler(deps, stateManager),
		textHandler:     NewTextHandler(deps, stateManager),
	}
}

// Handle processes an update
func (h *UpdateHandler) Handle(ctx context.Context, update tgbotapi.Update) error {
	var from *tgbotapi.User
	switch {
	case update.CallbackQuery != nil:
		from = update.CallbackQuery.From
	case update.Message != nil:
		from = update.Message.From
	}
	if from == nil {
		return nil
	}

	user, err := h.deps.Users.EnsureUserExists(ctx, UserIdentity(from.ID))
	if err != nil {
		return err
	}

	if update.CallbackQuery != nil {
		return h.callbackHandler.Handle(ctx, update.CallbackQuery, from.ID, user.ID)
	}

	if update.Message.IsCommand() {
		return h.commandHandler.Handle(ctx, update.Message, from.ID, user.ID)
	}

	if update.Message.Text != "" {
		return h.textHandler.Handle(ctx, update.Message, from.ID, user.ID)
	}

	return nil
}
