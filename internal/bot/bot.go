// Package bot is an optional Telegram front end over the same services as
// the HTTP API.
package bot

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/nutrition-tracker/internal/bot/handlers"
	"github.com/vladimiradmaev/nutrition-tracker/internal/bot/state"
)

type Bot struct {
	api     *tgbotapi.BotAPI
	handler *handlers.UpdateHandler
	logger  *slog.Logger
}

// New authenticates with Telegram. deps.API is filled in by New.
func New(token string, deps handlers.Dependencies, stateManager state.StateManager, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	logger.Info("Authorized on Telegram", "account", api.Self.UserName)

	deps.API = api
	deps.Logger = logger
	return &Bot{
		api:     api,
		handler: handlers.NewUpdateHandler(deps, stateManager),
		logger:  logger,
	}, nil
}

// Start polls for updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()
	b.logger.Info("Bot is now listening for updates")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Bot is shutting down")
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message != nil && update.Message.From != nil {
				b.logger.Debug("Received message", "telegram_id", update.Message.From.ID, "text", update.Message.Text)
			}
			if err := b.handler.Handle(ctx, update); err != nil {
				b.logger.Error("Error handling update", "update_id", update.UpdateID, "error", err)
			}
		}
	}
}
