package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/vladimiradmaev/nutrition-tracker/internal/bot/menus"
	"github.com/vladimiradmaev/nutrition-tracker/internal/domain"
	apperrors "github.com/vladimiradmaev/nutrition-tracker/internal/errors"
	"github.com/vladimiradmaev/nutrition-tracker/internal/services"
	"github.com/vladimiradmaev/nutrition-tracker/internal/timeutil"
)

// historyLimit caps the records shown by /history.
const historyLimit = 20

// Dependencies holds all services the handlers need. Estimator may be nil.
type Dependencies struct {
	API       menus.Sender
	Users     *services.UserService
	Records   *services.RecordService
	Dashboard *services.DashboardService
	Estimator services.Estimator
	Clock     *timeutil.Manager
	Logger    *slog.Logger
}

// UserIdentity is the user id a Telegram account maps to.
func UserIdentity(telegramID int64) string {
	return "telegram:" + strconv.FormatInt(telegramID, 10)
}

// ParseLogArgs reads "<calories> <protein> [name]" into a manual record.
func ParseLogArgs(args string) (services.CreateManualInput, error) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		return services.CreateManualInput{}, apperrors.NewValidationError("usage: /log <calories> <protein> [name]")
	}
	calories, err := strconv.ParseFloat(strings.ReplaceAll(fields[0], ",", "."), 64)
	if err != nil {
		return services.CreateManualInput{}, apperrors.NewValidationErrorf("calories must be a number, got %q", fields[0])
	}
	protein, err := strconv.ParseFloat(strings.ReplaceAll(fields[1], ",", "."), 64)
	if err != nil {
		return services.CreateManualInput{}, apperrors.NewValidationErrorf("protein must be a number, got %q", fields[1])
	}
	return services.CreateManualInput{
		Name:     strings.Join(fields[2:], " "),
		Category: string(domain.CategoryOther),
		Calories: calories,
		Protein:  protein,
	}, nil
}

// userMessage turns a service error into something safe to show in chat.
func userMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case apperrors.ErrorTypeValidation:
			return "⚠️ " + appErr.Message
		case apperrors.ErrorTypeExternal:
			return "The estimator is unavailable right now. You can still log with /log."
		}
	}
	return "Something went wrong, please try again."
}

// views renders the reports shared by commands and callbacks.
type views struct {
	deps Dependencies
}

func (v views) sendToday(ctx context.Context, chatID int64, userID string) error {
	view, err := v.deps.Dashboard.Daily(ctx, userID)
	if err != nil {
		return v.sendError(ctx, chatID, err)
	}
	return menus.SendReport(v.deps.API, chatID, menus.FormatDaily(v.deps.Clock, view))
}

func (v views) sendWeek(ctx context.Context, chatID int64, userID string) error {
	view, err := v.deps.Dashboard.Weekly(ctx, userID)
	if err != nil {
		return v.sendError(ctx, chatID, err)
	}
	return menus.SendReport(v.deps.API, chatID, menus.FormatWeekly(view))
}

func (v views) sendHistory(ctx context.Context, chatID int64, userID string) error {
	groups, err := v.deps.Dashboard.History(ctx, userID, historyLimit)
	if err != nil {
		return v.sendError(ctx, chatID, err)
	}
	return menus.SendReport(v.deps.API, chatID, menus.FormatHistory(v.deps.Clock, groups))
}

// logMeal parses args and stores a manual record. It reports whether the
// record was stored so callers can leave conversation state alone on typos.
func (v views) logMeal(ctx context.Context, chatID int64, userID, args string) (bool, error) {
	in, err := ParseLogArgs(args)
	if err != nil {
		return false, v.sendError(ctx, chatID, err)
	}
	record, err := v.deps.Records.CreateManual(ctx, userID, in)
	if err != nil {
		return false, v.sendError(ctx, chatID, err)
	}
	return true, menus.SendReport(v.deps.API, chatID, menus.FormatRecorded(record))
}

func (v views) sendError(ctx context.Context, chatID int64, err error) error {
	if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		v.deps.Logger.ErrorContext(ctx, "Bot request failed", "chat_id", chatID, "error", err)
	}
	if sendErr := menus.SendText(v.deps.API, chatID, userMessage(err)); sendErr != nil {
		return fmt.Errorf("failed to send error message: %w", sendErr)
	}
	return nil
}
