package services

import (
	"context"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"github.com/vladimiradmaev/nutrition-tracker/internal/domain"
	apperrors "github.com/vladimiradmaev/nutrition-tracker/internal/errors"
	"github.com/vladimiradmaev/nutrition-tracker/internal/repository"
)

type UserService struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewUserService(db *gorm.DB, logger *slog.Logger) *UserService {
	return &UserService{db: db, logger: logger}
}

// EnsureUserExists returns the user with externalID, creating it with
// default goals on first sight. Concurrent callers for one id all get the
// same single row.
func (s *UserService) EnsureUserExists(ctx context.Context, externalID string) (*domain.User, error) {
	id := strings.TrimSpace(externalID)
	if err := requireUserID(id); err != nil {
		return nil, err
	}

	users := repository.NewUserRepository(s.db)
	user, err := users.Get(ctx, id)
	if err == nil {
		return user, nil
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		return nil, err
	}

	user = &domain.User{
		ID:               id,
		Email:            id + "@" + domain.PlaceholderDomain,
		DailyCalorieGoal: domain.DefaultCalorieGoal,
		DailyProteinGoal: domain.DefaultProteinGoal,
	}
	created, err := users.InsertIfAbsent(ctx, user)
	if err != nil && !apperrors.IsType(err, apperrors.ErrorTypeConflict) {
		return nil, err
	}
	if created {
		s.logger.InfoContext(ctx, "User provisioned", "user_id", id)
		return user, nil
	}

	// Another caller won the insert.
	return users.Get(ctx, id)
}

type Goals struct {
	DailyCalorieGoal int     `json:"dailyCalorieGoal"`
	DailyProteinGoal float64 `json:"dailyProteinGoal"`
}

type GoalsPatch struct {
	DailyCalorieGoal *int     `json:"dailyCalorieGoal" validate:"omitempty,gt=0,lte=20000"`
	DailyProteinGoal *float64 `json:"dailyProteinGoal" validate:"omitempty,gt=0,lte=1000"`
}

func (s *UserService) GetGoals(ctx context.Context, userID string) (*Goals, error) {
	user, err := s.EnsureUserExists(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Goals{DailyCalorieGoal: user.DailyCalorieGoal, DailyProteinGoal: user.DailyProteinGoal}, nil
}

func (s *UserService) UpdateGoals(ctx context.Context, userID string, patch GoalsPatch) (*Goals, error) {
	if err := validateInput(patch); err != nil {
		return nil, err
	}
	if patch.DailyCalorieGoal == nil && patch.DailyProteinGoal == nil {
		return nil, apperrors.NewValidationError("at least one goal is required")
	}
	if _, err := s.EnsureUserExists(ctx, userID); err != nil {
		return nil, err
	}

	user, err := repository.NewUserRepository(s.db).UpdateGoals(ctx, strings.TrimSpace(userID), patch.DailyCalorieGoal, patch.DailyProteinGoal)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Goals updated", "user_id", user.ID,
		"daily_calorie_goal", user.DailyCalorieGoal, "daily_protein_goal", user.DailyProteinGoal)
	return &Goals{DailyCalorieGoal: user.DailyCalorieGoal, DailyProteinGoal: user.DailyProteinGoal}, nil
}
