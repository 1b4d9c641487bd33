package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vladimiradmaev/nutrition-tracker/internal/domain"
	apperrors "github.com/vladimiradmaev/nutrition-tracker/internal/errors"
	"github.com/vladimiradmaev/nutrition-tracker/internal/nutrition"
	"github.com/vladimiradmaev/nutrition-tracker/internal/repository"
	"github.com/vladimiradmaev/nutrition-tracker/internal/timeutil"
)

const (
	DefaultRecentLimit = 50
	MaxRecentLimit     = 500
)

// RecordService is the intake event store. Mutations commit first and then
// refresh the affected weekly aggregates as a best-effort follower; a
// follower failure is logged and never fails the mutation.
type RecordService struct {
	db              *gorm.DB
	clock           *timeutil.Manager
	users           domain.UserProvisioner
	weekly          domain.WeeklyUpdater
	futureAllowance time.Duration
	logger          *slog.Logger
	errs            *apperrors.Handler
}

func NewRecordService(db *gorm.DB, clock *timeutil.Manager, users domain.UserProvisioner, weekly domain.WeeklyUpdater, futureAllowance time.Duration, logger *slog.Logger) *RecordService {
	return &RecordService{
		db:              db,
		clock:           clock,
		users:           users,
		weekly:          weekly,
		futureAllowance: futureAllowance,
		logger:          logger,
		errs:            apperrors.NewHandler(logger),
	}
}

type CreateFromFoodInput struct {
	FoodID     string     `json:"foodId" validate:"required,max=64"`
	Amount     float64    `json:"amount" validate:"gt=0,lte=100000"`
	RecordedAt *time.Time `json:"recordedAt"`
}

type CreateManualInput struct {
	Name       string     `json:"name" validate:"max=255"`
	Category   string     `json:"category" validate:"required"`
	Calories   float64    `json:"calories" validate:"gte=0,lte=100000"`
	Protein    float64    `json:"protein" validate:"gte=0,lte=10000"`
	RecordedAt *time.Time `json:"recordedAt"`
}

// RecordPatch carries the fields to change; nil means unchanged. Nutrient
// values are never re-derived from the food.
type RecordPatch struct {
	Name       *string    `json:"name" validate:"omitempty,max=255"`
	Category   *string    `json:"category"`
	Calories   *float64   `json:"calories" validate:"omitempty,gte=0,lte=100000"`
	Protein    *float64   `json:"protein" validate:"omitempty,gte=0,lte=10000"`
	Amount     *float64   `json:"amount" validate:"omitempty,gt=0,lte=100000"`
	RecordedAt *time.Time `json:"recordedAt"`
}

func (s *RecordService) resolveRecordedAt(at *time.Time) (time.Time, error) {
	now := s.clock.Now()
	if at == nil || at.IsZero() {
		return now, nil
	}
	if err := checkNotFuture(*at, now, s.futureAllowance); err != nil {
		return time.Time{}, err
	}
	return at.UTC(), nil
}

// CreateFromFood logs amount grams of a catalog food, copying the scaled
// nutrients onto the record.
func (s *RecordService) CreateFromFood(ctx context.Context, userID string, in CreateFromFoodInput) (*domain.NutritionRecord, error) {
	userID = strings.TrimSpace(userID)
	if err := requireUserID(userID); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	recordedAt, err := s.resolveRecordedAt(in.RecordedAt)
	if err != nil {
		return nil, err
	}

	food, err := repository.NewFoodRepository(s.db).Get(ctx, strings.TrimSpace(in.FoodID))
	if err != nil {
		return nil, err
	}
	if _, err := s.users.EnsureUserExists(ctx, userID); err != nil {
		return nil, err
	}

	scaled := nutrition.Scale(*food, in.Amount)
	amount := in.Amount
	record := &domain.NutritionRecord{
		ID:         uuid.NewString(),
		UserID:     userID,
		Name:       food.Name,
		Category:   food.Category,
		Calories:   scaled.Calories,
		Protein:    scaled.Protein,
		SourceType: domain.SourceFood,
		FoodID:     &food.ID,
		Amount:     &amount,
		RecordedAt: recordedAt,
	}
	if err := repository.NewRecordRepository(s.db).Create(ctx, record); err != nil {
		return nil, err
	}
	record.Food = food

	s.logger.InfoContext(ctx, "Nutrition record created",
		"user_id", userID, "record_id", record.ID, "source", record.SourceType, "food_id", food.ID)
	s.follow(ctx, userID, record.RecordedAt)
	return record, nil
}

// CreateManual logs directly entered nutrient values.
func (s *RecordService) CreateManual(ctx context.Context, userID string, in CreateManualInput) (*domain.NutritionRecord, error) {
	userID = strings.TrimSpace(userID)
	if err := requireUserID(userID); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	category, err := parseCategoryStrict(in.Category)
	if err != nil {
		return nil, err
	}
	recordedAt, err := s.resolveRecordedAt(in.RecordedAt)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.EnsureUserExists(ctx, userID); err != nil {
		return nil, err
	}

	name := normalizeName(in.Name)
	if name == "" {
		name = domain.ManualRecordName
	}
	record := &domain.NutritionRecord{
		ID:         uuid.NewString(),
		UserID:     userID,
		Name:       name,
		Category:   category,
		Calories:   in.Calories,
		Protein:    in.Protein,
		SourceType: domain.SourceManual,
		RecordedAt: recordedAt,
	}
	if err := repository.NewRecordRepository(s.db).Create(ctx, record); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Nutrition record created",
		"user_id", userID, "record_id", record.ID, "source", record.SourceType)
	s.follow(ctx, userID, record.RecordedAt)
	return record, nil
}

// GetByDate returns the records of one civil date, oldest first.
func (s *RecordService) GetByDate(ctx context.Context, userID, date string) ([]domain.NutritionRecord, error) {
	userID = strings.TrimSpace(userID)
	if err := requireUserID(userID); err != nil {
		return nil, err
	}
	day, err := s.clock.ParseDate(date)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	start, end := s.clock.DayBounds(day)
	return repository.NewRecordRepository(s.db).ListBetween(ctx, userID, start, end)
}

// GetByRange returns records from the start of startDate through the end of
// endDate, oldest first.
func (s *RecordService) GetByRange(ctx context.Context, userID, startDate, endDate string) ([]domain.NutritionRecord, error) {
	userID = strings.TrimSpace(userID)
	if err := requireUserID(userID); err != nil {
		return nil, err
	}
	first, err := s.clock.ParseDate(startDate)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	last, err := s.clock.ParseDate(endDate)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	if last.Before(first) {
		return nil, apperrors.NewValidationError("end date is before start date")
	}

	start, _ := s.clock.DayBounds(first)
	_, end := s.clock.DayBounds(last)
	return repository.NewRecordRepository(s.db).ListBetween(ctx, userID, start, end)
}

// GetRecent returns the newest records, newest first.
func (s *RecordService) GetRecent(ctx context.Context, userID string, limit int) ([]domain.NutritionRecord, error) {
	userID = strings.TrimSpace(userID)
	if err := requireUserID(userID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	limit = min(limit, MaxRecentLimit)
	return repository.NewRecordRepository(s.db).ListRecent(ctx, userID, limit)
}

func (s *RecordService) Get(ctx context.Context, userID, id string) (*domain.NutritionRecord, error) {
	userID = strings.TrimSpace(userID)
	if err := requireUserID(userID); err != nil {
		return nil, err
	}
	return repository.NewRecordRepository(s.db).Get(ctx, userID, id)
}

// Update patches a record and refreshes its week, plus the previous week
// when recordedAt moved across a week boundary.
func (s *RecordService) Update(ctx context.Context, userID, id string, patch RecordPatch) (*domain.NutritionRecord, error) {
	userID = strings.TrimSpace(userID)
	if err := requireUserID(userID); err != nil {
		return nil, err
	}
	if err := validateInput(patch); err != nil {
		return nil, err
	}

	records := repository.NewRecordRepository(s.db)
	existing, err := records.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if patch.Name != nil {
		name := normalizeName(*patch.Name)
		if name == "" {
			name = domain.ManualRecordName
		}
		updates["name"] = name
	}
	if patch.Category != nil {
		category, err := parseCategoryStrict(*patch.Category)
		if err != nil {
			return nil, err
		}
		updates["category"] = category
	}
	if patch.Calories != nil {
		updates["calories"] = *patch.Calories
	}
	if patch.Protein != nil {
		updates["protein"] = *patch.Protein
	}
	if patch.Amount != nil {
		if existing.SourceType != domain.SourceFood {
			return nil, apperrors.NewValidationError("amount applies only to food-based records")
		}
		updates["amount"] = *patch.Amount
	}
	if patch.RecordedAt != nil {
		at, err := s.resolveRecordedAt(patch.RecordedAt)
		if err != nil {
			return nil, err
		}
		updates["recorded_at"] = at
	}
	if len(updates) == 0 {
		return existing, nil
	}

	updated, err := records.Update(ctx, userID, id, updates)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Nutrition record updated", "user_id", userID, "record_id", id, "fields", len(updates))
	s.follow(ctx, userID, updated.RecordedAt, existing.RecordedAt)
	return updated, nil
}

func (s *RecordService) Delete(ctx context.Context, userID, id string) error {
	userID = strings.TrimSpace(userID)
	if err := requireUserID(userID); err != nil {
		return err
	}

	records := repository.NewRecordRepository(s.db)
	existing, err := records.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := records.Delete(ctx, userID, id); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Nutrition record deleted", "user_id", userID, "record_id", id)
	s.follow(ctx, userID, existing.RecordedAt)
	return nil
}

// follow refreshes the weekly aggregate of every distinct week touched by
// instants. Failures are reported as transient and swallowed.
func (s *RecordService) follow(ctx context.Context, userID string, instants ...time.Time) {
	if s.weekly == nil {
		return
	}
	seen := make(map[int64]bool, len(instants))
	for _, t := range instants {
		week := s.clock.WeekStart(t).UnixMilli()
		if seen[week] {
			continue
		}
		seen[week] = true

		if _, err := s.weekly.UpdateWeeklyStats(ctx, userID, t); err != nil {
			s.errs.Handle(ctx, apperrors.NewTransientError(err, "weekly stats update").
				WithContext("user_id", userID).
				WithContext("week_start", s.clock.DateString(s.clock.WeekStart(t))))
		}
	}
}
