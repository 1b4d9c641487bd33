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
	"github.com/vladimiradmaev/nutrition-tracker/internal/locks"
	"github.com/vladimiradmaev/nutrition-tracker/internal/repository"
	"github.com/vladimiradmaev/nutrition-tracker/internal/timeutil"
)

const DefaultHistoryWeeks = 4

// WeeklyStatsService maintains WeeklyStats as a materialized view over
// nutrition records. Every write recomputes a whole week from the records,
// so concurrent recomputes converge regardless of order.
type WeeklyStatsService struct {
	db     *gorm.DB
	clock  *timeutil.Manager
	locker locks.Locker
	logger *slog.Logger
}

func NewWeeklyStatsService(db *gorm.DB, clock *timeutil.Manager, locker locks.Locker, logger *slog.Logger) *WeeklyStatsService {
	if locker == nil {
		locker = locks.NewMemoryLocker()
	}
	return &WeeklyStatsService{db: db, clock: clock, locker: locker, logger: logger}
}

// aggregateWeek is the pure aggregation of records belonging to the week
// starting at weekStart.
func aggregateWeek(clock *timeutil.Manager, userID string, weekStart time.Time, records []domain.NutritionRecord) domain.WeeklyStats {
	stats := domain.WeeklyStats{
		ID:            uuid.NewString(),
		UserID:        userID,
		WeekStartDate: weekStart.UTC(),
		RecordsCount:  len(records),
	}

	days := make(map[string]struct{})
	for i := range records {
		stats.TotalCalories += records[i].Calories
		stats.TotalProtein += records[i].Protein
		days[clock.DateString(records[i].RecordedAt)] = struct{}{}
	}
	stats.ActualDays = len(days)

	if stats.ActualDays > 0 {
		stats.AvgDailyCalories = stats.TotalCalories / float64(stats.ActualDays)
		stats.AvgProtein = stats.TotalProtein / float64(stats.ActualDays)
	}
	return stats
}

// UpdateWeeklyStats recomputes and upserts the row for the week containing t.
func (s *WeeklyStatsService) UpdateWeeklyStats(ctx context.Context, userID string, t time.Time) (*domain.WeeklyStats, error) {
	userID = strings.TrimSpace(userID)
	if err := requireUserID(userID); err != nil {
		return nil, err
	}

	weekStart, weekEnd := s.clock.WeekBounds(t)
	records, err := repository.NewRecordRepository(s.db).ListBetween(ctx, userID, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}

	stats := aggregateWeek(s.clock, userID, weekStart, records)
	saved, err := repository.NewWeeklyStatsRepository(s.db).Upsert(ctx, &stats)
	if err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "Weekly stats updated",
		"user_id", userID,
		"week_start", s.clock.DateString(weekStart),
		"records", saved.RecordsCount,
		"actual_days", saved.ActualDays)
	return saved, nil
}

// GetOrCreate always recomputes, because a stored row can be stale if a
// follower update was lost.
func (s *WeeklyStatsService) GetOrCreate(ctx context.Context, userID string, t time.Time) (*domain.WeeklyStats, error) {
	return s.UpdateWeeklyStats(ctx, userID, t)
}

// History returns stored rows whose week starts on or after the week of
// now minus weeksBack weeks, oldest first.
func (s *WeeklyStatsService) History(ctx context.Context, userID string, weeksBack int) ([]domain.WeeklyStats, error) {
	userID = strings.TrimSpace(userID)
	if err := requireUserID(userID); err != nil {
		return nil, err
	}
	if weeksBack <= 0 {
		weeksBack = DefaultHistoryWeeks
	}
	since := s.clock.WeekStart(s.clock.AddDays(s.clock.Now(), -7*weeksBack))
	return repository.NewWeeklyStatsRepository(s.db).ListSince(ctx, userID, since)
}

type DailyPoint struct {
	Date     string  `json:"date"`
	Label    string  `json:"label"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
}

// DailySeries returns one point per civil day of the week containing t.
func (s *WeeklyStatsService) DailySeries(ctx context.Context, userID string, t time.Time) ([]DailyPoint, error) {
	userID = strings.TrimSpace(userID)
	if err := requireUserID(userID); err != nil {
		return nil, err
	}

	weekStart, weekEnd := s.clock.WeekBounds(t)
	records, err := repository.NewRecordRepository(s.db).ListBetween(ctx, userID, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}

	byDate := make(map[string]*DailyPoint, 7)
	points := make([]DailyPoint, 0, 7)
	for _, day := range s.clock.DaysOfWeek(weekStart) {
		points = append(points, DailyPoint{Date: s.clock.DateString(day), Label: s.clock.FormatWeekday(day)})
	}
	for i := range points {
		byDate[points[i].Date] = &points[i]
	}
	for i := range records {
		if p, ok := byDate[s.clock.DateString(records[i].RecordedAt)]; ok {
			p.Calories += records[i].Calories
			p.Protein += records[i].Protein
		}
	}
	return points, nil
}

type RecalculateResult struct {
	Deleted      int64 `json:"deleted"`
	Recalculated int   `json:"recalculated"`
	Errors       int   `json:"errors"`
}

// RecalculateAll drops every weekly row of the user and rebuilds the
// non-empty weeks from the first record's week through the current week.
// A rebuild already running for the user yields a conflict.
func (s *WeeklyStatsService) RecalculateAll(ctx context.Context, userID string) (*RecalculateResult, error) {
	userID = strings.TrimSpace(userID)
	if err := requireUserID(userID); err != nil {
		return nil, err
	}

	release, acquired, err := s.locker.TryLock(ctx, "weekly-recalc:"+userID)
	if err != nil {
		return nil, apperrors.NewTransientError(err, "acquire recalculation lock")
	}
	if !acquired {
		return nil, apperrors.NewConflictError(nil, "weekly stats recalculation already running").
			WithContext("user_id", userID)
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.logger.WarnContext(ctx, "Failed to release recalculation lock", "user_id", userID, "error", err)
		}
	}()

	result := &RecalculateResult{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := repository.NewWeeklyStatsRepository(tx).DeleteAll(ctx, userID)
		result.Deleted = n
		return err
	})
	if err != nil {
		return nil, err
	}

	records, err := repository.NewRecordRepository(s.db).ListAll(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return result, nil
	}

	buckets := make(map[int64][]domain.NutritionRecord)
	for _, r := range records {
		ws := s.clock.WeekStart(r.RecordedAt).UnixMilli()
		buckets[ws] = append(buckets[ws], r)
	}

	first := s.clock.WeekStart(records[0].RecordedAt)
	last := s.clock.WeekStart(s.clock.Now())
	if latest := s.clock.WeekStart(records[len(records)-1].RecordedAt); latest.After(last) {
		last = latest
	}

	weekly := repository.NewWeeklyStatsRepository(s.db)
	for week := first; !week.After(last); week = s.clock.AddDays(week, 7) {
		bucket := buckets[week.UnixMilli()]
		if len(bucket) == 0 {
			continue
		}
		stats := aggregateWeek(s.clock, userID, week, bucket)
		if _, err := weekly.Upsert(ctx, &stats); err != nil {
			result.Errors++
			s.logger.ErrorContext(ctx, "Failed to rebuild week",
				"user_id", userID, "week_start", s.clock.DateString(week), "error", err)
			continue
		}
		result.Recalculated++
	}

	s.logger.InfoContext(ctx, "Weekly stats recalculated",
		"user_id", userID,
		"deleted", result.Deleted,
		"recalculated", result.Recalculated,
		"errors", result.Errors)
	return result, nil
}
