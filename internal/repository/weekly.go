package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vladimiradmaev/nutrition-tracker/internal/domain"
)

// WeeklyStatsRepository handles the materialized weekly aggregates.
type WeeklyStatsRepository struct {
	db *gorm.DB
}

func NewWeeklyStatsRepository(db *gorm.DB) *WeeklyStatsRepository {
	return &WeeklyStatsRepository{db: db}
}

// Upsert writes stats keyed by (user, week start) and returns the stored
// row, whose ID is the one from first materialization.
func (r *WeeklyStatsRepository) Upsert(ctx context.Context, stats *domain.WeeklyStats) (*domain.WeeklyStats, error) {
	stats.WeekStartDate = stats.WeekStartDate.UTC()
	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "week_start_date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"total_calories", "total_protein", "avg_daily_calories", "avg_protein",
				"records_count", "actual_days", "created_at", "updated_at",
			}),
		}).
		Create(stats).Error
	if err != nil {
		return nil, classify(err, "weekly stats", stats.UserID)
	}
	return r.Get(ctx, stats.UserID, stats.WeekStartDate)
}

func (r *WeeklyStatsRepository) Get(ctx context.Context, userID string, weekStart time.Time) (*domain.WeeklyStats, error) {
	var stats domain.WeeklyStats
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND week_start_date = ?", userID, weekStart.UTC()).
		First(&stats).Error
	if err != nil {
		return nil, classify(err, "weekly stats", weekStart.UTC().Format(time.RFC3339))
	}
	return &stats, nil
}

// ListSince returns rows with weekStartDate >= since, oldest first.
func (r *WeeklyStatsRepository) ListSince(ctx context.Context, userID string, since time.Time) ([]domain.WeeklyStats, error) {
	var rows []domain.WeeklyStats
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND week_start_date >= ?", userID, since.UTC()).
		Order("week_start_date ASC").
		Find(&rows).Error
	return rows, classify(err, "weekly stats", userID)
}

func (r *WeeklyStatsRepository) DeleteAll(ctx context.Context, userID string) (int64, error) {
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.WeeklyStats{})
	return result.RowsAffected, classify(result.Error, "weekly stats", userID)
}

func (r *WeeklyStatsRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.WeeklyStats{}).Count(&n).Error
	return n, classify(err, "weekly stats", "")
}

func (r *WeeklyStatsRepository) Latest(ctx context.Context, limit int) ([]domain.WeeklyStats, error) {
	var rows []domain.WeeklyStats
	err := r.db.WithContext(ctx).Order("updated_at DESC").Order("id").Limit(limit).Find(&rows).Error
	return rows, classify(err, "weekly stats", "")
}
