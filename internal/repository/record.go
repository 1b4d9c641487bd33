package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vladimiradmaev/nutrition-tracker/internal/domain"
)

// RecordRepository handles nutrition record data operations. Every query is
// scoped to one user.
type RecordRepository struct {
	db *gorm.DB
}

func NewRecordRepository(db *gorm.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

func (r *RecordRepository) Create(ctx context.Context, record *domain.NutritionRecord) error {
	record.RecordedAt = record.RecordedAt.UTC()
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(record).Error
	return classify(err, "nutrition record", record.ID)
}

func (r *RecordRepository) Get(ctx context.Context, userID, id string) (*domain.NutritionRecord, error) {
	var record domain.NutritionRecord
	err := r.db.WithContext(ctx).
		Preload("Food").
		Where("id = ? AND user_id = ?", id, userID).
		First(&record).Error
	if err != nil {
		return nil, classify(err, "nutrition record", id)
	}
	return &record, nil
}

// ListBetween returns records with recordedAt in [start, end], oldest first.
func (r *RecordRepository) ListBetween(ctx context.Context, userID string, start, end time.Time) ([]domain.NutritionRecord, error) {
	var records []domain.NutritionRecord
	err := r.db.WithContext(ctx).
		Preload("Food").
		Where("user_id = ? AND recorded_at >= ? AND recorded_at <= ?", userID, start.UTC(), end.UTC()).
		Order("recorded_at ASC").Order("id ASC").
		Find(&records).Error
	return records, classify(err, "nutrition record", "")
}

// ListRecent returns the newest limit records, newest first.
func (r *RecordRepository) ListRecent(ctx context.Context, userID string, limit int) ([]domain.NutritionRecord, error) {
	var records []domain.NutritionRecord
	err := r.db.WithContext(ctx).
		Preload("Food").
		Where("user_id = ?", userID).
		Order("recorded_at DESC").Order("id DESC").
		Limit(limit).
		Find(&records).Error
	return records, classify(err, "nutrition record", "")
}

// ListAll returns every record of the user without the food association,
// oldest first.
func (r *RecordRepository) ListAll(ctx context.Context, userID string) ([]domain.NutritionRecord, error) {
	var records []domain.NutritionRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("recorded_at ASC").Order("id ASC").
		Find(&records).Error
	return records, classify(err, "nutrition record", "")
}

// Update writes the given columns and returns the stored row.
func (r *RecordRepository) Update(ctx context.Context, userID, id string, updates map[string]any) (*domain.NutritionRecord, error) {
	if v, ok := updates["recorded_at"].(time.Time); ok {
		updates["recorded_at"] = v.UTC()
	}
	if len(updates) > 0 {
		result := r.db.WithContext(ctx).
			Model(&domain.NutritionRecord{}).
			Where("id = ? AND user_id = ?", id, userID).
			Updates(updates)
		if result.Error != nil {
			return nil, classify(result.Error, "nutrition record", id)
		}
		if result.RowsAffected == 0 {
			return nil, classify(gorm.ErrRecordNotFound, "nutrition record", id)
		}
	}
	return r.Get(ctx, userID, id)
}

func (r *RecordRepository) Delete(ctx context.Context, userID, id string) error {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&domain.NutritionRecord{})
	if result.Error != nil {
		return classify(result.Error, "nutrition record", id)
	}
	if result.RowsAffected == 0 {
		return classify(gorm.ErrRecordNotFound, "nutrition record", id)
	}
	return nil
}

func (r *RecordRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.NutritionRecord{}).Count(&n).Error
	return n, classify(err, "nutrition record", "")
}

func (r *RecordRepository) Latest(ctx context.Context, limit int) ([]domain.NutritionRecord, error) {
	var records []domain.NutritionRecord
	err := r.db.WithContext(ctx).Order("updated_at DESC").Order("id").Limit(limit).Find(&records).Error
	return records, classify(err, "nutrition record", "")
}
