package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vladimiradmaev/nutrition-tracker/internal/domain"
	apperrors "github.com/vladimiradmaev/nutrition-tracker/internal/errors"
)

// idChunk keeps IN lists under SQLite's bound-parameter limit.
const idChunk = 500

// FoodRepository handles catalog data operations
type FoodRepository struct {
	db *gorm.DB
}

func NewFoodRepository(db *gorm.DB) *FoodRepository {
	return &FoodRepository{db: db}
}

func (r *FoodRepository) Create(ctx context.Context, food *domain.Food) error {
	return classify(r.db.WithContext(ctx).Create(food).Error, "food", food.ID)
}

func (r *FoodRepository) Get(ctx context.Context, id string) (*domain.Food, error) {
	var food domain.Food
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&food).Error; err != nil {
		return nil, classify(err, "food", id)
	}
	return &food, nil
}

// ListPublished returns published foods of category ordered by name.
func (r *FoodRepository) ListPublished(ctx context.Context, category domain.Category) ([]domain.Food, error) {
	var foods []domain.Food
	err := r.db.WithContext(ctx).
		Where("category = ? AND is_published = ?", category, true).
		Order("name ASC").Order("id ASC").
		Find(&foods).Error
	return foods, classify(err, "food", "")
}

// SearchPublished matches query as a case-insensitive substring of the
// name. query must already be lower-cased. On SQLite LOWER folds ASCII
// only, so "é" does not match "Éclair" there; Postgres folds Unicode.
func (r *FoodRepository) SearchPublished(ctx context.Context, category domain.Category, query string, limit int) ([]domain.Food, error) {
	var foods []domain.Food
	err := r.db.WithContext(ctx).
		Where("category = ? AND is_published = ?", category, true).
		Where(`LOWER(name) LIKE ? ESCAPE '\'`, "%"+escapeLike(query)+"%").
		Order("name ASC").Order("id ASC").
		Limit(limit).
		Find(&foods).Error
	return foods, classify(err, "food", query)
}

// Update applies column updates and returns the stored row.
func (r *FoodRepository) Update(ctx context.Context, id string, updates map[string]any) (*domain.Food, error) {
	if len(updates) > 0 {
		result := r.db.WithContext(ctx).Model(&domain.Food{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return nil, classify(result.Error, "food", id)
		}
		if result.RowsAffected == 0 {
			return nil, classify(gorm.ErrRecordNotFound, "food", id)
		}
	}
	return r.Get(ctx, id)
}

// Delete removes a food that no record references.
func (r *FoodRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var refs int64
		if err := tx.Model(&domain.NutritionRecord{}).Where("food_id = ?", id).Count(&refs).Error; err != nil {
			return classify(err, "food", id)
		}
		if refs > 0 {
			return apperrors.NewConflictError(nil, "food is referenced by existing records").
				WithContext("food_id", id).
				WithContext("records", refs)
		}

		result := tx.Where("id = ?", id).Delete(&domain.Food{})
		if result.Error != nil {
			return classify(result.Error, "food", id)
		}
		if result.RowsAffected == 0 {
			return classify(gorm.ErrRecordNotFound, "food", id)
		}
		return nil
	})
}

// ExistingIDs returns which of ids are already in the catalog.
func (r *FoodRepository) ExistingIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	existing := make(map[string]bool, len(ids))
	for start := 0; start < len(ids); start += idChunk {
		end := min(start+idChunk, len(ids))
		var found []string
		err := r.db.WithContext(ctx).Model(&domain.Food{}).
			Where("id IN ?", ids[start:end]).
			Pluck("id", &found).Error
		if err != nil {
			return nil, classify(err, "food", "")
		}
		for _, id := range found {
			existing[id] = true
		}
	}
	return existing, nil
}

var upsertColumns = []string{
	"name", "category", "brand", "serving_unit", "serving_size",
	"calories_per_100g", "protein_per_100g", "carbs_per_100g", "fat_per_100g",
	"is_published", "updated_at",
}

// Upsert inserts foods in batches, replacing every catalog field of rows
// whose id already exists. ids must be unique within foods.
func (r *FoodRepository) Upsert(ctx context.Context, foods []domain.Food, batchSize int) error {
	if len(foods) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(upsertColumns),
		}).
		CreateInBatches(foods, batchSize).Error
	return classify(err, "food", "")
}

func (r *FoodRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Food{}).Count(&n).Error
	return n, classify(err, "food", "")
}

func (r *FoodRepository) Latest(ctx context.Context, limit int) ([]domain.Food, error) {
	var foods []domain.Food
	err := r.db.WithContext(ctx).Order("updated_at DESC").Order("id").Limit(limit).Find(&foods).Error
	return foods, classify(err, "food", "")
}
