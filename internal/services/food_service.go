package services

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"

	"github.com/vladimiradmaev/nutrition-tracker/internal/domain"
	apperrors "github.com/vladimiradmaev/nutrition-tracker/internal/errors"
	"github.com/vladimiradmaev/nutrition-tracker/internal/repository"
)

const (
	SearchLimit    = 20
	minSearchRunes = 2
)

type FoodService struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewFoodService(db *gorm.DB, logger *slog.Logger) *FoodService {
	return &FoodService{db: db, logger: logger}
}

type CreateFoodInput struct {
	ID              string   `json:"id" validate:"max=64"`
	Name            string   `json:"name" validate:"required,max=255"`
	Category        string   `json:"category"`
	Brand           *string  `json:"brand" validate:"omitempty,max=255"`
	ServingUnit     *string  `json:"servingUnit" validate:"omitempty,max=32"`
	ServingSize     *float64 `json:"servingSize" validate:"omitempty,gte=0"`
	CaloriesPer100g float64  `json:"caloriesPer100g" validate:"gte=0"`
	ProteinPer100g  float64  `json:"proteinPer100g" validate:"gte=0"`
	CarbsPer100g    *float64 `json:"carbsPer100g" validate:"omitempty,gte=0"`
	FatPer100g      *float64 `json:"fatPer100g" validate:"omitempty,gte=0"`
	IsPublished     *bool    `json:"isPublished"`
}

// FoodPatch carries the fields to change; nil means unchanged.
type FoodPatch struct {
	Name            *string  `json:"name" validate:"omitempty,max=255"`
	Category        *string  `json:"category"`
	Brand           *string  `json:"brand" validate:"omitempty,max=255"`
	ServingUnit     *string  `json:"servingUnit" validate:"omitempty,max=32"`
	ServingSize     *float64 `json:"servingSize" validate:"omitempty,gte=0"`
	CaloriesPer100g *float64 `json:"caloriesPer100g" validate:"omitempty,gte=0"`
	ProteinPer100g  *float64 `json:"proteinPer100g" validate:"omitempty,gte=0"`
	CarbsPer100g    *float64 `json:"carbsPer100g" validate:"omitempty,gte=0"`
	FatPer100g      *float64 `json:"fatPer100g" validate:"omitempty,gte=0"`
	IsPublished     *bool    `json:"isPublished"`
}

// normalizeName trims and NFC-normalizes a catalog name so composed and
// decomposed spellings compare equal.
func normalizeName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// CreateFood inserts a catalog entry. Unknown categories become Other.
func (s *FoodService) CreateFood(ctx context.Context, in CreateFoodInput) (*domain.Food, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	name := normalizeName(in.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name is required")
	}

	food := &domain.Food{
		ID:              strings.TrimSpace(in.ID),
		Name:            name,
		Category:        domain.NormalizeCategory(in.Category),
		Brand:           in.Brand,
		ServingUnit:     in.ServingUnit,
		ServingSize:     in.ServingSize,
		CaloriesPer100g: in.CaloriesPer100g,
		ProteinPer100g:  in.ProteinPer100g,
		CarbsPer100g:    in.CarbsPer100g,
		FatPer100g:      in.FatPer100g,
		IsPublished:     true,
	}
	if food.ID == "" {
		food.ID = uuid.NewString()
	}
	if in.IsPublished != nil {
		food.IsPublished = *in.IsPublished
	}

	if err := repository.NewFoodRepository(s.db).Create(ctx, food); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Food created", "food_id", food.ID, "category", food.Category)
	return food, nil
}

func (s *FoodService) GetFood(ctx context.Context, id string) (*domain.Food, error) {
	return repository.NewFoodRepository(s.db).Get(ctx, strings.TrimSpace(id))
}

// GetFoodsByCategory lists published foods of the category by name.
func (s *FoodService) GetFoodsByCategory(ctx context.Context, category string) ([]domain.Food, error) {
	c, err := parseCategoryStrict(category)
	if err != nil {
		return nil, err
	}
	return repository.NewFoodRepository(s.db).ListPublished(ctx, c)
}

// SearchFoods returns published foods of the category whose name contains
// query, case-insensitively, capped at SearchLimit. Queries shorter than two
// characters list the whole category.
func (s *FoodService) SearchFoods(ctx context.Context, category, query string) ([]domain.Food, error) {
	c, err := parseCategoryStrict(category)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(normalizeName(query))
	foods := repository.NewFoodRepository(s.db)
	if utf8.RuneCountInString(q) < minSearchRunes {
		return foods.ListPublished(ctx, c)
	}
	return foods.SearchPublished(ctx, c, q, SearchLimit)
}

func (s *FoodService) UpdateFood(ctx context.Context, id string, patch FoodPatch) (*domain.Food, error) {
	if err := validateInput(patch); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if patch.Name != nil {
		name := normalizeName(*patch.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("name must not be blank")
		}
		updates["name"] = name
	}
	if patch.Category != nil {
		updates["category"] = domain.NormalizeCategory(*patch.Category)
	}
	if patch.Brand != nil {
		updates["brand"] = *patch.Brand
	}
	if patch.ServingUnit != nil {
		updates["serving_unit"] = *patch.ServingUnit
	}
	if patch.ServingSize != nil {
		updates["serving_size"] = *patch.ServingSize
	}
	if patch.CaloriesPer100g != nil {
		updates["calories_per_100g"] = *patch.CaloriesPer100g
	}
	if patch.ProteinPer100g != nil {
		updates["protein_per_100g"] = *patch.ProteinPer100g
	}
	if patch.CarbsPer100g != nil {
		updates["carbs_per_100g"] = *patch.CarbsPer100g
	}
	if patch.FatPer100g != nil {
		updates["fat_per_100g"] = *patch.FatPer100g
	}
	if patch.IsPublished != nil {
		updates["is_published"] = *patch.IsPublished
	}

	food, err := repository.NewFoodRepository(s.db).Update(ctx, strings.TrimSpace(id), updates)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Food updated", "food_id", food.ID, "fields", len(updates))
	return food, nil
}

// DeleteFood removes a catalog entry. Foods still referenced by records
// cannot be deleted.
func (s *FoodService) DeleteFood(ctx context.Context, id string) error {
	if err := repository.NewFoodRepository(s.db).Delete(ctx, strings.TrimSpace(id)); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Food deleted", "food_id", id)
	return nil
}
