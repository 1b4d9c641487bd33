package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/vladimiradmaev/nutrition-tracker/internal/repository"
)

const overviewSampleSize = 5

type TableSummary struct {
	Name   string `json:"name"`
	Count  int64  `json:"count"`
	Sample any    `json:"sample"`
}

// OverviewService reports row counts and the most recently touched rows of
// every table, for operators.
type OverviewService struct {
	db *gorm.DB
}

func NewOverviewService(db *gorm.DB) *OverviewService {
	return &OverviewService{db: db}
}

func (s *OverviewService) Overview(ctx context.Context) ([]TableSummary, error) {
	users := repository.NewUserRepository(s.db)
	foods := repository.NewFoodRepository(s.db)
	records := repository.NewRecordRepository(s.db)
	weekly := repository.NewWeeklyStatsRepository(s.db)

	type source struct {
		name   string
		count  func(context.Context) (int64, error)
		sample func(context.Context) (any, error)
	}
	sources := []source{
		{"users", users.Count, func(ctx context.Context) (any, error) { return users.Latest(ctx, overviewSampleSize) }},
		{"foods", foods.Count, func(ctx context.Context) (any, error) { return foods.Latest(ctx, overviewSampleSize) }},
		{"nutrition_records", records.Count, func(ctx context.Context) (any, error) { return records.Latest(ctx, overviewSampleSize) }},
		{"weekly_stats", weekly.Count, func(ctx context.Context) (any, error) { return weekly.Latest(ctx, overviewSampleSize) }},
	}

	out := make([]TableSummary, 0, len(sources))
	for _, src := range sources {
		n, err := src.count(ctx)
		if err != nil {
			return nil, err
		}
		sample, err := src.sample(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, TableSummary{Name: src.name, Count: n, Sample: sample})
	}
	return out, nil
}
