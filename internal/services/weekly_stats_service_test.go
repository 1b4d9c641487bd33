package services

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/vladimiradmaev/nutrition-tracker/internal/domain"
	apperrors "github.com/vladimiradmaev/nutrition-tracker/internal/errors"
	"github.com/vladimiradmaev/nutrition-tracker/internal/repository"
)

type weekExpectation struct {
	Start            string  `yaml:"start"`
	TotalCalories    float64 `yaml:"totalCalories"`
	TotalProtein     float64 `yaml:"totalProtein"`
	RecordsCount     int     `yaml:"recordsCount"`
	ActualDays       int     `yaml:"actualDays"`
	AvgDailyCalories float64 `yaml:"avgDailyCalories"`
}

type scenarioStep struct {
	Op       string  `yaml:"op"`
	Ref      string  `yaml:"ref"`
	FoodID   string  `yaml:"foodId"`
	Amount   float64 `yaml:"amount"`
	Category string  `yaml:"category"`
	Calories float64 `yaml:"calories"`
	Protein  float64 `yaml:"protein"`
	At       string  `yaml:"at"`
	Record   *struct {
		Calories float64 `yaml:"calories"`
		Protein  float64 `yaml:"protein"`
	} `yaml:"record"`
	Week weekExpectation `yaml:"week"`
}

type weeklyFixture struct {
	Zone  string `yaml:"zone"`
	Now   string `yaml:"now"`
	Foods []struct {
		ID              string  `yaml:"id"`
		Name            string  `yaml:"name"`
		Category        string  `yaml:"category"`
		CaloriesPer100g float64 `yaml:"caloriesPer100g"`
		ProteinPer100g  float64 `yaml:"proteinPer100g"`
	} `yaml:"foods"`
	Scenarios []struct {
		Name  string         `yaml:"name"`
		User  string         `yaml:"user"`
		Steps []scenarioStep `yaml:"steps"`
	} `yaml:"scenarios"`
}

func loadWeeklyFixture(t *testing.T) weeklyFixture {
	t.Helper()
	raw, err := os.ReadFile("testdata/weekly_scenarios.yaml")
	require.NoError(t, err)
	var fx weeklyFixture
	require.NoError(t, yaml.Unmarshal(raw, &fx))
	require.Equal(t, "Asia/Taipei", fx.Zone)
	return fx
}

func TestWeeklyScenarios(t *testing.T) {
	fx := loadWeeklyFixture(t)

	for _, sc := range fx.Scenarios {
		t.Run(sc.Name, func(t *testing.T) {
			h := newHarness(t, mustTime(t, fx.Now))
			ctx := context.Background()
			for _, f := range fx.Foods {
				h.seedFood(t, domain.Food{
					ID: f.ID, Name: f.Name, Category: domain.NormalizeCategory(f.Category),
					CaloriesPer100g: f.CaloriesPer100g, ProteinPer100g: f.ProteinPer100g,
				})
			}

			refs := map[string]string{}
			for i, step := range sc.Steps {
				switch step.Op {
				case "food":
					at := mustTime(t, step.At)
					rec, err := h.records.CreateFromFood(ctx, sc.User, CreateFromFoodInput{FoodID: step.FoodID, Amount: step.Amount, RecordedAt: &at})
					require.NoError(t, err, "step %d", i)
					assert.Equal(t, domain.SourceFood, rec.SourceType)
					require.NotNil(t, rec.FoodID)
					assert.Equal(t, step.FoodID, *rec.FoodID)
					require.NotNil(t, rec.Amount)
					assert.InDelta(t, step.Amount, *rec.Amount, 1e-9)
					if step.Record != nil {
						assert.InDelta(t, step.Record.Calories, rec.Calories, 1e-9)
						assert.InDelta(t, step.Record.Protein, rec.Protein, 1e-9)
					}
					refs[step.Ref] = rec.ID
				case "manual":
					at := mustTime(t, step.At)
					rec, err := h.records.CreateManual(ctx, sc.User, CreateManualInput{
						Category: step.Category, Calories: step.Calories, Protein: step.Protein, RecordedAt: &at,
					})
					require.NoError(t, err, "step %d", i)
					assert.Equal(t, domain.SourceManual, rec.SourceType)
					assert.Nil(t, rec.FoodID)
					refs[step.Ref] = rec.ID
				case "delete":
					require.NoError(t, h.records.Delete(ctx, sc.User, refs[step.Ref]), "step %d", i)
				default:
					t.Fatalf("unknown op %q", step.Op)
				}

				row := h.weekRow(t, sc.User, mustTime(t, step.Week.Start))
				assert.InDelta(t, step.Week.TotalCalories, row.TotalCalories, 1e-9, "step %d", i)
				assert.InDelta(t, step.Week.TotalProtein, row.TotalProtein, 1e-9, "step %d", i)
				assert.Equal(t, step.Week.RecordsCount, row.RecordsCount, "step %d", i)
				assert.Equal(t, step.Week.ActualDays, row.ActualDays, "step %d", i)
				assert.InDelta(t, step.Week.AvgDailyCalories, row.AvgDailyCalories, 1e-9, "step %d", i)
			}
		})
	}
}

func TestGetOrCreateMatchesPureAggregation(t *testing.T) {
	now := mustTime(t, "2024-01-17T00:00:00Z")
	h := newHarness(t, now)
	ctx := context.Background()

	for _, at := range []string{"2024-01-15T01:00:00Z", "2024-01-15T09:00:00Z", "2024-01-16T02:00:00Z"} {
		ts := mustTime(t, at)
		_, err := h.records.CreateManual(ctx, "u1", CreateManualInput{Category: "Protein", Calories: 150, Protein: 10, RecordedAt: &ts})
		require.NoError(t, err)
	}

	// Tamper with the stored row; GetOrCreate must repair it from the records.
	weekStart := h.clock.WeekStart(now)
	require.NoError(t, h.db.Model(&domain.WeeklyStats{}).
		Where("user_id = ?", "u1").
		Update("total_calories", 1).Error)

	stats, err := h.weekly.GetOrCreate(ctx, "u1", now)
	require.NoError(t, err)

	records, err := repository.NewRecordRepository(h.db).ListBetween(ctx, "u1", weekStart, h.clock.WeekEnd(weekStart))
	require.NoError(t, err)
	want := aggregateWeek(h.clock, "u1", weekStart, records)

	assert.InDelta(t, want.TotalCalories, stats.TotalCalories, 1e-9)
	assert.Equal(t, 450.0, stats.TotalCalories)
	assert.Equal(t, want.RecordsCount, stats.RecordsCount)
	assert.Equal(t, 2, stats.ActualDays)
	assert.InDelta(t, 225, stats.AvgDailyCalories, 1e-9)
	assert.InDelta(t, 15, stats.AvgProtein, 1e-9)
}

func TestWeeklyUpsertKeepsFirstID(t *testing.T) {
	now := mustTime(t, "2024-01-17T00:00:00Z")
	h := newHarness(t, now)
	ctx := context.Background()

	_, err := h.records.CreateManual(ctx, "u1", CreateManualInput{Category: "Other", Calories: 100})
	require.NoError(t, err)
	first := h.weekRow(t, "u1", h.clock.WeekStart(now))

	_, err = h.records.CreateManual(ctx, "u1", CreateManualInput{Category: "Other", Calories: 50})
	require.NoError(t, err)
	second := h.weekRow(t, "u1", h.clock.WeekStart(now))

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 150.0, second.TotalCalories)

	var n int64
	require.NoError(t, h.db.Model(&domain.WeeklyStats{}).Where("user_id = ?", "u1").Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestHistoryAndDailySeries(t *testing.T) {
	now := mustTime(t, "2024-01-17T00:00:00Z")
	h := newHarness(t, now)
	ctx := context.Background()

	for _, at := range []string{"2023-12-01T04:00:00Z", "2024-01-02T04:00:00Z", "2024-01-10T04:00:00Z", "2024-01-15T04:00:00Z", "2024-01-16T04:00:00Z"} {
		ts := mustTime(t, at)
		_, err := h.records.CreateManual(ctx, "u1", CreateManualInput{Category: "Carbohydrate", Calories: 200, Protein: 4, RecordedAt: &ts})
		require.NoError(t, err)
	}

	history, err := h.weekly.History(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, history, 3, "December week is outside the default window")
	assert.True(t, history[0].WeekStartDate.Before(history[1].WeekStartDate))
	assert.Equal(t, mustTime(t, "2024-01-14T16:00:00Z"), history[2].WeekStartDate.UTC())
	assert.Equal(t, 400.0, history[2].TotalCalories)

	series, err := h.weekly.DailySeries(ctx, "u1", now)
	require.NoError(t, err)
	require.Len(t, series, 7)
	assert.Equal(t, "2024-01-15", series[0].Date)
	assert.Equal(t, "Mon", series[0].Label)
	assert.Equal(t, 200.0, series[0].Calories)
	assert.Equal(t, 200.0, series[1].Calories)
	assert.Equal(t, 0.0, series[2].Calories)
	assert.Equal(t, "2024-01-21", series[6].Date)
}

func TestRecalculateAll(t *testing.T) {
	now := mustTime(t, "2024-01-17T00:00:00Z")
	h := newHarness(t, now)
	ctx := context.Background()

	for _, at := range []string{"2023-12-27T04:00:00Z", "2024-01-15T04:00:00Z", "2024-01-16T04:00:00Z"} {
		ts := mustTime(t, at)
		_, err := h.records.CreateManual(ctx, "u1", CreateManualInput{Category: "Protein", Calories: 300, Protein: 25, RecordedAt: &ts})
		require.NoError(t, err)
	}
	// A stale row for a week with no records must disappear.
	stale := aggregateWeek(h.clock, "u1", h.clock.WeekStart(mustTime(t, "2024-01-03T04:00:00Z")), nil)
	_, err := repository.NewWeeklyStatsRepository(h.db).Upsert(ctx, &stale)
	require.NoError(t, err)

	result, err := h.weekly.RecalculateAll(ctx, "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 3, result.Deleted)
	assert.Equal(t, 2, result.Recalculated)
	assert.Zero(t, result.Errors)

	rows, err := repository.NewWeeklyStatsRepository(h.db).ListSince(ctx, "u1", time.Time{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 300.0, rows[0].TotalCalories)
	assert.Equal(t, 600.0, rows[1].TotalCalories)
	assert.Equal(t, 2, rows[1].ActualDays)
}

func TestRecalculateAllWithoutRecords(t *testing.T) {
	h := newHarness(t, mustTime(t, "2024-01-17T00:00:00Z"))

	result, err := h.weekly.RecalculateAll(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, RecalculateResult{}, *result)
}

func TestRecalculateAllConflictsWhileRunning(t *testing.T) {
	h := newHarness(t, mustTime(t, "2024-01-17T00:00:00Z"))
	ctx := context.Background()

	release, ok, err := h.locker.TryLock(ctx, "weekly-recalc:u1")
	require.NoError(t, err)
	require.True(t, ok)

	_, err = h.weekly.RecalculateAll(ctx, "u1")
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	require.NoError(t, release(ctx))
	_, err = h.weekly.RecalculateAll(ctx, "u1")
	assert.NoError(t, err)
}
