package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladimiradmaev/nutrition-tracker/internal/domain"
)

func TestDashboardDaily(t *testing.T) {
	h := riceHarness(t)
	ctx := context.Background()

	// Today in Taipei is 2024-01-17; the first record is still yesterday.
	for _, at := range []string{"2024-01-16T15:00:00Z", "2024-01-16T16:30:00Z"} {
		ts := mustTime(t, at)
		_, err := h.records.CreateFromFood(ctx, "u1", CreateFromFoodInput{FoodID: "f1", Amount: 500, RecordedAt: &ts})
		require.NoError(t, err)
	}
	_, err := h.records.CreateManual(ctx, "u1", CreateManualInput{Category: "Protein", Calories: 1200, Protein: 90})
	require.NoError(t, err)

	view, err := h.dashboard.Daily(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-17", view.Date)
	require.Len(t, view.Records, 2)
	assert.InDelta(t, 1850, view.Totals.Calories, 1e-9)
	assert.InDelta(t, 102.5, view.Totals.Protein, 1e-9)

	assert.True(t, view.CalorieProgress.IsOverGoal)
	assert.InDelta(t, 100, view.CalorieProgress.Remaining, 1e-9)
	assert.True(t, view.ProteinProgress.IsOverGoal)

	total := 0
	for _, r := range view.MacroRatios {
		total += r.Value
	}
	assert.Equal(t, 100, total)
}

func TestDashboardWeekly(t *testing.T) {
	h := riceHarness(t)
	ctx := context.Background()

	for _, at := range []string{"2024-01-09T04:00:00Z", "2024-01-15T04:00:00Z", "2024-01-16T04:00:00Z"} {
		ts := mustTime(t, at)
		_, err := h.records.CreateManual(ctx, "u1", CreateManualInput{Category: "Other", Calories: 500, RecordedAt: &ts})
		require.NoError(t, err)
	}

	view, err := h.dashboard.Weekly(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Jan 15 - Jan 21", view.WeekRange)
	assert.Equal(t, 1000.0, view.Stats.TotalCalories)
	require.Len(t, view.ThisWeek, 7)
	require.Len(t, view.LastWeek, 7)
	assert.Equal(t, 500.0, view.LastWeek[1].Calories)

	assert.Equal(t, 500.0, view.Comparison.Difference)
	assert.True(t, view.Comparison.IsIncrease)
	assert.Equal(t, 100, view.Comparison.Percentage)
}

func TestDashboardHistory(t *testing.T) {
	h := riceHarness(t)
	ctx := context.Background()

	for _, at := range []string{"2024-01-15T01:00:00Z", "2024-01-15T09:00:00Z", "2024-01-16T03:00:00Z"} {
		ts := mustTime(t, at)
		_, err := h.records.CreateManual(ctx, "u1", CreateManualInput{Category: "Other", Calories: 100, Protein: 1, RecordedAt: &ts})
		require.NoError(t, err)
	}

	groups, err := h.dashboard.History(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	assert.Equal(t, "2024-01-16", groups[0].Date)
	assert.Equal(t, "Tue, Jan 16", groups[0].Label)
	assert.Len(t, groups[0].Records, 1)

	assert.Equal(t, "2024-01-15", groups[1].Date)
	require.Len(t, groups[1].Records, 2)
	assert.True(t, groups[1].Records[0].RecordedAt.After(groups[1].Records[1].RecordedAt))
	assert.Equal(t, 200.0, groups[1].Totals.Calories)
	assert.Equal(t, domain.CategoryOther, groups[1].Records[0].Category)
}
