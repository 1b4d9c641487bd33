package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladimiradmaev/nutrition-tracker/internal/domain"
	apperrors "github.com/vladimiradmaev/nutrition-tracker/internal/errors"
	"github.com/vladimiradmaev/nutrition-tracker/internal/repository"
)

const foodsCSV = "\xEF\xBB\xBFid,name,category,calories,protein,carbs,fat\r\n" +
	"f1,Rice,Carbohydrate,130,2.5,28,0.3\r\n" +
	"000000,Placeholder,Other,0,0,0,0\r\n" +
	"f2,Chicken,Protein,abc,31,0,3.6\r\n" +
	"f3,Broccoli,蔬菜,34,2.8,7,0.4\r\n" +
	"f4,Short,Other,1,2\r\n" +
	"f5,,Other,1,2,3,4\r\n" +
	"f6,Lard,Other,900,0,0,-1\r\n" +
	"f1,\"Rice, cooked\",Carbohydrate,130,2.7,28,0.3\r\n"

func TestSyncCSV(t *testing.T) {
	h := newHarness(t, mustTime(t, "2024-01-17T00:00:00Z"))
	ctx := context.Background()

	report, err := h.sync.SyncCSV(ctx, strings.NewReader(foodsCSV))
	require.NoError(t, err)
	assert.Equal(t, CSVReport{Rows: 8, Parsed: 3, Skipped: 5, Created: 2, Updated: 0}, *report)

	foods := repository.NewFoodRepository(h.db)
	rice, err := foods.Get(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, "Rice, cooked", rice.Name)
	assert.Equal(t, 2.7, rice.ProteinPer100g)
	require.NotNil(t, rice.CarbsPer100g)
	assert.Equal(t, 28.0, *rice.CarbsPer100g)
	assert.True(t, rice.IsPublished)

	broccoli, err := foods.Get(ctx, "f3")
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryProduce, broccoli.Category)

	_, err = foods.Get(ctx, "000000")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	again, err := h.sync.SyncCSV(ctx, strings.NewReader(foodsCSV))
	require.NoError(t, err)
	assert.Equal(t, 0, again.Created)
	assert.Equal(t, 2, again.Updated)

	n, err := foods.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestSyncCSVUnixNewlinesAndEmptyInput(t *testing.T) {
	h := newHarness(t, mustTime(t, "2024-01-17T00:00:00Z"))
	ctx := context.Background()

	report, err := h.sync.SyncCSV(ctx, strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, CSVReport{}, *report)

	report, err = h.sync.SyncCSV(ctx, strings.NewReader("id,name,category,calories,protein,carbs,fat\nf9,Egg,Protein,155,13,1.1,11\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Created)
}

func TestSyncCSVBatches(t *testing.T) {
	h := newHarness(t, mustTime(t, "2024-01-17T00:00:00Z"))

	var b strings.Builder
	b.WriteString("id,name,category,calories,protein,carbs,fat\n")
	for i := 0; i < SyncBatchSize*2+7; i++ {
		fmt.Fprintf(&b, "g%03d,Food %d,Other,1,1,1,1\n", i, i)
	}

	report, err := h.sync.SyncCSV(context.Background(), strings.NewReader(b.String()))
	require.NoError(t, err)
	assert.Equal(t, SyncBatchSize*2+7, report.Created)
}

// Posting the same rows twice leaves exactly one row per id.
func TestSyncRowsIdempotent(t *testing.T) {
	h := newHarness(t, mustTime(t, "2024-01-17T00:00:00Z"))
	ctx := context.Background()

	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(`[{"id":"f2","name":"Chicken","category":"Protein","calories":165,"protein":31,"carbs":0,"fat":3.6,"isPublished":true}]`), &rows))

	for i := 0; i < 2; i++ {
		n, err := h.sync.SyncRows(ctx, rows)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	}

	var foods []domain.Food
	require.NoError(t, h.db.Where("id = ?", "f2").Find(&foods).Error)
	require.Len(t, foods, 1)
	assert.Equal(t, 165.0, foods[0].CaloriesPer100g)
	require.NotNil(t, foods[0].FatPer100g)
	assert.Equal(t, 3.6, *foods[0].FatPer100g)
	assert.True(t, foods[0].IsPublished)
}

func TestSyncRowsSkipsInvalidAndDeduplicates(t *testing.T) {
	h := newHarness(t, mustTime(t, "2024-01-17T00:00:00Z"))
	ctx := context.Background()

	n, err := h.sync.SyncRows(ctx, []map[string]any{
		{"id": "a", "name": "First"},
		{"name": "No id"},
		{"id": "b", "name": "Bad", "calories": "lots"},
		{"id": "a", "name": "Second"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	food, err := repository.NewFoodRepository(h.db).Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Second", food.Name)
	assert.False(t, food.IsPublished)

	n, err = h.sync.SyncRows(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMapRowAliases(t *testing.T) {
	tests := []struct {
		name string
		row  map[string]any
		want domain.Food
	}{
		{
			name: "snake case with numeric strings",
			row: map[string]any{
				"food_id": "s1", "food_name": " Tofu ", "category": "protein",
				"calories_per_100g": "76", "protein_per_100g": "8.1", "is_published": "1",
			},
			want: domain.Food{ID: "s1", Name: "Tofu", Category: domain.CategoryProtein, CaloriesPer100g: 76, ProteinPer100g: 8.1, IsPublished: true},
		},
		{
			name: "localized keys",
			row: map[string]any{
				"食品編號": "z1", "名稱": "地瓜", "分類": "澱粉", "熱量": 86.0, "蛋白質": json.Number("1.6"), "發布": true,
			},
			want: domain.Food{ID: "z1", Name: "地瓜", Category: domain.CategoryCarbohydrate, CaloriesPer100g: 86, ProteinPer100g: 1.6, IsPublished: true},
		},
		{
			name: "camel case with unknown category",
			row: map[string]any{
				"foodId": 42.0, "Name": "Mystery", "Category": "Dessert", "caloriesPer100g": 10, "isPublished": "false",
			},
			want: domain.Food{ID: "42", Name: "Mystery", Category: domain.CategoryOther, CaloriesPer100g: 10},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MapRow(tt.row)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMapRowRejects(t *testing.T) {
	for _, row := range []map[string]any{
		{"name": "no id"},
		{"id": "x"},
		{"id": "x", "name": "n", "protein": -1.0},
		{"id": "x", "name": "n", "fat": []any{1}},
	} {
		_, err := MapRow(row)
		assert.ErrorIs(t, err, apperrors.ErrValidation, "%v", row)
	}
}
