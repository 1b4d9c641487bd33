package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladimiradmaev/nutrition-tracker/internal/database/dbtest"
	"github.com/vladimiradmaev/nutrition-tracker/internal/logger"
	"github.com/vladimiradmaev/nutrition-tracker/internal/services"
	"github.com/vladimiradmaev/nutrition-tracker/internal/timeutil"
)

func TestRunSyncFoods(t *testing.T) {
	db := dbtest.New(t, nil)
	svc := services.NewCatalogSyncService(db, logger.Discard())

	path := filepath.Join(t.TempDir(), "foods.csv")
	csv := "id,name,category,calories,protein,carbs,fat\n" +
		"f1,Rice,澱粉,130,2.5,28,0.3\n" +
		"f2,Broccoli,蔬菜,34,2.8,7,0.4\n" +
		"f3,,Protein,1,1,1,1\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o600))

	var out bytes.Buffer
	require.NoError(t, runSyncFoods(context.Background(), svc, path, &out))
	assert.Contains(t, out.String(), "3 rows, 2 parsed, 1 skipped, 2 created, 0 updated")

	out.Reset()
	require.NoError(t, runSyncFoods(context.Background(), svc, path, &out))
	assert.Contains(t, out.String(), "0 created, 2 updated")

	err := runSyncFoods(context.Background(), svc, filepath.Join(t.TempDir(), "missing.csv"), &out)
	assert.ErrorContains(t, err, "failed to open food CSV")
}

func TestRunRecalculate(t *testing.T) {
	now := time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC)
	clock := timeutil.MustManager("Asia/Taipei")
	clock.SetNowFunc(func() time.Time { return now })

	log := logger.Discard()
	db := dbtest.New(t, clock.Now)
	users := services.NewUserService(db, log)
	weekly := services.NewWeeklyStatsService(db, clock, nil, log)
	records := services.NewRecordService(db, clock, users, weekly, time.Minute, log)

	ctx := context.Background()
	_, err := records.CreateManual(ctx, "u1", services.CreateManualInput{Category: "Other", Calories: 500, Protein: 20})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, runRecalculate(ctx, weekly, "u1", &out))

	var result services.RecalculateResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.EqualValues(t, 1, result.Deleted)
	assert.Equal(t, 1, result.Recalculated)
	assert.Zero(t, result.Errors)
}
