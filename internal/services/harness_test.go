package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vladimiradmaev/nutrition-tracker/internal/database/dbtest"
	"github.com/vladimiradmaev/nutrition-tracker/internal/domain"
	"github.com/vladimiradmaev/nutrition-tracker/internal/locks"
	"github.com/vladimiradmaev/nutrition-tracker/internal/logger"
	"github.com/vladimiradmaev/nutrition-tracker/internal/repository"
	"github.com/vladimiradmaev/nutrition-tracker/internal/timeutil"
)

const testFutureAllowance = 5 * time.Minute

type harness struct {
	db        *gorm.DB
	clock     *timeutil.Manager
	locker    *locks.MemoryLocker
	users     *UserService
	foods     *FoodService
	records   *RecordService
	weekly    *WeeklyStatsService
	sync      *CatalogSyncService
	dashboard *DashboardService
}

func mustTime(t testing.TB, s string) time.Time {
	t.Helper()
	v, err := time.Parse(time.RFC3339Nano, s)
	require.NoError(t, err)
	return v
}

// newHarness wires every service over a fresh SQLite database with the
// clock frozen at now.
func newHarness(t testing.TB, now time.Time) *harness {
	t.Helper()

	clock := timeutil.MustManager("Asia/Taipei")
	clock.SetNowFunc(func() time.Time { return now })

	log := logger.Discard()
	db := dbtest.New(t, clock.Now)
	h := &harness{db: db, clock: clock, locker: locks.NewMemoryLocker()}
	h.users = NewUserService(db, log)
	h.foods = NewFoodService(db, log)
	h.weekly = NewWeeklyStatsService(db, clock, h.locker, log)
	h.records = NewRecordService(db, clock, h.users, h.weekly, testFutureAllowance, log)
	h.sync = NewCatalogSyncService(db, log)
	h.dashboard = NewDashboardService(clock, h.users, h.records, h.weekly, log)
	return h
}

func (h *harness) seedFood(t testing.TB, food domain.Food) {
	t.Helper()
	food.IsPublished = true
	require.NoError(t, repository.NewFoodRepository(h.db).Create(context.Background(), &food))
}

func (h *harness) weekRow(t testing.TB, userID string, weekStart time.Time) *domain.WeeklyStats {
	t.Helper()
	row, err := repository.NewWeeklyStatsRepository(h.db).Get(context.Background(), userID, weekStart)
	require.NoError(t, err)
	return row
}

func ptr[T any](v T) *T { return &v }
