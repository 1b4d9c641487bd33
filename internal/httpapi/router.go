// Package httpapi exposes the nutrition services over HTTP with gin.
package httpapi

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	apperrors "github.com/vladimiradmaev/nutrition-tracker/internal/errors"
	"github.com/vladimiradmaev/nutrition-tracker/internal/services"
	"github.com/vladimiradmaev/nutrition-tracker/internal/timeutil"
)

type Options struct {
	Users     *services.UserService
	Foods     *services.FoodService
	Records   *services.RecordService
	Weekly    *services.WeeklyStatsService
	Sync      *services.CatalogSyncService
	Dashboard *services.DashboardService
	Overview  *services.OverviewService
	Estimator services.Estimator
	Clock     *timeutil.Manager

	SyncToken    string
	UserIDHeader string
	// MaxSyncBody caps POST /sync payloads in bytes; zero means 16 MiB.
	MaxSyncBody  int64
	EnvPresence  map[string]bool
	Logger       *slog.Logger
}

type Handler struct {
	users     *services.UserService
	foods     *services.FoodService
	records   *services.RecordService
	weekly    *services.WeeklyStatsService
	sync      *services.CatalogSyncService
	dashboard *services.DashboardService
	overview  *services.OverviewService
	estimator services.Estimator
	clock     *timeutil.Manager

	syncToken    string
	userIDHeader string
	maxSyncBody  int64
	envPresence  map[string]bool
	logger       *slog.Logger
	errs         *apperrors.Handler
}

func NewHandler(opts Options) *Handler {
	header := opts.UserIDHeader
	if header == "" {
		header = "X-User-ID"
	}
	maxBody := opts.MaxSyncBody
	if maxBody <= 0 {
		maxBody = defaultMaxSyncBody
	}
	return &Handler{
		users:        opts.Users,
		foods:        opts.Foods,
		records:      opts.Records,
		weekly:       opts.Weekly,
		sync:         opts.Sync,
		dashboard:    opts.Dashboard,
		overview:     opts.Overview,
		estimator:    opts.Estimator,
		clock:        opts.Clock,
		syncToken:    opts.SyncToken,
		userIDHeader: header,
		maxSyncBody:  maxBody,
		envPresence:  opts.EnvPresence,
		logger:       opts.Logger,
		errs:         apperrors.NewHandler(opts.Logger),
	}
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(opts Options) *gin.Engine {
	h := NewHandler(opts)

	r := gin.New()
	r.Use(RequestIDMiddleware(), RecoveryMiddleware(opts.Logger), AccessLogMiddleware(opts.Logger))

	r.GET("/health", h.Health)
	r.GET("/sync", h.SyncPing)
	r.POST("/sync", h.SyncRows)

	api := r.Group("/api")

	user := api.Group("", h.userIdentity())
	{
		user.GET("/foods", h.ListFoods)
		user.GET("/foods/:id", h.GetFood)

		user.POST("/records/food", h.CreateFoodRecord)
		user.POST("/records/manual", h.CreateManualRecord)
		user.POST("/records/estimate", h.EstimateRecord)
		user.GET("/records", h.RecordsByDate)
		user.GET("/records/range", h.RecordsByRange)
		user.GET("/records/recent", h.RecentRecords)
		user.PATCH("/records/:id", h.UpdateRecord)
		user.DELETE("/records/:id", h.DeleteRecord)

		user.GET("/goals", h.GetGoals)
		user.PUT("/goals", h.UpdateGoals)

		user.GET("/weekly", h.WeeklyStats)
		user.GET("/weekly/history", h.WeeklyHistory)
		user.GET("/weekly/series", h.WeeklySeries)

		user.GET("/dashboard/daily", h.DailyDashboard)
		user.GET("/dashboard/weekly", h.WeeklyDashboard)
		user.GET("/dashboard/history", h.HistoryDashboard)
	}

	admin := api.Group("/admin", h.adminAuth())
	{
		admin.POST("/foods", h.CreateFood)
		admin.PATCH("/foods/:id", h.UpdateFood)
		admin.DELETE("/foods/:id", h.DeleteFood)
		admin.POST("/users/:id/recalculate-weekly", h.RecalculateWeekly)
		admin.GET("/overview", h.Overview)
	}

	return r
}
