package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/vladimiradmaev/nutrition-tracker/internal/bot"
	"github.com/vladimiradmaev/nutrition-tracker/internal/bot/handlers"
	"github.com/vladimiradmaev/nutrition-tracker/internal/bot/state"
	"github.com/vladimiradmaev/nutrition-tracker/internal/config"
	"github.com/vladimiradmaev/nutrition-tracker/internal/database"
	"github.com/vladimiradmaev/nutrition-tracker/internal/httpapi"
	"github.com/vladimiradmaev/nutrition-tracker/internal/locks"
	"github.com/vladimiradmaev/nutrition-tracker/internal/logger"
	"github.com/vladimiradmaev/nutrition-tracker/internal/services"
	"github.com/vladimiradmaev/nutrition-tracker/internal/timeutil"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn(".env file not found, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LoggerSettings())
	if err != nil {
		slog.Error("Failed to create logger", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("Nutrition tracker stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Starting nutrition tracker", "tz", cfg.ReferenceTimezone)

	clock, err := timeutil.NewManager(cfg.ReferenceTimezone)
	if err != nil {
		return err
	}

	db, err := database.Open(cfg.DatabaseURL, database.Options{
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
		NowFunc:         clock.Now,
		Logger:          log,
	})
	if err != nil {
		return err
	}
	defer database.Close(db)

	var locker locks.Locker
	var botStates state.StateManager = state.NewManager()
	if cfg.Redis.Addr != "" {
		redisLocker, err := locks.NewRedisLocker(ctx, cfg.Redis.Addr, cfg.Redis.Password)
		if err != nil {
			return err
		}
		defer redisLocker.Close()
		locker = redisLocker
		botStates = state.NewRedisManager(redisLocker.Client())
		log.Info("Using Redis for locks and bot state", "addr", cfg.Redis.Addr)
	}

	users := services.NewUserService(db, log)
	foods := services.NewFoodService(db, log)
	weekly := services.NewWeeklyStatsService(db, clock, locker, log)
	records := services.NewRecordService(db, clock, users, weekly, cfg.FutureAllowance, log)
	catalog := services.NewCatalogSyncService(db, log)
	dashboard := services.NewDashboardService(clock, users, records, weekly, log)

	estimator, err := services.NewGeminiEstimator(ctx, cfg.Gemini.APIKey, log)
	if err != nil {
		return err
	}
	defer estimator.Close()
	log.Info("Services initialized successfully")

	router := httpapi.NewRouter(httpapi.Options{
		Users:        users,
		Foods:        foods,
		Records:      records,
		Weekly:       weekly,
		Sync:         catalog,
		Dashboard:    dashboard,
		Overview:     services.NewOverviewService(db),
		Estimator:    estimator,
		Clock:        clock,
		SyncToken:    cfg.SyncToken,
		UserIDHeader: cfg.HTTP.UserIDHeader,
		EnvPresence:  cfg.EnvPresence(),
		Logger:       log,
	})

	var wg sync.WaitGroup
	if cfg.Telegram.Token != "" {
		telegramBot, err := bot.New(cfg.Telegram.Token, handlers.Dependencies{
			Users:     users,
			Records:   records,
			Dashboard: dashboard,
			Estimator: estimator,
			Clock:     clock,
		}, botStates, log.With("component", "bot"))
		if err != nil {
			return err
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("Bot stopped with error", "error", err)
			}
		}()
	}

	err = httpapi.Serve(ctx, cfg.HTTP.Addr, router, log)
	stop()
	wg.Wait()
	return err
}
