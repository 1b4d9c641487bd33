package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"gorm.io/gorm"

	"github.com/vladimiradmaev/nutrition-tracker/internal/config"
	"github.com/vladimiradmaev/nutrition-tracker/internal/database"
	"github.com/vladimiradmaev/nutrition-tracker/internal/logger"
	"github.com/vladimiradmaev/nutrition-tracker/internal/timeutil"
)

// env is what every subcommand works against.
type env struct {
	cfg   *config.Config
	db    *gorm.DB
	clock *timeutil.Manager
	log   *slog.Logger
}

// openEnv loads configuration, letting --dsn and --tz override it, and
// connects to the database.
func openEnv() (*env, error) {
	cfg, err := config.LoadWith(func(c *config.Config) {
		if dsnFlag != "" {
			c.DatabaseURL = dsnFlag
		}
		if tzFlag != "" {
			c.ReferenceTimezone = tzFlag
		}
	})
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.LoggerSettings())
	if err != nil {
		return nil, err
	}

	clock, err := timeutil.NewManager(cfg.ReferenceTimezone)
	if err != nil {
		return nil, err
	}

	db, err := database.Open(cfg.DatabaseURL, database.Options{
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
		NowFunc:         clock.Now,
		Logger:          log,
	})
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, db: db, clock: clock, log: log}, nil
}

func (e *env) close() {
	if err := database.Close(e.db); err != nil {
		e.log.Warn("Failed to close database", "error", err)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
