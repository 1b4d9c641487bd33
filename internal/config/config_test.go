package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladimiradmaev/nutrition-tracker/internal/logger"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/nutrition")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Asia/Taipei", cfg.ReferenceTimezone)
	assert.Equal(t, 5*time.Minute, cfg.FutureAllowance)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "X-User-ID", cfg.HTTP.UserIDHeader)
	assert.Equal(t, 10, cfg.DB.MaxOpenConns)
	assert.Equal(t, 5, cfg.DB.MaxIdleConns)
	assert.Equal(t, 30*time.Minute, cfg.DB.ConnMaxLifetime)
	assert.Equal(t, "data/food_data.csv", cfg.FoodCSVPath)
	assert.Equal(t, "Asia/Taipei", cfg.Location().String())
	assert.Equal(t, logger.LevelInfo, cfg.LoggerSettings().Level)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/nutrition")
	t.Setenv("REFERENCE_TIMEZONE", "Europe/Berlin")
	t.Setenv("FUTURE_ALLOWANCE", "90s")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SYNC_TOKEN", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 90*time.Second, cfg.FutureAllowance)
	assert.Equal(t, logger.LevelDebug, cfg.LoggerSettings().Level)
	assert.Equal(t, "text", cfg.LoggerSettings().Format)
	assert.True(t, cfg.EnvPresence()["SYNC_TOKEN"])
	assert.False(t, cfg.EnvPresence()["GEMINI_API_KEY"])
}

func TestValidateAggregatesProblems(t *testing.T) {
	cfg := Config{
		ReferenceTimezone: "Mars/Olympus_Mons",
		DB:                DBConfig{MaxOpenConns: 0},
		HTTP:              HTTPConfig{UserIDHeader: "X-User-ID"},
		Logger:            LoggerConfig{Format: "xml"},
	}

	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "DATABASE_URL is required")
	assert.Contains(t, msg, "REFERENCE_TIMEZONE")
	assert.Contains(t, msg, "DB_MAX_OPEN_CONNS")
	assert.Contains(t, msg, "LOG_FORMAT")
}

func TestLoadFailsWithoutDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	_, err := Load()
	require.Error(t, err)
}

func TestLoadWithAppliesOverrideBeforeValidation(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	cfg, err := LoadWith(func(c *Config) {
		c.DatabaseURL = "sqlite:/tmp/nutrition.db"
		c.ReferenceTimezone = "UTC"
	})
	require.NoError(t, err)
	assert.Equal(t, "sqlite:/tmp/nutrition.db", cfg.DatabaseURL)
	assert.Equal(t, "UTC", cfg.Location().String())
}
