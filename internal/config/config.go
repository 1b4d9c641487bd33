package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/vladimiradmaev/nutrition-tracker/internal/logger"
)

type Config struct {
	DatabaseURL       string        `envconfig:"DATABASE_URL"`
	ReferenceTimezone string        `envconfig:"REFERENCE_TIMEZONE" default:"Asia/Taipei"`
	SyncToken         string        `envconfig:"SYNC_TOKEN"`
	FutureAllowance   time.Duration `envconfig:"FUTURE_ALLOWANCE" default:"5m"`
	FoodCSVPath       string        `envconfig:"FOOD_CSV_PATH" default:"data/food_data.csv"`

	HTTP     HTTPConfig
	DB       DBConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Telegram TelegramConfig
	Gemini   GeminiConfig
}

type HTTPConfig struct {
	Addr         string `envconfig:"HTTP_ADDR" default:":8080"`
	UserIDHeader string `envconfig:"USER_ID_HEADER" default:"X-User-ID"`
}

type DBConfig struct {
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"30m"`
}

type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR"`
	Password string `envconfig:"REDIS_PASSWORD"`
}

type LoggerConfig struct {
	Level      string `envconfig:"LOG_LEVEL" default:"info"`
	OutputPath string `envconfig:"LOG_OUTPUT" default:"stdout"`
	Format     string `envconfig:"LOG_FORMAT" default:"json"`
}

type TelegramConfig struct {
	Token string `envconfig:"TELEGRAM_BOT_TOKEN"`
}

type GeminiConfig struct {
	APIKey string `envconfig:"GEMINI_API_KEY"`
}

// Load decodes the process environment into Config and validates it.
// Callers load .env beforehand.
func Load() (*Config, error) {
	return LoadWith(nil)
}

// LoadWith is Load with a hook that may adjust values, such as command line
// flags, before validation.
func LoadWith(override func(*Config)) (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode environment: %w", err)
	}
	if override != nil {
		override(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.DatabaseURL) == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if _, err := time.LoadLocation(c.ReferenceTimezone); err != nil {
		errs = append(errs, fmt.Errorf("REFERENCE_TIMEZONE %q is not a valid IANA zone: %w", c.ReferenceTimezone, err))
	}
	if c.FutureAllowance < 0 {
		errs = append(errs, errors.New("FUTURE_ALLOWANCE must not be negative"))
	}
	if strings.TrimSpace(c.HTTP.UserIDHeader) == "" {
		errs = append(errs, errors.New("USER_ID_HEADER must not be empty"))
	}
	if c.DB.MaxOpenConns < 1 {
		errs = append(errs, errors.New("DB_MAX_OPEN_CONNS must be at least 1"))
	}
	if c.DB.MaxIdleConns < 0 {
		errs = append(errs, errors.New("DB_MAX_IDLE_CONNS must not be negative"))
	}
	switch c.Logger.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.Logger.Format))
	}

	return errors.Join(errs...)
}

// Location returns the validated reference zone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.ReferenceTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LoggerSettings converts the textual logger settings.
func (c *Config) LoggerSettings() logger.Config {
	return logger.Config{
		Level:      logger.ParseLevel(c.Logger.Level),
		OutputPath: c.Logger.OutputPath,
		Format:     c.Logger.Format,
	}
}

// EnvPresence reports whether each required and optional variable is set,
// without exposing values.
func (c *Config) EnvPresence() map[string]bool {
	return map[string]bool{
		"DATABASE_URL":       c.DatabaseURL != "",
		"REFERENCE_TIMEZONE": c.ReferenceTimezone != "",
		"SYNC_TOKEN":         c.SyncToken != "",
		"REDIS_ADDR":         c.Redis.Addr != "",
		"TELEGRAM_BOT_TOKEN": c.Telegram.Token != "",
		"GEMINI_API_KEY":     c.Gemini.APIKey != "",
	}
}
