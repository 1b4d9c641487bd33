package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/vladimiradmaev/nutrition-tracker/internal/database/migrations"
	"github.com/vladimiradmaev/nutrition-tracker/internal/domain"
)

// Options tune the connection pool and the hooks gorm uses.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	// NowFunc stamps CreatedAt/UpdatedAt. It should be the time manager's
	// clock so tests control every timestamp from one place.
	NowFunc func() time.Time
	Logger  *slog.Logger
}

// Models lists every table managed by AutoMigrate.
func Models() []any {
	return []any{&domain.User{}, &domain.Food{}, &domain.NutritionRecord{}, &domain.WeeklyStats{}}
}

// Open connects to Postgres or, for sqlite:/file: DSNs, to SQLite, then
// applies the schema.
func Open(dsn string, opts Options) (*gorm.DB, error) {
	if path, ok := sqlitePath(dsn); ok {
		return NewSQLiteDB(path, opts)
	}
	return NewPostgresDB(dsn, opts)
}

func NewPostgresDB(dsn string, opts Options) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), gormConfig(opts))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := configurePool(db, opts); err != nil {
		return nil, err
	}
	if err := Migrate(db, opts.Logger); err != nil {
		return nil, err
	}

	optsLogger(opts).Info("Database connection established and migrations completed", "dialect", "postgres")
	return db, nil
}

// NewSQLiteDB opens a file-backed SQLite database with foreign keys on.
// SQLite serializes writers, so the pool is pinned to one connection.
func NewSQLiteDB(path string, opts Options) (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig(opts))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	opts.MaxOpenConns, opts.MaxIdleConns = 1, 1
	if err := configurePool(db, opts); err != nil {
		return nil, err
	}
	if err := Migrate(db, opts.Logger); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates tables for the models, then applies the embedded SQL
// migrations on top.
func Migrate(db *gorm.DB, log *slog.Logger) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	m := migrations.New(log)
	if err := m.LoadEmbedded(); err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	if err := m.Run(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Ping checks the underlying connection.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func gormConfig(opts Options) *gorm.Config {
	cfg := &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(
			slog.NewLogLogger(optsLogger(opts).Handler(), slog.LevelWarn),
			gormlogger.Config{
				SlowThreshold:             500 * time.Millisecond,
				LogLevel:                  gormlogger.Warn,
				IgnoreRecordNotFoundError: true,
			},
		),
	}
	if opts.NowFunc != nil {
		now := opts.NowFunc
		cfg.NowFunc = func() time.Time { return now().UTC() }
	} else {
		cfg.NowFunc = func() time.Time { return time.Now().UTC() }
	}
	return cfg
}

func configurePool(db *gorm.DB, opts Options) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to access connection pool: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
	return nil
}

func optsLogger(opts Options) *slog.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return slog.Default()
}

func sqlitePath(dsn string) (string, bool) {
	for _, prefix := range []string{"sqlite://", "sqlite:", "file:"} {
		if strings.HasPrefix(dsn, prefix) {
			return strings.TrimPrefix(dsn, prefix), true
		}
	}
	return "", false
}
