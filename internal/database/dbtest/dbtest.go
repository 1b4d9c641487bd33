// Package dbtest opens throwaway SQLite databases with the production
// schema for package tests.
package dbtest

import (
	"path/filepath"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/vladimiradmaev/nutrition-tracker/internal/database"
	"github.com/vladimiradmaev/nutrition-tracker/internal/logger"
)

// New returns a migrated database in t's temp dir. now may be nil.
func New(t testing.TB, now func() time.Time) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "nutrition.db")
	db, err := database.NewSQLiteDB(path, database.Options{NowFunc: now, Logger: logger.Discard()})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}
