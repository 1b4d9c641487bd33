package migrations

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"
)

//go:embed sql/*.sql
var sqlFiles embed.FS

// Migration represents a database migration
type Migration struct {
	ID string
	Up func(*gorm.DB) error
}

// MigrationRecord represents a record of executed migrations
type MigrationRecord struct {
	ID        string    `gorm:"primaryKey;size:255"`
	AppliedAt time.Time `gorm:"not null"`
}

func (MigrationRecord) TableName() string { return "schema_migrations" }

// Migrator applies registered migrations in ID order, once each.
type Migrator struct {
	migrations map[string]Migration
	logger     *slog.Logger
}

func New(logger *slog.Logger) *Migrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Migrator{migrations: make(map[string]Migration), logger: logger}
}

// Register adds a new migration to the registry
func (m *Migrator) Register(id string, up func(*gorm.DB) error) {
	m.migrations[id] = Migration{ID: id, Up: up}
}

// LoadSQL registers every *.sql file under dir in fsys, keyed by file name.
func (m *Migrator) LoadSQL(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		content, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", entry.Name(), err)
		}
		statement := string(content)
		m.Register(strings.TrimSuffix(entry.Name(), ".sql"), func(tx *gorm.DB) error {
			return tx.Exec(statement).Error
		})
	}
	return nil
}

// LoadEmbedded registers the SQL migrations shipped with the binary.
func (m *Migrator) LoadEmbedded() error {
	return m.LoadSQL(sqlFiles, "sql")
}

// Pending returns the IDs not yet recorded as applied, in order.
func (m *Migrator) Pending(db *gorm.DB) ([]string, error) {
	if err := db.AutoMigrate(&MigrationRecord{}); err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}

	var executed []MigrationRecord
	if err := db.Find(&executed).Error; err != nil {
		return nil, fmt.Errorf("failed to get executed migrations: %w", err)
	}
	done := make(map[string]bool, len(executed))
	for _, r := range executed {
		done[r.ID] = true
	}

	var ids []string
	for id := range m.migrations {
		if !done[id] {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Run executes all pending migrations, each in its own transaction
// together with its bookkeeping row.
func (m *Migrator) Run(db *gorm.DB) error {
	ids, err := m.Pending(db)
	if err != nil {
		return err
	}

	for _, id := range ids {
		migration := m.migrations[id]
		m.logger.Info("Running migration", "id", id)
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := migration.Up(tx); err != nil {
				return err
			}
			return tx.Create(&MigrationRecord{ID: id, AppliedAt: time.Now().UTC()}).Error
		})
		if err != nil {
			return fmt.Errorf("failed to run migration %s: %w", id, err)
		}
	}
	return nil
}
