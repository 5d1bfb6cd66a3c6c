// Package datastore manages the SQLite database backing the resource cache,
// the application data cache, and the care log.
package datastore

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/equitrack/equitrack/internal/datastore/entities"
)

// Config holds datastore configuration.
type Config struct {
	// DataDir is the directory holding the SQLite database file.
	DataDir string
}

// Manager owns the database connection lifecycle.
type Manager struct {
	db   *gorm.DB
	path string
}

// NewSQLiteManager opens (creating if needed) the SQLite database under
// cfg.DataDir. Call Initialize before using the connection.
func NewSQLiteManager(cfg Config) (*Manager, error) {
	if cfg.DataDir == "" {
		return nil, fmt.Errorf("datastore: data dir must not be empty")
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("datastore: failed to create data dir: %w", err)
	}

	path := filepath.Join(cfg.DataDir, "equitrack.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("datastore: failed to open %s: %w", path, err)
	}

	return &Manager{db: db, path: path}, nil
}

// Initialize runs schema migrations for all entities.
func (m *Manager) Initialize() error {
	err := m.db.AutoMigrate(
		&entities.CacheStore{},
		&entities.CachedEntry{},
		&entities.AppDataEntry{},
		&entities.CareEvent{},
		&entities.HorseProfile{},
	)
	if err != nil {
		return fmt.Errorf("datastore: migration failed: %w", err)
	}
	return nil
}

// DB returns the underlying gorm connection.
func (m *Manager) DB() *gorm.DB {
	return m.db
}

// Path returns the database file path.
func (m *Manager) Path() string {
	return m.path
}

// Close closes the underlying connection.
func (m *Manager) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
