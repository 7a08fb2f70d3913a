package datastore

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cropsevai/cropsevai-hub/internal/logger"
)

// sqliteParams enables WAL, waits on locks and turns on foreign key checks.
const sqliteParams = "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=ON"

// SQLiteStore implements Interface for SQLite. It is meant for development,
// tests and single-node demos.
type SQLiteStore struct {
	DataStore
}

func validateSQLiteConfig(path string) error {
	if path == "" {
		return fmt.Errorf("sqlite path must not be empty")
	}
	return nil
}

// Open sets up the SQLite database connection
func (store *SQLiteStore) Open() error {
	path := store.Settings.Datastore.SQLite.Path
	if err := validateSQLiteConfig(path); err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path+sqliteParams), store.gormConfig())
	if err != nil {
		store.logger.Error("Failed to open SQLite database",
			logger.String("path", path),
			logger.Error(err))
		return fmt.Errorf("failed to open SQLite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying database: %w", err)
	}
	// SQLite serializes writers; a single connection avoids "database is
	// locked" errors under concurrent logins.
	sqlDB.SetMaxOpenConns(1)

	store.DB = db
	store.logger.Info("SQLite database opened", logger.String("path", path))
	return nil
}
