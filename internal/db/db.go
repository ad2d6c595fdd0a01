// Package db wires up the SQLite database backing the credential store.
package db

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/firelens/firelens/internal/db/models"
)

// Init opens (creating if needed) the SQLite database at dbPath and runs
// migrations. The parent directory is created on first use.
func Init(dbPath string) (*gorm.DB, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	database, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := database.AutoMigrate(&models.Account{}); err != nil {
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	return database, nil
}
