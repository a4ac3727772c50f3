package database

import (
	"fmt"

	"github.com/jinzhu/gorm"
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"foodflow/internal/models"
)

// Open initializes the recipe catalog database and migrates its schema
func Open(dbPath string) (*gorm.DB, error) {
	db, err := gorm.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open recipe catalog %s: %w", dbPath, err)
	}

	if err := db.AutoMigrate(&models.CatalogRecipe{}).Error; err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate recipe catalog: %w", err)
	}
	return db, nil
}
