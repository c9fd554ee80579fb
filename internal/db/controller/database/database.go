// Package database stores the warehouse connections registered by admins.
package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/lumenboard/lumenboard/internal/db/models"
)

// Create stores a database connection. Flags are written as given.
func Create(db *gorm.DB, database *models.Database) error {
	if err := db.Create(database).Error; err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}

	return nil
}

// HasUserDatabase reports whether a database other than the sample one exists.
func HasUserDatabase(db *gorm.DB) (bool, error) {
	var count int64
	if err := db.Model(&models.Database{}).Where("is_sample = ?", false).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to count databases: %w", err)
	}

	return count > 0, nil
}
