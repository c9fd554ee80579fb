// Package role seeds the fixed set of roles.
package role

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lumenboard/lumenboard/internal/db/models"
)

// Seed inserts the default roles that do not exist yet.
func Seed(db *gorm.DB) error {
	roles := models.DefaultRoles()

	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&roles).Error
	if err != nil {
		return fmt.Errorf("failed to seed roles: %w", err)
	}

	return nil
}
