// Package setting provides persistence for name/value setting rows.
package setting

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lumenboard/lumenboard/internal/db/models"
)

const (
	nameQueryPattern = "name = ?"
)

var (
	// ErrSettingNotFound is returned when a setting is not found.
	ErrSettingNotFound = errors.New("setting not found")
	// ErrSettingNameEmpty is returned when attempting to read or write a setting with an empty name.
	ErrSettingNameEmpty = errors.New("setting name cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Get retrieves a setting by its name.
func Get(db *gorm.DB, name string) (*models.Setting, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if name == "" {
		return nil, ErrSettingNameEmpty
	}

	var setting models.Setting

	result := db.Where(nameQueryPattern, name).Limit(1).Find(&setting)
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		return nil, ErrSettingNotFound
	}

	return &setting, nil
}

// Lock reads the setting and holds a row lock until the surrounding
// transaction ends. SQLite has no row locks and serialises writers instead.
func Lock(tx *gorm.DB, name string) (*models.Setting, error) {
	if tx == nil {
		return nil, ErrDBNil
	}

	if name == "" {
		return nil, ErrSettingNameEmpty
	}

	var setting models.Setting

	result := lockQuery(tx, name).Find(&setting)
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		return nil, ErrSettingNotFound
	}

	return &setting, nil
}

func lockQuery(db *gorm.DB, name string) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where(nameQueryPattern, name).Limit(1)
}

// GetAll retrieves all settings ordered by name.
func GetAll(db *gorm.DB) ([]models.Setting, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var settings []models.Setting
	if err := db.Order("name").Find(&settings).Error; err != nil {
		return nil, err
	}

	return settings, nil
}

// GetMany returns the stored values of the given names. Missing names are absent from the map.
func GetMany(db *gorm.DB, names ...string) (map[string][]byte, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	out := make(map[string][]byte, len(names))
	if len(names) == 0 {
		return out, nil
	}

	var settings []models.Setting
	if err := db.Where("name IN ?", names).Find(&settings).Error; err != nil {
		return nil, err
	}

	for _, s := range settings {
		out[s.Name] = s.Value
	}

	return out, nil
}

// Set creates or updates a setting by name.
func Set(db *gorm.DB, name string, value []byte) error {
	if db == nil {
		return ErrDBNil
	}

	if name == "" {
		return ErrSettingNameEmpty
	}

	setting := models.Setting{
		Name:      name,
		Value:     value,
		UpdatedAt: time.Now(),
	}

	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error
}

// Delete deletes a setting by name.
func Delete(db *gorm.DB, name string) error {
	if db == nil {
		return ErrDBNil
	}

	if name == "" {
		return ErrSettingNameEmpty
	}

	result := db.Where(nameQueryPattern, name).Delete(&models.Setting{})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrSettingNotFound
	}

	return nil
}
