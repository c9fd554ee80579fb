// Package models contains database model definitions.
package models

import "time"

// Setting represents a configuration setting stored in the database.
type Setting struct {
	ID        uint64 `gorm:"primaryKey"`
	Name      string `gorm:"unique;size:254;not null"`
	Value     []byte
	UpdatedAt time.Time
}
