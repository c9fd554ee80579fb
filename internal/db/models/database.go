package models

import "time"

// Database is a data warehouse connection registered by an admin.
// Flags must not get gorm defaults, an explicit false would be overwritten.
type Database struct {
	ID             uint64         `gorm:"primaryKey"                json:"id"`
	Name           string         `gorm:"size:254;not null"         json:"name"`
	Engine         string         `gorm:"size:50;not null"          json:"engine"`
	Details        map[string]any `gorm:"serializer:json;type:text" json:"details"`
	IsOnDemand     bool           `gorm:"not null"                  json:"is_on_demand"`
	IsFullSync     bool           `gorm:"not null"                  json:"is_full_sync"`
	AutoRunQueries bool           `gorm:"not null"                  json:"auto_run_queries"`
	IsSample       bool           `gorm:"not null"                  json:"is_sample"`
	CreatorID      *uint64        `json:"creator_id"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// TableName specifies the database table name for the Database model.
func (Database) TableName() string {
	return "databases"
}

// NewDatabase returns a Database with the default flags set.
func NewDatabase(name, engine string, details map[string]any) *Database {
	return &Database{
		Name:           name,
		Engine:         engine,
		Details:        details,
		IsFullSync:     true,
		AutoRunQueries: true,
	}
}
