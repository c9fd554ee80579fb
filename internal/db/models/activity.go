package models

import "time"

// Activity is one entry of the activity log.
type Activity struct {
	ID        uint64         `gorm:"primaryKey"                json:"id"`
	Topic     string         `gorm:"size:64;not null;index"    json:"topic"`
	UserID    *uint64        `gorm:"index"                     json:"user_id"`
	Model     string         `gorm:"size:32"                   json:"model"`
	ModelID   *uint64        `json:"model_id"`
	Details   map[string]any `gorm:"serializer:json;type:text" json:"details"`
	Timestamp time.Time      `gorm:"not null"                  json:"timestamp"`
}

// TableName specifies the database table name for the Activity model.
func (Activity) TableName() string {
	return "activities"
}
