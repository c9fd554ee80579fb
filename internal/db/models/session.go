package models

import "time"

// Session is a login session. The id is the value of the session cookie.
type Session struct {
	ID        string `gorm:"primaryKey;size:36"`
	UserID    uint64 `gorm:"not null;index"`
	User      User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	ExpiresAt time.Time `gorm:"index"`
}

// TableName keeps clear of the table used by the fiber session storage.
func (Session) TableName() string {
	return "user_sessions"
}
