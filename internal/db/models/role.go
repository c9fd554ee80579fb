package models

import "time"

const (
	// RoleAdmin is the name of the administrator role.
	RoleAdmin = "admin"
	// RoleUser is the name of the regular user role.
	RoleUser = "user"
)

// Role is the coarse access level of a user.
type Role struct {
	// ID is the unique identifier for the role.
	ID uint `gorm:"primaryKey"`
	// Name is the unique name of the role (e.g., "admin", "user").
	Name string `gorm:"unique;size:100;not null"`
	// Description provides a human-readable description of the role's purpose.
	Description string `gorm:"size:255"`
	// IsSystem indicates if this is a system role that cannot be deleted.
	IsSystem bool `gorm:"default:false"`
	// CreatedAt is the timestamp when the role was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the role was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Role model.
func (Role) TableName() string {
	return "roles"
}

// DefaultRoles returns the roles seeded at startup.
func DefaultRoles() []Role {
	return []Role{
		{Name: RoleAdmin, Description: "Full access, manages settings and people", IsSystem: true},
		{Name: RoleUser, Description: "Regular account", IsSystem: true},
	}
}
