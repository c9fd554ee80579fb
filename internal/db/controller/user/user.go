// Package user holds the queries for local user accounts.
package user

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/lumenboard/lumenboard/internal/db/models"
)

const (
	whereEmailAndAuthSource = "email = ? AND auth_source = ?"
)

var (
	// ErrUserNotFound is returned when no user matches.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserAccountDisabled is returned when the account is not active.
	ErrUserAccountDisabled = errors.New("user account is disabled")
	// ErrInvalidPassword is returned when the password does not match.
	ErrInvalidPassword = errors.New("invalid password")
	// ErrEmailExists is returned when an account with the email already exists.
	ErrEmailExists = errors.New("email already exists")
	// ErrRoleNotFound is returned when the requested role has not been seeded.
	ErrRoleNotFound = errors.New("role not found")
)

// NewUser carries the fields of an account to create.
type NewUser struct {
	Email       string
	Password    string
	FirstName   *string
	LastName    *string
	Role        string
	InvitedByID *uint64
}

// NormalizeEmail is the stored form of an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Count returns the number of user accounts.
func Count(db *gorm.DB) (int64, error) {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}

	return count, nil
}

// Exists reports whether at least one user account exists.
func Exists(db *gorm.DB) (bool, error) {
	var ids []uint64
	if err := db.Model(&models.User{}).Limit(1).Pluck("id", &ids).Error; err != nil {
		return false, fmt.Errorf("failed to query users: %w", err)
	}

	return len(ids) > 0, nil
}

// Create stores a new local, active user with a hashed password.
func Create(db *gorm.DB, in NewUser) (*models.User, error) {
	email := NormalizeEmail(in.Email)

	var existing int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	if existing > 0 {
		return nil, ErrEmailExists
	}

	var role models.Role

	result := db.Where("name = ?", in.Role).Limit(1).Find(&role)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to query role: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRoleNotFound, in.Role)
	}

	user := models.User{
		Active:      true,
		Email:       email,
		Password:    models.HashPassword(in.Password),
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		RoleID:      role.ID,
		Role:        role,
		AuthSource:  models.AuthSourceLocal,
		InvitedByID: in.InvitedByID,
	}

	if err := db.Omit("Role").Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

// GetByID retrieves a user with its role.
func GetByID(db *gorm.DB, id uint64) (*models.User, error) {
	var user models.User

	err := db.Preload("Role").First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &user, nil
}

// Authenticate checks email and password of a local account and stamps the login time.
func Authenticate(db *gorm.DB, email, password string) (*models.User, error) {
	var user models.User

	err := db.Preload("Role").
		Where(whereEmailAndAuthSource, NormalizeEmail(email), models.AuthSourceLocal).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if !user.Active {
		return nil, ErrUserAccountDisabled
	}

	if !user.VerifyPassword(password) {
		return nil, ErrInvalidPassword
	}

	now := time.Now()
	if err = db.Model(&user).UpdateColumn("last_login", now).Error; err != nil {
		return nil, fmt.Errorf("failed to update last login: %w", err)
	}

	user.LastLogin = &now

	return &user, nil
}
