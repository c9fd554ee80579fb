package setup

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/lumenboard/lumenboard/internal/db/controller/setting"
	"github.com/lumenboard/lumenboard/internal/db/controller/user"
	"github.com/lumenboard/lumenboard/internal/settings"
	"github.com/lumenboard/lumenboard/internal/uniuri"
)

// HasUserSetup reports whether the first user has been created.
func HasUserSetup(db *gorm.DB) (bool, error) {
	return user.Exists(db)
}

// EnsureToken returns the setup token, generating one when none is stored.
// Once a user exists no token is handed out.
func EnsureToken(db *gorm.DB) (string, error) {
	done, err := HasUserSetup(db)
	if err != nil {
		return "", err
	}

	if done {
		return "", nil
	}

	token, err := settings.Get(db, settings.SetupToken)
	if err != nil {
		return "", err
	}

	if token != "" {
		return token, nil
	}

	return RotateToken(db)
}

// RotateToken replaces the setup token with a fresh random one.
func RotateToken(db *gorm.DB) (string, error) {
	token := uniuri.Token()
	if err := settings.Set(db, settings.SetupToken, token); err != nil {
		return "", fmt.Errorf("failed to store setup token: %w", err)
	}

	return token, nil
}

// TokenMatches compares supplied with the stored setup token in constant time.
func TokenMatches(db *gorm.DB, supplied string) (bool, error) {
	stored, err := settings.Get(db, settings.SetupToken)
	if err != nil {
		return false, err
	}

	if stored == "" || supplied == "" {
		return false, nil
	}

	return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1, nil
}

// lockToken holds the setup token row until tx ends, so concurrent setups
// run one after another.
func lockToken(tx *gorm.DB) error {
	_, err := setting.Lock(tx, settings.SetupToken)
	if errors.Is(err, setting.ErrSettingNotFound) {
		return nil
	}

	return err
}
