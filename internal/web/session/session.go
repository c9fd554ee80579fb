// Package session keeps login sessions: a row in the application database is
// the source of truth, the serialised Data is cached in the fiber session
// storage (memory, SQL or redis) for cheap lookups.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/lumenboard/lumenboard/internal/db/controller/user"
	"github.com/lumenboard/lumenboard/internal/db/models"
)

var (
	// Store is the global session store instance.
	Store *session.Store

	// ErrSessionNotFound is returned for unknown or expired session ids.
	ErrSessionNotFound = errors.New("session not found")
	// ErrStoreNotInitialized is returned when Init has not been called.
	ErrStoreNotInitialized = errors.New("session store not initialized")
)

// Data represents the cached session data.
type Data struct {
	UserID    uint64    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Write writes the session data for the given session ID with an expiration duration.
func (s *Data) Write(sessionID string, exp time.Duration) error {
	if Store == nil {
		return ErrStoreNotInitialized
	}

	out, err := json.Marshal(s)
	if err != nil {
		return err
	}

	return Store.Storage.Set(sessionID, out, exp)
}

// Read reads the session data for the given session ID.
func (s *Data) Read(sessionID string) error {
	if Store == nil {
		return ErrStoreNotInitialized
	}

	byteData, err := Store.Storage.Get(sessionID)
	if err != nil {
		return err
	}

	if len(byteData) == 0 {
		return ErrSessionNotFound
	}

	return json.Unmarshal(byteData, s)
}

// Init initializes the session store with the provided storage backend.
// A nil storage selects fiber's in-memory storage.
func Init(storage fiber.Storage) {
	Store = session.New(session.Config{
		Storage: storage,
	})
}

// Manager creates, resolves and deletes sessions.
type Manager struct {
	db     *gorm.DB
	expiry time.Duration
}

// NewManager returns a Manager issuing sessions valid for expiry.
func NewManager(db *gorm.DB, expiry time.Duration) *Manager {
	return &Manager{db: db, expiry: expiry}
}

// Expiry is the lifetime of new sessions.
func (m *Manager) Expiry() time.Duration {
	return m.expiry
}

// Create stores a new session for u. The row is written through tx so it
// shares the fate of the surrounding transaction.
func (m *Manager) Create(tx *gorm.DB, u *models.User) (string, error) {
	now := time.Now()
	row := models.Session{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(m.expiry),
	}

	if err := tx.Create(&row).Error; err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	data := &Data{UserID: u.ID, ExpiresAt: row.ExpiresAt}
	if err := data.Write(row.ID, m.expiry); err != nil {
		return "", fmt.Errorf("failed to write session: %w", err)
	}

	return row.ID, nil
}

// Lookup returns the active user of sessionID.
func (m *Manager) Lookup(sessionID string) (*models.User, error) {
	if _, err := uuid.Parse(sessionID); err != nil {
		return nil, ErrSessionNotFound
	}

	data := new(Data)

	err := data.Read(sessionID)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			log.Warn().Err(err).Msg("session storage read failed, falling back to database")
		}

		if data, err = m.load(sessionID); err != nil {
			return nil, err
		}
	}

	if time.Now().After(data.ExpiresAt) {
		return nil, ErrSessionNotFound
	}

	u, err := user.GetByID(m.db, data.UserID)
	if errors.Is(err, user.ErrUserNotFound) {
		return nil, ErrSessionNotFound
	}

	if err != nil {
		return nil, err
	}

	if !u.Active {
		return nil, ErrSessionNotFound
	}

	return u, nil
}

// load reads the session row and refreshes the storage cache.
func (m *Manager) load(sessionID string) (*Data, error) {
	var row models.Session

	result := m.db.Where("id = ? AND expires_at > ?", sessionID, time.Now()).Limit(1).Find(&row)
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		return nil, ErrSessionNotFound
	}

	data := &Data{UserID: row.UserID, ExpiresAt: row.ExpiresAt}
	if err := data.Write(sessionID, time.Until(row.ExpiresAt)); err != nil {
		log.Warn().Err(err).Msg("failed to refresh session storage")
	}

	return data, nil
}

// Delete removes the session from the database and the storage.
func (m *Manager) Delete(sessionID string) error {
	if err := m.db.Where("id = ?", sessionID).Delete(&models.Session{}).Error; err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	if Store == nil {
		return ErrStoreNotInitialized
	}

	return Store.Storage.Delete(sessionID)
}
