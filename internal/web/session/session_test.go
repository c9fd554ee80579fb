package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenboard/lumenboard/internal/db/controller/user"
	"github.com/lumenboard/lumenboard/internal/db/models"
	"github.com/lumenboard/lumenboard/internal/testutil"
)

func TestManagerLifecycle(t *testing.T) {
	db := testutil.OpenDB(t)
	storage := testutil.NewMemoryStorage()
	Init(storage)

	u, err := user.Create(db, user.NewUser{Email: "ada@example.com", Password: "pw-123456", Role: models.RoleAdmin})
	require.NoError(t, err)

	m := NewManager(db, time.Hour)

	id, err := m.Create(db, u)
	require.NoError(t, err)
	assert.Equal(t, 1, storage.Len())

	got, err := m.Lookup(id)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.True(t, got.IsAdmin())

	require.NoError(t, m.Delete(id))
	assert.Zero(t, storage.Len())

	_, err = m.Lookup(id)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestLookupFallsBackToDatabase(t *testing.T) {
	db := testutil.OpenDB(t)
	storage := testutil.NewMemoryStorage()
	Init(storage)

	u, err := user.Create(db, user.NewUser{Email: "bob@example.com", Password: "pw-123456", Role: models.RoleUser})
	require.NoError(t, err)

	m := NewManager(db, time.Hour)
	id, err := m.Create(db, u)
	require.NoError(t, err)

	// a restart with a memory storage loses the cache
	require.NoError(t, storage.Reset())

	got, err := m.Lookup(id)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, 1, storage.Len(), "cache is refreshed")
}

func TestLookupRejects(t *testing.T) {
	db := testutil.OpenDB(t)
	Init(testutil.NewMemoryStorage())

	u, err := user.Create(db, user.NewUser{Email: "eve@example.com", Password: "pw-123456", Role: models.RoleUser})
	require.NoError(t, err)

	m := NewManager(db, time.Hour)

	_, err = m.Lookup("not-a-uuid")
	require.ErrorIs(t, err, ErrSessionNotFound)

	_, err = m.Lookup("6f1c3c52-3b43-4b8e-9a53-5b0c0c7c2f11")
	require.ErrorIs(t, err, ErrSessionNotFound)

	expired := NewManager(db, -time.Minute)
	id, err := expired.Create(db, u)
	require.NoError(t, err)

	_, err = m.Lookup(id)
	require.ErrorIs(t, err, ErrSessionNotFound)

	id, err = m.Create(db, u)
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", u.ID).Update("active", false).Error)

	_, err = m.Lookup(id)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCreateFailsWhenStorageFails(t *testing.T) {
	db := testutil.OpenDB(t)
	storage := testutil.NewMemoryStorage()
	storage.FailSet = assert.AnError
	Init(storage)

	u, err := user.Create(db, user.NewUser{Email: "ada@example.com", Password: "pw-123456", Role: models.RoleAdmin})
	require.NoError(t, err)

	_, err = NewManager(db, time.Hour).Create(db, u)
	require.ErrorIs(t, err, assert.AnError)
}
