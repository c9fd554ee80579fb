package setting

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/lumenboard/lumenboard/internal/db/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.Setting{}), "failed to migrate test database")

	return db
}

func TestGet(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, Set(db, "site-name", []byte("My Site")))

	testCases := []struct {
		name          string
		dbParam       *gorm.DB
		settingName   string
		expectedError error
		expectedValue []byte
	}{
		{name: "nil database", dbParam: nil, settingName: "site-name", expectedError: ErrDBNil},
		{name: "empty name", dbParam: db, settingName: "", expectedError: ErrSettingNameEmpty},
		{name: "setting not found", dbParam: db, settingName: "nonexistent", expectedError: ErrSettingNotFound},
		{name: "successful get", dbParam: db, settingName: "site-name", expectedValue: []byte("My Site")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			setting, err := Get(tc.dbParam, tc.settingName)

			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				assert.Nil(t, setting)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.settingName, setting.Name)
			assert.Equal(t, tc.expectedValue, setting.Value)
		})
	}
}

func TestSetUpserts(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, Set(db, "site-locale", []byte("en")))
	require.NoError(t, Set(db, "site-locale", []byte("es_MX")))

	var count int64
	require.NoError(t, db.Model(&models.Setting{}).Where("name = ?", "site-locale").Count(&count).Error)
	assert.Equal(t, int64(1), count)

	s, err := Get(db, "site-locale")
	require.NoError(t, err)
	assert.Equal(t, []byte("es_MX"), s.Value)

	require.ErrorIs(t, Set(db, "", nil), ErrSettingNameEmpty)
	require.ErrorIs(t, Set(nil, "x", nil), ErrDBNil)
}

func TestGetAllAndMany(t *testing.T) {
	db := setupTestDB(t)

	all, err := GetAll(db)
	require.NoError(t, err)
	assert.Empty(t, all)

	require.NoError(t, Set(db, "site-name", []byte("Acme")))
	require.NoError(t, Set(db, "admin-email", []byte("admin@example.com")))

	all, err = GetAll(db)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "admin-email", all[0].Name)

	many, err := GetMany(db, "site-name", "missing")
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"site-name": []byte("Acme")}, many)

	empty, err := GetMany(db)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDelete(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, Set(db, "slack-app-token", []byte("xoxb")))

	require.NoError(t, Delete(db, "slack-app-token"))
	require.ErrorIs(t, Delete(db, "slack-app-token"), ErrSettingNotFound)
	require.ErrorIs(t, Delete(db, ""), ErrSettingNameEmpty)
	require.ErrorIs(t, Delete(nil, "x"), ErrDBNil)
}

func TestSetInsideRolledBackTransaction(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, Set(db, "site-name", []byte("before")))

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := Set(tx, "site-name", []byte("after")); err != nil {
			return err
		}

		return gorm.ErrInvalidTransaction
	})
	require.ErrorIs(t, err, gorm.ErrInvalidTransaction)

	s, err := Get(db, "site-name")
	require.NoError(t, err)
	assert.Equal(t, []byte("before"), s.Value)
}

func TestLock(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, Set(db, "setup-token", []byte("abc")))

	err := db.Transaction(func(tx *gorm.DB) error {
		s, err := Lock(tx, "setup-token")
		require.NoError(t, err)
		assert.Equal(t, []byte("abc"), s.Value)

		_, err = Lock(tx, "missing")
		assert.ErrorIs(t, err, ErrSettingNotFound)

		return nil
	})
	require.NoError(t, err)

	_, err = Lock(nil, "setup-token")
	require.ErrorIs(t, err, ErrDBNil)

	_, err = Lock(db, "")
	require.ErrorIs(t, err, ErrSettingNameEmpty)
}

func TestLockQueryUsesForUpdate(t *testing.T) {
	pg, err := gorm.Open(postgres.New(postgres.Config{DSN: "postgres://lb@localhost:5432/lb"}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)

	query := pg.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var s models.Setting

		return lockQuery(tx, "setup-token").Find(&s)
	})

	assert.Contains(t, query, "FOR UPDATE")
	assert.Contains(t, query, "setup-token")
}
