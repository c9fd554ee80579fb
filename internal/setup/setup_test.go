package setup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/lumenboard/lumenboard/internal/activity"
	"github.com/lumenboard/lumenboard/internal/db/controller/role"
	"github.com/lumenboard/lumenboard/internal/db/models"
	"github.com/lumenboard/lumenboard/internal/password"
	"github.com/lumenboard/lumenboard/internal/settings"
	"github.com/lumenboard/lumenboard/internal/validation"
)

var errSessionStore = errors.New("session store unavailable")

type fakeSessions struct {
	fail bool
}

func (f *fakeSessions) Create(tx *gorm.DB, u *models.User) (string, error) {
	id := uuid.NewString()
	if err := tx.Create(&models.Session{
		ID: id, UserID: u.ID, ExpiresAt: time.Now().Add(time.Hour),
	}).Error; err != nil {
		return "", err
	}

	if f.fail {
		return "", errSessionStore
	}

	return id, nil
}

type fakeTester struct {
	err   error
	calls int
}

func (f *fakeTester) Test(_ context.Context, _ string, _ map[string]any) error {
	f.calls++

	return f.err
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(models.All()...))
	require.NoError(t, role.Seed(db))

	return db
}

func newService(t *testing.T, db *gorm.DB, sessions SessionCreator, tester *fakeTester, events Publisher) *Service {
	t.Helper()

	policy, err := password.NewPolicy(password.Normal, 0)
	require.NoError(t, err)

	if tester == nil {
		tester = &fakeTester{}
	}

	return NewService(db, policy, sessions, tester, events)
}

func ptr[T any](v T) *T {
	return &v
}

func validRequest(token string) *Request {
	return &Request{
		Token: token,
		User: UserRequest{
			FirstName: ptr("Ada"),
			LastName:  ptr("Lovelace"),
			Email:     "Ada@Example.com",
			Password:  "analytical-engine-1843",
		},
		Prefs: PrefsRequest{
			SiteName:      "Acme Analytics",
			SiteLocale:    ptr("es-mx"),
			AllowTracking: "FALSE",
		},
	}
}

func TestSetupCreatesAdminSettingsDatabaseAndSession(t *testing.T) {
	db := setupTestDB(t)
	events := activity.NewPublisher(db, 16)
	t.Cleanup(events.Close)

	svc := newService(t, db, &fakeSessions{}, nil, events)

	token, err := EnsureToken(db)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	req := validRequest(token)
	req.Database = &DatabaseRequest{
		Engine:     "postgres",
		Name:       "Warehouse",
		Details:    map[string]any{"host": "db", "dbname": "dw"},
		IsFullSync: ptr(false),
	}
	req.Invite = &InviteRequest{FirstName: ptr("Bob"), Email: "bob@example.com"}

	res, err := svc.Setup(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, res.SessionID)

	var admin models.User
	require.NoError(t, db.Preload("Role").First(&admin, res.UserID).Error)
	assert.Equal(t, "ada@example.com", admin.Email)
	assert.True(t, admin.IsAdmin())
	assert.True(t, admin.VerifyPassword("analytical-engine-1843"))

	var invited models.User
	require.NoError(t, db.Preload("Role").Where("email = ?", "bob@example.com").First(&invited).Error)
	assert.False(t, invited.IsAdmin())
	require.NotNil(t, invited.InvitedByID)
	assert.Equal(t, admin.ID, *invited.InvitedByID)

	for name, expected := range map[string]string{
		settings.SiteName:            "Acme Analytics",
		settings.SiteLocale:          "es_MX",
		settings.AnonTrackingEnabled: "false",
		settings.AdminEmail:          "ada@example.com",
	} {
		v, err := settings.Get(db, name)
		require.NoError(t, err)
		assert.Equal(t, expected, v, name)
	}

	var dbs []models.Database
	require.NoError(t, db.Find(&dbs).Error)
	require.Len(t, dbs, 1)
	assert.Equal(t, "Warehouse", dbs[0].Name)
	assert.False(t, dbs[0].IsOnDemand)
	assert.False(t, dbs[0].IsFullSync)
	assert.True(t, dbs[0].AutoRunQueries)
	require.NotNil(t, dbs[0].CreatorID)
	assert.Equal(t, admin.ID, *dbs[0].CreatorID)

	var session models.Session
	require.NoError(t, db.First(&session, "id = ?", res.SessionID).Error)
	assert.Equal(t, admin.ID, session.UserID)

	ok, err := TokenMatches(db, token)
	require.NoError(t, err)
	assert.False(t, ok, "token must be rotated")

	assert.Eventually(t, func() bool {
		var n int64
		db.Model(&models.Activity{}).Count(&n)

		return n == 4
	}, 2*time.Second, 10*time.Millisecond)

	var topics []string
	require.NoError(t, db.Model(&models.Activity{}).Order("id").Pluck("topic", &topics).Error)
	assert.Equal(t, []string{
		activity.TopicInstall, activity.TopicUserJoined, activity.TopicUserJoined, activity.TopicDatabaseCreate,
	}, topics)
}

func TestSetupDefaultsWithoutOptionalParts(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(t, db, &fakeSessions{}, nil, nil)

	token, err := EnsureToken(db)
	require.NoError(t, err)

	req := validRequest(token)
	req.User.FirstName = nil
	req.User.LastName = nil
	req.Prefs.SiteLocale = nil
	req.Prefs.AllowTracking = nil

	_, err = svc.Setup(context.Background(), req)
	require.NoError(t, err)

	locale, err := settings.Get(db, settings.SiteLocale)
	require.NoError(t, err)
	assert.Equal(t, "en", locale)

	tracking, err := settings.GetBool(db, settings.AnonTrackingEnabled)
	require.NoError(t, err)
	assert.True(t, tracking)

	var count int64
	require.NoError(t, db.Model(&models.Database{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSetupRefusedOnceAUserExists(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(t, db, &fakeSessions{}, nil, nil)

	token, err := EnsureToken(db)
	require.NoError(t, err)

	_, err = svc.Setup(context.Background(), validRequest(token))
	require.NoError(t, err)

	again := validRequest("whatever")
	again.User.Email = "eve@example.com"

	_, err = svc.Setup(context.Background(), again)
	require.ErrorIs(t, err, ErrAlreadySetUp)

	token, err = EnsureToken(db)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestSetupFieldValidation(t *testing.T) {
	testCases := []struct {
		name     string
		mutate   func(r *Request)
		expected FieldErrors
	}{
		{
			name:     "wrong token",
			mutate:   func(r *Request) { r.Token = "nope" },
			expected: FieldErrors{"token": validation.MsgToken},
		},
		{
			name: "blank names",
			mutate: func(r *Request) {
				r.User.FirstName = ptr(" ")
				r.User.LastName = ptr("")
			},
			expected: FieldErrors{"first_name": validation.MsgNonBlank, "last_name": validation.MsgNonBlank},
		},
		{
			name:     "bad email",
			mutate:   func(r *Request) { r.User.Email = "not-an-email" },
			expected: FieldErrors{"email": validation.MsgEmail},
		},
		{
			name:     "common password",
			mutate:   func(r *Request) { r.User.Password = "password1" },
			expected: FieldErrors{"password": validation.MsgPassword},
		},
		{
			name:     "short password",
			mutate:   func(r *Request) { r.User.Password = "a1" },
			expected: FieldErrors{"password": validation.MsgPassword},
		},
		{
			name:     "blank site name",
			mutate:   func(r *Request) { r.Prefs.SiteName = "  " },
			expected: FieldErrors{"site_name": validation.MsgNonBlank},
		},
		{
			name:     "bad locale",
			mutate:   func(r *Request) { r.Prefs.SiteLocale = ptr("xx") },
			expected: FieldErrors{"site_locale": validation.MsgLocale},
		},
		{
			name:     "bad tracking literal",
			mutate:   func(r *Request) { r.Prefs.AllowTracking = "sometimes" },
			expected: FieldErrors{"allow_tracking": validation.MsgBoolean},
		},
		{
			name: "bad database",
			mutate: func(r *Request) {
				r.Database = &DatabaseRequest{Engine: "oracle", Name: ""}
			},
			expected: FieldErrors{"engine": validation.MsgEngine, "name": validation.MsgNonBlank},
		},
		{
			name:     "invite with admin email",
			mutate:   func(r *Request) { r.Invite = &InviteRequest{Email: "ADA@example.com"} },
			expected: FieldErrors{"invite_email": validation.MsgEmail},
		},
		{
			name:     "invite with bad email",
			mutate:   func(r *Request) { r.Invite = &InviteRequest{Email: "bob"} },
			expected: FieldErrors{"invite_email": validation.MsgEmail},
		},
		{
			name: "everything wrong at once",
			mutate: func(r *Request) {
				r.Token = ""
				r.User.Email = ""
				r.User.Password = ""
				r.Prefs.SiteName = ""
			},
			expected: FieldErrors{
				"token":     validation.MsgToken,
				"email":     validation.MsgEmail,
				"password":  validation.MsgPassword,
				"site_name": validation.MsgNonBlank,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db := setupTestDB(t)
			svc := newService(t, db, &fakeSessions{}, nil, nil)

			token, err := EnsureToken(db)
			require.NoError(t, err)

			req := validRequest(token)
			tc.mutate(req)

			_, err = svc.Setup(context.Background(), req)

			var errs FieldErrors
			require.ErrorAs(t, err, &errs)
			assert.Equal(t, tc.expected, errs)

			var count int64
			require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
			assert.Zero(t, count)
		})
	}
}

func TestSetupRollsBackWhenSessionFails(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(t, db, &fakeSessions{fail: true}, nil, nil)

	token, err := EnsureToken(db)
	require.NoError(t, err)

	req := validRequest(token)
	req.Database = &DatabaseRequest{Engine: "mysql", Name: "Shop", Details: map[string]any{"host": "h", "dbname": "d"}}
	req.Invite = &InviteRequest{Email: "bob@example.com"}

	_, err = svc.Setup(context.Background(), req)
	require.ErrorIs(t, err, ErrSetupFailed)
	require.ErrorIs(t, err, errSessionStore)

	for _, model := range []any{&models.User{}, &models.Database{}, &models.Session{}} {
		var count int64
		require.NoError(t, db.Model(model).Count(&count).Error)
		assert.Zero(t, count, "%T", model)
	}

	name, err := settings.Get(db, settings.SiteName)
	require.NoError(t, err)
	assert.Equal(t, "Lumenboard", name)

	adminEmail, err := settings.Get(db, settings.AdminEmail)
	require.NoError(t, err)
	assert.Empty(t, adminEmail)

	ok, err := TokenMatches(db, token)
	require.NoError(t, err)
	assert.True(t, ok, "original token must stay valid")

	// the same token can be used again once the problem is gone
	svc = newService(t, db, &fakeSessions{}, nil, nil)
	_, err = svc.Setup(context.Background(), req)
	require.NoError(t, err)
}

func TestValidateConnection(t *testing.T) {
	db := setupTestDB(t)
	tester := &fakeTester{}
	svc := newService(t, db, &fakeSessions{}, tester, nil)

	token, err := EnsureToken(db)
	require.NoError(t, err)

	err = svc.ValidateConnection(context.Background(), &ValidateRequest{
		Token:   "bad",
		Details: ConnectionDetails{Engine: "h2"},
	})

	var errs FieldErrors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, FieldErrors{"token": validation.MsgToken, "engine": validation.MsgEngine}, errs)
	assert.Zero(t, tester.calls)

	req := &ValidateRequest{Token: token, Details: ConnectionDetails{Engine: "postgres", Details: map[string]any{}}}
	require.NoError(t, svc.ValidateConnection(context.Background(), req))
	assert.Equal(t, 1, tester.calls)

	tester.err = errors.New("connection refused")

	var connErr *ConnectionError
	require.ErrorAs(t, svc.ValidateConnection(context.Background(), req), &connErr)
	assert.Equal(t, "connection refused", connErr.Error())

	var count int64
	require.NoError(t, db.Model(&models.Database{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestTokenLifecycle(t *testing.T) {
	db := setupTestDB(t)

	ok, err := TokenMatches(db, "")
	require.NoError(t, err)
	assert.False(t, ok)

	first, err := EnsureToken(db)
	require.NoError(t, err)

	second, err := EnsureToken(db)
	require.NoError(t, err)
	assert.Equal(t, first, second, "existing token is reused")

	rotated, err := RotateToken(db)
	require.NoError(t, err)
	assert.NotEqual(t, first, rotated)

	ok, err = TokenMatches(db, first)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = TokenMatches(db, rotated)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLockTokenInsideTransaction(t *testing.T) {
	db := setupTestDB(t)

	// no token stored yet
	require.NoError(t, db.Transaction(lockToken))

	token, err := EnsureToken(db)
	require.NoError(t, err)

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := lockToken(tx); err != nil {
			return err
		}

		ok, err := TokenMatches(tx, token)
		require.NoError(t, err)
		assert.True(t, ok)

		return nil
	})
	require.NoError(t, err)
}
