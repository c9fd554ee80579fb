// Package setup creates the first admin account and the initial
// configuration of a fresh instance in a single transaction, and computes the
// onboarding checklist shown to admins afterwards.
package setup

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/lumenboard/lumenboard/internal/activity"
	"github.com/lumenboard/lumenboard/internal/db/controller/database"
	"github.com/lumenboard/lumenboard/internal/db/controller/user"
	"github.com/lumenboard/lumenboard/internal/db/engine"
	"github.com/lumenboard/lumenboard/internal/db/models"
	"github.com/lumenboard/lumenboard/internal/password"
	"github.com/lumenboard/lumenboard/internal/settings"
	"github.com/lumenboard/lumenboard/internal/uniuri"
	"github.com/lumenboard/lumenboard/internal/validation"
)

const (
	fieldToken          = "token"
	fieldEmail          = "email"
	fieldAllowTracking  = "allow_tracking"
	fieldEngine         = "engine"
	invitePrefix        = "invite_"
	modelUser           = "user"
	modelDatabase       = "database"
	detailsKeyInvitedBy = "invited_by"
)

// SessionCreator opens a login session for user as part of tx.
type SessionCreator interface {
	Create(tx *gorm.DB, user *models.User) (string, error)
}

// Publisher receives activity events after a successful setup.
type Publisher interface {
	Publish(evt activity.Event) bool
}

// Service runs setup operations against the application database.
type Service struct {
	db       *gorm.DB
	validate *validator.Validate
	sessions SessionCreator
	tester   engine.Tester
	events   Publisher
}

// NewService wires a Service. events may be nil.
func NewService(
	db *gorm.DB,
	policy *password.Policy,
	sessions SessionCreator,
	tester engine.Tester,
	events Publisher,
) *Service {
	v := validation.New()

	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return policy.Check(fl.Field().String()) == nil
	})

	return &Service{
		db:       db,
		validate: v,
		sessions: sessions,
		tester:   tester,
		events:   events,
	}
}

// Setup validates req and creates the first admin with the initial configuration.
// It returns ErrAlreadySetUp, FieldErrors, or an error wrapping ErrSetupFailed.
func (s *Service) Setup(ctx context.Context, req *Request) (*Result, error) {
	done, err := HasUserSetup(s.db.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSetupFailed, err)
	}

	if done {
		return nil, ErrAlreadySetUp
	}

	errs, err := s.validateSetup(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSetupFailed, err)
	}

	if len(errs) > 0 {
		return nil, errs
	}

	var (
		result  Result
		admin   *models.User
		invited *models.User
		created *models.Database
	)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockToken(tx); err != nil {
			return err
		}

		// a setup holding the lock before us has committed its user by now
		if done, err := HasUserSetup(tx); err != nil || done {
			if err == nil {
				err = ErrAlreadySetUp
			}

			return err
		}

		if admin, err = createAdmin(tx, &req.User); err != nil {
			return err
		}

		if req.Invite != nil {
			if invited, err = createInvited(tx, req.Invite, admin.ID); err != nil {
				return err
			}
		}

		if err = applyPrefs(tx, &req.Prefs, admin.Email); err != nil {
			return err
		}

		if req.Database != nil {
			if created, err = createDatabase(tx, req.Database, admin.ID); err != nil {
				return err
			}
		}

		if _, err = RotateToken(tx); err != nil {
			return err
		}

		sessionID, err := s.sessions.Create(tx, admin)
		if err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}

		result = Result{SessionID: sessionID, UserID: admin.ID}

		return nil
	})
	if err != nil {
		if errors.Is(err, ErrAlreadySetUp) {
			return nil, ErrAlreadySetUp
		}

		log.Error().Err(err).Msg("setup transaction rolled back")

		return nil, fmt.Errorf("%w: %w", ErrSetupFailed, err)
	}

	s.publish(admin, invited, created)

	log.Info().Uint64("user_id", admin.ID).Msg("instance set up")

	return &result, nil
}

// ValidateConnection checks the token and tests the connection described by req.
// Nothing is written.
func (s *Service) ValidateConnection(ctx context.Context, req *ValidateRequest) error {
	errs := FieldErrors{}

	ok, err := TokenMatches(s.db.WithContext(ctx), req.Token)
	if err != nil {
		return err
	}

	if !ok {
		errs[fieldToken] = validation.MsgToken
	}

	if !engine.IsValid(req.Details.Engine) {
		errs[fieldEngine] = validation.MsgEngine
	}

	if len(errs) > 0 {
		return errs
	}

	if err = s.tester.Test(ctx, req.Details.Engine, req.Details.Details); err != nil {
		log.Debug().Err(err).Str("engine", req.Details.Engine).Msg("connection test failed")

		return &ConnectionError{Err: err}
	}

	return nil
}

func (s *Service) validateSetup(ctx context.Context, req *Request) (FieldErrors, error) {
	errs := FieldErrors{}

	ok, err := TokenMatches(s.db.WithContext(ctx), req.Token)
	if err != nil {
		return nil, err
	}

	if !ok {
		errs[fieldToken] = validation.MsgToken
	}

	s.collect(errs, "", req.User)
	s.collect(errs, "", req.Prefs)

	if def, found := settings.Lookup(settings.AnonTrackingEnabled); found {
		if _, err := settings.Coerce(def, req.Prefs.AllowTracking); err != nil {
			errs[fieldAllowTracking] = validation.MsgBoolean
		}
	}

	if req.Database != nil {
		s.collect(errs, "", *req.Database)
	}

	if req.Invite != nil {
		s.collect(errs, invitePrefix, *req.Invite)

		if _, bad := errs[invitePrefix+fieldEmail]; !bad &&
			user.NormalizeEmail(req.Invite.Email) == user.NormalizeEmail(req.User.Email) {
			errs[invitePrefix+fieldEmail] = validation.MsgEmail
		}
	}

	return errs, nil
}

func (s *Service) collect(errs FieldErrors, prefix string, v any) {
	for field, msg := range validation.FieldErrors(s.validate.Struct(v)) {
		if _, exists := errs[prefix+field]; !exists {
			errs[prefix+field] = msg
		}
	}
}

func createAdmin(tx *gorm.DB, req *UserRequest) (*models.User, error) {
	return user.Create(tx, user.NewUser{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: trimmed(req.FirstName),
		LastName:  trimmed(req.LastName),
		Role:      models.RoleAdmin,
	})
}

func createInvited(tx *gorm.DB, req *InviteRequest, adminID uint64) (*models.User, error) {
	return user.Create(tx, user.NewUser{
		Email:       req.Email,
		Password:    uniuri.Password(),
		FirstName:   trimmed(req.FirstName),
		LastName:    trimmed(req.LastName),
		Role:        models.RoleUser,
		InvitedByID: &adminID,
	})
}

func applyPrefs(tx *gorm.DB, prefs *PrefsRequest, adminEmail string) error {
	values := []struct {
		name string
		raw  any
	}{
		{settings.SiteName, strings.TrimSpace(prefs.SiteName)},
		{settings.SiteLocale, stringOrNil(prefs.SiteLocale)},
		{settings.AnonTrackingEnabled, prefs.AllowTracking},
		{settings.AdminEmail, adminEmail},
	}

	for _, v := range values {
		if err := settings.Set(tx, v.name, v.raw); err != nil {
			return fmt.Errorf("failed to set %s: %w", v.name, err)
		}
	}

	return nil
}

func createDatabase(tx *gorm.DB, req *DatabaseRequest, creatorID uint64) (*models.Database, error) {
	details := maps.Clone(req.Details)
	if details == nil {
		details = map[string]any{}
	}

	d := models.NewDatabase(strings.TrimSpace(req.Name), req.Engine, details)
	d.CreatorID = &creatorID

	if req.IsOnDemand != nil {
		d.IsOnDemand = *req.IsOnDemand
	}

	if req.IsFullSync != nil {
		d.IsFullSync = *req.IsFullSync
	}

	if req.AutoRunQueries != nil {
		d.AutoRunQueries = *req.AutoRunQueries
	}

	if err := database.Create(tx, d); err != nil {
		return nil, err
	}

	return d, nil
}

func (s *Service) publish(admin, invited *models.User, db *models.Database) {
	if s.events == nil {
		return
	}

	adminID := admin.ID

	s.events.Publish(activity.Event{Topic: activity.TopicInstall, UserID: &adminID})
	s.events.Publish(activity.Event{
		Topic: activity.TopicUserJoined, UserID: &adminID, Model: modelUser, ModelID: &adminID,
	})

	if invited != nil {
		invitedID := invited.ID
		s.events.Publish(activity.Event{
			Topic: activity.TopicUserJoined, UserID: &invitedID, Model: modelUser, ModelID: &invitedID,
			Details: map[string]any{detailsKeyInvitedBy: adminID},
		})
	}

	if db != nil {
		dbID := db.ID
		s.events.Publish(activity.Event{
			Topic: activity.TopicDatabaseCreate, UserID: &adminID, Model: modelDatabase, ModelID: &dbID,
			Details: map[string]any{"name": db.Name, "engine": db.Engine},
		})
	}
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}

	t := strings.TrimSpace(*s)

	return &t
}

func stringOrNil(s *string) any {
	if s == nil {
		return nil
	}

	return *s
}
