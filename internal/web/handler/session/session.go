// Package session serves login, logout and the public session properties.
package session

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/lumenboard/lumenboard/internal/config"
	"github.com/lumenboard/lumenboard/internal/db/controller/user"
	"github.com/lumenboard/lumenboard/internal/db/engine"
	"github.com/lumenboard/lumenboard/internal/settings"
	"github.com/lumenboard/lumenboard/internal/setup"
	"github.com/lumenboard/lumenboard/internal/web/handler"
	"github.com/lumenboard/lumenboard/internal/web/middleware/auth"
)

const (
	// Path is the path of the session route group.
	Path = handler.APIPrefix + "/session"

	msgPasswordMismatch = "did not match stored password"
)

// LoginRequest is the body of a login call.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Service is the session handler service.
type Service struct {
	handler.Service
	deps *handler.Deps
}


// Init registers the session routes.
func (s *Service) Init(router fiber.Router, deps *handler.Deps) error {
	if router == nil || !deps.Valid() {
		return handler.ErrNilDeps
	}

	s.deps = deps

	router.Route(Path, func(r fiber.Router) {
		r.Get("/properties", s.Properties)
		r.Post(handler.RouterRootPath, s.Login)
		r.Delete(handler.RouterRootPath, s.Logout)
	})

	return nil
}

// Properties returns the public settings the UI needs before login.
func (s *Service) Properties(c *fiber.Ctx) error {
	db := s.deps.DB.WithContext(c.UserContext())

	props, err := settings.Values(db, settings.Public)
	if err != nil {
		return err
	}

	done, err := setup.HasUserSetup(db)
	if err != nil {
		return err
	}

	props["has-user-setup"] = done
	props["setup-token"] = nil
	props["engines"] = engine.Names()
	props["version"] = fiber.Map{"tag": config.Version}

	if s.deps.Policy != nil {
		req := s.deps.Policy.Requirements()
		props["password-complexity"] = fiber.Map{
			"total": req.Total, "lower": req.Lower, "upper": req.Upper,
			"digit": req.Digit, "special": req.Special, "entropy": req.Entropy,
		}
	}

	if !done {
		token, err := setup.EnsureToken(db)
		if err != nil {
			return err
		}

		props["setup-token"] = token
	}

	return c.JSON(props)
}

// Login authenticates a local account and opens a session.
func (s *Service) Login(c *fiber.Ctx) error {
	req := new(LoginRequest)
	if err := c.BodyParser(req); err != nil {
		return handler.InvalidBody(c)
	}

	if req.Username == "" || req.Password == "" {
		return handler.FieldErrors(c, map[string]string{"password": msgPasswordMismatch})
	}

	db := s.deps.DB.WithContext(c.UserContext())

	u, err := user.Authenticate(db, req.Username, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, user.ErrUserNotFound),
		errors.Is(err, user.ErrInvalidPassword),
		errors.Is(err, user.ErrUserAccountDisabled):
		log.Info().Str("username", req.Username).Err(err).Msg("login failed")

		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"errors": fiber.Map{"password": msgPasswordMismatch},
		})
	default:
		return err
	}

	var sessionID string

	// the row is dropped again when the storage write fails
	err = db.Transaction(func(tx *gorm.DB) error {
		var err error
		sessionID, err = s.deps.Sessions.Create(tx, u)

		return err
	})
	if err != nil {
		return err
	}

	handler.SetSessionCookie(c, s.deps.Cfg, sessionID)

	return c.JSON(fiber.Map{"id": sessionID})
}

// Logout deletes the current session.
func (s *Service) Logout(c *fiber.Ctx) error {
	sessionID := auth.SessionID(c)
	if sessionID == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthenticated")
	}

	if err := s.deps.Sessions.Delete(sessionID); err != nil {
		log.Error().Err(err).Msg("failed to delete session")
	}

	handler.ClearSessionCookie(c, s.deps.Cfg)

	return c.SendStatus(fiber.StatusNoContent)
}
