// Package setup serves the initial setup API under /api/setup.
package setup

import (
	"errors"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	setupsvc "github.com/lumenboard/lumenboard/internal/setup"
	"github.com/lumenboard/lumenboard/internal/web/handler"
	"github.com/lumenboard/lumenboard/internal/web/middleware/auth"
)

const (
	// Path is the path of the setup route group.
	Path = handler.APIPrefix + "/setup"

	msgAlreadySetUp = "The /api/setup route can only be used to create the first user, however a user currently exists."
	msgSetupFailed  = "An error occurred while setting up. Please try again."

	fieldDetails = "details"
)

var (
	attempts     *prometheus.CounterVec //nolint:gochecknoglobals
	attemptsOnce sync.Once              //nolint:gochecknoglobals
)

func registerMetrics() {
	attemptsOnce.Do(func() {
		attempts = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lumenboard",
			Subsystem: "setup",
			Name:      "attempts_total",
			Help:      "Setup calls by outcome.",
		}, []string{"outcome"})

		if err := prometheus.Register(attempts); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				attempts = are.ExistingCollector.(*prometheus.CounterVec)
			}
		}
	})
}

// Service is the setup handler service.
type Service struct {
	handler.Service
	deps *handler.Deps
}

// Init registers the setup routes.
func (s *Service) Init(router fiber.Router, deps *handler.Deps) error {
	if router == nil || !deps.Valid() || deps.Setup == nil {
		return handler.ErrNilDeps
	}

	s.deps = deps

	registerMetrics()

	router.Route(Path, func(r fiber.Router) {
		r.Post(handler.RouterRootPath, s.Post)
		r.Post("/validate", s.Validate)
		r.Get("/admin_checklist", auth.RequireAdmin, s.Checklist)
	})

	return nil
}

// Post creates the first admin and applies the initial configuration.
func (s *Service) Post(c *fiber.Ctx) error {
	req := new(setupsvc.Request)
	if err := c.BodyParser(req); err != nil {
		attempts.WithLabelValues("invalid").Inc()

		return handler.InvalidBody(c)
	}

	res, err := s.deps.Setup.Setup(c.UserContext(), req)

	var fieldErrs setupsvc.FieldErrors

	switch {
	case err == nil:
	case errors.Is(err, setupsvc.ErrAlreadySetUp):
		attempts.WithLabelValues("forbidden").Inc()

		return handler.Message(c, fiber.StatusForbidden, msgAlreadySetUp)
	case errors.As(err, &fieldErrs):
		attempts.WithLabelValues("invalid").Inc()

		return handler.FieldErrors(c, fieldErrs)
	default:
		attempts.WithLabelValues("error").Inc()
		log.Error().Err(err).Msg("setup failed")

		return handler.Message(c, fiber.StatusInternalServerError, msgSetupFailed)
	}

	attempts.WithLabelValues("success").Inc()

	handler.SetSessionCookie(c, s.deps.Cfg, res.SessionID)

	return c.JSON(fiber.Map{"id": res.SessionID})
}

// Validate checks the token and tests a database connection without storing it.
func (s *Service) Validate(c *fiber.Ctx) error {
	req := new(setupsvc.ValidateRequest)
	if err := c.BodyParser(req); err != nil {
		return handler.InvalidBody(c)
	}

	err := s.deps.Setup.ValidateConnection(c.UserContext(), req)

	var (
		fieldErrs setupsvc.FieldErrors
		connErr   *setupsvc.ConnectionError
	)

	switch {
	case err == nil:
		return c.JSON(fiber.Map{"valid": true})
	case errors.As(err, &fieldErrs):
		return handler.FieldErrors(c, fieldErrs)
	case errors.As(err, &connErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": connErr.Error(),
			"errors":  fiber.Map{fieldDetails: connErr.Error()},
		})
	default:
		log.Error().Err(err).Msg("connection validation failed")

		return handler.Message(c, fiber.StatusInternalServerError, msgSetupFailed)
	}
}

// Checklist returns the onboarding checklist for admins.
func (s *Service) Checklist(c *fiber.Ctx) error {
	st, err := setupsvc.LoadState(s.deps.DB.WithContext(c.UserContext()), s.deps.Cfg.DB.Engine)
	if err != nil {
		return err
	}

	return c.JSON(setupsvc.Checklist(st))
}
