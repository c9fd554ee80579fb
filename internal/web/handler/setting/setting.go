// Package setting serves the admin settings API under /api/setting.
package setting

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/lumenboard/lumenboard/internal/settings"
	"github.com/lumenboard/lumenboard/internal/web/handler"
	"github.com/lumenboard/lumenboard/internal/web/middleware/auth"
)

// Path is the path of the setting route group.
const Path = handler.APIPrefix + "/setting"

// UpdateRequest is the body of a setting update.
type UpdateRequest struct {
	Value any `json:"value"`
}

// Service is the setting handler service.
type Service struct {
	handler.Service
	deps *handler.Deps
}


// Init registers the setting routes. All of them require an admin.
func (s *Service) Init(router fiber.Router, deps *handler.Deps) error {
	if router == nil || !deps.Valid() {
		return handler.ErrNilDeps
	}

	s.deps = deps

	router.Route(Path, func(r fiber.Router) {
		r.Use(auth.RequireAdmin)
		r.Get(handler.RouterRootPath, s.List)
		r.Put("/:key", s.Put)
	})

	return nil
}

// List returns all settings visible to admins.
func (s *Service) List(c *fiber.Ctx) error {
	entries, err := settings.List(s.deps.DB.WithContext(c.UserContext()))
	if err != nil {
		return err
	}

	return c.JSON(entries)
}

// Put validates and stores one setting.
func (s *Service) Put(c *fiber.Ctx) error {
	key := c.Params("key")

	def, ok := settings.Lookup(key)
	if !ok || def.Visibility == settings.Internal {
		return fiber.NewError(fiber.StatusNotFound, "Unknown setting: "+key)
	}

	req := new(UpdateRequest)
	if err := c.BodyParser(req); err != nil {
		return handler.InvalidBody(c)
	}

	err := settings.Set(s.deps.DB.WithContext(c.UserContext()), key, req.Value)

	var verr *settings.ValidationError
	if errors.As(err, &verr) {
		return handler.FieldErrors(c, map[string]string{key: verr.Message})
	}

	if err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}
