// Package handler holds what the API handlers share: their dependencies,
// route constants and response helpers.
package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/lumenboard/lumenboard/internal/config"
	"github.com/lumenboard/lumenboard/internal/password"
	"github.com/lumenboard/lumenboard/internal/setup"
	"github.com/lumenboard/lumenboard/internal/web/session"
)

// ErrNilDeps is returned by Init when a required dependency is missing.
var ErrNilDeps = errors.New(ErrNilDepsFatalLogMsg)

// Deps are the dependencies handed to every handler.
type Deps struct {
	Cfg      *config.Config
	DB       *gorm.DB
	Sessions *session.Manager
	Setup    *setup.Service
	Policy   *password.Policy
}

// Valid reports whether the dependencies every handler needs are set.
func (d *Deps) Valid() bool {
	return d != nil && d.Cfg != nil && d.DB != nil && d.Sessions != nil
}

// Service is the interface for a web handler service.
type Service interface {
	Init(router fiber.Router, deps *Deps) error
}
