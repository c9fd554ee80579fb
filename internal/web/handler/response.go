package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/lumenboard/lumenboard/internal/config"
)

// FieldErrors answers 400 with one message per invalid field.
func FieldErrors(c *fiber.Ctx, errs map[string]string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
}

// Message answers status with a single message.
func Message(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"message": msg})
}

// InvalidBody answers 400 for a body that could not be decoded.
func InvalidBody(c *fiber.Ctx) error {
	return Message(c, fiber.StatusBadRequest, MsgInvalidBody)
}

// SetSessionCookie sets the session cookie for sessionID.
func SetSessionCookie(c *fiber.Ctx, cfg *config.Config, sessionID string) {
	c.Cookie(&fiber.Cookie{
		Name:     cfg.Webserver.Session.CookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(cfg.Webserver.Session.ExpiryTime.Seconds()),
		Expires:  time.Now().Add(cfg.Webserver.Session.ExpiryTime),
		Secure:   !cfg.DevMode,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c *fiber.Ctx, cfg *config.Config) {
	c.Cookie(&fiber.Cookie{
		Name:     cfg.Webserver.Session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   !cfg.DevMode,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
