package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/lumenboard/lumenboard/internal/db/models"
	accesslog "github.com/lumenboard/lumenboard/internal/logger/adapter/fiber"
)

const (
	// LocalsCurrentUser is the fiber.Locals key of the authenticated *models.User.
	LocalsCurrentUser = "CurrentUser"
	// LocalsSessionID is the fiber.Locals key of the resolved session id.
	LocalsSessionID = "SessionID"

	msgUnauthenticated = "Unauthenticated"
	msgForbidden       = "You don't have permissions to do that."
)

// SessionResolver returns the user owning a session id.
type SessionResolver interface {
	Lookup(sessionID string) (*models.User, error)
}

// Middleware resolves the session cookie named cookieName.
func Middleware(sessions SessionResolver, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := c.Cookies(cookieName)
		if sessionID == "" {
			return c.Next()
		}

		user, err := sessions.Lookup(sessionID)
		if err != nil {
			log.Debug().Err(err).Msg("ignoring session cookie")

			return c.Next()
		}

		c.Locals(LocalsCurrentUser, user)
		c.Locals(LocalsSessionID, sessionID)
		c.Locals(accesslog.LocalsUserID, user.ID)

		return c.Next()
	}
}

// CurrentUser returns the authenticated user or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(LocalsCurrentUser).(*models.User)

	return user
}

// SessionID returns the session id resolved by Middleware or "".
func SessionID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalsSessionID).(string)

	return id
}

// RequireAuthenticated rejects requests without a valid session with 401.
func RequireAuthenticated(c *fiber.Ctx) error {
	if CurrentUser(c) == nil {
		return fiber.NewError(fiber.StatusUnauthorized, msgUnauthenticated)
	}

	return c.Next()
}

// RequireAdmin rejects anonymous requests with 401 and non-admins with 403.
func RequireAdmin(c *fiber.Ctx) error {
	user := CurrentUser(c)
	if user == nil {
		return fiber.NewError(fiber.StatusUnauthorized, msgUnauthenticated)
	}

	if !user.IsAdmin() {
		return fiber.NewError(fiber.StatusForbidden, msgForbidden)
	}

	return c.Next()
}
