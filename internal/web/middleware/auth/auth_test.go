package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenboard/lumenboard/internal/db/models"
)

type fakeResolver map[string]*models.User

func (f fakeResolver) Lookup(id string) (*models.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}

	return nil, assert.AnError
}

func newTestApp() *fiber.App {
	resolver := fakeResolver{
		"admin-session": {ID: 1, Role: models.Role{Name: models.RoleAdmin}},
		"user-session":  {ID: 2, Role: models.Role{Name: models.RoleUser}},
	}

	app := fiber.New()
	app.Use(Middleware(resolver, "lumenboard.SESSION"))

	app.Get("/whoami", func(c *fiber.Ctx) error {
		if u := CurrentUser(c); u != nil {
			return c.JSON(fiber.Map{"id": u.ID, "session": SessionID(c)})
		}

		return c.JSON(fiber.Map{"id": nil})
	})
	app.Get("/private", RequireAuthenticated, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/admin", RequireAdmin, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	return app
}

func TestRequireAdmin(t *testing.T) {
	app := newTestApp()

	testCases := []struct {
		name     string
		path     string
		cookie   string
		expected int
	}{
		{name: "admin route anonymous", path: "/admin", expected: fiber.StatusUnauthorized},
		{name: "admin route unknown session", path: "/admin", cookie: "stale", expected: fiber.StatusUnauthorized},
		{name: "admin route regular user", path: "/admin", cookie: "user-session", expected: fiber.StatusForbidden},
		{name: "admin route admin", path: "/admin", cookie: "admin-session", expected: fiber.StatusNoContent},
		{name: "private route anonymous", path: "/private", expected: fiber.StatusUnauthorized},
		{name: "private route user", path: "/private", cookie: "user-session", expected: fiber.StatusNoContent},
		{name: "public route anonymous", path: "/whoami", expected: fiber.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "lumenboard.SESSION", Value: tc.cookie})
			}

			resp, err := app.Test(req, -1)
			require.NoError(t, err)

			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tc.expected, resp.StatusCode)
		})
	}
}
