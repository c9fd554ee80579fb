// Package auth provides session authentication middleware for the API.
//
// Middleware resolves the session cookie to the current user and stores it
// in fiber.Locals. It never rejects a request on its own. Routes that need a
// user chain RequireAuthenticated or RequireAdmin after it:
//
//	app.Use(auth.Middleware(manager, cookieName))
//	router.Get("/admin_checklist", auth.RequireAdmin, handler)
package auth
