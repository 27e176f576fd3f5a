package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/accounts/api/http/handlers"
)

// Register wires all HTTP routes onto given Fiber app. The verification
// success page is only served here when successPath is a local path.
func Register(app *fiber.App, auth *handlers.AuthHandler, health *handlers.HealthHandler, pages *handlers.PageHandler, authMW fiber.Handler, successPath string) {
	api := app.Group("/api")

	// Health and readiness endpoints for probes/monitoring
	api.Get("/health", health.Health)
	api.Get("/ready", health.Ready)

	api.Post("/signup", auth.Signup)
	api.Get("/verify", auth.Verify)
	api.Post("/login", auth.Login)
	api.Get("/me", authMW, auth.Me)

	if strings.HasPrefix(successPath, "/") {
		app.Get(successPath, pages.VerificationSuccess)
	}
}
