package middleware

import (
	"github.com/gofiber/fiber/v3"
)

// RequirePermission guards a route behind a named permission. The required
// permission is an explicit parameter; the flattened permission set travels
// inside the JWT claims, so no extra lookup is needed per request.
func RequirePermission(name string) fiber.Handler {
	return func(c fiber.Ctx) error {
		p := GetPrincipal(c)
		if p == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing authorization",
			})
		}
		if !p.HasPermission(name) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "insufficient permissions",
			})
		}
		return c.Next()
	}
}
