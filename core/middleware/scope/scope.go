// Package scope extracts the owning account identifier from the request.
package scope

import (
	"github.com/gofiber/fiber/v2"
)

// Header names the request header carrying the account identifier.
const Header = "X-User-ID"

// New returns a middleware that requires the scope header and stores its
// value in c.Locals("scope"). Requests without a scope are rejected before
// any store access happens.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		s := c.Get(Header)
		if s == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "missing " + Header + " header",
			})
		}
		c.Locals("scope", s)
		return c.Next()
	}
}

// FromCtx returns the scope stored by the middleware, or "".
func FromCtx(c *fiber.Ctx) string {
	if s, ok := c.Locals("scope").(string); ok {
		return s
	}
	return ""
}
