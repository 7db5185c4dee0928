package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/arvind-kp/sevaconnect_backend/internal/utils"
)

// AttachJWTLocals lifts the parsed claims into plain locals so handlers
// read c.Locals("userId") / c.Locals("role") without touching jwt types.
func AttachJWTLocals() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Locals("user")
		if raw == nil {
			return fiber.ErrUnauthorized
		}

		token, okt := raw.(*jwt.Token)
		if !okt || token == nil {
			return fiber.ErrUnauthorized
		}

		claims, okc := token.Claims.(*utils.Claims)
		if !okc {
			return fiber.ErrUnauthorized
		}

		uid := strings.TrimSpace(claims.UserID)
		role := strings.ToLower(strings.TrimSpace(claims.Role))

		if uid == "" {
			return fiber.ErrUnauthorized
		}

		c.Locals("userId", uid)
		c.Locals("role", role)

		return c.Next()
	}
}
