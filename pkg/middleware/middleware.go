// Package middleware provides authentication middleware for API routes.
package middleware

import (
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shillingix/backend/pkg/config"
	domainuser "github.com/shillingix/backend/pkg/domain/user"
)

// JwtProtected verifies the bearer token and stores it in c.Locals("user").
func JwtProtected(cfg config.Jwt) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   jwtware.SigningKey{Key: []byte(cfg.Secret)},
		ErrorHandler: jwtError,
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	status := fiber.StatusUnauthorized
	if err.Error() == "missing or malformed JWT" {
		status = fiber.StatusBadRequest
	}
	return c.Status(status).JSON(fiber.Map{
		"type":   "about:blank",
		"title":  "Unauthorized",
		"status": status,
		"detail": err.Error(),
	})
}

// AdminRequired rejects tokens whose role claim cannot manage the platform.
// Must run after JwtProtected.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := c.Locals("user").(*jwt.Token)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"type":   "about:blank",
				"title":  "Unauthorized",
				"status": fiber.StatusUnauthorized,
				"detail": "missing user context",
			})
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return forbidden(c)
		}
		role, _ := claims["role"].(string)
		if !domainuser.Role(role).CanManagePlatform() {
			return forbidden(c)
		}
		return c.Next()
	}
}

func forbidden(c *fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
		"type":   "about:blank",
		"title":  "Forbidden",
		"status": fiber.StatusForbidden,
		"detail": "admin role required",
	})
}
