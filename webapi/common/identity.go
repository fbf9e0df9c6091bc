package common

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	domaincommon "github.com/shillingix/backend/pkg/domain/common"
	authsvc "github.com/shillingix/backend/pkg/service/auth"
)

// CurrentUser resolves the authenticated user ID and role from the verified
// token stored by the JWT middleware.
func CurrentUser(c *fiber.Ctx, authSvc *authsvc.Service) (uuid.UUID, string, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return uuid.Nil, "", domaincommon.ErrUserUnauthorized
	}
	return authSvc.CurrentUser(token)
}
