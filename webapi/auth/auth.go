// Package auth exposes registration and login endpoints.
package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	domaincommon "github.com/shillingix/backend/pkg/domain/common"
	authsvc "github.com/shillingix/backend/pkg/service/auth"
	usersvc "github.com/shillingix/backend/pkg/service/user"
	"github.com/shillingix/backend/webapi/common"
)

// Routes registers the authentication endpoints.
func Routes(app *fiber.App, authSvc *authsvc.Service, userSvc *usersvc.Service) {
	app.Post("/auth/register", Register(userSvc))
	app.Post("/auth/login", Login(authSvc))
}

// Register creates a new user and their wallet.
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterInput true "Registration details"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Router /auth/register [post]
func Register(userSvc *usersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[RegisterInput](c)
		if input == nil {
			return err
		}
		u, err := userSvc.Register(
			c.Context(), input.Username, input.Email, input.Password, input.PhoneNumber)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Registration failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "User registered", u)
	}
}

// Login authenticates a user and returns a JWT token.
// @Summary User login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginInput true "Login credentials"
// @Success 200 {object} common.Response
// @Failure 401 {object} common.ProblemDetails
// @Router /auth/login [post]
func Login(authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[LoginInput](c)
		if input == nil {
			return err
		}
		u, err := authSvc.Login(c.Context(), input.Identity, input.Password)
		if err != nil {
			if errors.Is(err, domaincommon.ErrUserUnauthorized) {
				return common.ProblemDetailsJSON(c, "Invalid identity or password", err,
					"Identity or password is incorrect", fiber.StatusUnauthorized)
			}
			return common.ProblemDetailsJSON(c, "Internal Server Error", err)
		}
		token, err := authSvc.GenerateToken(c.Context(), u)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Internal Server Error", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Success login", fiber.Map{"token": token})
	}
}
