// Package webapi provides the HTTP surface of the platform, organized into
// sub-packages per domain:
//   - auth: registration and login
//   - wallet: balance, ledger history, deposits, withdrawals
//   - product: the public investment-product catalog
//   - invest: position purchase, disposal, and portfolio
//   - payment: the M-Pesa callback webhook
//   - admin: role-gated platform management
package webapi

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/shillingix/backend/pkg/app"
	adminweb "github.com/shillingix/backend/webapi/admin"
	authweb "github.com/shillingix/backend/webapi/auth"
	"github.com/shillingix/backend/webapi/common"
	investweb "github.com/shillingix/backend/webapi/invest"
	paymentweb "github.com/shillingix/backend/webapi/payment"
	productweb "github.com/shillingix/backend/webapi/product"
	walletweb "github.com/shillingix/backend/webapi/wallet"
)

// SetupApp builds the Fiber application with middleware and all routes.
func SetupApp(a *app.App) *fiber.App {
	fiberApp := fiber.New(fiber.Config{
		AppName: "Shillingi X API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return common.ProblemDetailsJSON(c, "Internal Server Error", err)
		},
	})

	fiberApp.Get("/swagger/*", swagger.New(swagger.Config{
		TryItOutEnabled:      true,
		PersistAuthorization: true,
	}))

	// Rate limit keyed by client IP, honoring proxy headers.
	fiberApp.Use(limiter.New(limiter.Config{
		Max:        a.Config.RateLimit.MaxRequests,
		Expiration: a.Config.RateLimit.Window,
		KeyGenerator: func(c *fiber.Ctx) string {
			if forwardedFor := c.Get("X-Forwarded-For"); forwardedFor != "" {
				if commaIndex := strings.Index(forwardedFor, ","); commaIndex != -1 {
					return strings.TrimSpace(forwardedFor[:commaIndex])
				}
				return strings.TrimSpace(forwardedFor)
			}
			if realIP := c.Get("X-Real-IP"); realIP != "" {
				return realIP
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return common.ProblemDetailsJSON(
				c,
				"Too Many Requests",
				errors.New("rate limit exceeded"),
				fiber.StatusTooManyRequests,
			)
		},
	}))
	fiberApp.Use(recover.New())
	fiberApp.Use(logger.New())

	fiberApp.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Shillingi X API is running")
	})

	authweb.Routes(fiberApp, a.AuthService, a.UserService)
	productweb.Routes(fiberApp, a.ProductService)
	walletweb.Routes(fiberApp, a.PortfolioService, a.ReconcilerService, a.AuthService, a.Config)
	investweb.Routes(fiberApp, a.ReconcilerService, a.PortfolioService, a.AuthService, a.Config)
	paymentweb.Routes(fiberApp, a.Deps.PaymentProvider, a.ReconcilerService)
	adminweb.Routes(fiberApp, a.ProductService, a.UserService, a.ReconcilerService, a.Deps.Uow, a.Config)

	return fiberApp
}
