// Package app assembles services from wired infrastructure. It is the
// composition root shared by the HTTP server, the CLI, and tests.
package app

import (
	"github.com/shillingix/backend/pkg/config"
	"github.com/shillingix/backend/pkg/service/auth"
	"github.com/shillingix/backend/pkg/service/notification"
	"github.com/shillingix/backend/pkg/service/portfolio"
	"github.com/shillingix/backend/pkg/service/product"
	"github.com/shillingix/backend/pkg/service/reconciler"
	"github.com/shillingix/backend/pkg/service/user"
)

// App holds the composed services and their shared dependencies.
type App struct {
	Deps   config.Deps
	Config *config.App

	AuthService         *auth.Service
	UserService         *user.Service
	PortfolioService    *portfolio.Service
	ProductService      *product.Service
	ReconcilerService   *reconciler.Service
	NotificationService *notification.Service
}

// New composes the application from wired dependencies and subscribes the
// notification handlers to the event bus.
func New(deps config.Deps, cfg *config.App) *App {
	a := &App{
		Deps:                deps,
		Config:              cfg,
		AuthService:         auth.NewWithJWT(deps.Uow, &cfg.Jwt, deps.Logger),
		UserService:         user.NewService(deps),
		PortfolioService:    portfolio.NewService(deps),
		ProductService:      product.NewService(deps),
		ReconcilerService:   reconciler.NewService(deps),
		NotificationService: notification.NewService(deps.Logger),
	}
	if deps.EventBus != nil {
		a.NotificationService.RegisterHandlers(deps.EventBus)
	}
	return a
}
