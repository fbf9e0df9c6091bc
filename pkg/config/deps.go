package config

import (
	"log/slog"

	"github.com/shillingix/backend/pkg/eventbus"
	"github.com/shillingix/backend/pkg/provider/payment"
	"github.com/shillingix/backend/pkg/provider/settlement"
	"github.com/shillingix/backend/pkg/repository"
)

// Deps carries the wired infrastructure every service layer needs.
type Deps struct {
	Uow               repository.UnitOfWork
	PaymentProvider   payment.Payment
	SettlementGateway settlement.Gateway
	EventBus          eventbus.Bus
	Logger            *slog.Logger
	Config            *App
}
