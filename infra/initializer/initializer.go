// Package initializer wires the application dependencies from configuration:
// logger, database, repositories, providers, and the event bus.
package initializer

import (
	"fmt"

	"github.com/shillingix/backend/infra"
	infraeventbus "github.com/shillingix/backend/infra/eventbus"
	"github.com/shillingix/backend/infra/provider/chainbridge"
	"github.com/shillingix/backend/infra/provider/mockpayment"
	"github.com/shillingix/backend/infra/provider/mpesa"
	infrarepository "github.com/shillingix/backend/infra/repository"
	"github.com/shillingix/backend/pkg/config"
	"github.com/shillingix/backend/pkg/provider/payment"
	"github.com/shillingix/backend/pkg/provider/settlement"
)

// InitializeDependencies builds the full dependency bag for the application.
func InitializeDependencies(cfg *config.App) (deps config.Deps, err error) {
	logger := setupLogger(cfg.Log)
	deps.Logger = logger
	deps.Config = cfg

	// Database and unit of work.
	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		return deps, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := infrarepository.Migrate(db); err != nil {
		return deps, fmt.Errorf("failed to run migrations: %w", err)
	}
	deps.Uow = infrarepository.NewUoW(db)

	// Event bus.
	deps.EventBus = infraeventbus.NewWithMemory(logger)

	// Payment provider. The mock accepts every push and payout, for local
	// development without Daraja sandbox credentials.
	var paymentProvider payment.Payment
	if cfg.Mpesa.UseMock {
		logger.Warn("using mock payment provider; no real money moves")
		paymentProvider = mockpayment.New()
	} else {
		paymentProvider = mpesa.New(cfg.Mpesa, logger)
	}
	deps.PaymentProvider = paymentProvider

	// Settlement gateway. An empty URL leaves the gateway nil and every
	// trade settles local-only.
	var gateway settlement.Gateway
	if cfg.ChainBridge.URL != "" {
		gateway = chainbridge.New(cfg.ChainBridge, logger)
	} else {
		logger.Info("chain bridge not configured; settling local-only")
	}
	deps.SettlementGateway = gateway

	return deps, nil
}
