package main

import (
	"fmt"
	"log/slog"

	log "github.com/charmbracelet/log"
	"github.com/shillingix/backend/infra/initializer"
	"github.com/shillingix/backend/pkg/app"
	"github.com/shillingix/backend/pkg/config"
	"github.com/shillingix/backend/pkg/jobs"
	"github.com/shillingix/backend/webapi"

	_ "github.com/shillingix/backend/docs"
)

// @title Shillingi X API
// @version 1.0.0
// @description Micro-investment platform API: KES wallets, bond and equity
// @description products, M-Pesa deposits, and on-ledger settlement.
// @host localhost:3000
// @BasePath /
//
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description "Enter your Bearer token in the format: `Bearer {token}`"
func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.LoadAppConfig(slog.Default(), ".env")
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}

	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	logger := deps.Logger

	a := app.New(deps, cfg)

	sweep := jobs.NewMaturitySweep(deps.Uow, a.ReconcilerService, logger)
	scheduler, err := jobs.NewScheduler(sweep, cfg.Jobs.MaturitySchedule, logger)
	if err != nil {
		return fmt.Errorf("failed to schedule maturity sweep: %w", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	fiberApp := webapi.SetupApp(a)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("starting server",
		"env", cfg.Env,
		"address", addr,
		"scheme", cfg.Server.Scheme,
	)
	return fiberApp.Listen(addr)
}
