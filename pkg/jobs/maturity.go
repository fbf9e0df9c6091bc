// Package jobs holds scheduled background work. The maturity sweep finds
// active positions past their maturity date and completes them through the
// reconciler, crediting principal plus interest.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shillingix/backend/pkg/repository"
	"github.com/shillingix/backend/pkg/service/reconciler"
)

// MaturitySweep completes matured positions on a schedule.
type MaturitySweep struct {
	uow        repository.UnitOfWork
	reconciler *reconciler.Service
	logger     *slog.Logger
}

// NewMaturitySweep creates the sweep job.
func NewMaturitySweep(
	uow repository.UnitOfWork,
	rec *reconciler.Service,
	logger *slog.Logger,
) *MaturitySweep {
	return &MaturitySweep{uow: uow, reconciler: rec, logger: logger}
}

// Run completes every active position matured at or before asOf. Failures on
// one position are logged and do not stop the sweep; each position settles
// in its own transaction.
func (j *MaturitySweep) Run(ctx context.Context, asOf time.Time) (completed int) {
	investments, err := j.uow.InvestmentRepository()
	if err != nil {
		j.logger.Error("maturity sweep: repository unavailable", "error", err)
		return 0
	}
	matured, err := investments.ListMaturedActive(ctx, asOf)
	if err != nil {
		j.logger.Error("maturity sweep: listing failed", "error", err)
		return 0
	}
	for _, inv := range matured {
		if _, err := j.reconciler.Mature(ctx, inv.UserID, inv.ID); err != nil {
			j.logger.Error("maturity sweep: position failed",
				"investmentID", inv.ID, "userID", inv.UserID, "error", err)
			continue
		}
		completed++
	}
	if len(matured) > 0 {
		j.logger.Info("maturity sweep finished",
			"matured", len(matured), "completed", completed)
	}
	return completed
}

// Scheduler wires jobs onto a cron runner.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

// NewScheduler creates a scheduler in UTC and registers the maturity sweep
// under the given cron expression. An empty schedule registers nothing.
func NewScheduler(sweep *MaturitySweep, schedule string, logger *slog.Logger) (*Scheduler, error) {
	c := cron.New(cron.WithLocation(time.UTC))
	if schedule != "" {
		_, err := c.AddFunc(schedule, func() {
			sweep.Run(context.Background(), time.Now().UTC())
		})
		if err != nil {
			return nil, err
		}
	}
	return &Scheduler{cron: c, logger: logger}, nil
}

// Start begins running scheduled jobs in their own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("job scheduler started")
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("job scheduler stopped")
}
