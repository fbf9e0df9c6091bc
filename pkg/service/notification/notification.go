// Package notification turns domain events into user-facing notifications.
// The current channel is structured logging; an SMS or push channel plugs in
// behind the same handlers.
package notification

import (
	"context"
	"log/slog"

	"github.com/shillingix/backend/pkg/domain/events"
	"github.com/shillingix/backend/pkg/eventbus"
)

// Service subscribes to reconciler events and notifies users.
type Service struct {
	logger *slog.Logger
}

// NewService creates the notification service.
func NewService(logger *slog.Logger) *Service {
	return &Service{logger: logger}
}

// RegisterHandlers subscribes the service to every event it notifies on.
func (s *Service) RegisterHandlers(bus eventbus.Bus) {
	bus.Register(events.DepositPending{}.Type(), s.onDepositPending)
	bus.Register(events.DepositConfirmed{}.Type(), s.onDepositConfirmed)
	bus.Register(events.DepositFailed{}.Type(), s.onDepositFailed)
	bus.Register(events.WithdrawalCompleted{}.Type(), s.onWithdrawalCompleted)
	bus.Register(events.InvestmentSettled{}.Type(), s.onInvestmentSettled)
	bus.Register(events.InvestmentSold{}.Type(), s.onInvestmentSold)
	bus.Register(events.InvestmentMatured{}.Type(), s.onInvestmentMatured)
}

func (s *Service) onDepositPending(ctx context.Context, event events.Event) error {
	e, ok := event.(events.DepositPending)
	if !ok {
		return nil
	}
	s.logger.Info("notify: deposit initiated, check your phone",
		"userID", e.UserID, "amount", e.Amount.String(), "phone", e.PhoneNumber)
	return nil
}

func (s *Service) onDepositConfirmed(ctx context.Context, event events.Event) error {
	e, ok := event.(events.DepositConfirmed)
	if !ok {
		return nil
	}
	s.logger.Info("notify: deposit confirmed",
		"userID", e.UserID, "amount", e.Amount.String(), "receipt", e.MpesaReceipt)
	return nil
}

func (s *Service) onDepositFailed(ctx context.Context, event events.Event) error {
	e, ok := event.(events.DepositFailed)
	if !ok {
		return nil
	}
	s.logger.Warn("notify: deposit failed",
		"userID", e.UserID, "amount", e.Amount.String(), "reason", e.Reason)
	return nil
}

func (s *Service) onWithdrawalCompleted(ctx context.Context, event events.Event) error {
	e, ok := event.(events.WithdrawalCompleted)
	if !ok {
		return nil
	}
	s.logger.Info("notify: withdrawal sent",
		"userID", e.UserID, "amount", e.Amount.String(), "phone", e.PhoneNumber)
	return nil
}

func (s *Service) onInvestmentSettled(ctx context.Context, event events.Event) error {
	e, ok := event.(events.InvestmentSettled)
	if !ok {
		return nil
	}
	s.logger.Info("notify: investment settled",
		"userID", e.UserID, "investmentID", e.InvestmentID,
		"amount", e.Amount.String(), "onChain", e.OnChain)
	return nil
}

func (s *Service) onInvestmentSold(ctx context.Context, event events.Event) error {
	e, ok := event.(events.InvestmentSold)
	if !ok {
		return nil
	}
	s.logger.Info("notify: investment sold",
		"userID", e.UserID, "investmentID", e.InvestmentID, "amount", e.Amount.String())
	return nil
}

func (s *Service) onInvestmentMatured(ctx context.Context, event events.Event) error {
	e, ok := event.(events.InvestmentMatured)
	if !ok {
		return nil
	}
	s.logger.Info("notify: investment matured",
		"userID", e.UserID, "investmentID", e.InvestmentID,
		"principal", e.Principal.String(), "interest", e.Interest.String())
	return nil
}
