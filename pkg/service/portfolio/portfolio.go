// Package portfolio provides the read side of a user's holdings: wallet
// balance, positions, and ledger history.
package portfolio

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shillingix/backend/pkg/config"
	"github.com/shillingix/backend/pkg/dto"
	"github.com/shillingix/backend/pkg/money"
	"github.com/shillingix/backend/pkg/repository"
)

// Summary aggregates a user's wallet and position value.
type Summary struct {
	Wallet        *dto.WalletRead       `json:"wallet"`
	Investments   []*dto.InvestmentRead `json:"investments"`
	TotalInvested float64               `json:"total_invested"`
	// TotalValue is the wallet balance plus active principal.
	TotalValue float64 `json:"total_value"`
}

// Service answers portfolio queries.
type Service struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
}

// NewService creates a new Service with the provided dependencies.
func NewService(deps config.Deps) *Service {
	return &Service{uow: deps.Uow, logger: deps.Logger}
}

// Wallet returns the user's wallet, creating it on first access.
func (s *Service) Wallet(ctx context.Context, userID uuid.UUID) (*dto.WalletRead, error) {
	var w *dto.WalletRead
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		wallets, err := uow.WalletRepository()
		if err != nil {
			return err
		}
		w, err = wallets.GetOrCreate(ctx, userID)
		return err
	})
	return w, err
}

// Transactions returns the user's ledger history, newest first.
func (s *Service) Transactions(ctx context.Context, userID uuid.UUID, limit int) ([]*dto.TransactionRead, error) {
	transactions, err := s.uow.TransactionRepository()
	if err != nil {
		return nil, err
	}
	return transactions.ListByUser(ctx, userID, limit)
}

// Investments returns the user's positions, optionally filtered by status.
func (s *Service) Investments(ctx context.Context, userID uuid.UUID, status string) ([]*dto.InvestmentRead, error) {
	investments, err := s.uow.InvestmentRepository()
	if err != nil {
		return nil, err
	}
	return investments.ListByUser(ctx, userID, status)
}

// Investment returns a single position scoped to its owner.
func (s *Service) Investment(ctx context.Context, id, userID uuid.UUID) (*dto.InvestmentRead, error) {
	investments, err := s.uow.InvestmentRepository()
	if err != nil {
		return nil, err
	}
	return investments.Get(ctx, id, userID)
}

// Summarize returns the wallet plus position totals in one view.
func (s *Service) Summarize(ctx context.Context, userID uuid.UUID) (*Summary, error) {
	w, err := s.Wallet(ctx, userID)
	if err != nil {
		return nil, err
	}
	positions, err := s.Investments(ctx, userID, "active")
	if err != nil {
		return nil, err
	}

	total := money.Zero(money.DefaultCurrency)
	for _, p := range positions {
		principal, err := money.New(p.Amount, money.Code(p.Currency))
		if err != nil {
			return nil, err
		}
		if total, err = total.Add(principal); err != nil {
			return nil, err
		}
	}
	walletBalance, err := money.New(w.Balance, money.Code(w.Currency))
	if err != nil {
		return nil, err
	}
	totalValue, err := walletBalance.Add(total)
	if err != nil {
		return nil, err
	}
	return &Summary{
		Wallet:        w,
		Investments:   positions,
		TotalInvested: total.AmountFloat(),
		TotalValue:    totalValue.AmountFloat(),
	}, nil
}
