package portfolio_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/shillingix/backend/internal/fixtures"
	"github.com/shillingix/backend/pkg/config"
	"github.com/shillingix/backend/pkg/dto"
	"github.com/shillingix/backend/pkg/service/portfolio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(store *fixtures.Store) *portfolio.Service {
	return portfolio.NewService(config.Deps{
		Uow:    fixtures.NewUoW(store),
		Logger: slog.Default(),
	})
}

func seedPosition(store *fixtures.Store, userID uuid.UUID, amount int64, status string) {
	store.SeedInvestment(dto.InvestmentCreate{
		ID:           uuid.New(),
		UserID:       userID,
		ProductID:    uuid.New(),
		Name:         "Infrastructure Bond 2030",
		Type:         "infrastructure",
		Amount:       amount,
		InterestRate: 12.5,
		Status:       status,
	})
}

func TestSummarize(t *testing.T) {
	store := fixtures.NewStore()
	svc := newService(store)
	userID := uuid.New()
	store.SeedWallet(userID, 400_00)
	seedPosition(store, userID, 500_00, "active")
	seedPosition(store, userID, 100_00, "active")
	seedPosition(store, userID, 250_00, "sold")

	summary, err := svc.Summarize(context.Background(), userID)
	require.NoError(t, err)

	assert.Len(t, summary.Investments, 2)
	assert.Equal(t, 600.0, summary.TotalInvested)
	assert.Equal(t, 1000.0, summary.TotalValue)
}

// Totals are summed in minor units, so amounts that are inexact as binary
// floats still come out whole.
func TestSummarize_MinorUnitPrecision(t *testing.T) {
	store := fixtures.NewStore()
	svc := newService(store)
	userID := uuid.New()
	store.SeedWallet(userID, 10)
	seedPosition(store, userID, 20, "active")

	summary, err := svc.Summarize(context.Background(), userID)
	require.NoError(t, err)

	assert.Equal(t, 0.2, summary.TotalInvested)
	assert.Equal(t, 0.3, summary.TotalValue)
}

func TestSummarize_EmptyPortfolio(t *testing.T) {
	store := fixtures.NewStore()
	svc := newService(store)
	userID := uuid.New()

	summary, err := svc.Summarize(context.Background(), userID)
	require.NoError(t, err)

	require.NotNil(t, summary.Wallet)
	assert.Equal(t, userID, summary.Wallet.UserID)
	assert.Empty(t, summary.Investments)
	assert.Zero(t, summary.TotalInvested)
	assert.Zero(t, summary.TotalValue)
}
