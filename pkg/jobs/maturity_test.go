package jobs_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	infraeventbus "github.com/shillingix/backend/infra/eventbus"
	"github.com/shillingix/backend/infra/provider/mockpayment"
	"github.com/shillingix/backend/internal/fixtures"
	"github.com/shillingix/backend/pkg/config"
	"github.com/shillingix/backend/pkg/dto"
	"github.com/shillingix/backend/pkg/jobs"
	"github.com/shillingix/backend/pkg/service/reconciler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSweep(store *fixtures.Store) *jobs.MaturitySweep {
	uow := fixtures.NewUoW(store)
	rec := reconciler.NewService(config.Deps{
		Uow:             uow,
		PaymentProvider: mockpayment.New(),
		EventBus:        infraeventbus.NewWithMemory(slog.Default()),
		Logger:          slog.Default(),
	})
	return jobs.NewMaturitySweep(uow, rec, slog.Default())
}

func seedPosition(store *fixtures.Store, userID uuid.UUID, maturity time.Time) uuid.UUID {
	id := uuid.New()
	store.SeedInvestment(dto.InvestmentCreate{
		ID:           id,
		UserID:       userID,
		ProductID:    uuid.New(),
		Name:         "Treasury Bond",
		Type:         "government",
		Amount:       1_000_00,
		InterestRate: 10,
		Status:       "active",
		MaturityDate: &maturity,
	})
	return id
}

func TestRun_CompletesOnlyMaturedPositions(t *testing.T) {
	store := fixtures.NewStore()
	userID := uuid.New()
	store.SeedWallet(userID, 0)

	maturedID := seedPosition(store, userID, time.Now().AddDate(0, 0, -1))
	pendingID := seedPosition(store, userID, time.Now().AddDate(0, 6, 0))

	sweep := newSweep(store)
	completed := sweep.Run(context.Background(), time.Now())

	assert.Equal(t, 1, completed)
	assert.Equal(t, "completed", store.InvestmentStatus(maturedID))
	assert.Equal(t, "active", store.InvestmentStatus(pendingID))
	// Principal credited; interest is zero because the product behind the
	// seeded position does not exist, so no term is known.
	assert.Equal(t, int64(1_000_00), store.WalletBalance(userID))
}

func TestRun_EmptySweep(t *testing.T) {
	store := fixtures.NewStore()
	sweep := newSweep(store)
	assert.Equal(t, 0, sweep.Run(context.Background(), time.Now()))
}

func TestRun_SecondSweepIsNoOp(t *testing.T) {
	store := fixtures.NewStore()
	userID := uuid.New()
	store.SeedWallet(userID, 0)
	seedPosition(store, userID, time.Now().AddDate(0, 0, -1))

	sweep := newSweep(store)
	require.Equal(t, 1, sweep.Run(context.Background(), time.Now()))
	require.Equal(t, 0, sweep.Run(context.Background(), time.Now()))
	assert.Equal(t, int64(1_000_00), store.WalletBalance(userID))
}

func TestNewScheduler_RejectsBadExpression(t *testing.T) {
	store := fixtures.NewStore()
	_, err := jobs.NewScheduler(newSweep(store), "not a cron spec", slog.Default())
	require.Error(t, err)

	s, err := jobs.NewScheduler(newSweep(store), "0 2 * * *", slog.Default())
	require.NoError(t, err)
	require.NotNil(t, s)
}
