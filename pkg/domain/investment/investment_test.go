package investment_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shillingix/backend/pkg/domain/investment"
)

func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	m.Run()
}

func position(t *testing.T, principal int64, rate float64) *investment.Investment {
	t.Helper()
	inv, err := investment.New().
		WithUserID(uuid.New()).
		WithName("Infrastructure Bond 2030").
		WithType(investment.TypeInfrastructure).
		WithAmount(principal).
		WithInterestRate(rate).
		Build()
	require.NoError(t, err)
	return inv
}

func TestAccruedInterest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		principal int64
		rate      float64
		termDays  int
		want      int64
	}{
		{"exact full year", 100_000, 12.5, 365, 12_500},
		{"fraction rounds up", 99_999, 12.5, 365, 12_500},  // 12499.875
		{"fraction rounds down", 993, 12.5, 365, 124},      // 124.125
		{"half rounds away from zero", 996, 12.5, 365, 125}, // 124.5
		{"zero term", 100_000, 12.5, 0, 0},
		{"zero rate", 100_000, 0, 365, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert := assert.New(t)

			inv := position(t, tt.principal, tt.rate)
			got := inv.AccruedInterest(tt.termDays)
			assert.Equal(tt.want, got.Amount())
		})
	}
}

func TestLifecycleTransitions(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	inv := position(t, 50_000, 10)
	require.Equal(investment.StatusActive, inv.Status)

	require.NoError(inv.Sell())
	require.Equal(investment.StatusSold, inv.Status)

	// sold positions are terminal
	require.Error(inv.Sell())
	require.Error(inv.Complete())
}

func TestIsMatured(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	now := time.Now()
	inv := position(t, 50_000, 10)
	assert.False(inv.IsMatured(now))

	past := now.Add(-24 * time.Hour)
	inv.MaturityDate = &past
	assert.True(inv.IsMatured(now))

	future := now.Add(24 * time.Hour)
	inv.MaturityDate = &future
	assert.False(inv.IsMatured(now))
}
