package eventbus

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/shillingix/backend/pkg/domain/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmit_DispatchesToRegisteredHandlers(t *testing.T) {
	bus := NewWithMemory(slog.Default())
	userID := uuid.New()

	var got events.Event
	bus.Register("DepositConfirmed", func(ctx context.Context, e events.Event) error {
		got = e
		return nil
	})

	evt := events.DepositConfirmed{UserID: userID, MpesaReceipt: "NLJ7RT61SV"}
	require.NoError(t, bus.Emit(context.Background(), evt))

	confirmed, ok := got.(events.DepositConfirmed)
	require.True(t, ok)
	assert.Equal(t, userID, confirmed.UserID)
	assert.Len(t, bus.Published(), 1)
}

func TestEmit_HandlerErrorDoesNotPropagate(t *testing.T) {
	bus := NewWithMemory(slog.Default())
	bus.Register("DepositFailed", func(ctx context.Context, e events.Event) error {
		return errors.New("notification channel down")
	})

	err := bus.Emit(context.Background(), events.DepositFailed{Reason: "cancelled"})
	assert.NoError(t, err)
}

func TestEmit_NoHandlersIsANoOp(t *testing.T) {
	bus := NewWithMemory(slog.Default())
	require.NoError(t, bus.Emit(context.Background(), events.InvestmentSold{}))
	assert.Len(t, bus.Published(), 1)

	bus.ClearPublished()
	assert.Empty(t, bus.Published())
}
