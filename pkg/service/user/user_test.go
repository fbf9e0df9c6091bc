package user_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/shillingix/backend/internal/fixtures"
	"github.com/shillingix/backend/pkg/config"
	"github.com/shillingix/backend/pkg/domain/common"
	"github.com/shillingix/backend/pkg/service/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService() (*user.Service, *fixtures.Store) {
	store := fixtures.NewStore()
	svc := user.NewService(config.Deps{
		Uow:    fixtures.NewUoW(store),
		Logger: slog.Default(),
	})
	return svc, store
}

func TestRegister_CreatesUserAndWallet(t *testing.T) {
	svc, store := newService()

	u, err := svc.Register(context.Background(), "wanjiku", "wanjiku@example.com", "s3cret-pass", "0712345678")
	require.NoError(t, err)

	assert.Equal(t, "wanjiku", u.Username)
	assert.Equal(t, "254712345678", u.PhoneNumber)
	assert.Equal(t, "user", u.Role)
	// A zero-balance wallet comes with registration.
	assert.Equal(t, int64(0), store.WalletBalance(u.ID))

	got, err := svc.Get(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Username, got.Username)
}

func TestRegister_InvalidEmail(t *testing.T) {
	svc, _ := newService()
	_, err := svc.Register(context.Background(), "wanjiku", "not-an-email", "s3cret-pass", "")
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestRegister_InvalidPhone(t *testing.T) {
	svc, _ := newService()
	_, err := svc.Register(context.Background(), "wanjiku", "wanjiku@example.com", "s3cret-pass", "12345")
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestUpdateRole(t *testing.T) {
	svc, _ := newService()
	u, err := svc.Register(context.Background(), "wanjiku", "wanjiku@example.com", "s3cret-pass", "")
	require.NoError(t, err)

	require.NoError(t, svc.UpdateRole(context.Background(), u.ID, "admin"))
	got, err := svc.Get(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "admin", got.Role)

	require.ErrorIs(t, svc.UpdateRole(context.Background(), u.ID, "superuser"), common.ErrValidation)
	require.ErrorIs(t, svc.UpdateRole(context.Background(), uuid.New(), "admin"), common.ErrUserNotFound)
}
