package auth_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shillingix/backend/internal/fixtures"
	"github.com/shillingix/backend/pkg/config"
	"github.com/shillingix/backend/pkg/domain/common"
	"github.com/shillingix/backend/pkg/dto"
	"github.com/shillingix/backend/pkg/service/auth"
	"github.com/shillingix/backend/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) (*auth.Service, *fixtures.Store, uuid.UUID) {
	t.Helper()
	store := fixtures.NewStore()
	userID := uuid.New()
	hash, err := utils.HashPassword("s3cret-pass")
	require.NoError(t, err)
	store.SeedUser(dto.UserCreate{
		ID:       userID,
		Username: "wanjiku",
		Email:    "wanjiku@example.com",
		Password: hash,
		Role:     "user",
	})
	cfg := &config.Jwt{Secret: "test-secret", Expiry: time.Hour}
	return auth.NewWithJWT(fixtures.NewUoW(store), cfg, slog.Default()), store, userID
}

func TestLogin_ByUsernameAndEmail(t *testing.T) {
	svc, _, userID := newAuthService(t)

	u, err := svc.Login(context.Background(), "wanjiku", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, userID, u.ID)

	u, err = svc.Login(context.Background(), "wanjiku@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, userID, u.ID)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _, _ := newAuthService(t)
	_, err := svc.Login(context.Background(), "wanjiku", "wrong")
	require.ErrorIs(t, err, common.ErrUserUnauthorized)
}

func TestLogin_UnknownIdentity(t *testing.T) {
	svc, _, _ := newAuthService(t)
	_, err := svc.Login(context.Background(), "nobody", "s3cret-pass")
	require.ErrorIs(t, err, common.ErrUserUnauthorized)
}

func TestTokenRoundTrip(t *testing.T) {
	svc, _, userID := newAuthService(t)

	u, err := svc.Login(context.Background(), "wanjiku", "s3cret-pass")
	require.NoError(t, err)
	signed, err := svc.GenerateToken(context.Background(), u)
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	parsed, err := jwt.Parse(signed, func(token *jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	gotID, role, err := svc.CurrentUser(parsed)
	require.NoError(t, err)
	assert.Equal(t, userID, gotID)
	assert.Equal(t, "user", role)
}

func TestCurrentUser_NilToken(t *testing.T) {
	svc, _, _ := newAuthService(t)
	_, _, err := svc.CurrentUser(nil)
	require.ErrorIs(t, err, common.ErrUserUnauthorized)
}
