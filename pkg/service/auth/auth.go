// Package auth provides login, token issuance, and current-user resolution.
// JWT is the production strategy; a basic password-check strategy backs the
// CLI, which never handles tokens.
package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shillingix/backend/pkg/config"
	"github.com/shillingix/backend/pkg/domain/common"
	"github.com/shillingix/backend/pkg/dto"
	"github.com/shillingix/backend/pkg/repository"
	"github.com/shillingix/backend/pkg/utils"
)

type contextKey string

const tokenContextKey contextKey = "token"

// Strategy abstracts how credentials become an authenticated user.
type Strategy interface {
	Login(ctx context.Context, identity, password string) (*dto.UserRead, error)
	GetCurrentUser(ctx context.Context) (uuid.UUID, string, error)
	GenerateToken(ctx context.Context, u *dto.UserRead) (string, error)
}

// Service wraps a Strategy with logging.
type Service struct {
	uow      repository.UnitOfWork
	strategy Strategy
	logger   *slog.Logger
}

// New creates an auth service with an explicit strategy.
func New(uow repository.UnitOfWork, strategy Strategy, logger *slog.Logger) *Service {
	return &Service{uow: uow, strategy: strategy, logger: logger}
}

// NewWithJWT creates an auth service using the JWT strategy.
func NewWithJWT(uow repository.UnitOfWork, cfg *config.Jwt, logger *slog.Logger) *Service {
	return New(uow, &JWTStrategy{uow: uow, cfg: cfg, logger: logger}, logger)
}

// NewWithBasic creates an auth service using the basic strategy for the CLI.
func NewWithBasic(uow repository.UnitOfWork, logger *slog.Logger) *Service {
	return New(uow, &BasicAuthStrategy{uow: uow, logger: logger}, logger)
}

// Login authenticates an identity (username or email) and password.
func (s *Service) Login(ctx context.Context, identity, password string) (*dto.UserRead, error) {
	log := s.logger.With("context", "Login", "identity", identity)
	u, err := s.strategy.Login(ctx, identity, password)
	if err != nil {
		log.Error("Login failed", "error", err)
		return nil, err
	}
	log.Info("Login successful", "userID", u.ID)
	return u, nil
}

// GenerateToken issues a token for the authenticated user.
func (s *Service) GenerateToken(ctx context.Context, u *dto.UserRead) (string, error) {
	token, err := s.strategy.GenerateToken(ctx, u)
	if err != nil {
		s.logger.Error("GenerateToken failed", "userID", u.ID, "error", err)
		return "", err
	}
	return token, nil
}

// CurrentUser resolves the user ID and role carried by a verified token.
func (s *Service) CurrentUser(token *jwt.Token) (uuid.UUID, string, error) {
	ctx := context.WithValue(context.Background(), tokenContextKey, token)
	userID, role, err := s.strategy.GetCurrentUser(ctx)
	if err != nil {
		s.logger.Error("CurrentUser failed", "error", err)
		return uuid.Nil, "", err
	}
	return userID, role, nil
}

// JWTStrategy signs and resolves HS256 tokens.
type JWTStrategy struct {
	uow    repository.UnitOfWork
	cfg    *config.Jwt
	logger *slog.Logger
}

// GenerateToken implements Strategy.
func (s *JWTStrategy) GenerateToken(ctx context.Context, u *dto.UserRead) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)
	claims := token.Claims.(jwt.MapClaims)
	claims["user_id"] = u.ID.String()
	claims["username"] = u.Username
	claims["role"] = u.Role
	claims["exp"] = time.Now().Add(s.cfg.Expiry).Unix()
	return token.SignedString([]byte(s.cfg.Secret))
}

// dummyHash keeps failed lookups on the same bcrypt timing path as failed
// password checks.
const dummyHash = "$2a$14$7zFqzDbD3RrlkMTczbXG9OWZ0FLOXjIxXzSZ.QZxkVXjXcx7QZQiC"

// Login implements Strategy.
func (s *JWTStrategy) Login(ctx context.Context, identity, password string) (*dto.UserRead, error) {
	users, err := s.uow.UserRepository()
	if err != nil {
		return nil, err
	}
	u, hash, err := users.GetByIdentity(ctx, identity)
	if err != nil {
		_ = utils.CheckPasswordHash(password, dummyHash)
		return nil, common.ErrUserUnauthorized
	}
	if !utils.CheckPasswordHash(password, hash) {
		return nil, common.ErrUserUnauthorized
	}
	return u, nil
}

// GetCurrentUser implements Strategy.
func (s *JWTStrategy) GetCurrentUser(ctx context.Context) (uuid.UUID, string, error) {
	token, ok := ctx.Value(tokenContextKey).(*jwt.Token)
	if !ok || token == nil {
		return uuid.Nil, "", common.ErrUserUnauthorized
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, "", common.ErrUserUnauthorized
	}
	raw, ok := claims["user_id"].(string)
	if !ok {
		return uuid.Nil, "", common.ErrUserUnauthorized
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, "", common.ErrUserUnauthorized
	}
	role, _ := claims["role"].(string)
	return userID, role, nil
}

// BasicAuthStrategy checks passwords without issuing tokens, for the CLI.
type BasicAuthStrategy struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
}

// Login implements Strategy.
func (s *BasicAuthStrategy) Login(ctx context.Context, identity, password string) (*dto.UserRead, error) {
	users, err := s.uow.UserRepository()
	if err != nil {
		return nil, err
	}
	u, hash, err := users.GetByIdentity(ctx, identity)
	if err != nil {
		_ = utils.CheckPasswordHash(password, dummyHash)
		return nil, common.ErrUserUnauthorized
	}
	if !utils.CheckPasswordHash(password, hash) {
		return nil, common.ErrUserUnauthorized
	}
	return u, nil
}

// GetCurrentUser implements Strategy. Basic auth carries no token.
func (s *BasicAuthStrategy) GetCurrentUser(ctx context.Context) (uuid.UUID, string, error) {
	return uuid.Nil, "", common.ErrUserUnauthorized
}

// GenerateToken implements Strategy. Basic auth issues no tokens.
func (s *BasicAuthStrategy) GenerateToken(ctx context.Context, u *dto.UserRead) (string, error) {
	return "", common.ErrUserUnauthorized
}
