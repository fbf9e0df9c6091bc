// Package user provides registration and profile operations. Registration
// creates the user and their empty wallet in one transaction, so every user
// has a wallet from the first request.
package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shillingix/backend/pkg/config"
	"github.com/shillingix/backend/pkg/domain/common"
	domainuser "github.com/shillingix/backend/pkg/domain/user"
	"github.com/shillingix/backend/pkg/dto"
	"github.com/shillingix/backend/pkg/repository"
	"github.com/shillingix/backend/pkg/utils"
)

// Service provides user lifecycle operations.
type Service struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
}

// NewService creates a new Service with the provided dependencies.
func NewService(deps config.Deps) *Service {
	return &Service{uow: deps.Uow, logger: deps.Logger}
}

// Register creates a user with a hashed password and an empty wallet.
func (s *Service) Register(
	ctx context.Context,
	username, email, password, phoneNumber string,
) (*dto.UserRead, error) {
	logger := s.logger.With("op", "Register", "username", username)

	if !utils.IsEmail(email) {
		return nil, fmt.Errorf("%w: invalid email", common.ErrValidation)
	}
	msisdn := ""
	if phoneNumber != "" {
		normalized, ok := utils.NormalizePhoneNumber(phoneNumber)
		if !ok {
			return nil, fmt.Errorf("%w: invalid phone number", common.ErrValidation)
		}
		msisdn = normalized
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u, err := domainuser.New().
		WithUsername(username).
		WithEmail(email).
		WithPassword(hash).
		WithPhoneNumber(msisdn).
		Build()
	if err != nil {
		return nil, err
	}

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		users, err := uow.UserRepository()
		if err != nil {
			return err
		}
		if err = users.Create(ctx, dto.UserCreate{
			ID:          u.ID,
			Username:    u.Username,
			Email:       u.Email,
			Password:    u.Password,
			PhoneNumber: u.PhoneNumber,
			Role:        string(u.Role),
		}); err != nil {
			return err
		}
		wallets, err := uow.WalletRepository()
		if err != nil {
			return err
		}
		_, err = wallets.GetOrCreate(ctx, u.ID)
		return err
	})
	if err != nil {
		logger.Error("Register failed", "error", err)
		return nil, err
	}

	logger.Info("Register completed", "userID", u.ID)
	return &dto.UserRead{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		Role:        string(u.Role),
		CreatedAt:   u.CreatedAt,
	}, nil
}

// Get returns a user's profile.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*dto.UserRead, error) {
	users, err := s.uow.UserRepository()
	if err != nil {
		return nil, err
	}
	return users.Get(ctx, id)
}

// List returns users for the admin surface.
func (s *Service) List(ctx context.Context, limit int) ([]*dto.UserRead, error) {
	users, err := s.uow.UserRepository()
	if err != nil {
		return nil, err
	}
	return users.List(ctx, limit)
}

// UpdateRole changes a user's role, admin only at the API layer.
func (s *Service) UpdateRole(ctx context.Context, id uuid.UUID, role string) error {
	if !domainuser.Role(role).IsValid() {
		return common.ErrValidation
	}
	return s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		users, err := uow.UserRepository()
		if err != nil {
			return err
		}
		return users.Update(ctx, id, dto.UserUpdate{Role: &role})
	})
}
