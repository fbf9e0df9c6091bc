package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shillingix/backend/pkg/domain/common"
	"github.com/shillingix/backend/pkg/dto"
	"github.com/shillingix/backend/pkg/repository"
	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a user repository using the provided *gorm.DB.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// Create implements repository.UserRepository.
func (r *userRepository) Create(ctx context.Context, create dto.UserCreate) error {
	u := User{
		ID:          create.ID,
		Username:    create.Username,
		Email:       create.Email,
		Password:    create.Password,
		PhoneNumber: create.PhoneNumber,
		Role:        create.Role,
	}
	return r.db.WithContext(ctx).Create(&u).Error
}

// Get implements repository.UserRepository.
func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*dto.UserRead, error) {
	var u User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, err
	}
	return mapUserToDTO(&u), nil
}

// GetByIdentity implements repository.UserRepository. Identity matches
// username or email.
func (r *userRepository) GetByIdentity(ctx context.Context, identity string) (*dto.UserRead, string, error) {
	var u User
	err := r.db.WithContext(ctx).
		First(&u, "username = ? OR email = ?", identity, identity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", common.ErrUserNotFound
		}
		return nil, "", err
	}
	return mapUserToDTO(&u), u.Password, nil
}

// List implements repository.UserRepository.
func (r *userRepository) List(ctx context.Context, limit int) ([]*dto.UserRead, error) {
	q := r.db.WithContext(ctx).Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []User
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]*dto.UserRead, 0, len(rows))
	for i := range rows {
		result = append(result, mapUserToDTO(&rows[i]))
	}
	return result, nil
}

// Update implements repository.UserRepository.
func (r *userRepository) Update(ctx context.Context, id uuid.UUID, update dto.UserUpdate) error {
	updates := make(map[string]any)
	if update.PhoneNumber != nil {
		updates["phone_number"] = *update.PhoneNumber
	}
	if update.Role != nil {
		updates["role"] = *update.Role
	}
	if len(updates) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return common.ErrUserNotFound
	}
	return nil
}

func mapUserToDTO(u *User) *dto.UserRead {
	return &dto.UserRead{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		Role:        u.Role,
		CreatedAt:   u.CreatedAt,
	}
}
