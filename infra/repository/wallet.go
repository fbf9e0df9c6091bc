package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shillingix/backend/pkg/domain/common"
	"github.com/shillingix/backend/pkg/dto"
	"github.com/shillingix/backend/pkg/money"
	"github.com/shillingix/backend/pkg/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type walletRepository struct {
	db *gorm.DB
}

// NewWalletRepository creates a wallet repository using the provided *gorm.DB.
func NewWalletRepository(db *gorm.DB) repository.WalletRepository {
	return &walletRepository{db: db}
}

// Get implements repository.WalletRepository.
func (r *walletRepository) Get(ctx context.Context, userID uuid.UUID) (*dto.WalletRead, error) {
	var w Wallet
	if err := r.db.WithContext(ctx).First(&w, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrWalletNotFound
		}
		return nil, err
	}
	return mapWalletToDTO(&w), nil
}

// GetOrCreate implements repository.WalletRepository. Wallets are created
// lazily with a zero balance on first access.
func (r *walletRepository) GetOrCreate(ctx context.Context, userID uuid.UUID) (*dto.WalletRead, error) {
	w, err := r.Get(ctx, userID)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, common.ErrWalletNotFound) {
		return nil, err
	}
	created := Wallet{ID: uuid.New(), UserID: userID, Balance: 0}
	// ON CONFLICT DO NOTHING keeps concurrent first-access races harmless.
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&created).Error; err != nil {
		return nil, err
	}
	return r.Get(ctx, userID)
}

// Credit implements repository.WalletRepository with a single additive
// update, creating the wallet first when absent.
func (r *walletRepository) Credit(ctx context.Context, userID uuid.UUID, amount int64) error {
	if amount <= 0 {
		return common.ErrAmountMustBePositive
	}
	if _, err := r.GetOrCreate(ctx, userID); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(&Wallet{}).
		Where("user_id = ?", userID).
		UpdateColumn("balance", gorm.Expr("balance + ?", amount)).Error
}

// DebitIfSufficient implements repository.WalletRepository. The balance
// guard lives in the WHERE clause, so two concurrent debits reading the same
// stale balance cannot both pass: the row update is the check.
func (r *walletRepository) DebitIfSufficient(ctx context.Context, userID uuid.UUID, amount int64) error {
	if amount <= 0 {
		return common.ErrAmountMustBePositive
	}
	res := r.db.WithContext(ctx).Model(&Wallet{}).
		Where("user_id = ? AND balance >= ?", userID, amount).
		UpdateColumn("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return common.ErrInsufficientFunds
	}
	return nil
}

func mapWalletToDTO(w *Wallet) *dto.WalletRead {
	bal := money.NewFromData(w.Balance, string(money.DefaultCurrency))
	return &dto.WalletRead{
		ID:        w.ID,
		UserID:    w.UserID,
		Balance:   bal.AmountFloat(),
		Currency:  bal.Currency().String(),
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}
