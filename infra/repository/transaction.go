package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shillingix/backend/pkg/domain/common"
	"github.com/shillingix/backend/pkg/domain/ledger"
	"github.com/shillingix/backend/pkg/dto"
	"github.com/shillingix/backend/pkg/money"
	"github.com/shillingix/backend/pkg/repository"
	"gorm.io/gorm"
)

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a ledger repository using the provided
// *gorm.DB.
func NewTransactionRepository(db *gorm.DB) repository.TransactionRepository {
	return &transactionRepository{db: db}
}

// Create implements repository.TransactionRepository.
func (r *transactionRepository) Create(ctx context.Context, create dto.TransactionCreate) error {
	tx := Transaction{
		ID:          create.ID,
		UserID:      create.UserID,
		Type:        create.Type,
		Amount:      create.Amount,
		Currency:    string(money.DefaultCurrency),
		Source:      create.Source,
		Description: create.Description,
		Status:      create.Status,
	}
	if create.BlockchainTxHash != "" {
		tx.BlockchainTxHash = &create.BlockchainTxHash
	}
	if create.CheckoutRequestID != "" {
		tx.CheckoutRequestID = &create.CheckoutRequestID
	}
	return r.db.WithContext(ctx).Create(&tx).Error
}

// Get implements repository.TransactionRepository.
func (r *transactionRepository) Get(ctx context.Context, id uuid.UUID) (*dto.TransactionRead, error) {
	var tx Transaction
	if err := r.db.WithContext(ctx).First(&tx, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrTransactionNotFound
		}
		return nil, err
	}
	return mapTransactionToDTO(&tx), nil
}

// GetByCheckoutRequestID implements repository.TransactionRepository.
func (r *transactionRepository) GetByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*dto.TransactionRead, error) {
	var tx Transaction
	err := r.db.WithContext(ctx).
		First(&tx, "checkout_request_id = ?", checkoutRequestID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrTransactionNotFound
		}
		return nil, err
	}
	return mapTransactionToDTO(&tx), nil
}

// ListByUser implements repository.TransactionRepository.
func (r *transactionRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*dto.TransactionRead, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []Transaction
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return mapTransactionsToDTO(rows), nil
}

// List implements repository.TransactionRepository for the admin console.
func (r *transactionRepository) List(ctx context.Context, filter dto.TransactionListFilter) ([]*dto.TransactionRead, error) {
	q := r.db.WithContext(ctx).Order("created_at desc")
	if filter.UserID != nil {
		q = q.Where("user_id = ?", *filter.UserID)
	}
	if filter.Type != nil {
		q = q.Where("type = ?", *filter.Type)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	var rows []Transaction
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return mapTransactionsToDTO(rows), nil
}

// Update implements repository.TransactionRepository. Only status and
// description are mutable; amount is never touched.
func (r *transactionRepository) Update(ctx context.Context, id uuid.UUID, update dto.TransactionUpdate) error {
	updates := make(map[string]any)
	if update.Status != nil {
		updates["status"] = *update.Status
	}
	if update.Description != nil {
		updates["description"] = *update.Description
	}
	if len(updates) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&Transaction{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return common.ErrTransactionNotFound
	}
	return nil
}

// ConfirmPending implements repository.TransactionRepository. The status
// guard makes duplicate callback deliveries idempotent: the second one finds
// no pending row and fails with not-found instead of double-crediting.
func (r *transactionRepository) ConfirmPending(ctx context.Context, id uuid.UUID, mpesaReceipt string) error {
	res := r.db.WithContext(ctx).Model(&Transaction{}).
		Where("id = ? AND status = ?", id, string(ledger.StatusPending)).
		Updates(map[string]any{
			"status":        string(ledger.StatusCompleted),
			"mpesa_receipt": mpesaReceipt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return common.ErrTransactionNotFound
	}
	return nil
}

func mapTransactionsToDTO(rows []Transaction) []*dto.TransactionRead {
	result := make([]*dto.TransactionRead, 0, len(rows))
	for i := range rows {
		result = append(result, mapTransactionToDTO(&rows[i]))
	}
	return result
}

func mapTransactionToDTO(tx *Transaction) *dto.TransactionRead {
	amt := money.NewFromData(tx.Amount, tx.Currency)
	read := &dto.TransactionRead{
		ID:          tx.ID,
		UserID:      tx.UserID,
		Type:        tx.Type,
		Amount:      amt.AmountFloat(),
		Currency:    tx.Currency,
		Source:      tx.Source,
		Description: tx.Description,
		Status:      tx.Status,
		CreatedAt:   tx.CreatedAt,
	}
	if tx.BlockchainTxHash != nil {
		read.BlockchainTxHash = *tx.BlockchainTxHash
	}
	if tx.CheckoutRequestID != nil {
		read.CheckoutRequestID = *tx.CheckoutRequestID
	}
	if tx.MpesaReceipt != nil {
		read.MpesaReceipt = *tx.MpesaReceipt
	}
	return read
}
