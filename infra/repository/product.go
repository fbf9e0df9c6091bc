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
)

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a product repository using the provided
// *gorm.DB.
func NewProductRepository(db *gorm.DB) repository.ProductRepository {
	return &productRepository{db: db}
}

// Create implements repository.ProductRepository.
func (r *productRepository) Create(ctx context.Context, create dto.ProductCreate) error {
	p := Product{
		ID:              create.ID,
		Name:            create.Name,
		Type:            create.Type,
		Description:     create.Description,
		InterestRate:    create.InterestRate,
		TermDays:        create.TermDays,
		MinInvestment:   create.MinInvestment,
		AvailableAmount: create.AvailableAmount,
		Status:          create.Status,
	}
	if create.BlockchainAssetID != "" {
		p.BlockchainAssetID = &create.BlockchainAssetID
	}
	return r.db.WithContext(ctx).Create(&p).Error
}

// Get implements repository.ProductRepository.
func (r *productRepository) Get(ctx context.Context, id uuid.UUID) (*dto.ProductRead, error) {
	var p Product
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrProductNotFound
		}
		return nil, err
	}
	return mapProductToDTO(&p), nil
}

// List implements repository.ProductRepository.
func (r *productRepository) List(ctx context.Context, filter dto.ProductListFilter) ([]*dto.ProductRead, error) {
	q := r.db.WithContext(ctx).Order("created_at desc")
	if filter.Type != nil {
		q = q.Where("type = ?", *filter.Type)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	var rows []Product
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]*dto.ProductRead, 0, len(rows))
	for i := range rows {
		result = append(result, mapProductToDTO(&rows[i]))
	}
	return result, nil
}

// Update implements repository.ProductRepository.
func (r *productRepository) Update(ctx context.Context, id uuid.UUID, update dto.ProductUpdate) error {
	updates := make(map[string]any)
	if update.Description != nil {
		updates["description"] = *update.Description
	}
	if update.InterestRate != nil {
		updates["interest_rate"] = *update.InterestRate
	}
	if update.AvailableAmount != nil {
		updates["available_amount"] = *update.AvailableAmount
	}
	if update.Status != nil {
		updates["status"] = *update.Status
	}
	if update.BlockchainAssetID != nil {
		updates["blockchain_asset_id"] = *update.BlockchainAssetID
	}
	if len(updates) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&Product{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return common.ErrProductNotFound
	}
	return nil
}

// ReserveAmount implements repository.ProductRepository. The inventory guard
// lives in the WHERE clause so concurrent investors cannot oversell the
// product's available_amount.
func (r *productRepository) ReserveAmount(ctx context.Context, id uuid.UUID, amount int64) error {
	if amount <= 0 {
		return common.ErrAmountMustBePositive
	}
	res := r.db.WithContext(ctx).Model(&Product{}).
		Where("id = ? AND available_amount >= ?", id, amount).
		UpdateColumn("available_amount", gorm.Expr("available_amount - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return common.ErrProductUnavailable
	}
	return nil
}

// ReleaseAmount implements repository.ProductRepository.
func (r *productRepository) ReleaseAmount(ctx context.Context, id uuid.UUID, amount int64) error {
	if amount <= 0 {
		return common.ErrAmountMustBePositive
	}
	res := r.db.WithContext(ctx).Model(&Product{}).
		Where("id = ?", id).
		UpdateColumn("available_amount", gorm.Expr("available_amount + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return common.ErrProductNotFound
	}
	return nil
}

func mapProductToDTO(p *Product) *dto.ProductRead {
	cur := string(money.DefaultCurrency)
	minInv := money.NewFromData(p.MinInvestment, cur)
	avail := money.NewFromData(p.AvailableAmount, cur)
	read := &dto.ProductRead{
		ID:              p.ID,
		Name:            p.Name,
		Type:            p.Type,
		Description:     p.Description,
		InterestRate:    p.InterestRate,
		TermDays:        p.TermDays,
		MinInvestment:   minInv.AmountFloat(),
		AvailableAmount: avail.AmountFloat(),
		Currency:        cur,
		Status:          p.Status,
		CreatedAt:       p.CreatedAt,
	}
	if p.BlockchainAssetID != nil {
		read.BlockchainAssetID = *p.BlockchainAssetID
	}
	return read
}
