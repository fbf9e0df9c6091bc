package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shillingix/backend/pkg/domain/common"
	"github.com/shillingix/backend/pkg/domain/investment"
	"github.com/shillingix/backend/pkg/dto"
	"github.com/shillingix/backend/pkg/money"
	"github.com/shillingix/backend/pkg/repository"
	"gorm.io/gorm"
)

type investmentRepository struct {
	db *gorm.DB
}

// NewInvestmentRepository creates an investment repository using the
// provided *gorm.DB.
func NewInvestmentRepository(db *gorm.DB) repository.InvestmentRepository {
	return &investmentRepository{db: db}
}

// Create implements repository.InvestmentRepository.
func (r *investmentRepository) Create(ctx context.Context, create dto.InvestmentCreate) error {
	inv := Investment{
		ID:           create.ID,
		UserID:       create.UserID,
		ProductID:    create.ProductID,
		Name:         create.Name,
		Type:         create.Type,
		Amount:       create.Amount,
		InterestRate: create.InterestRate,
		Status:       create.Status,
		MaturityDate: create.MaturityDate,
	}
	return r.db.WithContext(ctx).Create(&inv).Error
}

// Get implements repository.InvestmentRepository, scoped by owner.
func (r *investmentRepository) Get(ctx context.Context, id, userID uuid.UUID) (*dto.InvestmentRead, error) {
	var inv Investment
	err := r.db.WithContext(ctx).First(&inv, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrInvestmentNotFound
		}
		return nil, err
	}
	return mapInvestmentToDTO(&inv), nil
}

// ListByUser implements repository.InvestmentRepository.
func (r *investmentRepository) ListByUser(ctx context.Context, userID uuid.UUID, status string) ([]*dto.InvestmentRead, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var rows []Investment
	if err := q.Order("created_at desc").Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]*dto.InvestmentRead, 0, len(rows))
	for i := range rows {
		result = append(result, mapInvestmentToDTO(&rows[i]))
	}
	return result, nil
}

// MarkSold implements repository.InvestmentRepository. The status guard in
// the WHERE clause makes a second sell of the same position a no-op that
// surfaces as not-found, preventing double credit.
func (r *investmentRepository) MarkSold(ctx context.Context, id, userID uuid.UUID) error {
	return r.flipStatus(ctx, id, userID, string(investment.StatusActive), string(investment.StatusSold))
}

// MarkCompleted implements repository.InvestmentRepository.
func (r *investmentRepository) MarkCompleted(ctx context.Context, id, userID uuid.UUID) error {
	return r.flipStatus(ctx, id, userID, string(investment.StatusActive), string(investment.StatusCompleted))
}

func (r *investmentRepository) flipStatus(ctx context.Context, id, userID uuid.UUID, from, to string) error {
	res := r.db.WithContext(ctx).Model(&Investment{}).
		Where("id = ? AND user_id = ? AND status = ?", id, userID, from).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return common.ErrInvestmentNotFound
	}
	return nil
}

// ListMaturedActive implements repository.InvestmentRepository.
func (r *investmentRepository) ListMaturedActive(ctx context.Context, asOf time.Time) ([]*dto.InvestmentRead, error) {
	var rows []Investment
	err := r.db.WithContext(ctx).
		Where("status = ? AND maturity_date IS NOT NULL AND maturity_date <= ?",
			string(investment.StatusActive), asOf).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make([]*dto.InvestmentRead, 0, len(rows))
	for i := range rows {
		result = append(result, mapInvestmentToDTO(&rows[i]))
	}
	return result, nil
}

func mapInvestmentToDTO(inv *Investment) *dto.InvestmentRead {
	amt := money.NewFromData(inv.Amount, string(money.DefaultCurrency))
	return &dto.InvestmentRead{
		ID:           inv.ID,
		UserID:       inv.UserID,
		ProductID:    inv.ProductID,
		Name:         inv.Name,
		Type:         inv.Type,
		Amount:       amt.AmountFloat(),
		Currency:     amt.Currency().String(),
		InterestRate: inv.InterestRate,
		Status:       inv.Status,
		CreatedAt:    inv.CreatedAt,
		MaturityDate: inv.MaturityDate,
	}
}
