// Package product defines the investment-product catalog entry. Products are
// admin-owned and read-only to investors.
package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/shillingix/backend/pkg/domain/common"
	"github.com/shillingix/backend/pkg/domain/investment"
	"github.com/shillingix/backend/pkg/money"
)

// Status is the catalog availability state of a product.
type Status string

// Product catalog statuses.
const (
	StatusActive  Status = "active"
	StatusPending Status = "pending"
	StatusClosed  Status = "closed"
)

// Product is a catalog entry an investor can buy into.
type Product struct {
	ID              uuid.UUID
	Name            string
	Type            investment.Type
	Description     string
	InterestRate    float64 // percent per annum
	TermDays        int
	MinInvestment   money.Money
	AvailableAmount money.Money // remaining sellable inventory
	Status          Status
	// BlockchainAssetID links the product to its issued on-ledger asset,
	// empty when the product was never issued on chain.
	BlockchainAssetID string
	CreatedAt         time.Time
}

// Builder provides a fluent API for constructing Product instances.
type Builder struct {
	id              uuid.UUID
	name            string
	invType         investment.Type
	description     string
	interestRate    float64
	termDays        int
	minInvestment   int64
	availableAmount int64
	status          Status
	assetID         string
	createdAt       time.Time
}

// New creates a Builder with a fresh UUID and pending status.
func New() *Builder {
	return &Builder{
		id:        uuid.New(),
		status:    StatusPending,
		createdAt: time.Now(),
	}
}

// WithID sets the product ID, used for hydration.
func (b *Builder) WithID(id uuid.UUID) *Builder { b.id = id; return b }

// WithName sets the product name. Mandatory.
func (b *Builder) WithName(name string) *Builder { b.name = name; return b }

// WithType sets the product type.
func (b *Builder) WithType(t investment.Type) *Builder { b.invType = t; return b }

// WithDescription sets the marketing description.
func (b *Builder) WithDescription(d string) *Builder { b.description = d; return b }

// WithInterestRate sets the annual rate in percent.
func (b *Builder) WithInterestRate(rate float64) *Builder { b.interestRate = rate; return b }

// WithTermDays sets the term length in days.
func (b *Builder) WithTermDays(days int) *Builder { b.termDays = days; return b }

// WithMinInvestment sets the minimum purchase in minor units.
func (b *Builder) WithMinInvestment(amount int64) *Builder { b.minInvestment = amount; return b }

// WithAvailableAmount sets the sellable inventory in minor units.
func (b *Builder) WithAvailableAmount(amount int64) *Builder { b.availableAmount = amount; return b }

// WithStatus sets the catalog status.
func (b *Builder) WithStatus(s Status) *Builder { b.status = s; return b }

// WithBlockchainAssetID links the product to an issued on-ledger asset.
func (b *Builder) WithBlockchainAssetID(id string) *Builder { b.assetID = id; return b }

// WithCreatedAt sets the creation timestamp, used for hydration.
func (b *Builder) WithCreatedAt(t time.Time) *Builder { b.createdAt = t; return b }

// Build validates invariants and returns the Product.
func (b *Builder) Build() (*Product, error) {
	if b.name == "" || !b.invType.IsValid() {
		return nil, common.ErrValidation
	}
	if b.interestRate < 0 || b.termDays < 0 {
		return nil, common.ErrValidation
	}
	if b.minInvestment <= 0 || b.availableAmount < 0 {
		return nil, common.ErrValidation
	}
	cur := string(money.DefaultCurrency)
	return &Product{
		ID:                b.id,
		Name:              b.name,
		Type:              b.invType,
		Description:       b.description,
		InterestRate:      b.interestRate,
		TermDays:          b.termDays,
		MinInvestment:     money.NewFromData(b.minInvestment, cur),
		AvailableAmount:   money.NewFromData(b.availableAmount, cur),
		Status:            b.status,
		BlockchainAssetID: b.assetID,
		CreatedAt:         b.createdAt,
	}, nil
}

// AcceptsInvestment validates a purchase amount against the product's status
// and minimum. Inventory is enforced atomically in the persistence layer.
func (p *Product) AcceptsInvestment(amount money.Money) error {
	if p.Status != StatusActive {
		return common.ErrProductUnavailable
	}
	ok, err := amount.GreaterThanOrEqual(p.MinInvestment)
	if err != nil {
		return err
	}
	if !ok {
		return common.ErrBelowMinimumInvestment
	}
	return nil
}

// MaturityDateFrom returns the maturity date for a purchase made at t.
func (p *Product) MaturityDateFrom(t time.Time) *time.Time {
	if p.TermDays <= 0 {
		return nil
	}
	m := t.AddDate(0, 0, p.TermDays)
	return &m
}
