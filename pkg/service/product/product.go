// Package product manages the investment-product catalog. Creating a product
// optionally issues a matching asset on the external ledger; issuance failure
// leaves the product local-only, mirroring the reconciler's fallback.
package product

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shillingix/backend/pkg/config"
	"github.com/shillingix/backend/pkg/domain/investment"
	domainproduct "github.com/shillingix/backend/pkg/domain/product"
	"github.com/shillingix/backend/pkg/dto"
	"github.com/shillingix/backend/pkg/money"
	"github.com/shillingix/backend/pkg/provider/settlement"
	"github.com/shillingix/backend/pkg/repository"
)

// CreateParams carries the fields for listing a new product.
type CreateParams struct {
	Name            string
	Type            string
	Description     string
	InterestRate    float64
	TermDays        int
	MinInvestment   money.Money
	AvailableAmount money.Money
}

// Service manages the catalog.
type Service struct {
	uow     repository.UnitOfWork
	gateway settlement.Gateway
	logger  *slog.Logger
}

// NewService creates a new Service with the provided dependencies.
func NewService(deps config.Deps) *Service {
	return &Service{uow: deps.Uow, gateway: deps.SettlementGateway, logger: deps.Logger}
}

// Create lists a new product and, when the gateway is reachable, issues it
// as an on-ledger asset.
func (s *Service) Create(ctx context.Context, params CreateParams) (*dto.ProductRead, error) {
	logger := s.logger.With("op", "CreateProduct", "name", params.Name)

	prod, err := domainproduct.New().
		WithName(params.Name).
		WithType(investment.Type(params.Type)).
		WithDescription(params.Description).
		WithInterestRate(params.InterestRate).
		WithTermDays(params.TermDays).
		WithMinInvestment(params.MinInvestment.Amount()).
		WithAvailableAmount(params.AvailableAmount.Amount()).
		WithStatus(domainproduct.StatusActive).
		Build()
	if err != nil {
		return nil, err
	}

	assetID := ""
	if s.gateway != nil && s.gateway.IsConnected(ctx) {
		res, issueErr := s.gateway.IssueAsset(ctx, &settlement.IssueParams{
			Name:         prod.Name,
			Symbol:       symbolFor(prod.Name),
			TotalSupply:  prod.AvailableAmount.Amount(),
			PricePerUnit: prod.MinInvestment.Amount(),
		})
		if issueErr != nil {
			logger.Warn("asset issuance failed, product stays local-only", "error", issueErr)
		} else {
			assetID = res.AssetID
		}
	}

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		products, err := uow.ProductRepository()
		if err != nil {
			return err
		}
		return products.Create(ctx, dto.ProductCreate{
			ID:                prod.ID,
			Name:              prod.Name,
			Type:              string(prod.Type),
			Description:       prod.Description,
			InterestRate:      prod.InterestRate,
			TermDays:          prod.TermDays,
			MinInvestment:     prod.MinInvestment.Amount(),
			AvailableAmount:   prod.AvailableAmount.Amount(),
			Status:            string(prod.Status),
			BlockchainAssetID: assetID,
		})
	})
	if err != nil {
		logger.Error("CreateProduct failed", "error", err)
		return nil, err
	}

	logger.Info("CreateProduct completed", "productID", prod.ID, "assetID", assetID)
	return s.Get(ctx, prod.ID)
}

// Get returns one product.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*dto.ProductRead, error) {
	products, err := s.uow.ProductRepository()
	if err != nil {
		return nil, err
	}
	return products.Get(ctx, id)
}

// List returns catalog products matching the filter.
func (s *Service) List(ctx context.Context, filter dto.ProductListFilter) ([]*dto.ProductRead, error) {
	products, err := s.uow.ProductRepository()
	if err != nil {
		return nil, err
	}
	return products.List(ctx, filter)
}

// Update applies admin edits to a product.
func (s *Service) Update(ctx context.Context, id uuid.UUID, update dto.ProductUpdate) error {
	return s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		products, err := uow.ProductRepository()
		if err != nil {
			return err
		}
		return products.Update(ctx, id, update)
	})
}

// symbolFor derives a short ticker-style symbol from a product name.
func symbolFor(name string) string {
	var b strings.Builder
	for _, w := range strings.Fields(name) {
		r := rune(w[0])
		if r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
		if b.Len() >= 6 {
			break
		}
	}
	if b.Len() == 0 {
		return "ASSET"
	}
	return b.String()
}
