package product_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/shillingix/backend/infra/provider/mocksettlement"
	"github.com/shillingix/backend/internal/fixtures"
	"github.com/shillingix/backend/pkg/config"
	"github.com/shillingix/backend/pkg/domain/common"
	"github.com/shillingix/backend/pkg/dto"
	"github.com/shillingix/backend/pkg/money"
	"github.com/shillingix/backend/pkg/service/product"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kes(major float64) money.Money {
	m, err := money.New(major, money.DefaultCurrency)
	if err != nil {
		panic(err)
	}
	return m
}

func newService() (*product.Service, *mocksettlement.Gateway, *fixtures.Store) {
	store := fixtures.NewStore()
	gw := mocksettlement.New()
	svc := product.NewService(config.Deps{
		Uow:               fixtures.NewUoW(store),
		SettlementGateway: gw,
		Logger:            slog.Default(),
	})
	return svc, gw, store
}

func bondParams() product.CreateParams {
	return product.CreateParams{
		Name:            "Infrastructure Bond 2030",
		Type:            "infrastructure",
		Description:     "Seven-year infrastructure bond",
		InterestRate:    12.5,
		TermDays:        365,
		MinInvestment:   kes(500),
		AvailableAmount: kes(100000),
	}
}

func TestCreate_IssuesAssetWhenGatewayUp(t *testing.T) {
	svc, _, _ := newService()

	p, err := svc.Create(context.Background(), bondParams())
	require.NoError(t, err)

	assert.Equal(t, "active", p.Status)
	assert.NotEmpty(t, p.BlockchainAssetID)
	assert.InDelta(t, 500.0, p.MinInvestment, 0.001)
}

func TestCreate_GatewayDownLeavesProductLocal(t *testing.T) {
	svc, gw, _ := newService()
	gw.Down = true

	p, err := svc.Create(context.Background(), bondParams())
	require.NoError(t, err)
	assert.Empty(t, p.BlockchainAssetID)
	assert.Equal(t, "active", p.Status)
}

func TestCreate_InvalidType(t *testing.T) {
	svc, _, _ := newService()
	params := bondParams()
	params.Type = "crypto"
	_, err := svc.Create(context.Background(), params)
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestListAndUpdate(t *testing.T) {
	svc, _, _ := newService()
	p, err := svc.Create(context.Background(), bondParams())
	require.NoError(t, err)

	active := "active"
	list, err := svc.List(context.Background(), dto.ProductListFilter{Status: &active})
	require.NoError(t, err)
	require.Len(t, list, 1)

	closed := "closed"
	require.NoError(t, svc.Update(context.Background(), p.ID, dto.ProductUpdate{Status: &closed}))

	got, err := svc.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "closed", got.Status)
}
