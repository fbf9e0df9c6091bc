// Package testutils provides a shared end-to-end harness for handler tests:
// a full Fiber app over in-memory repositories and mock providers.
package testutils

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	infraeventbus "github.com/shillingix/backend/infra/eventbus"
	"github.com/shillingix/backend/infra/provider/mockpayment"
	"github.com/shillingix/backend/infra/provider/mocksettlement"
	"github.com/shillingix/backend/internal/fixtures"
	"github.com/shillingix/backend/pkg/app"
	"github.com/shillingix/backend/pkg/config"
	"github.com/shillingix/backend/pkg/dto"
	"github.com/shillingix/backend/pkg/utils"
	"github.com/shillingix/backend/webapi"
	"github.com/stretchr/testify/suite"
)

// TestPassword is the password of every user created by CreateTestUser.
const TestPassword = "password123"

// E2ETestSuite wires a full application over in-memory infrastructure.
// Embedding suites that define their own SetupTest must call this one first.
type E2ETestSuite struct {
	suite.Suite

	App         *fiber.App
	Application *app.App
	Store       *fixtures.Store
	Payment     *mockpayment.Provider
	Gateway     *mocksettlement.Gateway
	Bus         *infraeventbus.MemoryEventBus
}

// SetupTest builds a fresh app for every test.
func (s *E2ETestSuite) SetupTest() {
	s.Store = fixtures.NewStore()
	s.Payment = mockpayment.New()
	s.Gateway = mocksettlement.New()
	s.Bus = infraeventbus.NewWithMemory(slog.Default())

	cfg := &config.App{
		Env: "test",
		Jwt: config.Jwt{Secret: "test-secret", Expiry: time.Hour},
		RateLimit: config.RateLimit{
			MaxRequests: 1000,
			Window:      time.Minute,
		},
	}
	s.Application = app.New(config.Deps{
		Uow:               fixtures.NewUoW(s.Store),
		PaymentProvider:   s.Payment,
		SettlementGateway: s.Gateway,
		EventBus:          s.Bus,
		Logger:            slog.Default(),
		Config:            cfg,
	}, cfg)
	s.App = webapi.SetupApp(s.Application)
}

// MakeRequest performs a request against the in-process app. An empty token
// sends no Authorization header.
func (s *E2ETestSuite) MakeRequest(method, path, body, token string) *http.Response {
	s.T().Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.App.Test(req, -1)
	s.Require().NoError(err)
	return resp
}

// CreateTestUser registers a user directly in the store and returns their
// read view. The password is TestPassword.
func (s *E2ETestSuite) CreateTestUser() *dto.UserRead {
	s.T().Helper()
	return s.createUser("user")
}

// CreateTestAdmin registers an admin user.
func (s *E2ETestSuite) CreateTestAdmin() *dto.UserRead {
	s.T().Helper()
	return s.createUser("admin")
}

func (s *E2ETestSuite) createUser(role string) *dto.UserRead {
	hash, err := utils.HashPassword(TestPassword)
	s.Require().NoError(err)
	id := uuid.New()
	username := "user" + id.String()[:8]
	s.Store.SeedUser(dto.UserCreate{
		ID:          id,
		Username:    username,
		Email:       username + "@example.com",
		Password:    hash,
		PhoneNumber: "254712345678",
		Role:        role,
	})
	s.Store.SeedWallet(id, 0)
	return &dto.UserRead{
		ID:          id,
		Username:    username,
		Email:       username + "@example.com",
		PhoneNumber: "254712345678",
		Role:        role,
	}
}

// TokenFor issues a signed token for the user through the auth service.
func (s *E2ETestSuite) TokenFor(u *dto.UserRead) string {
	s.T().Helper()
	token, err := s.Application.AuthService.GenerateToken(context.Background(), u)
	s.Require().NoError(err)
	return token
}

// SeedProduct inserts an active catalog product and returns its ID. Amounts
// are in minor units.
func (s *E2ETestSuite) SeedProduct(minInvestment, available int64) uuid.UUID {
	s.T().Helper()
	id := uuid.New()
	s.Store.SeedProduct(dto.ProductCreate{
		ID:                id,
		Name:              "Infrastructure Bond 2030",
		Type:              "infrastructure",
		InterestRate:      12.5,
		TermDays:          365,
		MinInvestment:     minInvestment,
		AvailableAmount:   available,
		Status:            "active",
		BlockchainAssetID: "asset-1",
	})
	return id
}
