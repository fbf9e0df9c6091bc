package wallet_test

import (
	"encoding/json"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shillingix/backend/pkg/dto"
	"github.com/shillingix/backend/webapi/common"
	"github.com/shillingix/backend/webapi/testutils"
	"github.com/stretchr/testify/suite"
)

type WalletTestSuite struct {
	testutils.E2ETestSuite
	token  string
	userID string
}

func (s *WalletTestSuite) SetupTest() {
	s.E2ETestSuite.SetupTest()
	u := s.CreateTestUser()
	s.token = s.TokenFor(u)
	s.userID = u.ID.String()
	s.Store.SeedWallet(u.ID, 500_00)
}

func (s *WalletTestSuite) TestGetWallet() {
	resp := s.MakeRequest(fiber.MethodGet, "/wallet", "", s.token)
	defer resp.Body.Close() //nolint: errcheck
	s.Equal(fiber.StatusOK, resp.StatusCode)

	var response common.Response
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&response))
	data := response.Data.(map[string]any)
	s.InDelta(500.0, data["balance"], 0.001)
}

func (s *WalletTestSuite) TestGetWallet_Unauthorized() {
	resp := s.MakeRequest(fiber.MethodGet, "/wallet", "", "")
	defer resp.Body.Close() //nolint: errcheck
	s.Equal(fiber.StatusBadRequest, resp.StatusCode)
}

func (s *WalletTestSuite) TestDeposit_InitiatesPush() {
	body := `{"amount":250,"phone_number":"0712345678"}`
	resp := s.MakeRequest(fiber.MethodPost, "/wallet/deposit", body, s.token)
	defer resp.Body.Close() //nolint: errcheck
	s.Equal(fiber.StatusAccepted, resp.StatusCode)

	var response common.Response
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&response))
	data := response.Data.(map[string]any)
	s.Equal("pending", data["status"])
	s.NotEmpty(data["checkout_request_id"])
	s.Require().Len(s.Payment.Pushes(), 1)
}

func (s *WalletTestSuite) TestDeposit_InvalidBody() {
	resp := s.MakeRequest(fiber.MethodPost, "/wallet/deposit", `{"amount":-5,"phone_number":"0712345678"}`, s.token)
	defer resp.Body.Close() //nolint: errcheck
	s.Equal(fiber.StatusBadRequest, resp.StatusCode)
}

func (s *WalletTestSuite) TestWithdraw_Success() {
	body := `{"amount":200,"phone_number":"0712345678"}`
	resp := s.MakeRequest(fiber.MethodPost, "/wallet/withdraw", body, s.token)
	defer resp.Body.Close() //nolint: errcheck
	s.Equal(fiber.StatusOK, resp.StatusCode)
	s.Require().Len(s.Payment.Payouts(), 1)
}

func (s *WalletTestSuite) TestWithdraw_InsufficientFunds() {
	body := `{"amount":9000,"phone_number":"0712345678"}`
	resp := s.MakeRequest(fiber.MethodPost, "/wallet/withdraw", body, s.token)
	defer resp.Body.Close() //nolint: errcheck
	s.Equal(fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func (s *WalletTestSuite) TestGetTransactions() {
	resp := s.MakeRequest(fiber.MethodPost, "/wallet/withdraw", `{"amount":100,"phone_number":"0712345678"}`, s.token)
	resp.Body.Close() //nolint: errcheck

	resp = s.MakeRequest(fiber.MethodGet, "/wallet/transactions", "", s.token)
	defer resp.Body.Close() //nolint: errcheck
	s.Equal(fiber.StatusOK, resp.StatusCode)

	var response struct {
		Data []*dto.TransactionRead `json:"data"`
	}
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&response))
	s.Require().Len(response.Data, 1)
	s.Equal("withdrawal", response.Data[0].Type)
	s.InDelta(-100.0, response.Data[0].Amount, 0.001)
}

func TestWalletTestSuite(t *testing.T) {
	suite.Run(t, new(WalletTestSuite))
}
