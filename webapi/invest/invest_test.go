package invest_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shillingix/backend/webapi/common"
	"github.com/shillingix/backend/webapi/testutils"
	"github.com/stretchr/testify/suite"
)

type InvestTestSuite struct {
	testutils.E2ETestSuite
	token     string
	userID    uuid.UUID
	productID uuid.UUID
}

func (s *InvestTestSuite) SetupTest() {
	s.E2ETestSuite.SetupTest()
	u := s.CreateTestUser()
	s.token = s.TokenFor(u)
	s.userID = u.ID
	s.Store.SeedWallet(u.ID, 1_000_00)
	s.productID = s.SeedProduct(500_00, 10_000_00)
}

func (s *InvestTestSuite) invest(amount float64) *common.Response {
	body := fmt.Sprintf(`{"product_id":%q,"amount":%v}`, s.productID, amount)
	resp := s.MakeRequest(fiber.MethodPost, "/invest", body, s.token)
	defer resp.Body.Close() //nolint: errcheck
	s.Require().Equal(fiber.StatusCreated, resp.StatusCode)
	var response common.Response
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&response))
	return &response
}

func (s *InvestTestSuite) TestInvest_Success() {
	response := s.invest(600)
	data := response.Data.(map[string]any)
	s.Equal(true, data["on_chain"])
	s.NotEmpty(data["blockchain_tx_hash"])
	s.Equal(int64(400_00), s.Store.WalletBalance(s.userID))
}

func (s *InvestTestSuite) TestInvest_InsufficientFunds() {
	body := fmt.Sprintf(`{"product_id":%q,"amount":5000}`, s.productID)
	resp := s.MakeRequest(fiber.MethodPost, "/invest", body, s.token)
	defer resp.Body.Close() //nolint: errcheck
	s.Equal(fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func (s *InvestTestSuite) TestInvest_BelowMinimum() {
	body := fmt.Sprintf(`{"product_id":%q,"amount":100}`, s.productID)
	resp := s.MakeRequest(fiber.MethodPost, "/invest", body, s.token)
	defer resp.Body.Close() //nolint: errcheck
	s.Equal(fiber.StatusBadRequest, resp.StatusCode)
}

func (s *InvestTestSuite) TestInvest_UnknownProduct() {
	body := fmt.Sprintf(`{"product_id":%q,"amount":600}`, uuid.New())
	resp := s.MakeRequest(fiber.MethodPost, "/invest", body, s.token)
	defer resp.Body.Close() //nolint: errcheck
	s.Equal(fiber.StatusNotFound, resp.StatusCode)
}

func (s *InvestTestSuite) TestListAndSell() {
	s.invest(600)

	resp := s.MakeRequest(fiber.MethodGet, "/investments", "", s.token)
	defer resp.Body.Close() //nolint: errcheck
	s.Equal(fiber.StatusOK, resp.StatusCode)
	var listResponse struct {
		Data []map[string]any `json:"data"`
	}
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&listResponse))
	s.Require().Len(listResponse.Data, 1)
	invID := listResponse.Data[0]["id"].(string)

	resp = s.MakeRequest(fiber.MethodPost, "/investments/"+invID+"/sell", "", s.token)
	defer resp.Body.Close() //nolint: errcheck
	s.Equal(fiber.StatusOK, resp.StatusCode)
	s.Equal(int64(1_000_00), s.Store.WalletBalance(s.userID))

	// Selling again must fail without a second credit.
	resp = s.MakeRequest(fiber.MethodPost, "/investments/"+invID+"/sell", "", s.token)
	defer resp.Body.Close() //nolint: errcheck
	s.Equal(fiber.StatusNotFound, resp.StatusCode)
	s.Equal(int64(1_000_00), s.Store.WalletBalance(s.userID))
}

func (s *InvestTestSuite) TestPortfolio() {
	s.invest(600)

	resp := s.MakeRequest(fiber.MethodGet, "/portfolio", "", s.token)
	defer resp.Body.Close() //nolint: errcheck
	s.Equal(fiber.StatusOK, resp.StatusCode)

	var response common.Response
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&response))
	data := response.Data.(map[string]any)
	s.InDelta(600.0, data["total_invested"], 0.001)
	s.InDelta(1000.0, data["total_value"], 0.001)
}

func (s *InvestTestSuite) TestInvest_Unauthorized() {
	body := fmt.Sprintf(`{"product_id":%q,"amount":600}`, s.productID)
	resp := s.MakeRequest(fiber.MethodPost, "/invest", body, "")
	defer resp.Body.Close() //nolint: errcheck
	s.Equal(fiber.StatusBadRequest, resp.StatusCode)
}

func TestInvestTestSuite(t *testing.T) {
	suite.Run(t, new(InvestTestSuite))
}
