package product_test

import (
	"encoding/json"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shillingix/backend/webapi/common"
	"github.com/shillingix/backend/webapi/testutils"
	"github.com/stretchr/testify/suite"
)

type ProductTestSuite struct {
	testutils.E2ETestSuite
	productID uuid.UUID
}

func (s *ProductTestSuite) SetupTest() {
	s.E2ETestSuite.SetupTest()
	s.productID = s.SeedProduct(500_00, 10_000_00)
}

func (s *ProductTestSuite) TestListProducts_NoTokenRequired() {
	resp := s.MakeRequest(fiber.MethodGet, "/products", "", "")
	defer resp.Body.Close() //nolint: errcheck
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)

	var response struct {
		Data []map[string]any `json:"data"`
	}
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&response))
	s.Require().Len(response.Data, 1)
	s.Equal("Infrastructure Bond 2030", response.Data[0]["name"])
}

func (s *ProductTestSuite) TestListProducts_FilterMiss() {
	resp := s.MakeRequest(fiber.MethodGet, "/products?type=equity", "", "")
	defer resp.Body.Close() //nolint: errcheck
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)

	var response struct {
		Data []map[string]any `json:"data"`
	}
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&response))
	s.Empty(response.Data)
}

func (s *ProductTestSuite) TestGetProduct() {
	resp := s.MakeRequest(fiber.MethodGet, "/products/"+s.productID.String(), "", "")
	defer resp.Body.Close() //nolint: errcheck
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)

	var response common.Response
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&response))
	data := response.Data.(map[string]any)
	s.InDelta(12.5, data["interest_rate"], 0.001)
	s.Equal("active", data["status"])
}

func (s *ProductTestSuite) TestGetProduct_Unknown() {
	resp := s.MakeRequest(fiber.MethodGet, "/products/"+uuid.NewString(), "", "")
	defer resp.Body.Close() //nolint: errcheck
	s.Equal(fiber.StatusNotFound, resp.StatusCode)
}

func TestProductTestSuite(t *testing.T) {
	suite.Run(t, new(ProductTestSuite))
}
