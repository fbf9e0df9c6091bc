package auth_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shillingix/backend/webapi/common"
	"github.com/shillingix/backend/webapi/testutils"
	"github.com/stretchr/testify/suite"
)

type AuthTestSuite struct {
	testutils.E2ETestSuite
}

func (s *AuthTestSuite) TestRegister_Success() {
	body := `{"username":"wanjiku","email":"wanjiku@example.com","password":"password123","phone_number":"0712345678"}`
	resp := s.MakeRequest(fiber.MethodPost, "/auth/register", body, "")
	defer resp.Body.Close() //nolint: errcheck
	s.Equal(fiber.StatusCreated, resp.StatusCode)

	var response common.Response
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&response))
	data := response.Data.(map[string]any)
	s.Equal("wanjiku", data["username"])
	s.Equal("254712345678", data["phone_number"])
}

func (s *AuthTestSuite) TestRegister_BadEmail() {
	body := `{"username":"wanjiku","email":"nope","password":"password123"}`
	resp := s.MakeRequest(fiber.MethodPost, "/auth/register", body, "")
	defer resp.Body.Close() //nolint: errcheck
	s.Equal(fiber.StatusBadRequest, resp.StatusCode)
}

func (s *AuthTestSuite) TestLogin_Success() {
	u := s.CreateTestUser()
	body := fmt.Sprintf(`{"identity":%q,"password":%q}`, u.Username, testutils.TestPassword)
	resp := s.MakeRequest(fiber.MethodPost, "/auth/login", body, "")
	defer resp.Body.Close() //nolint: errcheck
	s.Equal(fiber.StatusOK, resp.StatusCode)

	var response common.Response
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&response))
	data := response.Data.(map[string]any)
	s.Require().NotEmpty(data["token"])
}

func (s *AuthTestSuite) TestLogin_WrongPassword() {
	u := s.CreateTestUser()
	body := fmt.Sprintf(`{"identity":%q,"password":"wrongpassword"}`, u.Username)
	resp := s.MakeRequest(fiber.MethodPost, "/auth/login", body, "")
	defer resp.Body.Close() //nolint: errcheck
	s.Equal(fiber.StatusUnauthorized, resp.StatusCode)
}

func (s *AuthTestSuite) TestLogin_UnknownIdentity() {
	resp := s.MakeRequest(fiber.MethodPost, "/auth/login", `{"identity":"nobody","password":"password123"}`, "")
	defer resp.Body.Close() //nolint: errcheck
	s.Equal(fiber.StatusUnauthorized, resp.StatusCode)
}

func (s *AuthTestSuite) TestLogin_BadRequest() {
	resp := s.MakeRequest(fiber.MethodPost, "/auth/login", `{"identity":123}`, "")
	defer resp.Body.Close() //nolint: errcheck
	s.Equal(fiber.StatusBadRequest, resp.StatusCode)
}

func TestAuthTestSuite(t *testing.T) {
	suite.Run(t, new(AuthTestSuite))
}
