// Package common holds the response envelope, RFC 9457 problem details, and
// request binding helpers shared by all API handlers.
package common

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shillingix/backend/pkg/domain/common"
	"github.com/shillingix/backend/pkg/provider/settlement"
)

// Response is the success envelope for API responses.
type Response struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ProblemDetails is an RFC 9457 problem details error body.
type ProblemDetails struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// SuccessResponseJSON writes the success envelope.
func SuccessResponseJSON(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Response{
		Status:  status,
		Message: message,
		Data:    data,
	})
}

// ProblemDetailsJSON writes a problem details response. Optional extras may
// carry a detail string and an explicit status code; without one the status
// comes from mapping err through ErrorToStatusCode.
func ProblemDetailsJSON(c *fiber.Ctx, title string, err error, extras ...any) error {
	status := 0
	detail := ""
	for _, extra := range extras {
		switch v := extra.(type) {
		case int:
			status = v
		case string:
			detail = v
		}
	}
	if status == 0 {
		status = ErrorToStatusCode(err)
	}
	if detail == "" && err != nil {
		detail = err.Error()
	}
	return c.Status(status).JSON(ProblemDetails{
		Type:   "about:blank",
		Title:  title,
		Status: status,
		Detail: detail,
	})
}

// ErrorToStatusCode maps domain errors to HTTP status codes.
func ErrorToStatusCode(err error) int {
	switch {
	case err == nil:
		return fiber.StatusInternalServerError
	case errors.Is(err, common.ErrUserUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, common.ErrWalletNotFound),
		errors.Is(err, common.ErrInvestmentNotFound),
		errors.Is(err, common.ErrProductNotFound),
		errors.Is(err, common.ErrTransactionNotFound),
		errors.Is(err, common.ErrUserNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, common.ErrInsufficientFunds),
		errors.Is(err, common.ErrProductUnavailable),
		errors.Is(err, common.ErrInvalidStatusTransition):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, common.ErrValidation),
		errors.Is(err, common.ErrAmountMustBePositive),
		errors.Is(err, common.ErrBelowMinimumInvestment):
		return fiber.StatusBadRequest
	case errors.Is(err, settlement.ErrGatewayUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

var validate = validator.New()

// BindAndValidate parses the JSON body into T and validates struct tags. On
// failure the error response is already written and the returned input is
// nil; handlers return the error as-is.
func BindAndValidate[T any](c *fiber.Ctx) (*T, error) {
	input := new(T)
	if err := c.BodyParser(input); err != nil {
		return nil, ProblemDetailsJSON(c, "Invalid request body", err, fiber.StatusBadRequest)
	}
	if err := validate.Struct(input); err != nil {
		return nil, ProblemDetailsJSON(c, "Validation failed", err, fiber.StatusBadRequest)
	}
	return input, nil
}
