// Package payment receives asynchronous mobile-money confirmations.
package payment

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	domaincommon "github.com/shillingix/backend/pkg/domain/common"
	providerpayment "github.com/shillingix/backend/pkg/provider/payment"
	reconcilersvc "github.com/shillingix/backend/pkg/service/reconciler"
	"github.com/shillingix/backend/webapi/common"
)

// Routes registers the Daraja callback endpoint. The route is
// unauthenticated; correlation happens via CheckoutRequestID and replays
// are no-ops in the reconciler.
func Routes(app *fiber.App, provider providerpayment.Payment, reconcilerSvc *reconcilersvc.Service) {
	app.Post("/payments/mpesa/callback", MpesaCallback(provider, reconcilerSvc))
}

// MpesaCallback settles a pending deposit from the STK push result.
// @Summary M-Pesa STK push callback
// @Tags payments
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 400 {object} common.ProblemDetails
// @Router /payments/mpesa/callback [post]
func MpesaCallback(provider providerpayment.Payment, reconcilerSvc *reconcilersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		result, err := provider.ParseCallback(c.Body())
		if err != nil {
			return common.ProblemDetailsJSON(c, "Malformed callback", err, fiber.StatusBadRequest)
		}
		if err := reconcilerSvc.ConfirmDeposit(c.Context(), result); err != nil {
			// An unmatched CheckoutRequestID is acknowledged so the
			// gateway stops retrying a deposit we never initiated.
			if errors.Is(err, domaincommon.ErrTransactionNotFound) {
				return c.JSON(fiber.Map{"ResultCode": 0, "ResultDesc": "Accepted"})
			}
			return common.ProblemDetailsJSON(c, "Callback processing failed", err)
		}
		return c.JSON(fiber.Map{"ResultCode": 0, "ResultDesc": "Accepted"})
	}
}
