// Package wallet exposes wallet balance, ledger history, and mobile-money
// deposit/withdrawal endpoints.
package wallet

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shillingix/backend/pkg/config"
	"github.com/shillingix/backend/pkg/middleware"
	"github.com/shillingix/backend/pkg/money"
	authsvc "github.com/shillingix/backend/pkg/service/auth"
	portfoliosvc "github.com/shillingix/backend/pkg/service/portfolio"
	reconcilersvc "github.com/shillingix/backend/pkg/service/reconciler"
	"github.com/shillingix/backend/webapi/common"
)

// Routes registers the wallet endpoints. All require a valid token.
func Routes(
	app *fiber.App,
	portfolioSvc *portfoliosvc.Service,
	reconcilerSvc *reconcilersvc.Service,
	authSvc *authsvc.Service,
	cfg *config.App,
) {
	app.Get("/wallet", middleware.JwtProtected(cfg.Jwt), GetWallet(portfolioSvc, authSvc))
	app.Get("/wallet/transactions", middleware.JwtProtected(cfg.Jwt), GetTransactions(portfolioSvc, authSvc))
	app.Post("/wallet/deposit", middleware.JwtProtected(cfg.Jwt), Deposit(reconcilerSvc, authSvc))
	app.Post("/wallet/withdraw", middleware.JwtProtected(cfg.Jwt), Withdraw(reconcilerSvc, authSvc))
}

// GetWallet returns the authenticated user's wallet.
// @Summary Get wallet
// @Tags wallet
// @Produce json
// @Success 200 {object} common.Response
// @Failure 401 {object} common.ProblemDetails
// @Router /wallet [get]
// @Security Bearer
func GetWallet(portfolioSvc *portfoliosvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _, err := common.CurrentUser(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		w, err := portfolioSvc.Wallet(c.Context(), userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to fetch wallet", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Wallet", w)
	}
}

// GetTransactions returns the user's ledger history, newest first.
// @Summary List wallet transactions
// @Tags wallet
// @Produce json
// @Param limit query int false "Maximum entries to return"
// @Success 200 {object} common.Response
// @Failure 401 {object} common.ProblemDetails
// @Router /wallet/transactions [get]
// @Security Bearer
func GetTransactions(portfolioSvc *portfoliosvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _, err := common.CurrentUser(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		limit := c.QueryInt("limit", 50)
		txs, err := portfolioSvc.Transactions(c.Context(), userID, limit)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to fetch transactions", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transactions", txs)
	}
}

// Deposit initiates an M-Pesa STK push. The wallet is credited only after
// the gateway confirms via callback.
// @Summary Deposit via M-Pesa
// @Tags wallet
// @Accept json
// @Produce json
// @Param request body DepositRequest true "Deposit details"
// @Success 202 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Router /wallet/deposit [post]
// @Security Bearer
func Deposit(reconcilerSvc *reconcilersvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _, err := common.CurrentUser(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		input, err := common.BindAndValidate[DepositRequest](c)
		if input == nil {
			return err
		}
		amount, err := money.New(input.Amount, money.DefaultCurrency)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid amount", err, fiber.StatusBadRequest)
		}
		receipt, err := reconcilerSvc.Deposit(c.Context(), userID, input.PhoneNumber, amount)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Deposit failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusAccepted, "Deposit initiated, confirm on your phone", fiber.Map{
			"transaction_id":      receipt.TransactionID,
			"status":              receipt.Status,
			"checkout_request_id": receipt.CheckoutRequestID,
		})
	}
}

// Withdraw debits the wallet and sends funds to the user's phone.
// @Summary Withdraw to M-Pesa
// @Tags wallet
// @Accept json
// @Produce json
// @Param request body WithdrawRequest true "Withdrawal details"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Failure 422 {object} common.ProblemDetails
// @Router /wallet/withdraw [post]
// @Security Bearer
func Withdraw(reconcilerSvc *reconcilersvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _, err := common.CurrentUser(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		input, err := common.BindAndValidate[WithdrawRequest](c)
		if input == nil {
			return err
		}
		amount, err := money.New(input.Amount, money.DefaultCurrency)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid amount", err, fiber.StatusBadRequest)
		}
		receipt, err := reconcilerSvc.Withdraw(c.Context(), userID, input.PhoneNumber, amount)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Withdrawal failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Withdrawal completed", fiber.Map{
			"transaction_id": receipt.TransactionID,
			"status":         receipt.Status,
		})
	}
}
