// Package invest exposes position purchase, disposal, and portfolio
// endpoints.
package invest

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shillingix/backend/pkg/config"
	"github.com/shillingix/backend/pkg/middleware"
	"github.com/shillingix/backend/pkg/money"
	authsvc "github.com/shillingix/backend/pkg/service/auth"
	portfoliosvc "github.com/shillingix/backend/pkg/service/portfolio"
	reconcilersvc "github.com/shillingix/backend/pkg/service/reconciler"
	"github.com/shillingix/backend/webapi/common"
)

// Routes registers the investment endpoints. All require a valid token.
func Routes(
	app *fiber.App,
	reconcilerSvc *reconcilersvc.Service,
	portfolioSvc *portfoliosvc.Service,
	authSvc *authsvc.Service,
	cfg *config.App,
) {
	app.Post("/invest", middleware.JwtProtected(cfg.Jwt), Invest(reconcilerSvc, authSvc))
	app.Get("/investments", middleware.JwtProtected(cfg.Jwt), ListInvestments(portfolioSvc, authSvc))
	app.Get("/investments/:id", middleware.JwtProtected(cfg.Jwt), GetInvestment(portfolioSvc, authSvc))
	app.Post("/investments/:id/sell", middleware.JwtProtected(cfg.Jwt), Sell(reconcilerSvc, authSvc))
	app.Get("/portfolio", middleware.JwtProtected(cfg.Jwt), GetPortfolio(portfolioSvc, authSvc))
}

// Invest purchases a position in a product.
// @Summary Invest in a product
// @Tags investments
// @Accept json
// @Produce json
// @Param request body InvestRequest true "Investment details"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 422 {object} common.ProblemDetails
// @Router /invest [post]
// @Security Bearer
func Invest(reconcilerSvc *reconcilersvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _, err := common.CurrentUser(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		input, err := common.BindAndValidate[InvestRequest](c)
		if input == nil {
			return err
		}
		productID, err := uuid.Parse(input.ProductID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid product ID", err, fiber.StatusBadRequest)
		}
		amount, err := money.New(input.Amount, money.DefaultCurrency)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid amount", err, fiber.StatusBadRequest)
		}
		receipt, err := reconcilerSvc.Invest(c.Context(), userID, productID, amount)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Investment failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Investment settled", fiber.Map{
			"investment_id":      receipt.InvestmentID,
			"transaction_id":     receipt.TransactionID,
			"on_chain":           receipt.Settlement.OnChain(),
			"blockchain_tx_hash": receipt.Settlement.TxHash(),
		})
	}
}

// ListInvestments returns the user's positions.
// @Summary List positions
// @Tags investments
// @Produce json
// @Param status query string false "Filter by status"
// @Success 200 {object} common.Response
// @Router /investments [get]
// @Security Bearer
func ListInvestments(portfolioSvc *portfoliosvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _, err := common.CurrentUser(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		list, err := portfolioSvc.Investments(c.Context(), userID, c.Query("status"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to fetch investments", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Investments", list)
	}
}

// GetInvestment returns one position scoped to its owner.
// @Summary Get a position
// @Tags investments
// @Produce json
// @Param id path string true "Investment ID"
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Router /investments/{id} [get]
// @Security Bearer
func GetInvestment(portfolioSvc *portfoliosvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _, err := common.CurrentUser(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid investment ID", err, fiber.StatusBadRequest)
		}
		inv, err := portfolioSvc.Investment(c.Context(), id, userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Investment not found", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Investment", inv)
	}
}

// Sell disposes of an active position and credits the principal back.
// @Summary Sell a position
// @Tags investments
// @Produce json
// @Param id path string true "Investment ID"
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Router /investments/{id}/sell [post]
// @Security Bearer
func Sell(reconcilerSvc *reconcilersvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _, err := common.CurrentUser(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid investment ID", err, fiber.StatusBadRequest)
		}
		receipt, err := reconcilerSvc.Sell(c.Context(), userID, id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Sale failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Investment sold", fiber.Map{
			"transaction_id":     receipt.TransactionID,
			"amount":             receipt.Amount.AmountFloat(),
			"on_chain":           receipt.Settlement.OnChain(),
			"blockchain_tx_hash": receipt.Settlement.TxHash(),
		})
	}
}

// GetPortfolio returns the wallet plus position totals in one view.
// @Summary Portfolio summary
// @Tags investments
// @Produce json
// @Success 200 {object} common.Response
// @Router /portfolio [get]
// @Security Bearer
func GetPortfolio(portfolioSvc *portfoliosvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _, err := common.CurrentUser(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		summary, err := portfolioSvc.Summarize(c.Context(), userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to build portfolio", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Portfolio", summary)
	}
}
