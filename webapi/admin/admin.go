// Package admin exposes the role-gated platform management surface:
// catalog management, the full ledger, user administration, and
// admin-driven maturity completion.
package admin

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shillingix/backend/pkg/config"
	domaincommon "github.com/shillingix/backend/pkg/domain/common"
	"github.com/shillingix/backend/pkg/dto"
	"github.com/shillingix/backend/pkg/middleware"
	"github.com/shillingix/backend/pkg/money"
	"github.com/shillingix/backend/pkg/repository"
	productsvc "github.com/shillingix/backend/pkg/service/product"
	reconcilersvc "github.com/shillingix/backend/pkg/service/reconciler"
	usersvc "github.com/shillingix/backend/pkg/service/user"
	"github.com/shillingix/backend/webapi/common"
)

// Routes registers the admin endpoints behind JWT + admin role checks.
func Routes(
	app *fiber.App,
	productSvc *productsvc.Service,
	userSvc *usersvc.Service,
	reconcilerSvc *reconcilersvc.Service,
	uow repository.UnitOfWork,
	cfg *config.App,
) {
	guard := []fiber.Handler{middleware.JwtProtected(cfg.Jwt), middleware.AdminRequired()}

	app.Post("/admin/products", append(guard, CreateProduct(productSvc))...)
	app.Patch("/admin/products/:id", append(guard, UpdateProduct(productSvc))...)
	app.Get("/admin/users", append(guard, ListUsers(userSvc))...)
	app.Patch("/admin/users/:id/role", append(guard, UpdateUserRole(userSvc))...)
	app.Get("/admin/transactions", append(guard, ListTransactions(uow))...)
	app.Patch("/admin/transactions/:id", append(guard, UpdateTransaction(uow))...)
	app.Post("/admin/investments/:id/complete", append(guard, CompleteInvestment(reconcilerSvc, uow))...)
}

// CreateProduct lists a new investment product.
// @Summary Create a product
// @Tags admin
// @Accept json
// @Produce json
// @Param request body CreateProductRequest true "Product details"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Router /admin/products [post]
// @Security Bearer
func CreateProduct(productSvc *productsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[CreateProductRequest](c)
		if input == nil {
			return err
		}
		minInv, err := money.New(input.MinInvestment, money.DefaultCurrency)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid minimum investment", err, fiber.StatusBadRequest)
		}
		available, err := money.New(input.AvailableAmount, money.DefaultCurrency)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid available amount", err, fiber.StatusBadRequest)
		}
		p, err := productSvc.Create(c.Context(), productsvc.CreateParams{
			Name:            input.Name,
			Type:            input.Type,
			Description:     input.Description,
			InterestRate:    input.InterestRate,
			TermDays:        input.TermDays,
			MinInvestment:   minInv,
			AvailableAmount: available,
		})
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to create product", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Product created", p)
	}
}

// UpdateProduct edits a product's mutable fields.
// @Summary Update a product
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param request body UpdateProductRequest true "Fields to update"
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Router /admin/products/{id} [patch]
// @Security Bearer
func UpdateProduct(productSvc *productsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid product ID", err, fiber.StatusBadRequest)
		}
		input, err := common.BindAndValidate[UpdateProductRequest](c)
		if input == nil {
			return err
		}
		if err := productSvc.Update(c.Context(), id, dto.ProductUpdate{
			Description:  input.Description,
			InterestRate: input.InterestRate,
			Status:       input.Status,
		}); err != nil {
			return common.ProblemDetailsJSON(c, "Failed to update product", err)
		}
		p, err := productSvc.Get(c.Context(), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Product not found", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Product updated", p)
	}
}

// ListUsers returns platform users.
// @Summary List users
// @Tags admin
// @Produce json
// @Param limit query int false "Maximum users to return"
// @Success 200 {object} common.Response
// @Router /admin/users [get]
// @Security Bearer
func ListUsers(userSvc *usersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		users, err := userSvc.List(c.Context(), c.QueryInt("limit", 100))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to fetch users", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Users", users)
	}
}

// UpdateUserRole changes a user's role.
// @Summary Update a user's role
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body UpdateRoleRequest true "New role"
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Router /admin/users/{id}/role [patch]
// @Security Bearer
func UpdateUserRole(userSvc *usersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid user ID", err, fiber.StatusBadRequest)
		}
		input, err := common.BindAndValidate[UpdateRoleRequest](c)
		if input == nil {
			return err
		}
		if err := userSvc.UpdateRole(c.Context(), id, input.Role); err != nil {
			return common.ProblemDetailsJSON(c, "Failed to update role", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Role updated", fiber.Map{"role": input.Role})
	}
}

// ListTransactions is the admin ledger query.
// @Summary List ledger entries
// @Tags admin
// @Produce json
// @Param user_id query string false "Filter by user"
// @Param type query string false "Filter by transaction type"
// @Param status query string false "Filter by status"
// @Param limit query int false "Maximum entries to return"
// @Success 200 {object} common.Response
// @Router /admin/transactions [get]
// @Security Bearer
func ListTransactions(uow repository.UnitOfWork) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filter := dto.TransactionListFilter{Limit: c.QueryInt("limit", 100)}
		if v := c.Query("user_id"); v != "" {
			id, err := uuid.Parse(v)
			if err != nil {
				return common.ProblemDetailsJSON(c, "Invalid user ID", err, fiber.StatusBadRequest)
			}
			filter.UserID = &id
		}
		if v := c.Query("type"); v != "" {
			filter.Type = &v
		}
		if v := c.Query("status"); v != "" {
			filter.Status = &v
		}
		transactions, err := uow.TransactionRepository()
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to fetch transactions", err)
		}
		list, err := transactions.List(c.Context(), filter)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to fetch transactions", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transactions", list)
	}
}

// UpdateTransaction edits a ledger entry's status or description. Amount is
// immutable and not accepted.
// @Summary Update a ledger entry
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Transaction ID"
// @Param request body UpdateTransactionRequest true "Fields to update"
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Router /admin/transactions/{id} [patch]
// @Security Bearer
func UpdateTransaction(uow repository.UnitOfWork) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid transaction ID", err, fiber.StatusBadRequest)
		}
		input, err := common.BindAndValidate[UpdateTransactionRequest](c)
		if input == nil {
			return err
		}
		transactions, err := uow.TransactionRepository()
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to update transaction", err)
		}
		if err := transactions.Update(c.Context(), id, dto.TransactionUpdate{
			Status:      input.Status,
			Description: input.Description,
		}); err != nil {
			return common.ProblemDetailsJSON(c, "Failed to update transaction", err)
		}
		tx, err := transactions.Get(c.Context(), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Transaction not found", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transaction updated", tx)
	}
}

// CompleteInvestment completes a matured position on a user's behalf,
// crediting principal plus interest through the reconciler.
// @Summary Complete a matured position
// @Tags admin
// @Produce json
// @Param id path string true "Investment ID"
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Failure 422 {object} common.ProblemDetails
// @Router /admin/investments/{id}/complete [post]
// @Security Bearer
func CompleteInvestment(reconcilerSvc *reconcilersvc.Service, uow repository.UnitOfWork) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid investment ID", err, fiber.StatusBadRequest)
		}
		userID, err := ownerOf(c, uow, id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Investment not found", err)
		}
		receipt, err := reconcilerSvc.Mature(c.Context(), userID, id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to complete investment", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Investment completed", fiber.Map{
			"transaction_id": receipt.TransactionID,
			"amount":         receipt.Amount.AmountFloat(),
		})
	}
}

// errNotMatured maps to 404: the position is either unknown, not active, or
// not yet matured.
var errNotMatured = fmt.Errorf("%w: no matured active position", domaincommon.ErrInvestmentNotFound)

// ownerOf finds the owner of a matured active position, for admin-driven
// completion. Positions are owner-scoped everywhere else, so the lookup goes
// through the maturity listing.
func ownerOf(c *fiber.Ctx, uow repository.UnitOfWork, investmentID uuid.UUID) (uuid.UUID, error) {
	investments, err := uow.InvestmentRepository()
	if err != nil {
		return uuid.Nil, err
	}
	matured, err := investments.ListMaturedActive(c.Context(), time.Now())
	if err != nil {
		return uuid.Nil, err
	}
	for _, inv := range matured {
		if inv.ID == investmentID {
			return inv.UserID, nil
		}
	}
	return uuid.Nil, errNotMatured
}
