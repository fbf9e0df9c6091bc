// Package product exposes the public investment-product catalog.
package product

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shillingix/backend/pkg/dto"
	productsvc "github.com/shillingix/backend/pkg/service/product"
	"github.com/shillingix/backend/webapi/common"
)

// Routes registers the public catalog endpoints. Browsing needs no token.
func Routes(app *fiber.App, productSvc *productsvc.Service) {
	app.Get("/products", ListProducts(productSvc))
	app.Get("/products/:id", GetProduct(productSvc))
}

// ListProducts returns catalog products, optionally filtered.
// @Summary List products
// @Tags products
// @Produce json
// @Param type query string false "Filter by product type"
// @Param status query string false "Filter by status"
// @Success 200 {object} common.Response
// @Router /products [get]
func ListProducts(productSvc *productsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filter := dto.ProductListFilter{}
		if v := c.Query("type"); v != "" {
			filter.Type = &v
		}
		if v := c.Query("status"); v != "" {
			filter.Status = &v
		}
		list, err := productSvc.List(c.Context(), filter)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to fetch products", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Products", list)
	}
}

// GetProduct returns a single catalog product.
// @Summary Get a product
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Router /products/{id} [get]
func GetProduct(productSvc *productsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid product ID", err, fiber.StatusBadRequest)
		}
		p, err := productSvc.Get(c.Context(), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Product not found", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Product", p)
	}
}
