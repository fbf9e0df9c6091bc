package admin

// CreateProductRequest represents the request body for listing a new
// product. Amounts are in KES major units.
type CreateProductRequest struct {
	Name            string  `json:"name" validate:"required,min=3,max=128"`
	Type            string  `json:"type" validate:"required,oneof=government infrastructure corporate equity"`
	Description     string  `json:"description" validate:"omitempty,max=1024"`
	InterestRate    float64 `json:"interest_rate" validate:"gte=0,lte=100"`
	TermDays        int     `json:"term_days" validate:"gte=0"`
	MinInvestment   float64 `json:"min_investment" validate:"required,gt=0"`
	AvailableAmount float64 `json:"available_amount" validate:"required,gt=0"`
}

// UpdateProductRequest represents the request body for editing a product.
type UpdateProductRequest struct {
	Description  *string  `json:"description" validate:"omitempty,max=1024"`
	InterestRate *float64 `json:"interest_rate" validate:"omitempty,gte=0,lte=100"`
	Status       *string  `json:"status" validate:"omitempty,oneof=active pending closed"`
}

// UpdateTransactionRequest represents the request body for editing a ledger
// entry. Amount is immutable, so only status and description are accepted.
type UpdateTransactionRequest struct {
	Status      *string `json:"status" validate:"omitempty,oneof=pending completed failed voided"`
	Description *string `json:"description" validate:"omitempty,max=1024"`
}

// UpdateRoleRequest represents the request body for changing a user's role.
type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin moderator"`
}
