package invest

// InvestRequest represents the request body for purchasing a position.
// Amount is in KES major units.
type InvestRequest struct {
	ProductID string  `json:"product_id" validate:"required,uuid4"`
	Amount    float64 `json:"amount" validate:"required,gt=0"`
}
