package wallet

// DepositRequest represents the request body for initiating an M-Pesa
// deposit. Amount is in KES major units.
type DepositRequest struct {
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	PhoneNumber string  `json:"phone_number" validate:"required,min=10,max=13"`
}

// WithdrawRequest represents the request body for a withdrawal to M-Pesa.
type WithdrawRequest struct {
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	PhoneNumber string  `json:"phone_number" validate:"required,min=10,max=13"`
}
