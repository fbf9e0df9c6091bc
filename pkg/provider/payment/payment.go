// Package payment defines the mobile-money gateway contract used for
// deposits (STK push) and withdrawals (B2C payout).
package payment

import "context"

// Payment is the interface for a mobile-money provider.
type Payment interface {
	// InitiateSTKPush asks the provider to push a payment prompt to the
	// customer's phone. Acceptance of the push is not confirmation of
	// funds; confirmation arrives asynchronously via callback.
	InitiateSTKPush(ctx context.Context, params *STKPushParams) (*STKPushResponse, error)

	// ParseCallback parses the provider's asynchronous confirmation
	// payload into a normalized result.
	ParseCallback(payload []byte) (*CallbackResult, error)

	// InitiatePayout sends funds from the platform to a customer phone.
	InitiatePayout(ctx context.Context, params *PayoutParams) (*PayoutResponse, error)
}

// STKPushParams holds the parameters for InitiateSTKPush.
type STKPushParams struct {
	PhoneNumber      string  // MSISDN, e.g. 254712345678
	Amount           float64 // major units (KES)
	AccountReference string
	Description      string
}

// STKPushResponse mirrors the gateway's synchronous acknowledgement.
// ResponseCode "0" means the push was accepted, not that funds moved.
type STKPushResponse struct {
	MerchantRequestID   string
	CheckoutRequestID   string
	ResponseCode        string
	ResponseDescription string
	CustomerMessage     string
}

// Accepted reports whether the push request was accepted by the gateway.
func (r *STKPushResponse) Accepted() bool {
	return r.ResponseCode == "0"
}

// CallbackResult is the normalized outcome of a payment confirmation.
type CallbackResult struct {
	CheckoutRequestID string
	MerchantRequestID string
	Success           bool
	ResultCode        int
	ResultDescription string
	Amount            float64
	Receipt           string // provider receipt number, e.g. M-Pesa code
	PhoneNumber       string
}

// PayoutParams holds the parameters for InitiatePayout.
type PayoutParams struct {
	PhoneNumber string
	Amount      float64
	Description string
}

// PayoutResponse mirrors the gateway's payout acknowledgement.
type PayoutResponse struct {
	ConversationID         string
	OriginatorConversation string
	ResponseCode           string
	ResponseDescription    string
}
