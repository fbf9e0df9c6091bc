// Package mockpayment provides an in-memory payment.Payment used in tests
// and local development, where no Daraja sandbox is reachable.
package mockpayment

import (
	"context"
	"fmt"
	"sync"

	"github.com/shillingix/backend/pkg/provider/payment"
)

// Provider is a scriptable mobile-money double. The zero value accepts every
// push and payout.
type Provider struct {
	mu sync.Mutex

	// FailPush makes InitiateSTKPush return a rejected response.
	FailPush bool
	// Err is returned verbatim from every call when set.
	Err error

	pushes  []*payment.STKPushParams
	payouts []*payment.PayoutParams
	counter int
}

// New creates a mock provider that accepts everything.
func New() *Provider {
	return &Provider{}
}

// InitiateSTKPush implements payment.Payment.
func (p *Provider) InitiateSTKPush(ctx context.Context, params *payment.STKPushParams) (*payment.STKPushResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return nil, p.Err
	}
	p.pushes = append(p.pushes, params)
	p.counter++
	if p.FailPush {
		return &payment.STKPushResponse{
			ResponseCode:        "1",
			ResponseDescription: "Unable to process request",
		}, nil
	}
	return &payment.STKPushResponse{
		MerchantRequestID:   fmt.Sprintf("mock-merchant-%d", p.counter),
		CheckoutRequestID:   fmt.Sprintf("ws_CO_mock_%d", p.counter),
		ResponseCode:        "0",
		ResponseDescription: "Success. Request accepted for processing",
		CustomerMessage:     "Success. Request accepted for processing",
	}, nil
}

// ParseCallback implements payment.Payment. The mock treats the payload as a
// pre-built CallbackResult in JSON, which tests construct directly instead.
func (p *Provider) ParseCallback(payload []byte) (*payment.CallbackResult, error) {
	return nil, fmt.Errorf("mockpayment does not parse callbacks")
}

// InitiatePayout implements payment.Payment.
func (p *Provider) InitiatePayout(ctx context.Context, params *payment.PayoutParams) (*payment.PayoutResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return nil, p.Err
	}
	p.payouts = append(p.payouts, params)
	p.counter++
	return &payment.PayoutResponse{
		ConversationID:      fmt.Sprintf("mock-conv-%d", p.counter),
		ResponseCode:        "0",
		ResponseDescription: "Accept the service request successfully.",
	}, nil
}

// Pushes returns the recorded STK push requests.
func (p *Provider) Pushes() []*payment.STKPushParams {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*payment.STKPushParams(nil), p.pushes...)
}

// Payouts returns the recorded payout requests.
func (p *Provider) Payouts() []*payment.PayoutParams {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*payment.PayoutParams(nil), p.payouts...)
}

var _ payment.Payment = (*Provider)(nil)
