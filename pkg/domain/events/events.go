// Package events defines the domain events emitted by reconciler operations.
// Handlers drive the user-facing notification surface and audit logging.
package events

import (
	"github.com/google/uuid"
	"github.com/shillingix/backend/pkg/money"
)

// Event is the marker interface for all domain events.
type Event interface {
	Type() string
}

// DepositPending is emitted when an STK push was accepted and the ledger
// entry is awaiting mobile-money confirmation.
type DepositPending struct {
	UserID            uuid.UUID
	TransactionID     uuid.UUID
	Amount            money.Money
	PhoneNumber       string
	CheckoutRequestID string
}

// Type implements Event.
func (DepositPending) Type() string { return "DepositPending" }

// DepositConfirmed is emitted when a pending deposit was confirmed by the
// mobile-money callback and the wallet credited.
type DepositConfirmed struct {
	UserID        uuid.UUID
	TransactionID uuid.UUID
	Amount        money.Money
	MpesaReceipt  string
}

// Type implements Event.
func (DepositConfirmed) Type() string { return "DepositConfirmed" }

// DepositFailed is emitted when the mobile-money callback reported failure.
type DepositFailed struct {
	UserID        uuid.UUID
	TransactionID uuid.UUID
	Amount        money.Money
	Reason        string
}

// Type implements Event.
func (DepositFailed) Type() string { return "DepositFailed" }

// WithdrawalCompleted is emitted after a successful wallet debit.
type WithdrawalCompleted struct {
	UserID        uuid.UUID
	TransactionID uuid.UUID
	Amount        money.Money
	PhoneNumber   string
}

// Type implements Event.
func (WithdrawalCompleted) Type() string { return "WithdrawalCompleted" }

// InvestmentSettled is emitted after a successful purchase. OnChain reports
// whether settlement was mirrored to the external ledger.
type InvestmentSettled struct {
	UserID       uuid.UUID
	InvestmentID uuid.UUID
	ProductID    uuid.UUID
	Amount       money.Money
	OnChain      bool
	TxHash       string
}

// Type implements Event.
func (InvestmentSettled) Type() string { return "InvestmentSettled" }

// InvestmentSold is emitted after a position was disposed and the wallet
// credited with the principal.
type InvestmentSold struct {
	UserID       uuid.UUID
	InvestmentID uuid.UUID
	Amount       money.Money
	OnChain      bool
	TxHash       string
}

// Type implements Event.
func (InvestmentSold) Type() string { return "InvestmentSold" }

// InvestmentMatured is emitted when the maturity sweep or an admin completes
// an active position and credits principal plus interest.
type InvestmentMatured struct {
	UserID       uuid.UUID
	InvestmentID uuid.UUID
	Principal    money.Money
	Interest     money.Money
}

// Type implements Event.
func (InvestmentMatured) Type() string { return "InvestmentMatured" }
