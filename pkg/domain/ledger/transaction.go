// Package ledger defines the append-only transaction ledger: one entry per
// balance-affecting event, paired one-to-one with a wallet balance delta.
package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shillingix/backend/pkg/domain/common"
	"github.com/shillingix/backend/pkg/money"
)

// Type classifies the balance-affecting event behind a ledger entry.
type Type string

// Transaction types recorded in the ledger.
const (
	TypeDeposit    Type = "deposit"
	TypeWithdrawal Type = "withdrawal"
	TypeInvestment Type = "investment"
	TypeSale       Type = "sale"
	TypeInterest   Type = "interest"
	TypeTransfer   Type = "transfer"
	TypeDividend   Type = "dividend"
)

// IsValid reports whether t is a known transaction type.
func (t Type) IsValid() bool {
	switch t {
	case TypeDeposit, TypeWithdrawal, TypeInvestment, TypeSale,
		TypeInterest, TypeTransfer, TypeDividend:
		return true
	}
	return false
}

// Status tracks an entry from initiation to a terminal state.
type Status string

// Transaction statuses. Amount is immutable in every state; only status and
// description may change after creation.
const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusVoided    Status = "voided"
)

// Transaction is one append-only ledger entry. Amount is signed: negative is
// an outflow from the wallet, positive an inflow.
type Transaction struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Type        Type
	Amount      money.Money
	Source      string // free-text origin, e.g. "M-Pesa" or a bond name
	Description string
	Status      Status
	Settlement  Settlement
	CreatedAt   time.Time
}

// NewTransactionFromData creates a Transaction from raw data (repository
// hydration or test fixtures). Bypasses invariants.
func NewTransactionFromData(
	id, userID uuid.UUID,
	txType Type,
	amount money.Money,
	source, description string,
	status Status,
	settlement Settlement,
	createdAt time.Time,
) *Transaction {
	return &Transaction{
		ID:          id,
		UserID:      userID,
		Type:        txType,
		Amount:      amount,
		Source:      source,
		Description: description,
		Status:      status,
		Settlement:  settlement,
		CreatedAt:   createdAt,
	}
}

// Confirm transitions a pending entry to completed.
func (t *Transaction) Confirm() error {
	if t.Status != StatusPending {
		return common.ErrInvalidStatusTransition
	}
	t.Status = StatusCompleted
	return nil
}

// Fail transitions a pending entry to failed.
func (t *Transaction) Fail() error {
	if t.Status != StatusPending {
		return common.ErrInvalidStatusTransition
	}
	t.Status = StatusFailed
	return nil
}
