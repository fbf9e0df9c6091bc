package dto

import (
	"time"

	"github.com/google/uuid"
)

// TransactionCreate carries the fields for appending a ledger entry.
// Amount is signed minor units: negative outflow, positive inflow.
type TransactionCreate struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Type        string
	Amount      int64
	Source      string
	Description string
	Status      string
	// BlockchainTxHash is set when the entry settled on the external ledger.
	BlockchainTxHash string
	// CheckoutRequestID correlates a pending deposit with its M-Pesa
	// STK push; empty for every other transaction type.
	CheckoutRequestID string
}

// TransactionRead is a read-optimized view of a ledger entry.
type TransactionRead struct {
	ID                uuid.UUID `json:"id"`
	UserID            uuid.UUID `json:"user_id"`
	Type              string    `json:"transaction_type"`
	Amount            float64   `json:"amount"`
	Currency          string    `json:"currency"`
	Source            string    `json:"source"`
	Description       string    `json:"description"`
	Status            string    `json:"status"`
	BlockchainTxHash  string    `json:"blockchain_tx_hash,omitempty"`
	CheckoutRequestID string    `json:"-"`
	MpesaReceipt      string    `json:"mpesa_receipt,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// TransactionUpdate carries the only mutable ledger fields. Amount is
// immutable after creation.
type TransactionUpdate struct {
	Status      *string
	Description *string
}

// TransactionListFilter narrows admin ledger queries.
type TransactionListFilter struct {
	UserID *uuid.UUID
	Type   *string
	Status *string
	Limit  int
}
