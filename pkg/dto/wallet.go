// Package dto holds read- and write-optimized data transfer structs passed
// between services and repositories.
package dto

import (
	"time"

	"github.com/google/uuid"
)

// WalletCreate carries the fields for creating a wallet row.
type WalletCreate struct {
	ID      uuid.UUID
	UserID  uuid.UUID
	Balance int64 // minor units
}

// WalletRead is a read-optimized view of a wallet row.
type WalletRead struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Balance   float64   `json:"balance"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
