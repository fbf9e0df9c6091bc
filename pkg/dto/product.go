package dto

import (
	"time"

	"github.com/google/uuid"
)

// ProductCreate carries the fields for creating a catalog product.
type ProductCreate struct {
	ID                uuid.UUID
	Name              string
	Type              string
	Description       string
	InterestRate      float64
	TermDays          int
	MinInvestment     int64 // minor units
	AvailableAmount   int64 // minor units
	Status            string
	BlockchainAssetID string
}

// ProductRead is a read-optimized view of a catalog product.
type ProductRead struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	Type              string    `json:"type"`
	Description       string    `json:"description"`
	InterestRate      float64   `json:"interest_rate"`
	TermDays          int       `json:"term_days"`
	MinInvestment     float64   `json:"min_investment"`
	AvailableAmount   float64   `json:"available_amount"`
	Currency          string    `json:"currency"`
	Status            string    `json:"status"`
	BlockchainAssetID string    `json:"blockchain_asset_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// ProductUpdate carries mutable catalog fields for admin edits.
type ProductUpdate struct {
	Description       *string
	InterestRate      *float64
	AvailableAmount   *int64
	Status            *string
	BlockchainAssetID *string
}

// ProductListFilter narrows catalog queries.
type ProductListFilter struct {
	Type   *string
	Status *string
}
