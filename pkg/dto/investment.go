package dto

import (
	"time"

	"github.com/google/uuid"
)

// InvestmentCreate carries the fields for creating a position row.
type InvestmentCreate struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	ProductID    uuid.UUID
	Name         string
	Type         string
	Amount       int64 // principal, minor units
	InterestRate float64
	Status       string
	MaturityDate *time.Time
}

// InvestmentRead is a read-optimized view of a position row.
type InvestmentRead struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"user_id"`
	ProductID    uuid.UUID  `json:"product_id"`
	Name         string     `json:"investment_name"`
	Type         string     `json:"investment_type"`
	Amount       float64    `json:"amount"`
	Currency     string     `json:"currency"`
	InterestRate float64    `json:"interest_rate"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	MaturityDate *time.Time `json:"maturity_date,omitempty"`
}
