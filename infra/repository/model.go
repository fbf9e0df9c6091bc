// Package repository contains the GORM persistence layer: table models, the
// per-entity repositories, and the unit-of-work over gorm transactions.
package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Migrate creates or updates the schema for every table model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Wallet{},
		&Product{},
		&Investment{},
		&Transaction{},
	)
}

// User represents a user record in the database.
type User struct {
	gorm.Model
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	Username    string    `gorm:"uniqueIndex;not null;size:50"`
	Email       string    `gorm:"uniqueIndex;not null;size:255"`
	Password    string    `gorm:"not null"`
	PhoneNumber string    `gorm:"size:15"`
	Role        string    `gorm:"type:varchar(16);not null;default:'user'"`
}

// Wallet represents a per-user balance record. Balance is KES minor units
// and is mutated only through conditional updates.
type Wallet struct {
	gorm.Model
	ID      uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID  uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	Balance int64     `gorm:"not null;default:0"`
}

// Investment represents a persisted position. Rows are never deleted;
// status is the lifecycle marker.
type Investment struct {
	gorm.Model
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID       uuid.UUID `gorm:"type:uuid;index;not null"`
	ProductID    uuid.UUID `gorm:"type:uuid;index"`
	Name         string    `gorm:"size:255;not null"`
	Type         string    `gorm:"type:varchar(32);not null"`
	Amount       int64     `gorm:"not null"`
	InterestRate float64   `gorm:"type:decimal(8,4)"`
	Status       string    `gorm:"type:varchar(16);index;not null;default:'pending'"`
	MaturityDate *time.Time
}

// Transaction represents an append-only ledger entry. Amount is signed minor
// units and immutable after insert; only status and description are updated.
type Transaction struct {
	gorm.Model
	ID                uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID            uuid.UUID `gorm:"type:uuid;index;not null"`
	Type              string    `gorm:"type:varchar(16);not null"`
	Amount            int64     `gorm:"not null"`
	Currency          string    `gorm:"type:varchar(3);not null;default:'KES'"`
	Source            string    `gorm:"size:128"`
	Description       string    `gorm:"size:255"`
	Status            string    `gorm:"type:varchar(16);index;not null;default:'pending'"`
	BlockchainTxHash  *string   `gorm:"size:80"`
	CheckoutRequestID *string   `gorm:"size:64;index"`
	MpesaReceipt      *string   `gorm:"size:32"`
}

// Product represents a catalog entry in the database.
type Product struct {
	gorm.Model
	ID                uuid.UUID `gorm:"type:uuid;primary_key"`
	Name              string    `gorm:"size:255;not null"`
	Type              string    `gorm:"type:varchar(32);index;not null"`
	Description       string    `gorm:"size:1024"`
	InterestRate      float64   `gorm:"type:decimal(8,4)"`
	TermDays          int
	MinInvestment     int64  `gorm:"not null"`
	AvailableAmount   int64  `gorm:"not null;default:0"`
	Status            string `gorm:"type:varchar(16);index;not null;default:'pending'"`
	BlockchainAssetID *string `gorm:"size:80"`
}
