// Package investment defines the position aggregate: a user's holding in an
// investment product and its lifecycle.
package investment

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shillingix/backend/pkg/domain/common"
	"github.com/shillingix/backend/pkg/money"
)

// Type classifies the underlying investment product.
type Type string

// Investment product types offered by the platform.
const (
	TypeGovernment     Type = "government"
	TypeInfrastructure Type = "infrastructure"
	TypeCorporate      Type = "corporate"
	TypeEquity         Type = "equity"
)

// IsValid reports whether t is a known investment type.
func (t Type) IsValid() bool {
	switch t {
	case TypeGovernment, TypeInfrastructure, TypeCorporate, TypeEquity:
		return true
	}
	return false
}

// Status is the lifecycle marker of a position. Positions are never deleted;
// status records disposal, rejection, and maturity.
type Status string

// Position lifecycle states: pending → active → sold | rejected | completed.
const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusSold      Status = "sold"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
)

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusActive || next == StatusRejected
	case StatusActive:
		return next == StatusSold || next == StatusCompleted
	}
	return false
}

// Investment represents one purchased position held by a user.
type Investment struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Name         string
	Type         Type
	Amount       money.Money // principal
	InterestRate float64     // percent per annum
	Status       Status
	CreatedAt    time.Time
	MaturityDate *time.Time
}

// Builder provides a fluent API for constructing Investment instances.
type Builder struct {
	id           uuid.UUID
	userID       uuid.UUID
	name         string
	invType      Type
	amount       int64
	interestRate float64
	status       Status
	createdAt    time.Time
	maturityDate *time.Time
}

// New creates a Builder with a fresh UUID and active status.
func New() *Builder {
	return &Builder{
		id:        uuid.New(),
		status:    StatusActive,
		createdAt: time.Now(),
	}
}

// WithID sets the position ID, used for hydration.
func (b *Builder) WithID(id uuid.UUID) *Builder { b.id = id; return b }

// WithUserID sets the owner. Mandatory.
func (b *Builder) WithUserID(userID uuid.UUID) *Builder { b.userID = userID; return b }

// WithName sets the product name snapshot carried on the position.
func (b *Builder) WithName(name string) *Builder { b.name = name; return b }

// WithType sets the product type.
func (b *Builder) WithType(t Type) *Builder { b.invType = t; return b }

// WithAmount sets the principal in minor units.
func (b *Builder) WithAmount(amount int64) *Builder { b.amount = amount; return b }

// WithInterestRate sets the annual interest rate in percent.
func (b *Builder) WithInterestRate(rate float64) *Builder { b.interestRate = rate; return b }

// WithStatus sets the lifecycle status, used for hydration.
func (b *Builder) WithStatus(s Status) *Builder { b.status = s; return b }

// WithCreatedAt sets the creation timestamp, used for hydration.
func (b *Builder) WithCreatedAt(t time.Time) *Builder { b.createdAt = t; return b }

// WithMaturityDate sets the optional maturity date.
func (b *Builder) WithMaturityDate(t *time.Time) *Builder { b.maturityDate = t; return b }

// Build validates invariants and returns the Investment.
func (b *Builder) Build() (*Investment, error) {
	if b.userID == uuid.Nil || b.name == "" {
		return nil, common.ErrValidation
	}
	if !b.invType.IsValid() {
		return nil, common.ErrValidation
	}
	if b.amount <= 0 {
		return nil, common.ErrAmountMustBePositive
	}
	return &Investment{
		ID:           b.id,
		UserID:       b.userID,
		Name:         b.name,
		Type:         b.invType,
		Amount:       money.NewFromData(b.amount, string(money.DefaultCurrency)),
		InterestRate: b.interestRate,
		Status:       b.status,
		CreatedAt:    b.createdAt,
		MaturityDate: b.maturityDate,
	}, nil
}

// Sell transitions the position to sold. Only active positions can be sold.
func (i *Investment) Sell() error {
	if !i.Status.CanTransitionTo(StatusSold) {
		return common.ErrInvestmentNotFound
	}
	i.Status = StatusSold
	return nil
}

// Complete transitions the position to completed at maturity.
func (i *Investment) Complete() error {
	if !i.Status.CanTransitionTo(StatusCompleted) {
		return common.ErrInvalidStatusTransition
	}
	i.Status = StatusCompleted
	return nil
}

// IsMatured reports whether the position has a maturity date at or before now.
func (i *Investment) IsMatured(now time.Time) bool {
	return i.MaturityDate != nil && !i.MaturityDate.After(now)
}

// AccruedInterest computes simple interest for the position's full term:
// principal * rate/100 * termDays/365, rounded to the nearest minor unit.
func (i *Investment) AccruedInterest(termDays int) money.Money {
	interest := float64(i.Amount.Amount()) * i.InterestRate / 100 * float64(termDays) / 365
	return money.NewFromData(int64(math.Round(interest)), string(i.Amount.Currency()))
}
