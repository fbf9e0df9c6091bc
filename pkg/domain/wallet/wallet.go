// Package wallet defines the per-user liquid balance aggregate.
//
// Invariants:
//   - A wallet always has a valid owner (UserID).
//   - The balance is a Money value object in the platform currency.
//   - The balance can never go negative through a reconciler operation.
package wallet

import (
	"time"

	"github.com/google/uuid"
	"github.com/shillingix/backend/pkg/domain/common"
	"github.com/shillingix/backend/pkg/money"
)

// Wallet represents a user's liquid KES balance. One wallet per user,
// created lazily with a zero balance on first access.
type Wallet struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Balance   money.Money
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Builder provides a fluent API for constructing Wallet instances.
type Builder struct {
	id        uuid.UUID
	userID    uuid.UUID
	balance   int64
	createdAt time.Time
	updatedAt time.Time
}

// New creates a Builder with a fresh UUID and zero balance.
func New() *Builder {
	return &Builder{
		id:        uuid.New(),
		createdAt: time.Now(),
	}
}

// WithID sets the wallet ID, used when hydrating from a data store.
func (b *Builder) WithID(id uuid.UUID) *Builder {
	b.id = id
	return b
}

// WithUserID sets the owner. This is a mandatory field.
func (b *Builder) WithUserID(userID uuid.UUID) *Builder {
	b.userID = userID
	return b
}

// WithBalance sets the balance in minor units. Only for hydration or tests.
func (b *Builder) WithBalance(balance int64) *Builder {
	b.balance = balance
	return b
}

// WithCreatedAt sets the creation timestamp, used for hydration.
func (b *Builder) WithCreatedAt(t time.Time) *Builder {
	b.createdAt = t
	return b
}

// WithUpdatedAt sets the last-updated timestamp, used for hydration.
func (b *Builder) WithUpdatedAt(t time.Time) *Builder {
	b.updatedAt = t
	return b
}

// Build validates invariants and returns the Wallet.
func (b *Builder) Build() (*Wallet, error) {
	if b.userID == uuid.Nil {
		return nil, common.ErrValidation
	}
	if b.balance < 0 {
		return nil, common.ErrInsufficientFunds
	}
	return &Wallet{
		ID:        b.id,
		UserID:    b.userID,
		Balance:   money.NewFromData(b.balance, string(money.DefaultCurrency)),
		CreatedAt: b.createdAt,
		UpdatedAt: b.updatedAt,
	}, nil
}

// CanDebit reports whether the wallet holds at least amount.
func (w *Wallet) CanDebit(amount money.Money) (bool, error) {
	if !amount.IsPositive() {
		return false, common.ErrAmountMustBePositive
	}
	return w.Balance.GreaterThanOrEqual(amount)
}
