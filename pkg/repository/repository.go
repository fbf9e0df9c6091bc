// Package repository defines the persistence contracts consumed by services.
// Implementations live in infra/repository.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shillingix/backend/pkg/dto"
)

// UnitOfWork defines the contract for transactional work and typed
// repository access. All repositories obtained inside Do share one DB
// transaction, so a reconciler operation's multi-row mutation commits or
// rolls back as a whole.
type UnitOfWork interface {
	// Do executes fn within a transaction boundary. If fn returns an
	// error the transaction is rolled back.
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error

	WalletRepository() (WalletRepository, error)
	InvestmentRepository() (InvestmentRepository, error)
	TransactionRepository() (TransactionRepository, error)
	ProductRepository() (ProductRepository, error)
	UserRepository() (UserRepository, error)
}

// WalletRepository persists per-user wallets. Balance mutations are atomic
// conditional updates so concurrent debits cannot overdraw.
type WalletRepository interface {
	// Get returns the wallet for userID or common.ErrWalletNotFound.
	Get(ctx context.Context, userID uuid.UUID) (*dto.WalletRead, error)

	// GetOrCreate returns the wallet for userID, creating it with a zero
	// balance when absent.
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*dto.WalletRead, error)

	// Credit adds amount (positive minor units) to the wallet balance,
	// creating the wallet when absent.
	Credit(ctx context.Context, userID uuid.UUID, amount int64) error

	// DebitIfSufficient subtracts amount (positive minor units) only when
	// balance >= amount, in a single conditional update. Returns
	// common.ErrInsufficientFunds when the guard fails.
	DebitIfSufficient(ctx context.Context, userID uuid.UUID, amount int64) error
}

// InvestmentRepository persists positions.
type InvestmentRepository interface {
	Create(ctx context.Context, create dto.InvestmentCreate) error

	// Get returns the position scoped by owner, or
	// common.ErrInvestmentNotFound.
	Get(ctx context.Context, id, userID uuid.UUID) (*dto.InvestmentRead, error)

	// ListByUser returns the user's positions, optionally filtered by
	// status, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID, status string) ([]*dto.InvestmentRead, error)

	// MarkSold flips status active -> sold in one conditional update.
	// Returns common.ErrInvestmentNotFound when no active row matched,
	// which makes a second Sell on the same position fail cleanly.
	MarkSold(ctx context.Context, id, userID uuid.UUID) error

	// MarkCompleted flips status active -> completed in one conditional
	// update. Returns common.ErrInvestmentNotFound when no row matched.
	MarkCompleted(ctx context.Context, id, userID uuid.UUID) error

	// ListMaturedActive returns active positions whose maturity date is at
	// or before asOf. Used by the maturity sweep.
	ListMaturedActive(ctx context.Context, asOf time.Time) ([]*dto.InvestmentRead, error)
}

// TransactionRepository persists the append-only ledger.
type TransactionRepository interface {
	Create(ctx context.Context, create dto.TransactionCreate) error

	// Get returns the entry or common.ErrTransactionNotFound.
	Get(ctx context.Context, id uuid.UUID) (*dto.TransactionRead, error)

	// GetByCheckoutRequestID finds the pending deposit correlated with an
	// M-Pesa STK push.
	GetByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*dto.TransactionRead, error)

	// ListByUser returns the user's entries ordered created_at desc.
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*dto.TransactionRead, error)

	// List is the admin ledger query.
	List(ctx context.Context, filter dto.TransactionListFilter) ([]*dto.TransactionRead, error)

	// Update mutates status and description only; amount is immutable.
	Update(ctx context.Context, id uuid.UUID, update dto.TransactionUpdate) error

	// ConfirmPending flips status pending -> completed and stamps the
	// mobile-money receipt, in one conditional update. Returns
	// common.ErrTransactionNotFound when no pending row matched.
	ConfirmPending(ctx context.Context, id uuid.UUID, mpesaReceipt string) error
}

// ProductRepository persists the investment-product catalog.
type ProductRepository interface {
	Create(ctx context.Context, create dto.ProductCreate) error

	// Get returns the product or common.ErrProductNotFound.
	Get(ctx context.Context, id uuid.UUID) (*dto.ProductRead, error)

	List(ctx context.Context, filter dto.ProductListFilter) ([]*dto.ProductRead, error)

	Update(ctx context.Context, id uuid.UUID, update dto.ProductUpdate) error

	// ReserveAmount decrements available_amount by amount only when enough
	// inventory remains, in one conditional update. Returns
	// common.ErrProductUnavailable when the guard fails.
	ReserveAmount(ctx context.Context, id uuid.UUID, amount int64) error

	// ReleaseAmount returns previously reserved inventory, used when a
	// disposal puts principal back on the book.
	ReleaseAmount(ctx context.Context, id uuid.UUID, amount int64) error
}

// UserRepository persists platform identities.
type UserRepository interface {
	Create(ctx context.Context, create dto.UserCreate) error

	// Get returns the user or common.ErrUserNotFound.
	Get(ctx context.Context, id uuid.UUID) (*dto.UserRead, error)

	// GetByIdentity looks a user up by username or email and returns the
	// read view together with the stored password hash.
	GetByIdentity(ctx context.Context, identity string) (*dto.UserRead, string, error)

	List(ctx context.Context, limit int) ([]*dto.UserRead, error)

	Update(ctx context.Context, id uuid.UUID, update dto.UserUpdate) error
}
