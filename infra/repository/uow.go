package repository

import (
	"context"

	"github.com/shillingix/backend/pkg/repository"
	"gorm.io/gorm"
)

// UoW provides transaction boundary and repository access in one
// abstraction. Every repository handed out inside Do is bound to the same
// gorm transaction, so multi-row reconciler mutations are atomic.
type UoW struct {
	db *gorm.DB
	tx *gorm.DB
}

// NewUoW creates a new UoW for the given *gorm.DB.
func NewUoW(db *gorm.DB) *UoW {
	return &UoW{db: db}
}

// session returns the transaction when inside Do, the root DB otherwise.
func (u *UoW) session() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

// Do runs fn in a transaction boundary, providing a UoW bound to it.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&UoW{db: u.db, tx: tx})
	})
}

// WalletRepository returns the wallet repository bound to the session.
func (u *UoW) WalletRepository() (repository.WalletRepository, error) {
	return NewWalletRepository(u.session()), nil
}

// InvestmentRepository returns the investment repository bound to the session.
func (u *UoW) InvestmentRepository() (repository.InvestmentRepository, error) {
	return NewInvestmentRepository(u.session()), nil
}

// TransactionRepository returns the ledger repository bound to the session.
func (u *UoW) TransactionRepository() (repository.TransactionRepository, error) {
	return NewTransactionRepository(u.session()), nil
}

// ProductRepository returns the product repository bound to the session.
func (u *UoW) ProductRepository() (repository.ProductRepository, error) {
	return NewProductRepository(u.session()), nil
}

// UserRepository returns the user repository bound to the session.
func (u *UoW) UserRepository() (repository.UserRepository, error) {
	return NewUserRepository(u.session()), nil
}

var _ repository.UnitOfWork = (*UoW)(nil)
