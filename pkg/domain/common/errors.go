// Package common holds domain errors shared across aggregates.
package common

import "errors"

var (
	// ErrValidation is returned when input fails validation before any remote call.
	ErrValidation = errors.New("validation failed")

	// ErrInsufficientFunds is returned when a debit would take a wallet negative.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrWalletNotFound is returned when a wallet cannot be found.
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrInvestmentNotFound is returned when no matching active investment exists.
	ErrInvestmentNotFound = errors.New("investment not found")

	// ErrProductNotFound is returned when a catalog product cannot be found.
	ErrProductNotFound = errors.New("product not found")

	// ErrProductUnavailable is returned when a product is closed or sold out.
	ErrProductUnavailable = errors.New("product unavailable")

	// ErrTransactionNotFound is returned when a ledger entry cannot be found.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrUserNotFound is returned when a user cannot be found.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserUnauthorized is returned when credentials or ownership checks fail.
	ErrUserUnauthorized = errors.New("user unauthorized")

	// ErrAmountMustBePositive is returned when an operation amount is not positive.
	ErrAmountMustBePositive = errors.New("amount must be positive")

	// ErrBelowMinimumInvestment is returned when an investment amount is below the
	// product's minimum.
	ErrBelowMinimumInvestment = errors.New("amount below minimum investment")

	// ErrInvalidStatusTransition is returned for lifecycle transitions the
	// aggregate does not allow.
	ErrInvalidStatusTransition = errors.New("invalid status transition")
)
