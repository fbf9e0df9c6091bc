// Package money provides a value object for monetary amounts.
//
// Invariants:
//   - Amount is always stored in the smallest currency unit (cents for KES).
//   - Currency code must be a 3-letter ISO 4217 code.
//   - All arithmetic operations require matching currencies.
package money

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidAmount is returned when an amount cannot be represented safely.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrAmountExceedsMaxSafeInt is returned when an amount overflows int64 minor units.
	ErrAmountExceedsMaxSafeInt = errors.New("amount exceeds maximum safe integer value")

	// ErrMismatchedCurrencies is returned when combining money in different currencies.
	ErrMismatchedCurrencies = errors.New("mismatched currencies")

	// ErrInvalidCurrency is returned for malformed currency codes.
	ErrInvalidCurrency = errors.New("invalid currency code")
)

// Code represents a 3-letter ISO 4217 currency code.
type Code string

// Currency codes used by the platform. KES is the default.
const (
	KES Code = "KES"
	USD Code = "USD"
)

// DefaultCurrency is the platform currency for wallets and products.
const DefaultCurrency = KES

// IsValid checks the code is three uppercase ASCII letters.
func (c Code) IsValid() bool {
	if len(c) != 3 {
		return false
	}
	for i := 0; i < 3; i++ {
		if c[i] < 'A' || c[i] > 'Z' {
			return false
		}
	}
	return true
}

// String returns the string representation of the currency code.
func (c Code) String() string { return string(c) }

// decimals is fixed at 2 for every currency the platform supports.
const decimals = 2

// Money represents a monetary amount in minor units of a currency.
type Money struct {
	amount   int64
	currency Code
}

// New creates Money from a float amount in major units (e.g. 150.75 KES).
func New(amount float64, currency Code) (Money, error) {
	if !currency.IsValid() {
		return Money{}, ErrInvalidCurrency
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Money{}, ErrInvalidAmount
	}
	minor := amount * math.Pow10(decimals)
	if minor > math.MaxInt64 || minor < math.MinInt64 {
		return Money{}, ErrAmountExceedsMaxSafeInt
	}
	return Money{amount: int64(math.Round(minor)), currency: currency}, nil
}

// NewFromData creates Money from raw minor units, bypassing float conversion.
// Used for repository hydration and test fixtures.
func NewFromData(amount int64, currency string) Money {
	return Money{amount: amount, currency: Code(currency)}
}

// Zero returns a zero amount in the given currency.
func Zero(currency Code) Money {
	return Money{amount: 0, currency: currency}
}

// Amount returns the amount in minor units.
func (m Money) Amount() int64 { return m.amount }

// AmountFloat returns the amount in major units.
func (m Money) AmountFloat() float64 {
	return float64(m.amount) / math.Pow10(decimals)
}

// Currency returns the currency code.
func (m Money) Currency() Code { return m.currency }

// IsPositive reports whether the amount is strictly greater than zero.
func (m Money) IsPositive() bool { return m.amount > 0 }

// IsNegative reports whether the amount is strictly less than zero.
func (m Money) IsNegative() bool { return m.amount < 0 }

// Add returns the sum of two amounts in the same currency.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, ErrMismatchedCurrencies
	}
	sum := m.amount + other.amount
	if (other.amount > 0 && sum < m.amount) || (other.amount < 0 && sum > m.amount) {
		return Money{}, ErrAmountExceedsMaxSafeInt
	}
	return Money{amount: sum, currency: m.currency}, nil
}

// Sub returns the difference of two amounts in the same currency.
func (m Money) Sub(other Money) (Money, error) {
	return m.Add(other.Negate())
}

// Negate returns the amount with its sign flipped.
func (m Money) Negate() Money {
	return Money{amount: -m.amount, currency: m.currency}
}

// GreaterThanOrEqual reports m >= other. Currencies must match.
func (m Money) GreaterThanOrEqual(other Money) (bool, error) {
	if m.currency != other.currency {
		return false, ErrMismatchedCurrencies
	}
	return m.amount >= other.amount, nil
}

// String formats the amount with its currency, e.g. "KES 1500.00".
func (m Money) String() string {
	return fmt.Sprintf("%s %.2f", m.currency, m.AmountFloat())
}
