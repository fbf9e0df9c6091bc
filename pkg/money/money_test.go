package money_test

import (
	"testing"

	"github.com/shillingix/backend/pkg/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RoundsToMinorUnits(t *testing.T) {
	m, err := money.New(150.756, money.KES)
	require.NoError(t, err)
	assert.Equal(t, int64(15076), m.Amount())
	assert.Equal(t, money.KES, m.Currency())
}

func TestNew_InvalidCurrency(t *testing.T) {
	_, err := money.New(10, money.Code("kes"))
	assert.ErrorIs(t, err, money.ErrInvalidCurrency)

	_, err = money.New(10, money.Code("KESH"))
	assert.ErrorIs(t, err, money.ErrInvalidCurrency)
}

func TestAdd_MismatchedCurrencies(t *testing.T) {
	a := money.NewFromData(100, "KES")
	b := money.NewFromData(100, "USD")
	_, err := a.Add(b)
	assert.ErrorIs(t, err, money.ErrMismatchedCurrencies)
}

func TestAddSubNegate(t *testing.T) {
	a := money.NewFromData(2_500, "KES")
	b := money.NewFromData(1_000, "KES")

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, int64(3_500), sum.Amount())

	diff, err := a.Sub(b)
	require.NoError(t, err)
	assert.Equal(t, int64(1_500), diff.Amount())

	assert.Equal(t, int64(-2_500), a.Negate().Amount())
}

func TestGreaterThanOrEqual(t *testing.T) {
	a := money.NewFromData(500, "KES")
	b := money.NewFromData(500, "KES")
	ok, err := a.GreaterThanOrEqual(b)
	require.NoError(t, err)
	assert.True(t, ok)

	c := money.NewFromData(501, "KES")
	ok, err = a.GreaterThanOrEqual(c)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestString(t *testing.T) {
	m := money.NewFromData(123456, "KES")
	assert.Equal(t, "KES 1234.56", m.String())
}
