package fx

import (
	"errors"
	"testing"

	"github.com/expenseflow/expenseflow-backend/internal/apperrors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTable() RateTable {
	return NewRateTable("USD", map[string]decimal.Decimal{
		"EUR": decimal.RequireFromString("0.92"),
		"GBP": decimal.RequireFromString("0.79"),
		"INR": decimal.RequireFromString("83.10"),
	})
}

func TestNewRateTablePinsReference(t *testing.T) {
	table := NewRateTable("USD", map[string]decimal.Decimal{
		"USD": decimal.RequireFromString("42"), // overridden
		"EUR": decimal.RequireFromString("0.92"),
	})
	assert.True(t, table.Rates["USD"].Equal(decimal.NewFromInt(1)))
	assert.True(t, table.Has("EUR"))
	assert.False(t, table.Has("JPY"))
}

func TestConvertIdentity(t *testing.T) {
	amount := decimal.RequireFromString("123.456")
	got, err := Convert(amount, "EUR", "EUR", testTable())
	require.NoError(t, err)
	// Identity conversion returns the input unchanged, unrounded.
	assert.True(t, got.Equal(amount))
}

func TestConvertThroughReference(t *testing.T) {
	table := testTable()

	// 100 EUR -> USD: 100 / 0.92 = 108.70 after rounding.
	got, err := Convert(decimal.RequireFromString("100"), "EUR", "USD", table)
	require.NoError(t, err)
	assert.Equal(t, "108.70", got.StringFixed(2))

	// 100 USD -> INR: 100 * 83.10.
	got, err = Convert(decimal.RequireFromString("100"), "USD", "INR", table)
	require.NoError(t, err)
	assert.Equal(t, "8310.00", got.StringFixed(2))

	// Cross rate EUR -> GBP composes two hops.
	got, err = Convert(decimal.RequireFromString("100"), "EUR", "GBP", table)
	require.NoError(t, err)
	assert.Equal(t, "85.87", got.StringFixed(2))
}

func TestConvertUnknownCurrency(t *testing.T) {
	table := testTable()

	_, err := Convert(decimal.RequireFromString("10"), "JPY", "USD", table)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUnknownCurrency))

	_, err = Convert(decimal.RequireFromString("10"), "USD", "JPY", table)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUnknownCurrency))
}

func TestConvertRoundTripTolerance(t *testing.T) {
	table := testTable()
	start := decimal.RequireFromString("250.00")

	mid, err := Convert(start, "USD", "EUR", table)
	require.NoError(t, err)
	back, err := Convert(mid, "EUR", "USD", table)
	require.NoError(t, err)

	// Each hop rounds to 2 places; the round trip drifts by at most a cent.
	drift := back.Sub(start).Abs()
	assert.True(t, drift.LessThanOrEqual(decimal.RequireFromString("0.01")), "drift was %s", drift)
}
