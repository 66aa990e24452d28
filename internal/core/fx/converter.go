// Package fx provides pure currency conversion over a reference-pinned rate
// table. The converter holds no state and never refreshes rates itself;
// callers hand it a snapshot and own its recency policy.
package fx

import (
	"fmt"

	"github.com/expenseflow/expenseflow-backend/internal/apperrors"
	"github.com/shopspring/decimal"
)

// RateTable is a snapshot of currency values pinned to a single reference
// currency: 1 unit of Reference equals Rates[code] units of code. By
// definition Rates[Reference] is exactly 1.
type RateTable struct {
	Reference string
	Rates     map[string]decimal.Decimal
}

// NewRateTable builds a table pinned to reference. The reference currency's
// own rate is forced to 1 regardless of input.
func NewRateTable(reference string, rates map[string]decimal.Decimal) RateTable {
	copied := make(map[string]decimal.Decimal, len(rates)+1)
	for code, rate := range rates {
		copied[code] = rate
	}
	copied[reference] = decimal.NewFromInt(1)
	return RateTable{Reference: reference, Rates: copied}
}

// Has reports whether the table carries a rate for code.
func (t RateTable) Has(code string) bool {
	_, ok := t.Rates[code]
	return ok
}

// Convert converts amount from one currency to another by composing two hops
// through the reference currency. Identity conversions return the input
// unchanged without consulting the table, so they introduce no rounding
// noise. The result is rounded to the currency precision (2 decimal places
// for every supported currency).
func Convert(amount decimal.Decimal, from, to string, table RateTable) (decimal.Decimal, error) {
	if from == to {
		return amount, nil
	}
	fromRate, ok := table.Rates[from]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", apperrors.ErrUnknownCurrency, from)
	}
	toRate, ok := table.Rates[to]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", apperrors.ErrUnknownCurrency, to)
	}
	if fromRate.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: zero rate for %s", apperrors.ErrUnknownCurrency, from)
	}
	return amount.Div(fromRate).Mul(toRate).Round(2), nil
}
