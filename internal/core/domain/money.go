package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is an amount in a specific currency. All supported currencies use two
// decimal places; amounts are stored at that precision.
type Money struct {
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currencyCode"`
}

// NewMoney builds a Money value rounded to the currency's precision.
func NewMoney(amount decimal.Decimal, currencyCode string) Money {
	return Money{Amount: amount.Round(2), CurrencyCode: currencyCode}
}

// Validate checks the Money invariants: a non-negative amount and a 3-letter
// currency code. Code membership in the supported set is checked against the
// currency table by the service layer.
func (m Money) Validate() error {
	if m.Amount.IsNegative() {
		return fmt.Errorf("amount must not be negative, got %s", m.Amount.String())
	}
	if len(m.CurrencyCode) != 3 {
		return fmt.Errorf("currency code must be 3 letters, got %q", m.CurrencyCode)
	}
	return nil
}

func (m Money) String() string {
	return m.Amount.StringFixed(2) + " " + m.CurrencyCode
}
