package utils

import (
	"github.com/expenseflow/expenseflow-backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// FormatMoney renders a monetary value with its currency symbol, e.g. "$12.35".
// Every supported currency carries 2 decimal places.
func FormatMoney(amount decimal.Decimal, currency domain.Currency) string {
	return currency.Symbol + amount.Round(2).StringFixed(2)
}

// FormatAmount renders a bare amount at currency precision.
func FormatAmount(amount decimal.Decimal) string {
	return amount.Round(2).StringFixed(2)
}
