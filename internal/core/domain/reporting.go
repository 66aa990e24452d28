package domain

import "github.com/shopspring/decimal"

// StatusCount is a count of a company's expenses in one status.
type StatusCount struct {
	Status ExpenseStatus `json:"status"`
	Count  int           `json:"count"`
}

// CategoryTotal is the sum of submitted amounts for one category in one
// submission currency. Totals are converted to company base currency by the
// reporting service before presentation.
type CategoryTotal struct {
	Category     ExpenseCategory `json:"category"`
	CurrencyCode string          `json:"currencyCode"`
	Total        decimal.Decimal `json:"total"`
}
