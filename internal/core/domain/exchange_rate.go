package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate stores the value of one currency relative to the pinned
// reference currency: 1 unit of the reference equals Rate units of
// CurrencyCode. The reference currency itself carries a rate of exactly 1.
type ExchangeRate struct {
	ExchangeRateID string          `json:"exchangeRateID"` // Primary Key (e.g., UUID)
	CurrencyCode   string          `json:"currencyCode"`   // FK -> Currency.currencyCode
	ReferenceCode  string          `json:"referenceCode"`  // the pinned reference currency
	Rate           decimal.Decimal `json:"rate"`
	DateEffective  time.Time       `json:"dateEffective"`
	AuditFields
}
