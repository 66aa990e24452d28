package repositories

import (
	"context"

	"github.com/expenseflow/expenseflow-backend/internal/core/domain"
)

// ExchangeRateReader defines read operations for exchange rate data
type ExchangeRateReader interface {
	// FindLatestRate retrieves the most recent rate for a currency against the
	// reference currency.
	FindLatestRate(ctx context.Context, currencyCode, referenceCode string) (*domain.ExchangeRate, error)

	// ListLatestRates retrieves the most recent rate of every currency quoted
	// against the reference currency.
	ListLatestRates(ctx context.Context, referenceCode string) ([]domain.ExchangeRate, error)
}

// ExchangeRateWriter defines write operations for exchange rate data
type ExchangeRateWriter interface {
	// SaveExchangeRate persists a new exchange rate.
	SaveExchangeRate(ctx context.Context, rate domain.ExchangeRate) error
}

// ExchangeRateRepositoryFacade combines all exchange rate-related repository interfaces
type ExchangeRateRepositoryFacade interface {
	ExchangeRateReader
	ExchangeRateWriter
}
