package services

import (
	"context"

	"github.com/expenseflow/expenseflow-backend/internal/core/domain"
	"github.com/expenseflow/expenseflow-backend/internal/core/fx"
	"github.com/expenseflow/expenseflow-backend/internal/dto"
)

// CurrencyReaderSvc defines read operations for currency data
type CurrencyReaderSvc interface {
	// GetCurrencyByCode retrieves a specific currency by its code.
	GetCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error)

	// ListCurrencies retrieves all available currencies.
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)
}

// CurrencyWriterSvc defines write operations for currency data
type CurrencyWriterSvc interface {
	// CreateCurrency persists a new currency.
	CreateCurrency(ctx context.Context, req dto.CreateCurrencyRequest, creatorUserID string) (*domain.Currency, error)
}

// CurrencySvcFacade combines all currency-related service interfaces
type CurrencySvcFacade interface {
	CurrencyReaderSvc
	CurrencyWriterSvc
}

// RateProviderSvc supplies conversion-ready rate snapshots. The expense and
// reporting services convert through the snapshot so a rate update mid-request
// cannot produce a mixed-rate calculation.
type RateProviderSvc interface {
	// CurrentRates returns the latest rate table pinned to the reference
	// currency.
	CurrentRates(ctx context.Context, referenceCode string) (fx.RateTable, error)
}

// ExchangeRateReaderSvc defines read operations for exchange rate data
type ExchangeRateReaderSvc interface {
	// GetLatestRate retrieves the most recent rate for a currency against the
	// reference currency.
	GetLatestRate(ctx context.Context, currencyCode, referenceCode string) (*domain.ExchangeRate, error)

	// ListLatestRates retrieves the latest rate of every quoted currency.
	ListLatestRates(ctx context.Context, referenceCode string) ([]domain.ExchangeRate, error)
}

// ExchangeRateWriterSvc defines write operations for exchange rate data
type ExchangeRateWriterSvc interface {
	// CreateExchangeRate persists a new exchange rate.
	CreateExchangeRate(ctx context.Context, req dto.CreateExchangeRateRequest, creatorUserID string) (*domain.ExchangeRate, error)
}

// ExchangeRateSvcFacade combines all exchange rate-related service interfaces
type ExchangeRateSvcFacade interface {
	ExchangeRateReaderSvc
	ExchangeRateWriterSvc
	RateProviderSvc
}
