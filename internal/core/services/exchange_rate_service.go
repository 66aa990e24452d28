package services

import (
	"context"
	"fmt"
	"time"

	"github.com/expenseflow/expenseflow-backend/internal/apperrors"
	"github.com/expenseflow/expenseflow-backend/internal/core/domain"
	"github.com/expenseflow/expenseflow-backend/internal/core/fx"
	portsrepo "github.com/expenseflow/expenseflow-backend/internal/core/ports/repositories"
	portssvc "github.com/expenseflow/expenseflow-backend/internal/core/ports/services"
	"github.com/expenseflow/expenseflow-backend/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// fallbackRates seeds conversion when no rates have been loaded yet, e.g. on
// a fresh install before the first rate import. Quoted against USD.
var fallbackRates = map[string]decimal.Decimal{
	"USD": decimal.NewFromInt(1),
	"EUR": decimal.RequireFromString("0.92"),
	"GBP": decimal.RequireFromString("0.79"),
	"INR": decimal.RequireFromString("83.10"),
	"CAD": decimal.RequireFromString("1.36"),
}

// exchangeRateService manages exchange rates and serves conversion-ready
// snapshots to the expense and reporting services.
type exchangeRateService struct {
	BaseService
	rateRepo    portsrepo.ExchangeRateRepositoryFacade
	currencySvc portssvc.CurrencyReaderSvc
}

// NewExchangeRateService creates a new exchange rate service.
func NewExchangeRateService(rateRepo portsrepo.ExchangeRateRepositoryFacade, currencySvc portssvc.CurrencyReaderSvc) portssvc.ExchangeRateSvcFacade {
	return &exchangeRateService{rateRepo: rateRepo, currencySvc: currencySvc}
}

var _ portssvc.ExchangeRateSvcFacade = (*exchangeRateService)(nil)

func (s *exchangeRateService) CreateExchangeRate(ctx context.Context, req dto.CreateExchangeRateRequest, creatorUserID string) (*domain.ExchangeRate, error) {
	if req.Rate.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: rate must be positive", apperrors.ErrValidation)
	}

	// Both sides must exist in the currency catalogue before a rate is quoted.
	for _, code := range []string{req.CurrencyCode, req.ReferenceCode} {
		currency, err := s.currencySvc.GetCurrencyByCode(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("failed to verify currency %s: %w", code, err)
		}
		if currency == nil {
			return nil, fmt.Errorf("%w: currency %s", apperrors.ErrUnknownCurrency, code)
		}
	}

	now := time.Now()
	rate := domain.ExchangeRate{
		ExchangeRateID: uuid.NewString(),
		CurrencyCode:   req.CurrencyCode,
		ReferenceCode:  req.ReferenceCode,
		Rate:           req.Rate,
		DateEffective:  req.DateEffective,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.rateRepo.SaveExchangeRate(ctx, rate); err != nil {
		s.LogError(ctx, err, "failed to save exchange rate", "currency_code", req.CurrencyCode)
		return nil, fmt.Errorf("failed to save exchange rate: %w", err)
	}

	s.LogInfo(ctx, "exchange rate created", "currency_code", req.CurrencyCode, "reference_code", req.ReferenceCode)
	return &rate, nil
}

func (s *exchangeRateService) GetLatestRate(ctx context.Context, currencyCode, referenceCode string) (*domain.ExchangeRate, error) {
	rate, err := s.rateRepo.FindLatestRate(ctx, currencyCode, referenceCode)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest rate: %w", err)
	}
	return rate, nil
}

func (s *exchangeRateService) ListLatestRates(ctx context.Context, referenceCode string) ([]domain.ExchangeRate, error) {
	rates, err := s.rateRepo.ListLatestRates(ctx, referenceCode)
	if err != nil {
		return nil, fmt.Errorf("failed to list latest rates: %w", err)
	}
	if rates == nil {
		return []domain.ExchangeRate{}, nil
	}
	return rates, nil
}

// CurrentRates builds a conversion snapshot pinned to the reference currency.
// When no rates are stored yet it falls back to a static seed table so
// conversion keeps working on fresh installs.
func (s *exchangeRateService) CurrentRates(ctx context.Context, referenceCode string) (fx.RateTable, error) {
	rates, err := s.rateRepo.ListLatestRates(ctx, referenceCode)
	if err != nil {
		return fx.RateTable{}, fmt.Errorf("failed to load rate snapshot: %w", err)
	}

	if len(rates) == 0 {
		s.LogDebug(ctx, "no stored exchange rates, using fallback table", "reference_code", referenceCode)
		return fallbackTableFor(referenceCode), nil
	}

	byCode := make(map[string]decimal.Decimal, len(rates))
	for _, rate := range rates {
		byCode[rate.CurrencyCode] = rate.Rate
	}
	return fx.NewRateTable(referenceCode, byCode), nil
}

// fallbackTableFor re-pins the static USD-quoted seed rates to the requested
// reference currency.
func fallbackTableFor(referenceCode string) fx.RateTable {
	refRate, ok := fallbackRates[referenceCode]
	if !ok || refRate.IsZero() {
		return fx.NewRateTable(referenceCode, nil)
	}
	repinned := make(map[string]decimal.Decimal, len(fallbackRates))
	for code, rate := range fallbackRates {
		repinned[code] = rate.Div(refRate).Round(6)
	}
	return fx.NewRateTable(referenceCode, repinned)
}
