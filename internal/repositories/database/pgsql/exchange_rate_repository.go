package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/expenseflow/expenseflow-backend/internal/core/domain"
	portsrepo "github.com/expenseflow/expenseflow-backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxExchangeRateRepository struct {
	BaseRepository
}

func newPgxExchangeRateRepository(db *pgxpool.Pool) portsrepo.ExchangeRateRepositoryFacade {
	return &PgxExchangeRateRepository{BaseRepository: BaseRepository{Pool: db}}
}

var _ portsrepo.ExchangeRateRepositoryFacade = (*PgxExchangeRateRepository)(nil)

// SaveExchangeRate inserts a rate, or updates it when one already exists for
// the same currency, reference and effective date.
func (r *PgxExchangeRateRepository) SaveExchangeRate(ctx context.Context, rate domain.ExchangeRate) error {
	currencyCode := strings.ToUpper(rate.CurrencyCode)
	referenceCode := strings.ToUpper(rate.ReferenceCode)
	if currencyCode == referenceCode {
		return fmt.Errorf("currency and reference must differ, got %s", currencyCode)
	}

	query := `
		INSERT INTO exchange_rates (
			exchange_rate_id, currency_code, reference_code, rate, date_effective,
			created_at, created_by, last_updated_at, last_updated_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (currency_code, reference_code, date_effective) DO UPDATE SET
			rate = EXCLUDED.rate,
			last_updated_at = EXCLUDED.last_updated_at,
			last_updated_by = EXCLUDED.last_updated_by;
	`
	_, err := r.Pool.Exec(ctx, query,
		rate.ExchangeRateID,
		currencyCode,
		referenceCode,
		rate.Rate,
		rate.DateEffective,
		rate.CreatedAt,
		rate.CreatedBy,
		rate.LastUpdatedAt,
		rate.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save exchange rate: %w", err)
	}
	return nil
}

func (r *PgxExchangeRateRepository) FindLatestRate(ctx context.Context, currencyCode, referenceCode string) (*domain.ExchangeRate, error) {
	query := `
		SELECT exchange_rate_id, currency_code, reference_code, rate, date_effective,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM exchange_rates
		WHERE currency_code = $1 AND reference_code = $2
		ORDER BY date_effective DESC
		LIMIT 1;
	`
	var rate domain.ExchangeRate
	err := r.Pool.QueryRow(ctx, query, strings.ToUpper(currencyCode), strings.ToUpper(referenceCode)).Scan(
		&rate.ExchangeRateID,
		&rate.CurrencyCode,
		&rate.ReferenceCode,
		&rate.Rate,
		&rate.DateEffective,
		&rate.CreatedAt,
		&rate.CreatedBy,
		&rate.LastUpdatedAt,
		&rate.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find latest rate for %s/%s: %w", currencyCode, referenceCode, err)
	}
	return &rate, nil
}

// ListLatestRates returns, for each quoted currency, the rate with the most
// recent effective date against the reference currency.
func (r *PgxExchangeRateRepository) ListLatestRates(ctx context.Context, referenceCode string) ([]domain.ExchangeRate, error) {
	query := `
		SELECT DISTINCT ON (currency_code)
		       exchange_rate_id, currency_code, reference_code, rate, date_effective,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM exchange_rates
		WHERE reference_code = $1
		ORDER BY currency_code, date_effective DESC;
	`
	rows, err := r.Pool.Query(ctx, query, strings.ToUpper(referenceCode))
	if err != nil {
		return nil, fmt.Errorf("failed to list latest rates: %w", err)
	}
	defer rows.Close()

	var rates []domain.ExchangeRate
	for rows.Next() {
		var rate domain.ExchangeRate
		if err := rows.Scan(
			&rate.ExchangeRateID,
			&rate.CurrencyCode,
			&rate.ReferenceCode,
			&rate.Rate,
			&rate.DateEffective,
			&rate.CreatedAt,
			&rate.CreatedBy,
			&rate.LastUpdatedAt,
			&rate.LastUpdatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan exchange rate row: %w", err)
		}
		rates = append(rates, rate)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating exchange rate rows: %w", err)
	}
	return rates, nil
}
