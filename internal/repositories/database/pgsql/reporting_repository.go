package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/expenseflow/expenseflow-backend/internal/core/domain"
	portsrepo "github.com/expenseflow/expenseflow-backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxReportingRepository runs aggregate queries over expenses. Sums stay in
// the submission currency; conversion to company base happens in the service.
type PgxReportingRepository struct {
	db *pgxpool.Pool
}

func newPgxReportingRepository(db *pgxpool.Pool) portsrepo.ReportingRepository {
	return &PgxReportingRepository{db: db}
}

var _ portsrepo.ReportingRepository = (*PgxReportingRepository)(nil)

func (r *PgxReportingRepository) GetExpenseStatusCounts(ctx context.Context, companyID string, from, to time.Time) ([]domain.StatusCount, error) {
	query := `
		SELECT status, COUNT(*)
		FROM expenses
		WHERE company_id = $1 AND submitted_at >= $2 AND submitted_at < $3
		GROUP BY status;
	`
	rows, err := r.db.Query(ctx, query, companyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to count expenses by status: %w", err)
	}
	defer rows.Close()

	var counts []domain.StatusCount
	for rows.Next() {
		var count domain.StatusCount
		if err := rows.Scan(&count.Status, &count.Count); err != nil {
			return nil, fmt.Errorf("failed to scan status count row: %w", err)
		}
		counts = append(counts, count)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status count rows: %w", err)
	}
	return counts, nil
}

func (r *PgxReportingRepository) GetCategoryTotals(ctx context.Context, companyID string, from, to time.Time) ([]domain.CategoryTotal, error) {
	query := `
		SELECT category, currency_code, SUM(amount)
		FROM expenses
		WHERE company_id = $1 AND status = $2 AND submitted_at >= $3 AND submitted_at < $4
		GROUP BY category, currency_code
		ORDER BY category, currency_code;
	`
	rows, err := r.db.Query(ctx, query, companyID, domain.ExpenseApproved, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to sum expenses by category: %w", err)
	}
	defer rows.Close()

	var totals []domain.CategoryTotal
	for rows.Next() {
		var total domain.CategoryTotal
		if err := rows.Scan(&total.Category, &total.CurrencyCode, &total.Total); err != nil {
			return nil, fmt.Errorf("failed to scan category total row: %w", err)
		}
		totals = append(totals, total)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category total rows: %w", err)
	}
	return totals, nil
}

func (r *PgxReportingRepository) GetSubmitterTotals(ctx context.Context, companyID string, from, to time.Time) (map[string][]domain.CategoryTotal, error) {
	query := `
		SELECT submitter_id, category, currency_code, SUM(amount)
		FROM expenses
		WHERE company_id = $1 AND status = $2 AND submitted_at >= $3 AND submitted_at < $4
		GROUP BY submitter_id, category, currency_code
		ORDER BY submitter_id, category, currency_code;
	`
	rows, err := r.db.Query(ctx, query, companyID, domain.ExpenseApproved, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to sum expenses by submitter: %w", err)
	}
	defer rows.Close()

	totals := make(map[string][]domain.CategoryTotal)
	for rows.Next() {
		var submitterID string
		var total domain.CategoryTotal
		if err := rows.Scan(&submitterID, &total.Category, &total.CurrencyCode, &total.Total); err != nil {
			return nil, fmt.Errorf("failed to scan submitter total row: %w", err)
		}
		totals[submitterID] = append(totals[submitterID], total)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating submitter total rows: %w", err)
	}
	return totals, nil
}
