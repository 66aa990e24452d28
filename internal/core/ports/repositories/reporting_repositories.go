package repositories

import (
	"context"
	"time"

	"github.com/expenseflow/expenseflow-backend/internal/core/domain"
)

// ReportingRepository defines operations for retrieving dashboard report data
type ReportingRepository interface {
	// GetExpenseStatusCounts counts a company's expenses grouped by status.
	GetExpenseStatusCounts(ctx context.Context, companyID string, from, to time.Time) ([]domain.StatusCount, error)

	// GetCategoryTotals sums a company's approved expenses grouped by category
	// and submission currency.
	GetCategoryTotals(ctx context.Context, companyID string, from, to time.Time) ([]domain.CategoryTotal, error)

	// GetSubmitterTotals sums approved amounts grouped by submitter and
	// submission currency.
	GetSubmitterTotals(ctx context.Context, companyID string, from, to time.Time) (map[string][]domain.CategoryTotal, error)
}
