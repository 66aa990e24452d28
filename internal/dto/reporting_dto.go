package dto

import (
	"time"

	"github.com/expenseflow/expenseflow-backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DashboardParams defines query parameters for dashboard reports.
type DashboardParams struct {
	From time.Time `form:"from" time_format:"2006-01-02"`
	To   time.Time `form:"to" time_format:"2006-01-02"`
}

// CategoryTotalResponse is one category's approved total in base currency.
type CategoryTotalResponse struct {
	Category domain.ExpenseCategory `json:"category"`
	Total    decimal.Decimal        `json:"total"`
}

// DashboardResponse summarizes a company's expense activity for a period.
// All totals are converted to the company base currency.
type DashboardResponse struct {
	CompanyID        string                  `json:"companyID"`
	BaseCurrencyCode string                  `json:"baseCurrencyCode"`
	From             time.Time               `json:"from"`
	To               time.Time               `json:"to"`
	StatusCounts     []domain.StatusCount    `json:"statusCounts"`
	CategoryTotals   []CategoryTotalResponse `json:"categoryTotals"`
	TotalApproved    decimal.Decimal         `json:"totalApproved"`
}

// SubmitterSpendRow is one submitter's approved total in base currency.
type SubmitterSpendRow struct {
	SubmitterID string          `json:"submitterID"`
	Total       decimal.Decimal `json:"total"`
}

// SubmitterSpendResponse totals approved spend per submitter.
type SubmitterSpendResponse struct {
	CompanyID        string              `json:"companyID"`
	BaseCurrencyCode string              `json:"baseCurrencyCode"`
	From             time.Time           `json:"from"`
	To               time.Time           `json:"to"`
	Rows             []SubmitterSpendRow `json:"rows"`
}
