package services

import (
	"context"
	"time"

	"github.com/expenseflow/expenseflow-backend/internal/dto"
)

// ReportingService defines operations for generating dashboard reports
type ReportingService interface {
	// Dashboard summarizes a company's expenses for a period: counts by
	// status and approved totals by category, converted to base currency.
	Dashboard(ctx context.Context, companyID string, from, to time.Time, requestingUserID string) (*dto.DashboardResponse, error)

	// SpendBySubmitter totals approved spend per submitter in base currency.
	SpendBySubmitter(ctx context.Context, companyID string, from, to time.Time, requestingUserID string) (*dto.SubmitterSpendResponse, error)
}
