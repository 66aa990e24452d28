package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/expenseflow/expenseflow-backend/internal/apperrors"
	"github.com/expenseflow/expenseflow-backend/internal/core/domain"
	"github.com/expenseflow/expenseflow-backend/internal/core/fx"
	portsrepo "github.com/expenseflow/expenseflow-backend/internal/core/ports/repositories"
	portssvc "github.com/expenseflow/expenseflow-backend/internal/core/ports/services"
	"github.com/expenseflow/expenseflow-backend/internal/dto"
	"github.com/shopspring/decimal"
)

// reportingService aggregates expense activity into dashboard figures. All
// totals are converted to the company base currency through one rate
// snapshot per request.
type reportingService struct {
	BaseService
	reportingRepo portsrepo.ReportingRepository
	companyRepo   portsrepo.CompanyRepositoryFacade
	userSvc       portssvc.UserSvcFacade
	rateSvc       portssvc.RateProviderSvc
}

// NewReportingService creates a new reporting service.
func NewReportingService(
	reportingRepo portsrepo.ReportingRepository,
	companyRepo portsrepo.CompanyRepositoryFacade,
	userSvc portssvc.UserSvcFacade,
	rateSvc portssvc.RateProviderSvc,
) portssvc.ReportingService {
	return &reportingService{
		reportingRepo: reportingRepo,
		companyRepo:   companyRepo,
		userSvc:       userSvc,
		rateSvc:       rateSvc,
	}
}

var _ portssvc.ReportingService = (*reportingService)(nil)

func (s *reportingService) Dashboard(ctx context.Context, companyID string, from, to time.Time, requestingUserID string) (*dto.DashboardResponse, error) {
	company, table, err := s.reportContext(ctx, companyID, requestingUserID)
	if err != nil {
		return nil, err
	}

	statusCounts, err := s.reportingRepo.GetExpenseStatusCounts(ctx, companyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get status counts: %w", err)
	}

	categoryTotals, err := s.reportingRepo.GetCategoryTotals(ctx, companyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get category totals: %w", err)
	}

	// Totals arrive grouped by (category, submission currency); collapse to
	// one base-currency figure per category.
	byCategory := make(map[domain.ExpenseCategory]decimal.Decimal)
	totalApproved := decimal.Zero
	for _, row := range categoryTotals {
		converted, err := fx.Convert(row.Total, row.CurrencyCode, company.BaseCurrencyCode, table)
		if err != nil {
			return nil, err
		}
		byCategory[row.Category] = byCategory[row.Category].Add(converted)
		totalApproved = totalApproved.Add(converted)
	}

	categories := make([]dto.CategoryTotalResponse, 0, len(byCategory))
	for category, total := range byCategory {
		categories = append(categories, dto.CategoryTotalResponse{Category: category, Total: total})
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Category < categories[j].Category })

	if statusCounts == nil {
		statusCounts = []domain.StatusCount{}
	}

	return &dto.DashboardResponse{
		CompanyID:        companyID,
		BaseCurrencyCode: company.BaseCurrencyCode,
		From:             from,
		To:               to,
		StatusCounts:     statusCounts,
		CategoryTotals:   categories,
		TotalApproved:    totalApproved,
	}, nil
}

func (s *reportingService) SpendBySubmitter(ctx context.Context, companyID string, from, to time.Time, requestingUserID string) (*dto.SubmitterSpendResponse, error) {
	company, table, err := s.reportContext(ctx, companyID, requestingUserID)
	if err != nil {
		return nil, err
	}

	bySubmitter, err := s.reportingRepo.GetSubmitterTotals(ctx, companyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get submitter totals: %w", err)
	}

	rows := make([]dto.SubmitterSpendRow, 0, len(bySubmitter))
	for submitterID, totals := range bySubmitter {
		sum := decimal.Zero
		for _, row := range totals {
			converted, err := fx.Convert(row.Total, row.CurrencyCode, company.BaseCurrencyCode, table)
			if err != nil {
				return nil, err
			}
			sum = sum.Add(converted)
		}
		rows = append(rows, dto.SubmitterSpendRow{SubmitterID: submitterID, Total: sum})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Total.GreaterThan(rows[j].Total) })

	return &dto.SubmitterSpendResponse{
		CompanyID:        companyID,
		BaseCurrencyCode: company.BaseCurrencyCode,
		From:             from,
		To:               to,
		Rows:             rows,
	}, nil
}

// reportContext authorizes the requester and loads the company with a rate
// snapshot pinned to its base currency. Dashboards are for approver roles;
// employees see only their own expense list.
func (s *reportingService) reportContext(ctx context.Context, companyID string, requestingUserID string) (*domain.Company, fx.RateTable, error) {
	requester, err := s.userSvc.GetUserByID(ctx, requestingUserID)
	if err != nil {
		return nil, fx.RateTable{}, err
	}
	if err := s.RequireSameCompany(requester, companyID); err != nil {
		return nil, fx.RateTable{}, err
	}
	if requester.Role == domain.RoleEmployee {
		return nil, fx.RateTable{}, fmt.Errorf("%w: reports require an approver role", apperrors.ErrForbidden)
	}

	company, err := s.companyRepo.FindCompanyByID(ctx, companyID)
	if err != nil {
		return nil, fx.RateTable{}, fmt.Errorf("failed to load company: %w", err)
	}
	if company == nil {
		return nil, fx.RateTable{}, fmt.Errorf("%w: company %s", apperrors.ErrNotFound, companyID)
	}

	table, err := s.rateSvc.CurrentRates(ctx, company.BaseCurrencyCode)
	if err != nil {
		return nil, fx.RateTable{}, err
	}
	return company, table, nil
}
