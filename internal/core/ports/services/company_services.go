package services

import (
	"context"

	"github.com/expenseflow/expenseflow-backend/internal/core/domain"
	"github.com/expenseflow/expenseflow-backend/internal/dto"
)

// CompanyReaderSvc defines read operations for company data
type CompanyReaderSvc interface {
	// GetCompanyByID retrieves a company by ID.
	GetCompanyByID(ctx context.Context, companyID string, requestingUserID string) (*domain.Company, error)
}

// CompanyWriterSvc defines write operations for company data
type CompanyWriterSvc interface {
	// RegisterCompany creates a company together with its first Admin user.
	// The company's base currency is derived from the registration country.
	RegisterCompany(ctx context.Context, req dto.RegisterCompanyRequest) (*domain.Company, *domain.User, error)

	// UpdateCompany updates company details.
	UpdateCompany(ctx context.Context, companyID string, req dto.UpdateCompanyRequest, requestingUserID string) (*domain.Company, error)
}

// CompanySvcFacade combines all company-related service interfaces
type CompanySvcFacade interface {
	CompanyReaderSvc
	CompanyWriterSvc
}
