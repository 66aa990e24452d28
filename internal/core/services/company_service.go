package services

import (
	"context"
	"fmt"
	"time"

	"github.com/expenseflow/expenseflow-backend/internal/apperrors"
	"github.com/expenseflow/expenseflow-backend/internal/core/domain"
	portsrepo "github.com/expenseflow/expenseflow-backend/internal/core/ports/repositories"
	portssvc "github.com/expenseflow/expenseflow-backend/internal/core/ports/services"
	"github.com/expenseflow/expenseflow-backend/internal/dto"
	"github.com/expenseflow/expenseflow-backend/internal/utils"
	"github.com/google/uuid"
)

// companyService handles company signup and administration.
type companyService struct {
	BaseService
	companyRepo portsrepo.CompanyRepositoryFacade
	userRepo    portsrepo.UserRepositoryFacade
}

// NewCompanyService creates a new company service.
func NewCompanyService(companyRepo portsrepo.CompanyRepositoryFacade, userRepo portsrepo.UserRepositoryFacade) portssvc.CompanySvcFacade {
	return &companyService{companyRepo: companyRepo, userRepo: userRepo}
}

var _ portssvc.CompanySvcFacade = (*companyService)(nil)

// RegisterCompany creates a company and its first Admin user. The base
// currency is derived from the registration country.
func (s *companyService) RegisterCompany(ctx context.Context, req dto.RegisterCompanyRequest) (*domain.Company, *domain.User, error) {
	if existing, err := s.userRepo.FindUserByUsername(ctx, req.AdminUsername); err != nil {
		return nil, nil, fmt.Errorf("failed to check admin username: %w", err)
	} else if existing != nil {
		return nil, nil, fmt.Errorf("%w: username %s is taken", apperrors.ErrDuplicate, req.AdminUsername)
	}

	passwordHash, err := utils.HashPassword(req.AdminPassword)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash admin password: %w", err)
	}

	now := time.Now()
	audit := domain.AuditFields{
		CreatedAt:     now,
		LastUpdatedAt: now,
	}

	company := domain.Company{
		CompanyID:        uuid.NewString(),
		Name:             req.CompanyName,
		Country:          req.Country,
		BaseCurrencyCode: domain.CurrencyForCountry(req.Country),
		AuditFields:      audit,
	}

	admin := domain.User{
		UserID:       uuid.NewString(),
		CompanyID:    company.CompanyID,
		Username:     req.AdminUsername,
		Email:        req.AdminEmail,
		Name:         req.AdminName,
		PasswordHash: passwordHash,
		Role:         domain.RoleAdmin,
		AuthProvider: domain.AuthProviderLocal,
		AuditFields:  audit,
	}

	// The company row records its own admin as creator.
	company.CreatedBy = admin.UserID
	company.LastUpdatedBy = admin.UserID
	admin.CreatedBy = admin.UserID
	admin.LastUpdatedBy = admin.UserID

	if err := s.companyRepo.SaveCompany(ctx, company); err != nil {
		s.LogError(ctx, err, "failed to save company", "company_name", req.CompanyName)
		return nil, nil, fmt.Errorf("failed to save company: %w", err)
	}
	if err := s.userRepo.SaveUser(ctx, admin); err != nil {
		s.LogError(ctx, err, "failed to save admin user", "company_id", company.CompanyID)
		return nil, nil, fmt.Errorf("failed to save admin user: %w", err)
	}

	s.LogInfo(ctx, "company registered", "company_id", company.CompanyID, "base_currency", company.BaseCurrencyCode)
	return &company, &admin, nil
}

func (s *companyService) GetCompanyByID(ctx context.Context, companyID string, requestingUserID string) (*domain.Company, error) {
	requester, err := s.userRepo.FindUserByID(ctx, requestingUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load requesting user: %w", err)
	}
	if requester == nil {
		return nil, fmt.Errorf("%w: user %s", apperrors.ErrNotFound, requestingUserID)
	}
	if err := s.RequireSameCompany(requester, companyID); err != nil {
		return nil, err
	}

	company, err := s.companyRepo.FindCompanyByID(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	if company == nil {
		return nil, fmt.Errorf("%w: company %s", apperrors.ErrNotFound, companyID)
	}
	return company, nil
}

func (s *companyService) UpdateCompany(ctx context.Context, companyID string, req dto.UpdateCompanyRequest, requestingUserID string) (*domain.Company, error) {
	requester, err := s.userRepo.FindUserByID(ctx, requestingUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load requesting user: %w", err)
	}
	if requester == nil {
		return nil, fmt.Errorf("%w: user %s", apperrors.ErrNotFound, requestingUserID)
	}
	if err := s.RequireSameCompany(requester, companyID); err != nil {
		return nil, err
	}
	if err := s.RequireRole(requester, domain.RoleAdmin); err != nil {
		return nil, err
	}

	company, err := s.companyRepo.FindCompanyByID(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	if company == nil {
		return nil, fmt.Errorf("%w: company %s", apperrors.ErrNotFound, companyID)
	}

	if req.Name != nil {
		company.Name = *req.Name
	}
	company.LastUpdatedAt = time.Now()
	company.LastUpdatedBy = requestingUserID

	if err := s.companyRepo.UpdateCompany(ctx, *company); err != nil {
		s.LogError(ctx, err, "failed to update company", "company_id", companyID)
		return nil, fmt.Errorf("failed to update company: %w", err)
	}
	return company, nil
}
