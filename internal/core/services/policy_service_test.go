package services_test

import (
	"context"
	"testing"

	"github.com/expenseflow/expenseflow-backend/internal/apperrors"
	"github.com/expenseflow/expenseflow-backend/internal/core/domain"
	portsrepo "github.com/expenseflow/expenseflow-backend/internal/core/ports/repositories"
	portssvc "github.com/expenseflow/expenseflow-backend/internal/core/ports/services"
	"github.com/expenseflow/expenseflow-backend/internal/core/services"
	"github.com/expenseflow/expenseflow-backend/internal/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock PolicyRepository ---
type MockPolicyRepository struct {
	mock.Mock
}

var _ portsrepo.PolicyRepositoryFacade = (*MockPolicyRepository)(nil)

func (m *MockPolicyRepository) FindPolicyByID(ctx context.Context, policyID string) (*domain.WorkflowPolicy, error) {
	args := m.Called(ctx, policyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WorkflowPolicy), args.Error(1)
}

func (m *MockPolicyRepository) FindActivePolicyByCompany(ctx context.Context, companyID string) (*domain.WorkflowPolicy, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WorkflowPolicy), args.Error(1)
}

func (m *MockPolicyRepository) ListPoliciesByCompany(ctx context.Context, companyID string) ([]domain.WorkflowPolicy, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.WorkflowPolicy), args.Error(1)
}

func (m *MockPolicyRepository) SavePolicy(ctx context.Context, policy domain.WorkflowPolicy) error {
	args := m.Called(ctx, policy)
	return args.Error(0)
}

func (m *MockPolicyRepository) UpdatePolicy(ctx context.Context, policy domain.WorkflowPolicy) error {
	args := m.Called(ctx, policy)
	return args.Error(0)
}

func (m *MockPolicyRepository) SetActivePolicy(ctx context.Context, companyID string, policyID string, updatedByUserID string) error {
	args := m.Called(ctx, companyID, policyID, updatedByUserID)
	return args.Error(0)
}

// --- Policy Service Test Suite ---

type PolicyServiceTestSuite struct {
	suite.Suite
	mockPolicyRepo *MockPolicyRepository
	mockUserSvc    *MockUserService
	service        portssvc.PolicySvcFacade

	companyID string
	admin     domain.User
	employee  domain.User
}

func (suite *PolicyServiceTestSuite) SetupTest() {
	suite.mockPolicyRepo = new(MockPolicyRepository)
	suite.mockUserSvc = new(MockUserService)
	suite.service = services.NewPolicyService(suite.mockPolicyRepo, suite.mockUserSvc)

	suite.companyID = uuid.NewString()
	suite.admin = domain.User{
		UserID:    uuid.NewString(),
		CompanyID: suite.companyID,
		Role:      domain.RoleAdmin,
	}
	suite.employee = domain.User{
		UserID:    uuid.NewString(),
		CompanyID: suite.companyID,
		Role:      domain.RoleEmployee,
	}
}

func (suite *PolicyServiceTestSuite) twoLevelRequest() dto.CreatePolicyRequest {
	return dto.CreatePolicyRequest{
		Name: "Standard Chain",
		Levels: []dto.PolicyLevelRequest{
			{Level: 1, RequiredRole: domain.RoleManager},
			{Level: 2, RequiredRole: domain.RoleFinance},
		},
	}
}

func (suite *PolicyServiceTestSuite) TestCreatePolicy_Success() {
	ctx := context.Background()
	req := suite.twoLevelRequest()

	suite.mockUserSvc.On("GetUserByID", ctx, suite.admin.UserID).Return(&suite.admin, nil).Once()
	suite.mockUserSvc.On("CountUsersWithRole", ctx, suite.companyID, domain.RoleManager).Return(2, nil).Once()
	suite.mockUserSvc.On("CountUsersWithRole", ctx, suite.companyID, domain.RoleFinance).Return(1, nil).Once()
	suite.mockPolicyRepo.On("SavePolicy", ctx, mock.AnythingOfType("domain.WorkflowPolicy")).Return(nil).Once()

	policy, err := suite.service.CreatePolicy(ctx, req, suite.admin.UserID)

	suite.Require().NoError(err)
	suite.Require().NotNil(policy)
	suite.NotEmpty(policy.PolicyID)
	suite.Equal(suite.companyID, policy.CompanyID)
	suite.Len(policy.Levels, 2)
	suite.Equal(suite.admin.UserID, policy.CreatedBy)
	suite.mockPolicyRepo.AssertExpectations(suite.T())
	suite.mockUserSvc.AssertExpectations(suite.T())
}

func (suite *PolicyServiceTestSuite) TestCreatePolicy_NonAdminForbidden() {
	ctx := context.Background()
	req := suite.twoLevelRequest()

	suite.mockUserSvc.On("GetUserByID", ctx, suite.employee.UserID).Return(&suite.employee, nil).Once()

	_, err := suite.service.CreatePolicy(ctx, req, suite.employee.UserID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockPolicyRepo.AssertNotCalled(suite.T(), "SavePolicy", mock.Anything, mock.Anything)
}

func (suite *PolicyServiceTestSuite) TestCreatePolicy_NonContiguousLevels() {
	ctx := context.Background()
	req := dto.CreatePolicyRequest{
		Name: "Gapped Chain",
		Levels: []dto.PolicyLevelRequest{
			{Level: 1, RequiredRole: domain.RoleManager},
			{Level: 3, RequiredRole: domain.RoleFinance},
		},
	}

	suite.mockUserSvc.On("GetUserByID", ctx, suite.admin.UserID).Return(&suite.admin, nil).Once()
	suite.mockUserSvc.On("CountUsersWithRole", ctx, suite.companyID, mock.AnythingOfType("domain.Role")).Return(1, nil).Maybe()

	_, err := suite.service.CreatePolicy(ctx, req, suite.admin.UserID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrPolicyInvalid)
	suite.mockPolicyRepo.AssertNotCalled(suite.T(), "SavePolicy", mock.Anything, mock.Anything)
}

func (suite *PolicyServiceTestSuite) TestCreatePolicy_PercentageNeedsMultipleApprovers() {
	ctx := context.Background()
	pct := 60
	req := suite.twoLevelRequest()
	req.Rules = &dto.ConditionalRulesRequest{PercentageApproval: &pct}

	// Every level's role has at most one holder, so no quorum could exceed 1.
	suite.mockUserSvc.On("GetUserByID", ctx, suite.admin.UserID).Return(&suite.admin, nil).Once()
	suite.mockUserSvc.On("CountUsersWithRole", ctx, suite.companyID, domain.RoleManager).Return(1, nil).Once()
	suite.mockUserSvc.On("CountUsersWithRole", ctx, suite.companyID, domain.RoleFinance).Return(1, nil).Once()

	_, err := suite.service.CreatePolicy(ctx, req, suite.admin.UserID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrPolicyInvalid)
	suite.mockPolicyRepo.AssertNotCalled(suite.T(), "SavePolicy", mock.Anything, mock.Anything)
}

func (suite *PolicyServiceTestSuite) TestCreatePolicy_DesignatedApproverMustBeMember() {
	ctx := context.Background()
	outsider := domain.User{UserID: uuid.NewString(), CompanyID: uuid.NewString(), Role: domain.RoleCFO}
	req := suite.twoLevelRequest()
	req.Rules = &dto.ConditionalRulesRequest{SpecificApprovers: []string{outsider.UserID}}

	suite.mockUserSvc.On("GetUserByID", ctx, suite.admin.UserID).Return(&suite.admin, nil).Once()
	suite.mockUserSvc.On("CountUsersWithRole", ctx, suite.companyID, domain.RoleManager).Return(2, nil).Once()
	suite.mockUserSvc.On("CountUsersWithRole", ctx, suite.companyID, domain.RoleFinance).Return(1, nil).Once()
	suite.mockUserSvc.On("GetUserByID", ctx, outsider.UserID).Return(&outsider, nil).Once()

	_, err := suite.service.CreatePolicy(ctx, req, suite.admin.UserID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrPolicyInvalid)
	suite.mockPolicyRepo.AssertNotCalled(suite.T(), "SavePolicy", mock.Anything, mock.Anything)
}

func (suite *PolicyServiceTestSuite) TestGetPolicyByID_CrossCompanyForbidden() {
	ctx := context.Background()
	policy := domain.WorkflowPolicy{
		PolicyID:  uuid.NewString(),
		CompanyID: uuid.NewString(),
		Name:      "Other Company Chain",
		Levels:    []domain.PolicyLevel{{Level: 1, RequiredRole: domain.RoleManager}},
	}

	suite.mockUserSvc.On("GetUserByID", ctx, suite.admin.UserID).Return(&suite.admin, nil).Once()
	suite.mockPolicyRepo.On("FindPolicyByID", ctx, policy.PolicyID).Return(&policy, nil).Once()

	_, err := suite.service.GetPolicyByID(ctx, policy.PolicyID, suite.admin.UserID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *PolicyServiceTestSuite) TestGetActivePolicy_NoneConfigured() {
	ctx := context.Background()

	suite.mockPolicyRepo.On("FindActivePolicyByCompany", ctx, suite.companyID).Return(nil, nil).Once()

	_, err := suite.service.GetActivePolicy(ctx, suite.companyID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *PolicyServiceTestSuite) TestActivatePolicy_Success() {
	ctx := context.Background()
	policy := domain.WorkflowPolicy{
		PolicyID:  uuid.NewString(),
		CompanyID: suite.companyID,
		Name:      "Standard Chain",
		Levels:    []domain.PolicyLevel{{Level: 1, RequiredRole: domain.RoleManager}},
	}

	suite.mockUserSvc.On("GetUserByID", ctx, suite.admin.UserID).Return(&suite.admin, nil).Once()
	suite.mockPolicyRepo.On("FindPolicyByID", ctx, policy.PolicyID).Return(&policy, nil).Once()
	suite.mockPolicyRepo.On("SetActivePolicy", ctx, suite.companyID, policy.PolicyID, suite.admin.UserID).Return(nil).Once()

	err := suite.service.ActivatePolicy(ctx, policy.PolicyID, suite.admin.UserID)

	suite.Require().NoError(err)
	suite.mockPolicyRepo.AssertExpectations(suite.T())
}

func TestPolicyServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PolicyServiceTestSuite))
}
