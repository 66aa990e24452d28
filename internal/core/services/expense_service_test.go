package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/expenseflow/expenseflow-backend/internal/apperrors"
	"github.com/expenseflow/expenseflow-backend/internal/core/domain"
	"github.com/expenseflow/expenseflow-backend/internal/core/fx"
	portsrepo "github.com/expenseflow/expenseflow-backend/internal/core/ports/repositories"
	portssvc "github.com/expenseflow/expenseflow-backend/internal/core/ports/services"
	"github.com/expenseflow/expenseflow-backend/internal/core/services"
	"github.com/expenseflow/expenseflow-backend/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock ExpenseRepository ---
type MockExpenseRepository struct {
	mock.Mock
}

// Ensure MockExpenseRepository implements portsrepo.ExpenseRepositoryFacade
var _ portsrepo.ExpenseRepositoryFacade = (*MockExpenseRepository)(nil)

func (m *MockExpenseRepository) SaveExpense(ctx context.Context, expense domain.Expense) error {
	args := m.Called(ctx, expense)
	return args.Error(0)
}

func (m *MockExpenseRepository) AppendApprovalEntry(ctx context.Context, expenseID string, expectedVersion int64, entry domain.ApprovalEntry, newStatus domain.ExpenseStatus, newLevel int) error {
	args := m.Called(ctx, expenseID, expectedVersion, entry, newStatus, newLevel)
	return args.Error(0)
}

func (m *MockExpenseRepository) FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error) {
	args := m.Called(ctx, expenseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Expense), args.Error(1)
}

func (m *MockExpenseRepository) ListExpensesBySubmitter(ctx context.Context, submitterID string, limit int, nextToken *string) ([]domain.Expense, *string, error) {
	args := m.Called(ctx, submitterID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.Expense), returnedNextToken, args.Error(2)
}

func (m *MockExpenseRepository) ListPendingExpensesByCompany(ctx context.Context, companyID string, level *int, limit int, nextToken *string) ([]domain.Expense, *string, error) {
	args := m.Called(ctx, companyID, level, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.Expense), returnedNextToken, args.Error(2)
}

// --- Mock CompanyRepository ---
type MockCompanyRepository struct {
	mock.Mock
}

var _ portsrepo.CompanyRepositoryFacade = (*MockCompanyRepository)(nil)

func (m *MockCompanyRepository) FindCompanyByID(ctx context.Context, companyID string) (*domain.Company, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Company), args.Error(1)
}

func (m *MockCompanyRepository) SaveCompany(ctx context.Context, company domain.Company) error {
	args := m.Called(ctx, company)
	return args.Error(0)
}

func (m *MockCompanyRepository) UpdateCompany(ctx context.Context, company domain.Company) error {
	args := m.Called(ctx, company)
	return args.Error(0)
}

// --- Mock PolicyService (reader side used by ExpenseService) ---
type MockPolicyReaderService struct {
	mock.Mock
}

var _ portssvc.PolicyReaderSvc = (*MockPolicyReaderService)(nil)

func (m *MockPolicyReaderService) GetPolicyByID(ctx context.Context, policyID string, requestingUserID string) (*domain.WorkflowPolicy, error) {
	args := m.Called(ctx, policyID, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WorkflowPolicy), args.Error(1)
}

func (m *MockPolicyReaderService) GetActivePolicy(ctx context.Context, companyID string) (*domain.WorkflowPolicy, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WorkflowPolicy), args.Error(1)
}

func (m *MockPolicyReaderService) ListPolicies(ctx context.Context, companyID string, requestingUserID string) ([]domain.WorkflowPolicy, error) {
	args := m.Called(ctx, companyID, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.WorkflowPolicy), args.Error(1)
}

// --- Mock UserService (as used by ExpenseService) ---
type MockUserService struct {
	mock.Mock
}

var _ portssvc.UserSvcFacade = (*MockUserService)(nil)

func (m *MockUserService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) ListUsers(ctx context.Context, companyID string, limit, offset int) ([]domain.User, error) {
	args := m.Called(ctx, companyID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserService) CreateUser(ctx context.Context, req dto.CreateUserRequest, requestingUserID string) (*domain.User, error) {
	args := m.Called(ctx, req, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) CreateOAuthUser(ctx context.Context, info domain.GoogleUserInfo, companyID string) (*domain.User, error) {
	args := m.Called(ctx, info, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest, requestingUserID string) (*domain.User, error) {
	args := m.Called(ctx, userID, req, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) UpdateRefreshToken(ctx context.Context, userID string, refreshTokenHash string, refreshTokenExpiryTime time.Time) error {
	args := m.Called(ctx, userID, refreshTokenHash, refreshTokenExpiryTime)
	return args.Error(0)
}

func (m *MockUserService) ClearRefreshToken(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockUserService) DeleteUser(ctx context.Context, userID string, requestingUserID string) error {
	args := m.Called(ctx, userID, requestingUserID)
	return args.Error(0)
}

func (m *MockUserService) AuthenticateUser(ctx context.Context, username, password string) (*domain.User, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) GetOrProvisionOAuthUser(ctx context.Context, info domain.GoogleUserInfo) (*domain.User, error) {
	args := m.Called(ctx, info)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) RoleOf(ctx context.Context, userID string) (domain.Role, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.Role), args.Error(1)
}

func (m *MockUserService) CountUsersWithRole(ctx context.Context, companyID string, role domain.Role) (int, error) {
	args := m.Called(ctx, companyID, role)
	return args.Int(0), args.Error(1)
}

func (m *MockUserService) EligibleCountsForPolicy(ctx context.Context, companyID string, policy domain.WorkflowPolicy) (map[int]int, error) {
	args := m.Called(ctx, companyID, policy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int]int), args.Error(1)
}

// --- Mock RateProvider ---
type MockRateProviderService struct {
	mock.Mock
}

var _ portssvc.RateProviderSvc = (*MockRateProviderService)(nil)

func (m *MockRateProviderService) CurrentRates(ctx context.Context, referenceCode string) (fx.RateTable, error) {
	args := m.Called(ctx, referenceCode)
	return args.Get(0).(fx.RateTable), args.Error(1)
}

// --- Expense Service Test Suite ---

type ExpenseServiceTestSuite struct {
	suite.Suite
	mockExpenseRepo *MockExpenseRepository
	mockCompanyRepo *MockCompanyRepository
	mockPolicySvc   *MockPolicyReaderService
	mockUserSvc     *MockUserService
	mockRateSvc     *MockRateProviderService
	service         portssvc.ExpenseSvcFacade

	companyID string
	company   domain.Company
	policy    domain.WorkflowPolicy
	submitter domain.User
	manager   domain.User
	finance   domain.User
	rates     fx.RateTable
}

func (suite *ExpenseServiceTestSuite) SetupTest() {
	suite.mockExpenseRepo = new(MockExpenseRepository)
	suite.mockCompanyRepo = new(MockCompanyRepository)
	suite.mockPolicySvc = new(MockPolicyReaderService)
	suite.mockUserSvc = new(MockUserService)
	suite.mockRateSvc = new(MockRateProviderService)
	suite.service = services.NewExpenseService(suite.mockExpenseRepo, suite.mockCompanyRepo, suite.mockPolicySvc, suite.mockUserSvc, suite.mockRateSvc)

	suite.companyID = uuid.NewString()
	suite.company = domain.Company{
		CompanyID:        suite.companyID,
		Name:             "Acme Corp",
		Country:          "US",
		BaseCurrencyCode: "USD",
	}
	suite.policy = domain.WorkflowPolicy{
		PolicyID:  uuid.NewString(),
		CompanyID: suite.companyID,
		Name:      "Default Chain",
		Levels: []domain.PolicyLevel{
			{Level: 1, RequiredRole: domain.RoleManager},
			{Level: 2, RequiredRole: domain.RoleFinance},
		},
	}
	suite.submitter = domain.User{
		UserID:    uuid.NewString(),
		CompanyID: suite.companyID,
		Role:      domain.RoleEmployee,
	}
	suite.manager = domain.User{
		UserID:    uuid.NewString(),
		CompanyID: suite.companyID,
		Role:      domain.RoleManager,
	}
	suite.finance = domain.User{
		UserID:    uuid.NewString(),
		CompanyID: suite.companyID,
		Role:      domain.RoleFinance,
	}
	suite.rates = fx.NewRateTable("USD", map[string]decimal.Decimal{
		"EUR": decimal.NewFromFloat(0.5),
		"INR": decimal.NewFromInt(80),
	})
}

// pendingExpense builds a stored expense routed under the suite policy.
func (suite *ExpenseServiceTestSuite) pendingExpense(normalized int64, level int, ledger ...domain.ApprovalEntry) domain.Expense {
	return domain.Expense{
		ExpenseID:        uuid.NewString(),
		CompanyID:        suite.companyID,
		SubmitterID:      suite.submitter.UserID,
		PolicyID:         suite.policy.PolicyID,
		Amount:           domain.Money{Amount: decimal.NewFromInt(normalized), CurrencyCode: "USD"},
		NormalizedAmount: domain.Money{Amount: decimal.NewFromInt(normalized), CurrencyCode: "USD"},
		Category:         domain.CategoryTravel,
		Description:      "client visit",
		ExpenseDate:      time.Now().AddDate(0, 0, -1),
		Status:           domain.ExpensePending,
		CurrentLevel:     level,
		Version:          1,
		Ledger:           ledger,
		SubmittedAt:      time.Now(),
	}
}

func (suite *ExpenseServiceTestSuite) TestSubmitExpense_NormalizesAndRoutes() {
	ctx := context.Background()
	req := dto.CreateExpenseRequest{
		Amount:       decimal.NewFromInt(100),
		CurrencyCode: "EUR",
		Category:     domain.CategoryTravel,
		Description:  "flight to Berlin",
		ExpenseDate:  time.Now().AddDate(0, 0, -2),
	}

	suite.mockUserSvc.On("GetUserByID", ctx, suite.submitter.UserID).Return(&suite.submitter, nil).Once()
	suite.mockCompanyRepo.On("FindCompanyByID", ctx, suite.companyID).Return(&suite.company, nil).Once()
	suite.mockRateSvc.On("CurrentRates", ctx, "USD").Return(suite.rates, nil).Once()
	suite.mockPolicySvc.On("GetActivePolicy", ctx, suite.companyID).Return(&suite.policy, nil).Once()
	suite.mockExpenseRepo.On("SaveExpense", ctx, mock.AnythingOfType("domain.Expense")).Return(nil).Once()

	expense, err := suite.service.SubmitExpense(ctx, req, suite.submitter.UserID)

	suite.Require().NoError(err)
	suite.Require().NotNil(expense)
	suite.NotEmpty(expense.ExpenseID)
	suite.Equal(suite.policy.PolicyID, expense.PolicyID)
	// 100 EUR at 0.5 EUR per USD is 200 USD.
	suite.True(decimal.NewFromInt(200).Equal(expense.NormalizedAmount.Amount))
	suite.Equal("USD", expense.NormalizedAmount.CurrencyCode)
	suite.Equal(domain.ExpensePending, expense.Status)
	suite.Equal(1, expense.CurrentLevel)
	suite.Empty(expense.Ledger)

	suite.mockExpenseRepo.AssertExpectations(suite.T())
	suite.mockPolicySvc.AssertExpectations(suite.T())
	suite.mockRateSvc.AssertExpectations(suite.T())
}

func (suite *ExpenseServiceTestSuite) TestSubmitExpense_ThresholdSkipsFirstLevel() {
	ctx := context.Background()
	threshold := decimal.NewFromInt(500)
	policy := suite.policy
	policy.Levels = []domain.PolicyLevel{
		{Level: 1, RequiredRole: domain.RoleManager, Threshold: &threshold},
		{Level: 2, RequiredRole: domain.RoleFinance},
	}
	req := dto.CreateExpenseRequest{
		Amount:       decimal.NewFromInt(900),
		CurrencyCode: "USD",
		Category:     domain.CategoryTechnology,
		Description:  "workstation",
		ExpenseDate:  time.Now(),
	}

	suite.mockUserSvc.On("GetUserByID", ctx, suite.submitter.UserID).Return(&suite.submitter, nil).Once()
	suite.mockCompanyRepo.On("FindCompanyByID", ctx, suite.companyID).Return(&suite.company, nil).Once()
	suite.mockRateSvc.On("CurrentRates", ctx, "USD").Return(suite.rates, nil).Once()
	suite.mockPolicySvc.On("GetActivePolicy", ctx, suite.companyID).Return(&policy, nil).Once()
	suite.mockExpenseRepo.On("SaveExpense", ctx, mock.AnythingOfType("domain.Expense")).Return(nil).Once()

	expense, err := suite.service.SubmitExpense(ctx, req, suite.submitter.UserID)

	suite.Require().NoError(err)
	suite.Equal(domain.ExpensePending, expense.Status)
	// 900 exceeds the level-1 ceiling, so finance acts first.
	suite.Equal(2, expense.CurrentLevel)
	suite.mockExpenseRepo.AssertExpectations(suite.T())
}

func (suite *ExpenseServiceTestSuite) TestSubmitExpense_AutoApproved() {
	ctx := context.Background()
	limit := decimal.NewFromInt(50)
	policy := suite.policy
	policy.Rules.AutoApprovalLimit = &limit
	req := dto.CreateExpenseRequest{
		Amount:       decimal.NewFromInt(40),
		CurrencyCode: "USD",
		Category:     domain.CategoryMeals,
		Description:  "team lunch",
		ExpenseDate:  time.Now(),
	}

	suite.mockUserSvc.On("GetUserByID", ctx, suite.submitter.UserID).Return(&suite.submitter, nil).Once()
	suite.mockCompanyRepo.On("FindCompanyByID", ctx, suite.companyID).Return(&suite.company, nil).Once()
	suite.mockRateSvc.On("CurrentRates", ctx, "USD").Return(suite.rates, nil).Once()
	suite.mockPolicySvc.On("GetActivePolicy", ctx, suite.companyID).Return(&policy, nil).Once()
	suite.mockExpenseRepo.On("SaveExpense", ctx, mock.AnythingOfType("domain.Expense")).Return(nil).Once()

	expense, err := suite.service.SubmitExpense(ctx, req, suite.submitter.UserID)

	suite.Require().NoError(err)
	suite.Equal(domain.ExpenseApproved, expense.Status)
	suite.Equal(0, expense.CurrentLevel)
	suite.Require().Len(expense.Ledger, 1)
	suite.Equal(domain.DecisionAuto, expense.Ledger[0].Decision)
	suite.Empty(expense.Ledger[0].ApproverID)
	suite.mockExpenseRepo.AssertExpectations(suite.T())
}

func (suite *ExpenseServiceTestSuite) TestSubmitExpense_UnknownCurrency() {
	ctx := context.Background()
	req := dto.CreateExpenseRequest{
		Amount:       decimal.NewFromInt(100),
		CurrencyCode: "JPY",
		Category:     domain.CategoryTravel,
		Description:  "taxi",
		ExpenseDate:  time.Now(),
	}

	suite.mockUserSvc.On("GetUserByID", ctx, suite.submitter.UserID).Return(&suite.submitter, nil).Once()
	suite.mockCompanyRepo.On("FindCompanyByID", ctx, suite.companyID).Return(&suite.company, nil).Once()
	suite.mockRateSvc.On("CurrentRates", ctx, "USD").Return(suite.rates, nil).Once()

	_, err := suite.service.SubmitExpense(ctx, req, suite.submitter.UserID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrUnknownCurrency)
	suite.mockExpenseRepo.AssertNotCalled(suite.T(), "SaveExpense", mock.Anything, mock.Anything)
}

func (suite *ExpenseServiceTestSuite) TestSubmitExpense_NonPositiveAmount() {
	ctx := context.Background()
	req := dto.CreateExpenseRequest{
		Amount:       decimal.Zero,
		CurrencyCode: "USD",
		Category:     domain.CategoryOther,
		Description:  "nothing",
		ExpenseDate:  time.Now(),
	}

	suite.mockUserSvc.On("GetUserByID", ctx, suite.submitter.UserID).Return(&suite.submitter, nil).Once()

	_, err := suite.service.SubmitExpense(ctx, req, suite.submitter.UserID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockExpenseRepo.AssertNotCalled(suite.T(), "SaveExpense", mock.Anything, mock.Anything)
}

func (suite *ExpenseServiceTestSuite) TestSubmitExpense_NormalizedAmountRoundsToZero() {
	ctx := context.Background()
	// 0.10 INR is 0.00125 USD, which rounds to 0.00 at currency precision.
	req := dto.CreateExpenseRequest{
		Amount:       decimal.NewFromFloat(0.10),
		CurrencyCode: "INR",
		Category:     domain.CategoryOther,
		Description:  "toll",
		ExpenseDate:  time.Now(),
	}

	suite.mockUserSvc.On("GetUserByID", ctx, suite.submitter.UserID).Return(&suite.submitter, nil).Once()
	suite.mockCompanyRepo.On("FindCompanyByID", ctx, suite.companyID).Return(&suite.company, nil).Once()
	suite.mockRateSvc.On("CurrentRates", ctx, "USD").Return(suite.rates, nil).Once()

	_, err := suite.service.SubmitExpense(ctx, req, suite.submitter.UserID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockExpenseRepo.AssertNotCalled(suite.T(), "SaveExpense", mock.Anything, mock.Anything)
	suite.mockPolicySvc.AssertNotCalled(suite.T(), "GetActivePolicy", mock.Anything, mock.Anything)
}

func (suite *ExpenseServiceTestSuite) TestRecordDecision_ApproveAdvancesLevel() {
	ctx := context.Background()
	expense := suite.pendingExpense(200, 1)
	eligible := map[int]int{1: 1, 2: 1}
	req := dto.DecisionRequest{Decision: domain.DecisionApprove, Comment: "looks fine"}

	suite.mockUserSvc.On("GetUserByID", ctx, suite.manager.UserID).Return(&suite.manager, nil).Once()
	suite.mockExpenseRepo.On("FindExpenseByID", ctx, expense.ExpenseID).Return(&expense, nil).Once()
	suite.mockPolicySvc.On("GetPolicyByID", ctx, suite.policy.PolicyID, suite.submitter.UserID).Return(&suite.policy, nil).Once()
	suite.mockUserSvc.On("EligibleCountsForPolicy", ctx, suite.companyID, suite.policy).Return(eligible, nil).Once()
	suite.mockExpenseRepo.On("AppendApprovalEntry", ctx, expense.ExpenseID, int64(1), mock.AnythingOfType("domain.ApprovalEntry"), domain.ExpensePending, 2).Return(nil).Once()

	updated, err := suite.service.RecordDecision(ctx, expense.ExpenseID, req, suite.manager.UserID)

	suite.Require().NoError(err)
	suite.Equal(domain.ExpensePending, updated.Status)
	suite.Equal(2, updated.CurrentLevel)
	suite.Equal(int64(2), updated.Version)
	suite.Require().Len(updated.Ledger, 1)
	suite.Equal(suite.manager.UserID, updated.Ledger[0].ApproverID)
	suite.Equal(1, updated.Ledger[0].Level)
	suite.mockExpenseRepo.AssertExpectations(suite.T())
	suite.mockUserSvc.AssertExpectations(suite.T())
}

func (suite *ExpenseServiceTestSuite) TestRecordDecision_FinalApprove() {
	ctx := context.Background()
	priorApproval := domain.ApprovalEntry{
		EntryID:    uuid.NewString(),
		Level:      1,
		ApproverID: suite.manager.UserID,
		Decision:   domain.DecisionApprove,
		CreatedAt:  time.Now().Add(-time.Hour),
	}
	expense := suite.pendingExpense(200, 2, priorApproval)
	eligible := map[int]int{1: 1, 2: 1}
	req := dto.DecisionRequest{Decision: domain.DecisionApprove}

	suite.mockUserSvc.On("GetUserByID", ctx, suite.finance.UserID).Return(&suite.finance, nil).Once()
	suite.mockExpenseRepo.On("FindExpenseByID", ctx, expense.ExpenseID).Return(&expense, nil).Once()
	suite.mockPolicySvc.On("GetPolicyByID", ctx, suite.policy.PolicyID, suite.submitter.UserID).Return(&suite.policy, nil).Once()
	suite.mockUserSvc.On("EligibleCountsForPolicy", ctx, suite.companyID, suite.policy).Return(eligible, nil).Once()
	suite.mockExpenseRepo.On("AppendApprovalEntry", ctx, expense.ExpenseID, int64(1), mock.AnythingOfType("domain.ApprovalEntry"), domain.ExpenseApproved, 0).Return(nil).Once()

	updated, err := suite.service.RecordDecision(ctx, expense.ExpenseID, req, suite.finance.UserID)

	suite.Require().NoError(err)
	suite.Equal(domain.ExpenseApproved, updated.Status)
	suite.Equal(0, updated.CurrentLevel)
	suite.Len(updated.Ledger, 2)
	suite.mockExpenseRepo.AssertExpectations(suite.T())
}

func (suite *ExpenseServiceTestSuite) TestRecordDecision_RejectVetoes() {
	ctx := context.Background()
	expense := suite.pendingExpense(200, 1)
	eligible := map[int]int{1: 1, 2: 1}
	req := dto.DecisionRequest{Decision: domain.DecisionReject, Comment: "no receipt"}

	suite.mockUserSvc.On("GetUserByID", ctx, suite.manager.UserID).Return(&suite.manager, nil).Once()
	suite.mockExpenseRepo.On("FindExpenseByID", ctx, expense.ExpenseID).Return(&expense, nil).Once()
	suite.mockPolicySvc.On("GetPolicyByID", ctx, suite.policy.PolicyID, suite.submitter.UserID).Return(&suite.policy, nil).Once()
	suite.mockUserSvc.On("EligibleCountsForPolicy", ctx, suite.companyID, suite.policy).Return(eligible, nil).Once()
	suite.mockExpenseRepo.On("AppendApprovalEntry", ctx, expense.ExpenseID, int64(1), mock.AnythingOfType("domain.ApprovalEntry"), domain.ExpenseRejected, 0).Return(nil).Once()

	updated, err := suite.service.RecordDecision(ctx, expense.ExpenseID, req, suite.manager.UserID)

	suite.Require().NoError(err)
	suite.Equal(domain.ExpenseRejected, updated.Status)
	suite.mockExpenseRepo.AssertExpectations(suite.T())
}

func (suite *ExpenseServiceTestSuite) TestRecordDecision_DesignatedOverride() {
	ctx := context.Background()
	director := domain.User{UserID: uuid.NewString(), CompanyID: suite.companyID, Role: domain.RoleDirector}
	policy := suite.policy
	policy.Rules.SpecificApprovers = []string{director.UserID}
	expense := suite.pendingExpense(200, 1)
	eligible := map[int]int{1: 1, 2: 1}
	req := dto.DecisionRequest{Decision: domain.DecisionApprove}

	suite.mockUserSvc.On("GetUserByID", ctx, director.UserID).Return(&director, nil).Once()
	suite.mockExpenseRepo.On("FindExpenseByID", ctx, expense.ExpenseID).Return(&expense, nil).Once()
	suite.mockPolicySvc.On("GetPolicyByID", ctx, suite.policy.PolicyID, suite.submitter.UserID).Return(&policy, nil).Once()
	suite.mockUserSvc.On("EligibleCountsForPolicy", ctx, suite.companyID, policy).Return(eligible, nil).Once()
	suite.mockExpenseRepo.On("AppendApprovalEntry", ctx, expense.ExpenseID, int64(1), mock.AnythingOfType("domain.ApprovalEntry"), domain.ExpenseApproved, 0).Return(nil).Once()

	updated, err := suite.service.RecordDecision(ctx, expense.ExpenseID, req, director.UserID)

	suite.Require().NoError(err)
	suite.Equal(domain.ExpenseApproved, updated.Status)
	suite.mockExpenseRepo.AssertExpectations(suite.T())
}

func (suite *ExpenseServiceTestSuite) TestRecordDecision_PolicyEditRederivesLevel() {
	ctx := context.Background()
	// The policy was edited after submission: level 1 now carries a 100
	// ceiling, so the 200 expense re-routes to finance even though the stored
	// level still says 1.
	threshold := decimal.NewFromInt(100)
	policy := suite.policy
	policy.Levels = []domain.PolicyLevel{
		{Level: 1, RequiredRole: domain.RoleManager, Threshold: &threshold},
		{Level: 2, RequiredRole: domain.RoleFinance},
	}
	expense := suite.pendingExpense(200, 1)
	eligible := map[int]int{1: 1, 2: 1}
	req := dto.DecisionRequest{Decision: domain.DecisionApprove}

	suite.mockUserSvc.On("GetUserByID", ctx, suite.finance.UserID).Return(&suite.finance, nil).Once()
	suite.mockExpenseRepo.On("FindExpenseByID", ctx, expense.ExpenseID).Return(&expense, nil).Once()
	suite.mockPolicySvc.On("GetPolicyByID", ctx, suite.policy.PolicyID, suite.submitter.UserID).Return(&policy, nil).Once()
	suite.mockUserSvc.On("EligibleCountsForPolicy", ctx, suite.companyID, policy).Return(eligible, nil).Once()
	suite.mockExpenseRepo.On("AppendApprovalEntry", ctx, expense.ExpenseID, int64(1), mock.AnythingOfType("domain.ApprovalEntry"), domain.ExpenseApproved, 0).Return(nil).Once()

	updated, err := suite.service.RecordDecision(ctx, expense.ExpenseID, req, suite.finance.UserID)

	suite.Require().NoError(err)
	suite.Equal(domain.ExpenseApproved, updated.Status)
	suite.Require().Len(updated.Ledger, 1)
	suite.Equal(2, updated.Ledger[0].Level)
	suite.mockExpenseRepo.AssertExpectations(suite.T())
}

func (suite *ExpenseServiceTestSuite) TestRecordDecision_SubmitterCannotDecide() {
	ctx := context.Background()
	expense := suite.pendingExpense(200, 1)
	req := dto.DecisionRequest{Decision: domain.DecisionApprove}

	suite.mockUserSvc.On("GetUserByID", ctx, suite.submitter.UserID).Return(&suite.submitter, nil).Once()
	suite.mockExpenseRepo.On("FindExpenseByID", ctx, expense.ExpenseID).Return(&expense, nil).Once()

	_, err := suite.service.RecordDecision(ctx, expense.ExpenseID, req, suite.submitter.UserID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrUnauthorizedApprover)
	suite.mockExpenseRepo.AssertNotCalled(suite.T(), "AppendApprovalEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ExpenseServiceTestSuite) TestRecordDecision_WrongRole() {
	ctx := context.Background()
	expense := suite.pendingExpense(200, 1)
	eligible := map[int]int{1: 1, 2: 1}
	req := dto.DecisionRequest{Decision: domain.DecisionApprove}

	// Finance holds no override and level 1 requires a manager.
	suite.mockUserSvc.On("GetUserByID", ctx, suite.finance.UserID).Return(&suite.finance, nil).Once()
	suite.mockExpenseRepo.On("FindExpenseByID", ctx, expense.ExpenseID).Return(&expense, nil).Once()
	suite.mockPolicySvc.On("GetPolicyByID", ctx, suite.policy.PolicyID, suite.submitter.UserID).Return(&suite.policy, nil).Once()
	suite.mockUserSvc.On("EligibleCountsForPolicy", ctx, suite.companyID, suite.policy).Return(eligible, nil).Once()

	_, err := suite.service.RecordDecision(ctx, expense.ExpenseID, req, suite.finance.UserID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrUnauthorizedApprover)
	suite.mockExpenseRepo.AssertNotCalled(suite.T(), "AppendApprovalEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ExpenseServiceTestSuite) TestRecordDecision_CrossCompanyForbidden() {
	ctx := context.Background()
	outsider := domain.User{UserID: uuid.NewString(), CompanyID: uuid.NewString(), Role: domain.RoleManager}
	expense := suite.pendingExpense(200, 1)
	req := dto.DecisionRequest{Decision: domain.DecisionApprove}

	suite.mockUserSvc.On("GetUserByID", ctx, outsider.UserID).Return(&outsider, nil).Once()
	suite.mockExpenseRepo.On("FindExpenseByID", ctx, expense.ExpenseID).Return(&expense, nil).Once()

	_, err := suite.service.RecordDecision(ctx, expense.ExpenseID, req, outsider.UserID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *ExpenseServiceTestSuite) TestRecordDecision_RetriesOnVersionConflict() {
	ctx := context.Background()
	pct := 100
	policy := suite.policy
	policy.Rules.PercentageApproval = &pct
	eligible := map[int]int{1: 2, 2: 1}

	otherManager := domain.User{UserID: uuid.NewString(), CompanyID: suite.companyID, Role: domain.RoleManager}
	stale := suite.pendingExpense(200, 1)
	fresh := stale
	fresh.Version = 2
	fresh.Ledger = []domain.ApprovalEntry{{
		EntryID:    uuid.NewString(),
		ExpenseID:  stale.ExpenseID,
		Level:      1,
		ApproverID: otherManager.UserID,
		Decision:   domain.DecisionApprove,
		CreatedAt:  time.Now(),
	}}
	req := dto.DecisionRequest{Decision: domain.DecisionApprove}

	suite.mockUserSvc.On("GetUserByID", ctx, suite.manager.UserID).Return(&suite.manager, nil).Once()
	suite.mockExpenseRepo.On("FindExpenseByID", ctx, stale.ExpenseID).Return(&stale, nil).Once()
	suite.mockExpenseRepo.On("FindExpenseByID", ctx, stale.ExpenseID).Return(&fresh, nil).Once()
	suite.mockPolicySvc.On("GetPolicyByID", ctx, suite.policy.PolicyID, suite.submitter.UserID).Return(&policy, nil).Twice()
	suite.mockUserSvc.On("EligibleCountsForPolicy", ctx, suite.companyID, policy).Return(eligible, nil).Twice()
	// First attempt loses the race on version 1.
	conflictErr := fmt.Errorf("%w: expense moved past version 1", apperrors.ErrConflict)
	suite.mockExpenseRepo.On("AppendApprovalEntry", ctx, stale.ExpenseID, int64(1), mock.AnythingOfType("domain.ApprovalEntry"), domain.ExpensePending, 1).Return(conflictErr).Once()
	// Second attempt sees the concurrent approval; with a 100% quorum over two
	// managers this approval clears level 1.
	suite.mockExpenseRepo.On("AppendApprovalEntry", ctx, stale.ExpenseID, int64(2), mock.AnythingOfType("domain.ApprovalEntry"), domain.ExpensePending, 2).Return(nil).Once()

	updated, err := suite.service.RecordDecision(ctx, stale.ExpenseID, req, suite.manager.UserID)

	suite.Require().NoError(err)
	suite.Equal(domain.ExpensePending, updated.Status)
	suite.Equal(2, updated.CurrentLevel)
	suite.Equal(int64(3), updated.Version)
	suite.Len(updated.Ledger, 2)
	suite.mockExpenseRepo.AssertExpectations(suite.T())
}

func (suite *ExpenseServiceTestSuite) TestRecordDecision_GivesUpAfterRepeatedConflicts() {
	ctx := context.Background()
	expense := suite.pendingExpense(200, 1)
	eligible := map[int]int{1: 1, 2: 1}
	req := dto.DecisionRequest{Decision: domain.DecisionApprove}
	conflictErr := fmt.Errorf("%w: expense moved past version 1", apperrors.ErrConflict)

	suite.mockUserSvc.On("GetUserByID", ctx, suite.manager.UserID).Return(&suite.manager, nil).Once()
	suite.mockExpenseRepo.On("FindExpenseByID", ctx, expense.ExpenseID).Return(&expense, nil).Times(3)
	suite.mockPolicySvc.On("GetPolicyByID", ctx, suite.policy.PolicyID, suite.submitter.UserID).Return(&suite.policy, nil).Times(3)
	suite.mockUserSvc.On("EligibleCountsForPolicy", ctx, suite.companyID, suite.policy).Return(eligible, nil).Times(3)
	suite.mockExpenseRepo.On("AppendApprovalEntry", ctx, expense.ExpenseID, int64(1), mock.AnythingOfType("domain.ApprovalEntry"), domain.ExpensePending, 2).Return(conflictErr).Times(3)

	_, err := suite.service.RecordDecision(ctx, expense.ExpenseID, req, suite.manager.UserID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockExpenseRepo.AssertExpectations(suite.T())
}

func (suite *ExpenseServiceTestSuite) TestGetExpenseByID_EmployeeSeesOnlyOwn() {
	ctx := context.Background()
	otherEmployee := domain.User{UserID: uuid.NewString(), CompanyID: suite.companyID, Role: domain.RoleEmployee}
	expense := suite.pendingExpense(200, 1)

	suite.mockUserSvc.On("GetUserByID", ctx, otherEmployee.UserID).Return(&otherEmployee, nil).Once()
	suite.mockExpenseRepo.On("FindExpenseByID", ctx, expense.ExpenseID).Return(&expense, nil).Once()

	_, err := suite.service.GetExpenseByID(ctx, expense.ExpenseID, otherEmployee.UserID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *ExpenseServiceTestSuite) TestGetExpenseByID_NotFound() {
	ctx := context.Background()
	expenseID := uuid.NewString()

	suite.mockUserSvc.On("GetUserByID", ctx, suite.submitter.UserID).Return(&suite.submitter, nil).Once()
	suite.mockExpenseRepo.On("FindExpenseByID", ctx, expenseID).Return(nil, nil).Once()

	_, err := suite.service.GetExpenseByID(ctx, expenseID, suite.submitter.UserID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *ExpenseServiceTestSuite) TestGetResolutionState_ReportsQuorumProgress() {
	ctx := context.Background()
	pct := 100
	policy := suite.policy
	policy.Rules.PercentageApproval = &pct
	eligible := map[int]int{1: 2, 2: 1}
	expense := suite.pendingExpense(200, 1, domain.ApprovalEntry{
		EntryID:    uuid.NewString(),
		Level:      1,
		ApproverID: suite.manager.UserID,
		Decision:   domain.DecisionApprove,
		CreatedAt:  time.Now(),
	})

	suite.mockUserSvc.On("GetUserByID", ctx, suite.submitter.UserID).Return(&suite.submitter, nil).Once()
	suite.mockExpenseRepo.On("FindExpenseByID", ctx, expense.ExpenseID).Return(&expense, nil).Once()
	suite.mockPolicySvc.On("GetPolicyByID", ctx, suite.policy.PolicyID, suite.submitter.UserID).Return(&policy, nil).Once()
	suite.mockUserSvc.On("EligibleCountsForPolicy", ctx, suite.companyID, policy).Return(eligible, nil).Once()

	res, err := suite.service.GetResolutionState(ctx, expense.ExpenseID, suite.submitter.UserID)

	suite.Require().NoError(err)
	suite.Equal(domain.ExpensePending, res.Status)
	suite.Equal(1, res.CurrentLevel)
	suite.Equal(domain.RoleManager, res.RequiredRole)
	suite.Equal(1, res.ApprovalsAtLevel)
	suite.Equal(2, res.QuorumRequired)
}

func (suite *ExpenseServiceTestSuite) TestListPendingApprovals_EmployeeForbidden() {
	ctx := context.Background()

	suite.mockUserSvc.On("GetUserByID", ctx, suite.submitter.UserID).Return(&suite.submitter, nil).Once()

	_, err := suite.service.ListPendingApprovals(ctx, suite.submitter.UserID, dto.ListExpensesParams{})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockExpenseRepo.AssertNotCalled(suite.T(), "ListPendingExpensesByCompany", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ExpenseServiceTestSuite) TestListPendingApprovals_FiltersToActionable() {
	ctx := context.Background()
	atManagerLevel := suite.pendingExpense(200, 1)
	atFinanceLevel := suite.pendingExpense(300, 2, domain.ApprovalEntry{
		EntryID:    uuid.NewString(),
		Level:      1,
		ApproverID: uuid.NewString(),
		Decision:   domain.DecisionApprove,
		CreatedAt:  time.Now().Add(-time.Hour),
	})
	page := []domain.Expense{atFinanceLevel, atManagerLevel}
	eligible := map[int]int{1: 1, 2: 1}

	suite.mockUserSvc.On("GetUserByID", ctx, suite.manager.UserID).Return(&suite.manager, nil).Once()
	suite.mockExpenseRepo.On("ListPendingExpensesByCompany", ctx, suite.companyID, (*int)(nil), 20, (*string)(nil)).Return(page, nil, nil).Once()
	suite.mockPolicySvc.On("GetPolicyByID", ctx, suite.policy.PolicyID, suite.submitter.UserID).Return(&suite.policy, nil).Twice()
	suite.mockUserSvc.On("EligibleCountsForPolicy", ctx, suite.companyID, suite.policy).Return(eligible, nil).Twice()

	resp, err := suite.service.ListPendingApprovals(ctx, suite.manager.UserID, dto.ListExpensesParams{})

	suite.Require().NoError(err)
	suite.Require().Len(resp.Expenses, 1)
	suite.Equal(atManagerLevel.ExpenseID, resp.Expenses[0].ExpenseID)
	suite.Nil(resp.NextToken)
	suite.mockExpenseRepo.AssertExpectations(suite.T())
}

func (suite *ExpenseServiceTestSuite) TestListMyExpenses_PassesThroughPage() {
	ctx := context.Background()
	expense := suite.pendingExpense(200, 1)
	token := "next-page"

	suite.mockExpenseRepo.On("ListExpensesBySubmitter", ctx, suite.submitter.UserID, 20, (*string)(nil)).Return([]domain.Expense{expense}, token, nil).Once()

	resp, err := suite.service.ListMyExpenses(ctx, suite.submitter.UserID, dto.ListExpensesParams{})

	suite.Require().NoError(err)
	suite.Require().Len(resp.Expenses, 1)
	suite.Equal(expense.ExpenseID, resp.Expenses[0].ExpenseID)
	suite.Require().NotNil(resp.NextToken)
	suite.Equal(token, *resp.NextToken)
	suite.mockExpenseRepo.AssertExpectations(suite.T())
}

func TestExpenseServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ExpenseServiceTestSuite))
}
