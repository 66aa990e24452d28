package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/expenseflow/expenseflow-backend/internal/apperrors"
	"github.com/expenseflow/expenseflow-backend/internal/core/domain"
	portsrepo "github.com/expenseflow/expenseflow-backend/internal/core/ports/repositories"
	portssvc "github.com/expenseflow/expenseflow-backend/internal/core/ports/services"
	"github.com/expenseflow/expenseflow-backend/internal/core/services"
	"github.com/expenseflow/expenseflow-backend/internal/dto"
	"github.com/expenseflow/expenseflow-backend/internal/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock UserRepository ---
type MockUserRepository struct {
	mock.Mock
}

var _ portsrepo.UserRepositoryFacade = (*MockUserRepository)(nil)

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByProviderID(ctx context.Context, provider domain.AuthProvider, providerID string) (*domain.User, error) {
	args := m.Called(ctx, provider, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) ListUsersByCompany(ctx context.Context, companyID string, limit int, offset int) ([]domain.User, error) {
	args := m.Called(ctx, companyID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserRepository) CountUsersWithRole(ctx context.Context, companyID string, role domain.Role) (int, error) {
	args := m.Called(ctx, companyID, role)
	return args.Int(0), args.Error(1)
}

func (m *MockUserRepository) ListUserIDsWithRole(ctx context.Context, companyID string, role domain.Role) ([]string, error) {
	args := m.Called(ctx, companyID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateRefreshToken(ctx context.Context, userID string, tokenHash *string, expiryTime *time.Time) error {
	args := m.Called(ctx, userID, tokenHash, expiryTime)
	return args.Error(0)
}

func (m *MockUserRepository) MarkUserDeleted(ctx context.Context, userID string, deletedAt time.Time, deletedBy string) error {
	args := m.Called(ctx, userID, deletedAt, deletedBy)
	return args.Error(0)
}

// --- User Service Test Suite ---

type UserServiceTestSuite struct {
	suite.Suite
	mockUserRepo *MockUserRepository
	service      portssvc.UserSvcFacade

	companyID string
	admin     domain.User
}

func (suite *UserServiceTestSuite) SetupTest() {
	suite.mockUserRepo = new(MockUserRepository)
	suite.service = services.NewUserService(suite.mockUserRepo)

	suite.companyID = uuid.NewString()
	suite.admin = domain.User{
		UserID:       uuid.NewString(),
		CompanyID:    suite.companyID,
		Username:     "admin",
		Role:         domain.RoleAdmin,
		AuthProvider: domain.AuthProviderLocal,
	}
}

func (suite *UserServiceTestSuite) TestCreateUser_SetsLocalProvider() {
	ctx := context.Background()
	req := dto.CreateUserRequest{
		Username: "jdoe",
		Email:    "jdoe@example.com",
		Name:     "J. Doe",
		Password: "hunter2hunter2",
		Role:     domain.RoleManager,
	}

	suite.mockUserRepo.On("FindUserByID", ctx, suite.admin.UserID).Return(&suite.admin, nil).Once()
	suite.mockUserRepo.On("FindUserByUsername", ctx, "jdoe").Return(nil, nil).Once()
	suite.mockUserRepo.On("SaveUser", ctx, mock.AnythingOfType("domain.User")).Return(nil).Once()

	user, err := suite.service.CreateUser(ctx, req, suite.admin.UserID)

	suite.Require().NoError(err)
	suite.Equal(domain.AuthProviderLocal, user.AuthProvider)
	suite.Equal(suite.companyID, user.CompanyID)
	suite.NotEqual(req.Password, user.PasswordHash)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestAuthenticateUser_Success() {
	ctx := context.Background()
	hash, err := utils.HashPassword("correct-horse")
	suite.Require().NoError(err)
	user := domain.User{
		UserID:       uuid.NewString(),
		CompanyID:    suite.companyID,
		Username:     "jdoe",
		PasswordHash: hash,
		Role:         domain.RoleEmployee,
		AuthProvider: domain.AuthProviderLocal,
	}

	suite.mockUserRepo.On("FindUserByUsername", ctx, "jdoe").Return(&user, nil).Once()

	got, err := suite.service.AuthenticateUser(ctx, "jdoe", "correct-horse")

	suite.Require().NoError(err)
	suite.Equal(user.UserID, got.UserID)
}

func (suite *UserServiceTestSuite) TestAuthenticateUser_RejectsProviderAccount() {
	ctx := context.Background()
	// Accounts linked to an external provider have no usable password hash.
	user := domain.User{
		UserID:       uuid.NewString(),
		CompanyID:    suite.companyID,
		Username:     "jdoe",
		Role:         domain.RoleEmployee,
		AuthProvider: domain.AuthProviderGoogle,
	}

	suite.mockUserRepo.On("FindUserByUsername", ctx, "jdoe").Return(&user, nil).Once()

	_, err := suite.service.AuthenticateUser(ctx, "jdoe", "anything")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
}

func (suite *UserServiceTestSuite) TestGetOrProvisionOAuthUser_LinksLocalAccount() {
	ctx := context.Background()
	info := domain.GoogleUserInfo{ID: "google-sub-1", Email: "jdoe@example.com", Name: "J. Doe"}
	local := domain.User{
		UserID:       uuid.NewString(),
		CompanyID:    suite.companyID,
		Username:     info.Email,
		Email:        info.Email,
		Role:         domain.RoleEmployee,
		AuthProvider: domain.AuthProviderLocal,
	}

	suite.mockUserRepo.On("FindUserByProviderID", ctx, domain.AuthProviderGoogle, info.ID).Return(nil, nil).Once()
	suite.mockUserRepo.On("FindUserByUsername", ctx, info.Email).Return(&local, nil).Once()
	suite.mockUserRepo.On("UpdateUser", ctx, mock.AnythingOfType("domain.User")).Return(nil).Once()

	user, err := suite.service.GetOrProvisionOAuthUser(ctx, info)

	suite.Require().NoError(err)
	suite.Equal(domain.AuthProviderGoogle, user.AuthProvider)
	suite.Require().NotNil(user.ProviderID)
	suite.Equal(info.ID, *user.ProviderID)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestGetOrProvisionOAuthUser_UnknownEmailRejected() {
	ctx := context.Background()
	info := domain.GoogleUserInfo{ID: "google-sub-2", Email: "stranger@example.com"}

	suite.mockUserRepo.On("FindUserByProviderID", ctx, domain.AuthProviderGoogle, info.ID).Return(nil, nil).Once()
	suite.mockUserRepo.On("FindUserByUsername", ctx, info.Email).Return(nil, nil).Once()

	_, err := suite.service.GetOrProvisionOAuthUser(ctx, info)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "UpdateUser", mock.Anything, mock.Anything)
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}
