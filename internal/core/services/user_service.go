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

// userService handles user administration, authentication lookups and the
// role directory the approval engine sizes quorums with.
type userService struct {
	BaseService
	userRepo portsrepo.UserRepositoryFacade
}

// NewUserService creates a new user service.
func NewUserService(userRepo portsrepo.UserRepositoryFacade) portssvc.UserSvcFacade {
	return &userService{userRepo: userRepo}
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %s", apperrors.ErrNotFound, userID)
	}
	return user, nil
}

func (s *userService) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: username %s", apperrors.ErrNotFound, username)
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, companyID string, limit, offset int) ([]domain.User, error) {
	users, err := s.userRepo.ListUsersByCompany(ctx, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	if users == nil {
		return []domain.User{}, nil
	}
	return users, nil
}

// CreateUser creates a user inside the requesting admin's company. The
// manager reference, when given, must point at a user of the same company.
func (s *userService) CreateUser(ctx context.Context, req dto.CreateUserRequest, requestingUserID string) (*domain.User, error) {
	requester, err := s.GetUserByID(ctx, requestingUserID)
	if err != nil {
		return nil, err
	}
	if err := s.RequireRole(requester, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if !req.Role.IsValid() {
		return nil, fmt.Errorf("%w: unknown role %s", apperrors.ErrValidation, req.Role)
	}

	if existing, err := s.userRepo.FindUserByUsername(ctx, req.Username); err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	} else if existing != nil {
		return nil, fmt.Errorf("%w: username %s is taken", apperrors.ErrDuplicate, req.Username)
	}

	if req.ManagerID != nil {
		manager, err := s.userRepo.FindUserByID(ctx, *req.ManagerID)
		if err != nil {
			return nil, fmt.Errorf("failed to verify manager: %w", err)
		}
		if manager == nil || manager.CompanyID != requester.CompanyID {
			return nil, fmt.Errorf("%w: manager %s", apperrors.ErrNotFound, *req.ManagerID)
		}
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := domain.User{
		UserID:       uuid.NewString(),
		CompanyID:    requester.CompanyID,
		Username:     req.Username,
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: passwordHash,
		Role:         req.Role,
		ManagerID:    req.ManagerID,
		AuthProvider: domain.AuthProviderLocal,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     requestingUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: requestingUserID,
		},
	}

	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		s.LogError(ctx, err, "failed to save user", "username", req.Username)
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	s.LogInfo(ctx, "user created", "user_id", user.UserID, "role", user.Role)
	return &user, nil
}

// CreateOAuthUser creates a user from an external provider identity.
func (s *userService) CreateOAuthUser(ctx context.Context, info domain.GoogleUserInfo, companyID string) (*domain.User, error) {
	now := time.Now()
	user := domain.User{
		UserID:       uuid.NewString(),
		CompanyID:    companyID,
		Username:     info.Email,
		Email:        info.Email,
		Name:         info.Name,
		Role:         domain.RoleEmployee,
		AuthProvider: domain.AuthProviderGoogle,
		ProviderID:   &info.ID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}
	user.CreatedBy = user.UserID
	user.LastUpdatedBy = user.UserID

	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		s.LogError(ctx, err, "failed to save oauth user", "email", info.Email)
		return nil, fmt.Errorf("failed to save oauth user: %w", err)
	}
	return &user, nil
}

func (s *userService) UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest, requestingUserID string) (*domain.User, error) {
	requester, err := s.GetUserByID(ctx, requestingUserID)
	if err != nil {
		return nil, err
	}
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.RequireSameCompany(requester, user.CompanyID); err != nil {
		return nil, err
	}

	// Users may rename themselves; role and manager changes are admin-only.
	if req.Role != nil || req.ManagerID != nil {
		if err := s.RequireRole(requester, domain.RoleAdmin); err != nil {
			return nil, err
		}
	} else if requester.UserID != userID {
		if err := s.RequireRole(requester, domain.RoleAdmin); err != nil {
			return nil, err
		}
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Role != nil {
		if !req.Role.IsValid() {
			return nil, fmt.Errorf("%w: unknown role %s", apperrors.ErrValidation, *req.Role)
		}
		user.Role = *req.Role
	}
	if req.ManagerID != nil {
		manager, err := s.userRepo.FindUserByID(ctx, *req.ManagerID)
		if err != nil {
			return nil, fmt.Errorf("failed to verify manager: %w", err)
		}
		if manager == nil || manager.CompanyID != user.CompanyID {
			return nil, fmt.Errorf("%w: manager %s", apperrors.ErrNotFound, *req.ManagerID)
		}
		user.ManagerID = req.ManagerID
	}

	user.LastUpdatedAt = time.Now()
	user.LastUpdatedBy = requestingUserID

	if err := s.userRepo.UpdateUser(ctx, *user); err != nil {
		s.LogError(ctx, err, "failed to update user", "user_id", userID)
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

func (s *userService) UpdateRefreshToken(ctx context.Context, userID string, refreshTokenHash string, refreshTokenExpiryTime time.Time) error {
	if err := s.userRepo.UpdateRefreshToken(ctx, userID, &refreshTokenHash, &refreshTokenExpiryTime); err != nil {
		return fmt.Errorf("failed to update refresh token: %w", err)
	}
	return nil
}

func (s *userService) ClearRefreshToken(ctx context.Context, userID string) error {
	if err := s.userRepo.UpdateRefreshToken(ctx, userID, nil, nil); err != nil {
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}
	return nil
}

func (s *userService) DeleteUser(ctx context.Context, userID string, requestingUserID string) error {
	requester, err := s.GetUserByID(ctx, requestingUserID)
	if err != nil {
		return err
	}
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.RequireSameCompany(requester, user.CompanyID); err != nil {
		return err
	}
	if err := s.RequireRole(requester, domain.RoleAdmin); err != nil {
		return err
	}

	if err := s.userRepo.MarkUserDeleted(ctx, userID, time.Now(), requestingUserID); err != nil {
		s.LogError(ctx, err, "failed to delete user", "user_id", userID)
		return fmt.Errorf("failed to delete user: %w", err)
	}
	s.LogInfo(ctx, "user deleted", "user_id", userID)
	return nil
}

// AuthenticateUser authenticates a user with username and password.
func (s *userService) AuthenticateUser(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	// The same error for unknown user and wrong password keeps login
	// responses from disclosing which usernames exist.
	if user == nil || user.AuthProvider != domain.AuthProviderLocal {
		return nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrUnauthorized)
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrUnauthorized)
	}
	return user, nil
}

// GetOrProvisionOAuthUser resolves a Google identity to a user, linking a
// local account with the same email on first provider sign-in.
func (s *userService) GetOrProvisionOAuthUser(ctx context.Context, info domain.GoogleUserInfo) (*domain.User, error) {
	user, err := s.userRepo.FindUserByProviderID(ctx, domain.AuthProviderGoogle, info.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up provider identity: %w", err)
	}
	if user != nil {
		return user, nil
	}

	// Fall back to email: links a pre-provisioned local account.
	user, err = s.userRepo.FindUserByUsername(ctx, info.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user by email: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: no account for %s", apperrors.ErrUnauthorized, info.Email)
	}

	user.AuthProvider = domain.AuthProviderGoogle
	user.ProviderID = &info.ID
	user.LastUpdatedAt = time.Now()
	user.LastUpdatedBy = user.UserID
	if err := s.userRepo.UpdateUser(ctx, *user); err != nil {
		return nil, fmt.Errorf("failed to link provider identity: %w", err)
	}
	s.LogInfo(ctx, "linked google identity", "user_id", user.UserID)
	return user, nil
}

func (s *userService) RoleOf(ctx context.Context, userID string) (domain.Role, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.Role, nil
}

func (s *userService) CountUsersWithRole(ctx context.Context, companyID string, role domain.Role) (int, error) {
	count, err := s.userRepo.CountUsersWithRole(ctx, companyID, role)
	if err != nil {
		return 0, fmt.Errorf("failed to count users with role: %w", err)
	}
	return count, nil
}

// EligibleCountsForPolicy maps each of a policy's levels to the number of
// company users holding that level's required role. Counts are fetched per
// distinct role so repeated roles cost one query.
func (s *userService) EligibleCountsForPolicy(ctx context.Context, companyID string, policy domain.WorkflowPolicy) (map[int]int, error) {
	byRole := make(map[domain.Role]int)
	counts := make(map[int]int, len(policy.Levels))
	for _, lvl := range policy.Levels {
		if _, seen := byRole[lvl.RequiredRole]; !seen {
			count, err := s.userRepo.CountUsersWithRole(ctx, companyID, lvl.RequiredRole)
			if err != nil {
				return nil, fmt.Errorf("failed to count eligible approvers for level %d: %w", lvl.Level, err)
			}
			byRole[lvl.RequiredRole] = count
		}
		counts[lvl.Level] = byRole[lvl.RequiredRole]
	}
	return counts, nil
}
