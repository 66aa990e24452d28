package services

import (
	"context"
	"time"

	"github.com/expenseflow/expenseflow-backend/internal/core/domain"
	"github.com/expenseflow/expenseflow-backend/internal/dto"
)

// UserReaderSvc defines read operations for user data
type UserReaderSvc interface {
	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)

	// GetUserByUsername retrieves a user by username.
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)

	// ListUsers retrieves a paginated list of a company's users.
	ListUsers(ctx context.Context, companyID string, limit, offset int) ([]domain.User, error)
}

// UserWriterSvc defines write operations for user data
type UserWriterSvc interface {
	// CreateUser creates a new user within the requesting admin's company.
	CreateUser(ctx context.Context, req dto.CreateUserRequest, requestingUserID string) (*domain.User, error)

	// CreateOAuthUser creates a user from an external provider identity.
	CreateOAuthUser(ctx context.Context, info domain.GoogleUserInfo, companyID string) (*domain.User, error)

	// UpdateUser updates an existing user.
	UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest, requestingUserID string) (*domain.User, error)

	// UpdateRefreshToken updates the refresh token details for a user.
	UpdateRefreshToken(ctx context.Context, userID string, refreshTokenHash string, refreshTokenExpiryTime time.Time) error

	// ClearRefreshToken clears the refresh token for a user.
	ClearRefreshToken(ctx context.Context, userID string) error
}

// UserLifecycleSvc defines operations for managing user lifecycle
type UserLifecycleSvc interface {
	// DeleteUser marks a user as deleted (soft delete).
	DeleteUser(ctx context.Context, userID string, requestingUserID string) error
}

// UserAuthSvc defines operations for user authentication
type UserAuthSvc interface {
	// AuthenticateUser authenticates a user with username and password.
	AuthenticateUser(ctx context.Context, username, password string) (*domain.User, error)

	// GetOrProvisionOAuthUser finds the user matching a provider identity.
	// A local account with the same email is linked to the provider on first
	// sign-in; an unknown email is rejected since users belong to a company
	// an admin must have added them to.
	GetOrProvisionOAuthUser(ctx context.Context, info domain.GoogleUserInfo) (*domain.User, error)
}

// DirectorySvc exposes the role census the approval engine sizes quorums with.
type DirectorySvc interface {
	// RoleOf returns the role currently held by a user.
	RoleOf(ctx context.Context, userID string) (domain.Role, error)

	// CountUsersWithRole counts a company's active users holding a role.
	CountUsersWithRole(ctx context.Context, companyID string, role domain.Role) (int, error)

	// EligibleCountsForPolicy maps each of a policy's levels to the number of
	// company users holding that level's required role.
	EligibleCountsForPolicy(ctx context.Context, companyID string, policy domain.WorkflowPolicy) (map[int]int, error)
}

// UserSvcFacade combines all user-related service interfaces
type UserSvcFacade interface {
	UserReaderSvc
	UserWriterSvc
	UserLifecycleSvc
	UserAuthSvc
	DirectorySvc
}
