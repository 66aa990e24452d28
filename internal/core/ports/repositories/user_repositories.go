package repositories

import (
	"context"
	"time"

	"github.com/expenseflow/expenseflow-backend/internal/core/domain"
)

// UserReader defines read operations for user data
type UserReader interface {
	// FindUserByID retrieves a specific user by their ID.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// FindUserByUsername retrieves a user by their login username.
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)

	// FindUserByProviderID retrieves a user by external auth provider identity.
	FindUserByProviderID(ctx context.Context, provider domain.AuthProvider, providerID string) (*domain.User, error)

	// ListUsersByCompany retrieves a paginated list of a company's users.
	ListUsersByCompany(ctx context.Context, companyID string, limit int, offset int) ([]domain.User, error)
}

// UserDirectoryReader defines the role-census operations the workflow engine
// needs to size approval quorums.
type UserDirectoryReader interface {
	// CountUsersWithRole counts a company's non-deleted users holding a role.
	CountUsersWithRole(ctx context.Context, companyID string, role domain.Role) (int, error)

	// ListUserIDsWithRole lists the IDs of a company's non-deleted users holding a role.
	ListUserIDsWithRole(ctx context.Context, companyID string, role domain.Role) ([]string, error)
}

// UserWriter defines write operations for user data
type UserWriter interface {
	// SaveUser persists a new user.
	SaveUser(ctx context.Context, user domain.User) error

	// UpdateUser updates an existing user's details.
	UpdateUser(ctx context.Context, user domain.User) error

	// UpdateRefreshToken stores the hash and expiry of a user's refresh token.
	// A nil hash clears the stored token.
	UpdateRefreshToken(ctx context.Context, userID string, tokenHash *string, expiryTime *time.Time) error
}

// UserLifecycleManager defines operations for managing user lifecycle
type UserLifecycleManager interface {
	// MarkUserDeleted marks a user as deleted (soft delete).
	MarkUserDeleted(ctx context.Context, userID string, deletedAt time.Time, deletedBy string) error
}

// UserRepositoryFacade combines all user-related repository interfaces
type UserRepositoryFacade interface {
	UserReader
	UserDirectoryReader
	UserWriter
	UserLifecycleManager
}
