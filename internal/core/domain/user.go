package domain

import "time"

// Role is the closed set of roles a user can hold within a company. Approval
// policy levels reference these roles; resolution checks membership against
// the user directory rather than comparing free-form strings.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleEmployee Role = "EMPLOYEE"
	RoleManager  Role = "MANAGER"
	RoleFinance  Role = "FINANCE"
	RoleDirector Role = "DIRECTOR"
	RoleCFO      Role = "CFO"
	RoleCEO      Role = "CEO"
)

// IsValid reports whether r is one of the recognized roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleEmployee, RoleManager, RoleFinance, RoleDirector, RoleCFO, RoleCEO:
		return true
	}
	return false
}

// AuthProvider identifies how a user authenticates.
type AuthProvider string

const (
	AuthProviderLocal  AuthProvider = "LOCAL"
	AuthProviderGoogle AuthProvider = "GOOGLE"
)

// User represents an employee of a company.
type User struct {
	UserID       string       `json:"userID"`
	CompanyID    string       `json:"companyID"`
	Username     string       `json:"username"`
	Email        string       `json:"email"`
	Name         string       `json:"name"`
	PasswordHash string       `json:"-"`
	Role         Role         `json:"role"`
	ManagerID    *string      `json:"managerID,omitempty"` // FK -> users.user_id
	AuthProvider AuthProvider `json:"authProvider"`
	ProviderID   *string      `json:"-"` // external provider's user ID
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty"`

	// Refresh Token Fields
	RefreshTokenHash       string     `json:"-"`
	RefreshTokenExpiryTime *time.Time `json:"-"`
}

// GoogleUserInfo holds the subset of the Google userinfo payload we consume.
type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
}
