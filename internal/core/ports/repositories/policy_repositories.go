package repositories

import (
	"context"

	"github.com/expenseflow/expenseflow-backend/internal/core/domain"
)

// PolicyReader defines read operations for workflow policy data
type PolicyReader interface {
	// FindPolicyByID retrieves a specific policy by its ID.
	FindPolicyByID(ctx context.Context, policyID string) (*domain.WorkflowPolicy, error)

	// FindActivePolicyByCompany retrieves the company's currently active policy.
	FindActivePolicyByCompany(ctx context.Context, companyID string) (*domain.WorkflowPolicy, error)

	// ListPoliciesByCompany retrieves all policies defined by a company.
	ListPoliciesByCompany(ctx context.Context, companyID string) ([]domain.WorkflowPolicy, error)
}

// PolicyWriter defines write operations for workflow policy data
type PolicyWriter interface {
	// SavePolicy persists a new policy.
	SavePolicy(ctx context.Context, policy domain.WorkflowPolicy) error

	// UpdatePolicy updates an existing policy's levels and rules.
	UpdatePolicy(ctx context.Context, policy domain.WorkflowPolicy) error

	// SetActivePolicy marks one policy as the company's active policy.
	SetActivePolicy(ctx context.Context, companyID string, policyID string, updatedByUserID string) error
}

// PolicyRepositoryFacade combines all policy-related repository interfaces
type PolicyRepositoryFacade interface {
	PolicyReader
	PolicyWriter
}
