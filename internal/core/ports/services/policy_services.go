package services

import (
	"context"

	"github.com/expenseflow/expenseflow-backend/internal/core/domain"
	"github.com/expenseflow/expenseflow-backend/internal/dto"
)

// PolicyReaderSvc defines read operations for workflow policy data
type PolicyReaderSvc interface {
	// GetPolicyByID retrieves a policy by ID.
	GetPolicyByID(ctx context.Context, policyID string, requestingUserID string) (*domain.WorkflowPolicy, error)

	// GetActivePolicy retrieves the company's active policy.
	GetActivePolicy(ctx context.Context, companyID string) (*domain.WorkflowPolicy, error)

	// ListPolicies retrieves all policies defined by a company.
	ListPolicies(ctx context.Context, companyID string, requestingUserID string) ([]domain.WorkflowPolicy, error)
}

// PolicyWriterSvc defines write operations for workflow policy data
type PolicyWriterSvc interface {
	// CreatePolicy validates and persists a new policy.
	CreatePolicy(ctx context.Context, req dto.CreatePolicyRequest, creatorUserID string) (*domain.WorkflowPolicy, error)

	// UpdatePolicy validates and updates an existing policy. Pending expenses
	// routed under it pick up the edited version on their next decision.
	UpdatePolicy(ctx context.Context, policyID string, req dto.UpdatePolicyRequest, requestingUserID string) (*domain.WorkflowPolicy, error)

	// ActivatePolicy marks a policy as the company's active policy.
	ActivatePolicy(ctx context.Context, policyID string, requestingUserID string) error
}

// PolicySvcFacade combines all policy-related service interfaces
type PolicySvcFacade interface {
	PolicyReaderSvc
	PolicyWriterSvc
}
