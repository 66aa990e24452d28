package services

import (
	"context"
	"fmt"
	"time"

	"github.com/expenseflow/expenseflow-backend/internal/apperrors"
	"github.com/expenseflow/expenseflow-backend/internal/core/domain"
	portsrepo "github.com/expenseflow/expenseflow-backend/internal/core/ports/repositories"
	portssvc "github.com/expenseflow/expenseflow-backend/internal/core/ports/services"
	"github.com/expenseflow/expenseflow-backend/internal/core/workflow"
	"github.com/expenseflow/expenseflow-backend/internal/dto"
	"github.com/google/uuid"
)

// policyService manages workflow policies. Every create and update runs the
// full policy validation against the company's current role census.
type policyService struct {
	BaseService
	policyRepo portsrepo.PolicyRepositoryFacade
	userSvc    portssvc.UserSvcFacade
}

// NewPolicyService creates a new policy service.
func NewPolicyService(policyRepo portsrepo.PolicyRepositoryFacade, userSvc portssvc.UserSvcFacade) portssvc.PolicySvcFacade {
	return &policyService{policyRepo: policyRepo, userSvc: userSvc}
}

var _ portssvc.PolicySvcFacade = (*policyService)(nil)

func (s *policyService) GetPolicyByID(ctx context.Context, policyID string, requestingUserID string) (*domain.WorkflowPolicy, error) {
	requester, err := s.userSvc.GetUserByID(ctx, requestingUserID)
	if err != nil {
		return nil, err
	}
	policy, err := s.policyRepo.FindPolicyByID(ctx, policyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get policy: %w", err)
	}
	if policy == nil {
		return nil, fmt.Errorf("%w: policy %s", apperrors.ErrNotFound, policyID)
	}
	if err := s.RequireSameCompany(requester, policy.CompanyID); err != nil {
		return nil, err
	}
	return policy, nil
}

func (s *policyService) GetActivePolicy(ctx context.Context, companyID string) (*domain.WorkflowPolicy, error) {
	policy, err := s.policyRepo.FindActivePolicyByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get active policy: %w", err)
	}
	if policy == nil {
		return nil, fmt.Errorf("%w: company %s has no active policy", apperrors.ErrNotFound, companyID)
	}
	return policy, nil
}

func (s *policyService) ListPolicies(ctx context.Context, companyID string, requestingUserID string) ([]domain.WorkflowPolicy, error) {
	requester, err := s.userSvc.GetUserByID(ctx, requestingUserID)
	if err != nil {
		return nil, err
	}
	if err := s.RequireSameCompany(requester, companyID); err != nil {
		return nil, err
	}

	policies, err := s.policyRepo.ListPoliciesByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list policies: %w", err)
	}
	if policies == nil {
		return []domain.WorkflowPolicy{}, nil
	}
	return policies, nil
}

func (s *policyService) CreatePolicy(ctx context.Context, req dto.CreatePolicyRequest, creatorUserID string) (*domain.WorkflowPolicy, error) {
	creator, err := s.userSvc.GetUserByID(ctx, creatorUserID)
	if err != nil {
		return nil, err
	}
	if err := s.RequireRole(creator, domain.RoleAdmin); err != nil {
		return nil, err
	}

	now := time.Now()
	policy := domain.WorkflowPolicy{
		PolicyID:  uuid.NewString(),
		CompanyID: creator.CompanyID,
		Name:      req.Name,
		Levels:    dto.ToPolicyLevels(req.Levels),
		Rules:     dto.ToConditionalRules(req.Rules),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.validateAgainstDirectory(ctx, &policy); err != nil {
		return nil, err
	}

	if err := s.policyRepo.SavePolicy(ctx, policy); err != nil {
		s.LogError(ctx, err, "failed to save policy", "company_id", creator.CompanyID)
		return nil, fmt.Errorf("failed to save policy: %w", err)
	}

	s.LogInfo(ctx, "policy created", "policy_id", policy.PolicyID, "levels", len(policy.Levels))
	return &policy, nil
}

// UpdatePolicy replaces a policy's levels and rules. Pending expenses routed
// under this policy resolve against the edited version from the next decision
// on; terminal expenses are unaffected.
func (s *policyService) UpdatePolicy(ctx context.Context, policyID string, req dto.UpdatePolicyRequest, requestingUserID string) (*domain.WorkflowPolicy, error) {
	requester, err := s.userSvc.GetUserByID(ctx, requestingUserID)
	if err != nil {
		return nil, err
	}
	if err := s.RequireRole(requester, domain.RoleAdmin); err != nil {
		return nil, err
	}

	policy, err := s.policyRepo.FindPolicyByID(ctx, policyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get policy: %w", err)
	}
	if policy == nil {
		return nil, fmt.Errorf("%w: policy %s", apperrors.ErrNotFound, policyID)
	}
	if err := s.RequireSameCompany(requester, policy.CompanyID); err != nil {
		return nil, err
	}

	if req.Name != nil {
		policy.Name = *req.Name
	}
	if req.Levels != nil {
		policy.Levels = dto.ToPolicyLevels(req.Levels)
	}
	if req.Rules != nil {
		policy.Rules = dto.ToConditionalRules(req.Rules)
	}
	policy.LastUpdatedAt = time.Now()
	policy.LastUpdatedBy = requestingUserID

	if err := s.validateAgainstDirectory(ctx, policy); err != nil {
		return nil, err
	}

	if err := s.policyRepo.UpdatePolicy(ctx, *policy); err != nil {
		s.LogError(ctx, err, "failed to update policy", "policy_id", policyID)
		return nil, fmt.Errorf("failed to update policy: %w", err)
	}
	return policy, nil
}

func (s *policyService) ActivatePolicy(ctx context.Context, policyID string, requestingUserID string) error {
	requester, err := s.userSvc.GetUserByID(ctx, requestingUserID)
	if err != nil {
		return err
	}
	if err := s.RequireRole(requester, domain.RoleAdmin); err != nil {
		return err
	}

	policy, err := s.policyRepo.FindPolicyByID(ctx, policyID)
	if err != nil {
		return fmt.Errorf("failed to get policy: %w", err)
	}
	if policy == nil {
		return fmt.Errorf("%w: policy %s", apperrors.ErrNotFound, policyID)
	}
	if err := s.RequireSameCompany(requester, policy.CompanyID); err != nil {
		return err
	}

	if err := s.policyRepo.SetActivePolicy(ctx, policy.CompanyID, policyID, requestingUserID); err != nil {
		s.LogError(ctx, err, "failed to activate policy", "policy_id", policyID)
		return fmt.Errorf("failed to activate policy: %w", err)
	}
	s.LogInfo(ctx, "policy activated", "policy_id", policyID)
	return nil
}

// validateAgainstDirectory runs the structural policy checks with the
// company's current role counts, including designated approver membership.
func (s *policyService) validateAgainstDirectory(ctx context.Context, policy *domain.WorkflowPolicy) error {
	eligibleByRole := make(map[domain.Role]int)
	for _, lvl := range policy.Levels {
		if _, seen := eligibleByRole[lvl.RequiredRole]; seen {
			continue
		}
		if !lvl.RequiredRole.IsValid() {
			// Leave the unknown-role diagnosis to workflow.Validate.
			continue
		}
		count, err := s.userSvc.CountUsersWithRole(ctx, policy.CompanyID, lvl.RequiredRole)
		if err != nil {
			return err
		}
		eligibleByRole[lvl.RequiredRole] = count
	}

	if err := workflow.Validate(*policy, eligibleByRole); err != nil {
		return err
	}

	// Designated approvers must be existing members of the company.
	for _, approverID := range policy.Rules.SpecificApprovers {
		approver, err := s.userSvc.GetUserByID(ctx, approverID)
		if err != nil {
			return fmt.Errorf("%w: designated approver %s not found", apperrors.ErrPolicyInvalid, approverID)
		}
		if approver.CompanyID != policy.CompanyID {
			return fmt.Errorf("%w: designated approver %s belongs to another company", apperrors.ErrPolicyInvalid, approverID)
		}
	}
	return nil
}
