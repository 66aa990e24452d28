package workflow

import (
	"errors"
	"testing"

	"github.com/expenseflow/expenseflow-backend/internal/apperrors"
	"github.com/expenseflow/expenseflow-backend/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAcceptsWellFormedPolicy(t *testing.T) {
	policy := threeLevelPolicy()
	policy.Rules.PercentageApproval = intPtr(60)
	policy.Rules.SpecificApprovers = []string{"cfo-1"}
	policy.Rules.AutoApprovalLimit = decPtr("100")

	eligible := map[domain.Role]int{
		domain.RoleManager:  5,
		domain.RoleFinance:  2,
		domain.RoleDirector: 1,
	}
	assert.NoError(t, Validate(policy, eligible))
}

func TestValidateRejectsMalformedPolicies(t *testing.T) {
	eligible := map[domain.Role]int{domain.RoleManager: 5}

	tests := []struct {
		name   string
		mutate func(p *domain.WorkflowPolicy)
	}{
		{"no levels", func(p *domain.WorkflowPolicy) { p.Levels = nil }},
		{"non-contiguous levels", func(p *domain.WorkflowPolicy) { p.Levels[1].Level = 5 }},
		{"unknown role", func(p *domain.WorkflowPolicy) { p.Levels[0].RequiredRole = "WIZARD" }},
		{"negative threshold", func(p *domain.WorkflowPolicy) { p.Levels[0].Threshold = decPtr("-1") }},
		{"decreasing thresholds", func(p *domain.WorkflowPolicy) { p.Levels[1].Threshold = decPtr("500") }},
		{"percentage over 100", func(p *domain.WorkflowPolicy) { p.Rules.PercentageApproval = intPtr(101) }},
		{"percentage under 1", func(p *domain.WorkflowPolicy) { p.Rules.PercentageApproval = intPtr(0) }},
		{"empty designated approver ID", func(p *domain.WorkflowPolicy) { p.Rules.SpecificApprovers = []string{""} }},
		{"negative auto-approval limit", func(p *domain.WorkflowPolicy) { p.Rules.AutoApprovalLimit = decPtr("-5") }},
		{"auto-approval limit above lowest threshold", func(p *domain.WorkflowPolicy) { p.Rules.AutoApprovalLimit = decPtr("1500") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := threeLevelPolicy()
			tt.mutate(&policy)
			err := Validate(policy, eligible)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrPolicyInvalid))
		})
	}
}

func TestValidateRejectsUnsatisfiablePercentage(t *testing.T) {
	// Every level's role has at most one holder; a percentage rule could
	// never require more than one approval anywhere.
	policy := threeLevelPolicy()
	policy.Rules.PercentageApproval = intPtr(60)

	eligible := map[domain.Role]int{
		domain.RoleManager:  1,
		domain.RoleFinance:  1,
		domain.RoleDirector: 0,
	}
	err := Validate(policy, eligible)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrPolicyInvalid))
}
