package dto

import (
	"time"

	"github.com/expenseflow/expenseflow-backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PolicyLevelRequest defines one level of an approval chain.
type PolicyLevelRequest struct {
	Level        int              `json:"level" binding:"required,min=1"`
	RequiredRole domain.Role      `json:"requiredRole" binding:"required"`
	Threshold    *decimal.Decimal `json:"threshold"`
}

// ConditionalRulesRequest defines the optional conditional approval rules.
type ConditionalRulesRequest struct {
	PercentageApproval *int             `json:"percentageApproval"`
	SpecificApprovers  []string         `json:"specificApprovers"`
	AutoApprovalLimit  *decimal.Decimal `json:"autoApprovalLimit"`
}

// CreatePolicyRequest defines the data for creating a workflow policy.
type CreatePolicyRequest struct {
	Name   string                   `json:"name" binding:"required,max=100"`
	Levels []PolicyLevelRequest     `json:"levels" binding:"required,min=1,dive"`
	Rules  *ConditionalRulesRequest `json:"rules"`
}

// UpdatePolicyRequest defines the data for replacing a policy's levels and rules.
type UpdatePolicyRequest struct {
	Name   *string                  `json:"name"`
	Levels []PolicyLevelRequest     `json:"levels" binding:"omitempty,min=1,dive"`
	Rules  *ConditionalRulesRequest `json:"rules"`
}

// PolicyLevelResponse defines one level in a policy response.
type PolicyLevelResponse struct {
	Level        int              `json:"level"`
	RequiredRole domain.Role      `json:"requiredRole"`
	Threshold    *decimal.Decimal `json:"threshold,omitempty"`
}

// ConditionalRulesResponse defines the rules section of a policy response.
type ConditionalRulesResponse struct {
	PercentageApproval *int             `json:"percentageApproval,omitempty"`
	SpecificApprovers  []string         `json:"specificApprovers,omitempty"`
	AutoApprovalLimit  *decimal.Decimal `json:"autoApprovalLimit,omitempty"`
}

// PolicyResponse defines the data returned for a workflow policy.
type PolicyResponse struct {
	PolicyID  string                   `json:"policyID"`
	CompanyID string                   `json:"companyID"`
	Name      string                   `json:"name"`
	Levels    []PolicyLevelResponse    `json:"levels"`
	Rules     ConditionalRulesResponse `json:"rules"`
	CreatedAt time.Time                `json:"createdAt"`
}

// ToPolicyLevels converts level requests to domain levels.
func ToPolicyLevels(levels []PolicyLevelRequest) []domain.PolicyLevel {
	out := make([]domain.PolicyLevel, len(levels))
	for i, lvl := range levels {
		out[i] = domain.PolicyLevel{
			Level:        lvl.Level,
			RequiredRole: lvl.RequiredRole,
			Threshold:    lvl.Threshold,
		}
	}
	return out
}

// ToConditionalRules converts a rules request to domain rules. A nil request
// yields empty rules.
func ToConditionalRules(rules *ConditionalRulesRequest) domain.ConditionalRules {
	if rules == nil {
		return domain.ConditionalRules{}
	}
	return domain.ConditionalRules{
		PercentageApproval: rules.PercentageApproval,
		SpecificApprovers:  rules.SpecificApprovers,
		AutoApprovalLimit:  rules.AutoApprovalLimit,
	}
}

// ToPolicyResponse converts a domain.WorkflowPolicy to PolicyResponse DTO.
func ToPolicyResponse(p *domain.WorkflowPolicy) PolicyResponse {
	levels := make([]PolicyLevelResponse, len(p.Levels))
	for i, lvl := range p.Levels {
		levels[i] = PolicyLevelResponse{
			Level:        lvl.Level,
			RequiredRole: lvl.RequiredRole,
			Threshold:    lvl.Threshold,
		}
	}
	return PolicyResponse{
		PolicyID:  p.PolicyID,
		CompanyID: p.CompanyID,
		Name:      p.Name,
		Levels:    levels,
		Rules: ConditionalRulesResponse{
			PercentageApproval: p.Rules.PercentageApproval,
			SpecificApprovers:  p.Rules.SpecificApprovers,
			AutoApprovalLimit:  p.Rules.AutoApprovalLimit,
		},
		CreatedAt: p.CreatedAt,
	}
}

// ToListPolicyResponse converts a slice of domain policies to response DTOs.
func ToListPolicyResponse(policies []domain.WorkflowPolicy) []PolicyResponse {
	responses := make([]PolicyResponse, len(policies))
	for i := range policies {
		responses[i] = ToPolicyResponse(&policies[i])
	}
	return responses
}
