package domain

import "github.com/shopspring/decimal"

// PolicyLevel is one stage of an approval chain: the role that must act and
// an optional monetary ceiling in company base currency. An expense whose
// normalized amount exceeds a level's threshold skips that level; an expense
// within the lowest covering ceiling is fully resolved once that level
// clears. Levels without a threshold act on every amount.
type PolicyLevel struct {
	Level        int              `json:"level"`
	RequiredRole Role             `json:"requiredRole"`
	Threshold    *decimal.Decimal `json:"threshold,omitempty"`
}

// ConditionalRules are the optional rules layered on top of the plain chain.
type ConditionalRules struct {
	// PercentageApproval, when set, requires a quorum of distinct approvers
	// at each level: ceil(pct/100 * eligible approvers with the level's role).
	PercentageApproval *int `json:"percentageApproval,omitempty"`
	// SpecificApprovers lists user IDs whose single approval resolves the
	// expense to Approved regardless of chain position.
	SpecificApprovers []string `json:"specificApprovers,omitempty"`
	// AutoApprovalLimit, when set, approves expenses at or below this
	// normalized amount with no human action.
	AutoApprovalLimit *decimal.Decimal `json:"autoApprovalLimit,omitempty"`
}

// IsDesignatedApprover reports whether userID is a designated override
// approver under these rules.
func (r ConditionalRules) IsDesignatedApprover(userID string) bool {
	for _, id := range r.SpecificApprovers {
		if id == userID {
			return true
		}
	}
	return false
}

// WorkflowPolicy is a company's approval chain configuration. Policies are
// validated on create/edit; the resolver assumes it only ever sees validated
// policies.
type WorkflowPolicy struct {
	PolicyID  string             `json:"policyID"` // Primary Key (e.g., UUID)
	CompanyID string             `json:"companyID"`
	Name      string             `json:"name"`
	Levels    []PolicyLevel      `json:"levels"`
	Rules     ConditionalRules   `json:"conditionalRules"`
	AuditFields
}

// LevelByNumber returns the configured level with the given number, or nil.
func (p *WorkflowPolicy) LevelByNumber(level int) *PolicyLevel {
	for i := range p.Levels {
		if p.Levels[i].Level == level {
			return &p.Levels[i]
		}
	}
	return nil
}
