package workflow

import (
	"fmt"

	"github.com/expenseflow/expenseflow-backend/internal/apperrors"
	"github.com/expenseflow/expenseflow-backend/internal/core/domain"
)

// Validate checks a policy for structural and semantic consistency. It runs
// whenever a policy is created or edited; the resolver assumes it only ever
// receives policies that passed this check.
//
// eligibleByRole maps each role to the number of company users holding it,
// used to reject percentage rules that no level could ever satisfy.
func Validate(policy domain.WorkflowPolicy, eligibleByRole map[domain.Role]int) error {
	if len(policy.Levels) == 0 {
		return fmt.Errorf("%w: policy must define at least one level", apperrors.ErrPolicyInvalid)
	}

	for i, lvl := range policy.Levels {
		if lvl.Level != i+1 {
			return fmt.Errorf("%w: levels must be contiguous starting at 1, got %d at position %d", apperrors.ErrPolicyInvalid, lvl.Level, i)
		}
		if !lvl.RequiredRole.IsValid() {
			return fmt.Errorf("%w: unknown role %q at level %d", apperrors.ErrPolicyInvalid, lvl.RequiredRole, lvl.Level)
		}
		if lvl.Threshold != nil && lvl.Threshold.IsNegative() {
			return fmt.Errorf("%w: negative threshold at level %d", apperrors.ErrPolicyInvalid, lvl.Level)
		}
		if i > 0 {
			prev := policy.Levels[i-1].Threshold
			if prev != nil && lvl.Threshold != nil && lvl.Threshold.LessThan(*prev) {
				return fmt.Errorf("%w: threshold at level %d is lower than level %d", apperrors.ErrPolicyInvalid, lvl.Level, policy.Levels[i-1].Level)
			}
		}
	}

	if pct := policy.Rules.PercentageApproval; pct != nil {
		if *pct < 1 || *pct > 100 {
			return fmt.Errorf("%w: percentageApproval must be in [1,100], got %d", apperrors.ErrPolicyInvalid, *pct)
		}
		multi := false
		for _, lvl := range policy.Levels {
			if eligibleByRole[lvl.RequiredRole] > 1 {
				multi = true
				break
			}
		}
		if !multi {
			return fmt.Errorf("%w: percentageApproval requires a level with more than one eligible approver", apperrors.ErrPolicyInvalid)
		}
	}

	for _, id := range policy.Rules.SpecificApprovers {
		if id == "" {
			return fmt.Errorf("%w: specificApprovers must not contain empty user IDs", apperrors.ErrPolicyInvalid)
		}
	}

	if limit := policy.Rules.AutoApprovalLimit; limit != nil {
		if limit.IsNegative() {
			return fmt.Errorf("%w: autoApprovalLimit must not be negative", apperrors.ErrPolicyInvalid)
		}
		// An auto-approval limit above the lowest threshold would leave a band
		// of amounts that can never reach level 1.
		for _, lvl := range policy.Levels {
			if lvl.Threshold != nil {
				if limit.GreaterThan(*lvl.Threshold) {
					return fmt.Errorf("%w: autoApprovalLimit %s exceeds lowest level threshold %s", apperrors.ErrPolicyInvalid, limit.String(), lvl.Threshold.String())
				}
				break
			}
		}
	}

	return nil
}
