// Package workflow contains the approval workflow engine: pure functions that
// decide how a submitted expense moves through a company's approval chain.
//
// The resolver is a synchronous decision function over an immutable snapshot
// (policy + ledger so far + incoming entry). It holds no state and performs no
// I/O; appends to a single expense's ledger are serialized by the storage
// layer, so the resolver itself needs no locking.
package workflow

import (
	"fmt"

	"github.com/expenseflow/expenseflow-backend/internal/apperrors"
	"github.com/expenseflow/expenseflow-backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Resolution is the resolver's verdict for an expense: its status and, while
// pending, which level must act next and how far quorum has progressed.
type Resolution struct {
	Status           domain.ExpenseStatus
	CurrentLevel     int         // 0 once terminal
	RequiredRole     domain.Role // role required at CurrentLevel
	ApprovalsAtLevel int         // distinct approvals recorded at CurrentLevel
	QuorumRequired   int         // approvals needed to clear CurrentLevel
}

// AutoApproved reports whether a normalized amount resolves without any human
// approval under the policy's auto-approval limit.
func AutoApproved(policy domain.WorkflowPolicy, normalized decimal.Decimal) bool {
	limit := policy.Rules.AutoApprovalLimit
	return limit != nil && normalized.LessThanOrEqual(*limit)
}

// InitialLevel returns the level a freshly submitted expense starts at: the
// lowest level whose threshold covers the normalized amount. Levels without a
// threshold always apply. When the amount exceeds every configured threshold
// the highest level applies.
func InitialLevel(policy domain.WorkflowPolicy, normalized decimal.Decimal) int {
	for _, lvl := range policy.Levels {
		if levelApplies(lvl, normalized) {
			return lvl.Level
		}
	}
	if len(policy.Levels) == 0 {
		return 0
	}
	return policy.Levels[len(policy.Levels)-1].Level
}

// levelApplies reports whether a level must act on the given amount.
func levelApplies(lvl domain.PolicyLevel, normalized decimal.Decimal) bool {
	return lvl.Threshold == nil || lvl.Threshold.GreaterThanOrEqual(normalized)
}

// nextLevel returns the next level after the given one that still must act,
// or 0 when the chain is exhausted. A threshold is an approval ceiling: an
// amount within the lowest covering level's ceiling is fully resolved once
// that level clears, so later threshold-bearing levels are never consulted.
// Levels without a threshold apply to every amount and always act.
func nextLevel(policy domain.WorkflowPolicy, after int) int {
	for _, lvl := range policy.Levels {
		if lvl.Level > after && lvl.Threshold == nil {
			return lvl.Level
		}
	}
	return 0
}

// quorumRequired computes the approvals needed to clear a level: 1 without a
// percentage rule, otherwise ceil(pct/100 * eligible). A level whose role has
// no eligible approvers on record degrades to a single approval so the chain
// cannot deadlock.
func quorumRequired(policy domain.WorkflowPolicy, eligible int) int {
	pct := policy.Rules.PercentageApproval
	if pct == nil || eligible <= 0 {
		return 1
	}
	required := (*pct*eligible + 99) / 100
	if required < 1 {
		required = 1
	}
	return required
}

// Resolve replays a ledger against a policy and returns the current
// resolution. It is a pure function: resolving the same (policy, amount,
// ledger, eligibility) inputs always yields the same output.
//
// eligibleByLevel maps each configured level to the number of company users
// holding that level's required role, as reported by the user directory.
func Resolve(policy domain.WorkflowPolicy, normalized decimal.Decimal, ledger []domain.ApprovalEntry, eligibleByLevel map[int]int) Resolution {
	if AutoApproved(policy, normalized) {
		return Resolution{Status: domain.ExpenseApproved}
	}

	current := InitialLevel(policy, normalized)
	if current == 0 {
		// No levels configured at all; nothing to wait for.
		return Resolution{Status: domain.ExpenseApproved}
	}

	approvedBy := make(map[string]bool)
	for _, entry := range ledger {
		switch entry.Decision {
		case domain.DecisionAuto:
			return Resolution{Status: domain.ExpenseApproved}
		case domain.DecisionReject:
			// A single reject anywhere in the chain vetoes the expense.
			return Resolution{Status: domain.ExpenseRejected}
		case domain.DecisionApprove:
			if policy.Rules.IsDesignatedApprover(entry.ApproverID) {
				// Designated override short-circuits the remaining chain.
				return Resolution{Status: domain.ExpenseApproved}
			}
			if entry.Level != current {
				// Entries for cleared levels; distinctness only matters
				// within the current level.
				continue
			}
			approvedBy[entry.ApproverID] = true
			if len(approvedBy) >= quorumRequired(policy, eligibleByLevel[current]) {
				current = nextLevel(policy, current)
				if current == 0 {
					return Resolution{Status: domain.ExpenseApproved}
				}
				approvedBy = make(map[string]bool)
			}
		}
	}

	res := Resolution{
		Status:           domain.ExpensePending,
		CurrentLevel:     current,
		ApprovalsAtLevel: len(approvedBy),
		QuorumRequired:   quorumRequired(policy, eligibleByLevel[current]),
	}
	if lvl := policy.LevelByNumber(current); lvl != nil {
		res.RequiredRole = lvl.RequiredRole
	}
	return res
}

// Apply validates an incoming approval entry against the current resolution
// and returns the resolution after the entry. The ledger passed in is not
// mutated; on error it must not be extended by the caller either.
//
// Checks run in fixed precedence: terminal/stale level first, then approver
// authorization (designated override beats role membership), then the
// decision itself.
func Apply(policy domain.WorkflowPolicy, normalized decimal.Decimal, ledger []domain.ApprovalEntry, entry domain.ApprovalEntry, actorRole domain.Role, eligibleByLevel map[int]int) (Resolution, error) {
	current := Resolve(policy, normalized, ledger, eligibleByLevel)
	if current.Status.IsTerminal() {
		return Resolution{}, fmt.Errorf("%w: expense already %s", apperrors.ErrStaleLevel, current.Status)
	}
	if entry.Level != current.CurrentLevel {
		return Resolution{}, fmt.Errorf("%w: entry targets level %d but level %d is current", apperrors.ErrStaleLevel, entry.Level, current.CurrentLevel)
	}

	designated := policy.Rules.IsDesignatedApprover(entry.ApproverID)
	if !designated && actorRole != current.RequiredRole {
		return Resolution{}, fmt.Errorf("%w: level %d requires role %s", apperrors.ErrUnauthorizedApprover, current.CurrentLevel, current.RequiredRole)
	}

	if entry.Decision == domain.DecisionApprove && !designated {
		for _, prior := range ledger {
			if prior.Level == entry.Level && prior.ApproverID == entry.ApproverID && prior.Decision == domain.DecisionApprove {
				return Resolution{}, fmt.Errorf("%w: approver %s already approved level %d", apperrors.ErrDuplicate, entry.ApproverID, entry.Level)
			}
		}
	}

	extended := make([]domain.ApprovalEntry, 0, len(ledger)+1)
	extended = append(extended, ledger...)
	extended = append(extended, entry)
	return Resolve(policy, normalized, extended, eligibleByLevel), nil
}
