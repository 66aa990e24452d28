package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/expenseflow/expenseflow-backend/internal/apperrors"
	"github.com/expenseflow/expenseflow-backend/internal/core/domain"
	"github.com/expenseflow/expenseflow-backend/internal/core/fx"
	portsrepo "github.com/expenseflow/expenseflow-backend/internal/core/ports/repositories"
	portssvc "github.com/expenseflow/expenseflow-backend/internal/core/ports/services"
	"github.com/expenseflow/expenseflow-backend/internal/core/workflow"
	"github.com/expenseflow/expenseflow-backend/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// decisionRetries bounds the optimistic-concurrency retry loop when two
// approvers decide on the same expense at once.
const decisionRetries = 3

// expenseService orchestrates expense submission and approval decisions:
// it normalizes amounts to company base currency, routes submissions through
// the active policy and serializes ledger appends via versioned writes.
type expenseService struct {
	BaseService
	expenseRepo portsrepo.ExpenseRepositoryFacade
	companyRepo portsrepo.CompanyRepositoryFacade
	policySvc   portssvc.PolicyReaderSvc
	userSvc     portssvc.UserSvcFacade
	rateSvc     portssvc.RateProviderSvc
}

// NewExpenseService creates a new expense service.
func NewExpenseService(
	expenseRepo portsrepo.ExpenseRepositoryFacade,
	companyRepo portsrepo.CompanyRepositoryFacade,
	policySvc portssvc.PolicyReaderSvc,
	userSvc portssvc.UserSvcFacade,
	rateSvc portssvc.RateProviderSvc,
) portssvc.ExpenseSvcFacade {
	return &expenseService{
		expenseRepo: expenseRepo,
		companyRepo: companyRepo,
		policySvc:   policySvc,
		userSvc:     userSvc,
		rateSvc:     rateSvc,
	}
}

var _ portssvc.ExpenseSvcFacade = (*expenseService)(nil)

// SubmitExpense validates and persists a new expense claim. The submitted
// amount is converted to company base currency with the current rate
// snapshot; that normalized amount is frozen on the expense and drives all
// routing from then on.
func (s *expenseService) SubmitExpense(ctx context.Context, req dto.CreateExpenseRequest, submitterID string) (*domain.Expense, error) {
	submitter, err := s.userSvc.GetUserByID(ctx, submitterID)
	if err != nil {
		return nil, err
	}

	money := domain.NewMoney(req.Amount, req.CurrencyCode)
	if err := money.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}
	if money.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}

	company, err := s.companyRepo.FindCompanyByID(ctx, submitter.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load company: %w", err)
	}
	if company == nil {
		return nil, fmt.Errorf("%w: company %s", apperrors.ErrNotFound, submitter.CompanyID)
	}

	table, err := s.rateSvc.CurrentRates(ctx, company.BaseCurrencyCode)
	if err != nil {
		return nil, err
	}
	normalizedAmount, err := fx.Convert(money.Amount, money.CurrencyCode, company.BaseCurrencyCode, table)
	if err != nil {
		return nil, err
	}
	if normalizedAmount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: amount rounds to zero in %s", apperrors.ErrValidation, company.BaseCurrencyCode)
	}

	policy, err := s.policySvc.GetActivePolicy(ctx, company.CompanyID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	expense := domain.Expense{
		ExpenseID:        uuid.NewString(),
		CompanyID:        company.CompanyID,
		SubmitterID:      submitterID,
		PolicyID:         policy.PolicyID,
		Amount:           money,
		NormalizedAmount: domain.Money{Amount: normalizedAmount, CurrencyCode: company.BaseCurrencyCode},
		Category:         req.Category,
		Description:      req.Description,
		ExpenseDate:      req.ExpenseDate,
		ReceiptURL:       req.ReceiptURL,
		SubmittedAt:      now,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     submitterID,
			LastUpdatedAt: now,
			LastUpdatedBy: submitterID,
		},
	}

	if workflow.AutoApproved(*policy, normalizedAmount) {
		expense.Status = domain.ExpenseApproved
		expense.Ledger = []domain.ApprovalEntry{{
			EntryID:   uuid.NewString(),
			ExpenseID: expense.ExpenseID,
			Decision:  domain.DecisionAuto,
			CreatedAt: now,
		}}
	} else {
		expense.Status = domain.ExpensePending
		expense.CurrentLevel = workflow.InitialLevel(*policy, normalizedAmount)
	}

	if err := s.expenseRepo.SaveExpense(ctx, expense); err != nil {
		s.LogError(ctx, err, "failed to save expense", "submitter_id", submitterID)
		return nil, fmt.Errorf("failed to save expense: %w", err)
	}

	s.LogInfo(ctx, "expense submitted",
		"expense_id", expense.ExpenseID,
		"status", expense.Status,
		"current_level", expense.CurrentLevel,
		"normalized_amount", normalizedAmount.String(),
	)
	return &expense, nil
}

// RecordDecision validates and appends one approve or reject decision. The
// append is guarded by the expense version; on a concurrent append the whole
// read-resolve-append cycle retries against the fresh ledger.
func (s *expenseService) RecordDecision(ctx context.Context, expenseID string, req dto.DecisionRequest, approverID string) (*domain.Expense, error) {
	approver, err := s.userSvc.GetUserByID(ctx, approverID)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < decisionRetries; attempt++ {
		expense, err := s.loadExpense(ctx, expenseID)
		if err != nil {
			return nil, err
		}
		if err := s.RequireSameCompany(approver, expense.CompanyID); err != nil {
			return nil, err
		}
		if expense.SubmitterID == approverID {
			return nil, fmt.Errorf("%w: submitters cannot decide on their own expenses", apperrors.ErrUnauthorizedApprover)
		}

		policy, eligible, err := s.policyContext(ctx, expense)
		if err != nil {
			return nil, err
		}

		// The entry level comes from replaying the ledger, not from the stored
		// column. Policy edits apply to unresolved expenses, so the stored
		// level can be stale; replay re-routes instead of stranding them.
		state := workflow.Resolve(*policy, expense.NormalizedAmount.Amount, expense.Ledger, eligible)
		entry := domain.ApprovalEntry{
			EntryID:    uuid.NewString(),
			ExpenseID:  expense.ExpenseID,
			Level:      state.CurrentLevel,
			ApproverID: approverID,
			Decision:   req.Decision,
			Comment:    req.Comment,
			CreatedAt:  time.Now(),
		}

		resolution, err := workflow.Apply(*policy, expense.NormalizedAmount.Amount, expense.Ledger, entry, approver.Role, eligible)
		if err != nil {
			return nil, err
		}

		err = s.expenseRepo.AppendApprovalEntry(ctx, expense.ExpenseID, expense.Version, entry, resolution.Status, resolution.CurrentLevel)
		if err == nil {
			expense.Ledger = append(expense.Ledger, entry)
			expense.Status = resolution.Status
			expense.CurrentLevel = resolution.CurrentLevel
			expense.Version++
			s.LogInfo(ctx, "decision recorded",
				"expense_id", expense.ExpenseID,
				"decision", req.Decision,
				"status", expense.Status,
				"current_level", expense.CurrentLevel,
			)
			return expense, nil
		}
		if !errors.Is(err, apperrors.ErrConflict) {
			s.LogError(ctx, err, "failed to append approval entry", "expense_id", expenseID)
			return nil, fmt.Errorf("failed to append approval entry: %w", err)
		}
		lastErr = err
		s.LogDebug(ctx, "version conflict on decision, retrying", "expense_id", expenseID, "attempt", attempt+1)
	}

	return nil, fmt.Errorf("expense %s is changing too quickly: %w", expenseID, lastErr)
}

func (s *expenseService) GetExpenseByID(ctx context.Context, expenseID string, requestingUserID string) (*domain.Expense, error) {
	requester, err := s.userSvc.GetUserByID(ctx, requestingUserID)
	if err != nil {
		return nil, err
	}
	expense, err := s.loadExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if err := s.RequireSameCompany(requester, expense.CompanyID); err != nil {
		return nil, err
	}
	// Employees only see their own claims; approver roles see company-wide.
	if requester.Role == domain.RoleEmployee && expense.SubmitterID != requestingUserID {
		return nil, fmt.Errorf("%w: not the submitter", apperrors.ErrForbidden)
	}
	return expense, nil
}

// GetResolutionState replays the stored ledger against the pinned policy and
// reports where the expense stands.
func (s *expenseService) GetResolutionState(ctx context.Context, expenseID string, requestingUserID string) (*workflow.Resolution, error) {
	expense, err := s.GetExpenseByID(ctx, expenseID, requestingUserID)
	if err != nil {
		return nil, err
	}
	policy, eligible, err := s.policyContext(ctx, expense)
	if err != nil {
		return nil, err
	}
	resolution := workflow.Resolve(*policy, expense.NormalizedAmount.Amount, expense.Ledger, eligible)
	return &resolution, nil
}

func (s *expenseService) ListMyExpenses(ctx context.Context, requestingUserID string, params dto.ListExpensesParams) (*dto.ListExpensesResponse, error) {
	limit := normalizeLimit(params.Limit)
	expenses, nextToken, err := s.expenseRepo.ListExpensesBySubmitter(ctx, requestingUserID, limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	return dto.ToListExpensesResponse(expenses, nextToken), nil
}

// ListPendingApprovals lists the company's pending expenses waiting at a
// level the requesting user can act on. Designated approvers see every
// pending level.
func (s *expenseService) ListPendingApprovals(ctx context.Context, requestingUserID string, params dto.ListExpensesParams) (*dto.ListExpensesResponse, error) {
	requester, err := s.userSvc.GetUserByID(ctx, requestingUserID)
	if err != nil {
		return nil, err
	}
	if requester.Role == domain.RoleEmployee {
		return nil, fmt.Errorf("%w: employees have no approval inbox", apperrors.ErrForbidden)
	}

	limit := normalizeLimit(params.Limit)
	expenses, nextToken, err := s.expenseRepo.ListPendingExpensesByCompany(ctx, requester.CompanyID, params.Level, limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending expenses: %w", err)
	}

	// Keep only expenses the requester could actually decide on.
	actionable := make([]domain.Expense, 0, len(expenses))
	for i := range expenses {
		ok, err := s.canDecide(ctx, requester, &expenses[i])
		if err != nil {
			return nil, err
		}
		if ok {
			actionable = append(actionable, expenses[i])
		}
	}
	return dto.ToListExpensesResponse(actionable, nextToken), nil
}

// canDecide reports whether the user is authorized at the expense's current
// level, either by role or as a designated approver. The level is replayed
// from the ledger so a policy edit is reflected immediately.
func (s *expenseService) canDecide(ctx context.Context, user *domain.User, expense *domain.Expense) (bool, error) {
	if expense.SubmitterID == user.UserID {
		return false, nil
	}
	policy, eligible, err := s.policyContext(ctx, expense)
	if err != nil {
		return false, err
	}
	state := workflow.Resolve(*policy, expense.NormalizedAmount.Amount, expense.Ledger, eligible)
	if state.Status.IsTerminal() {
		return false, nil
	}
	if policy.Rules.IsDesignatedApprover(user.UserID) {
		return true, nil
	}
	return state.RequiredRole == user.Role, nil
}

// loadExpense fetches an expense or a typed not-found error.
func (s *expenseService) loadExpense(ctx context.Context, expenseID string) (*domain.Expense, error) {
	expense, err := s.expenseRepo.FindExpenseByID(ctx, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load expense: %w", err)
	}
	if expense == nil {
		return nil, fmt.Errorf("%w: expense %s", apperrors.ErrNotFound, expenseID)
	}
	return expense, nil
}

// policyContext loads the policy an expense was routed under plus the role
// census the resolver sizes quorums with.
func (s *expenseService) policyContext(ctx context.Context, expense *domain.Expense) (*domain.WorkflowPolicy, map[int]int, error) {
	policy, err := s.policySvc.GetPolicyByID(ctx, expense.PolicyID, expense.SubmitterID)
	if err != nil {
		return nil, nil, err
	}
	eligible, err := s.userSvc.EligibleCountsForPolicy(ctx, expense.CompanyID, *policy)
	if err != nil {
		return nil, nil, err
	}
	return policy, eligible, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 100 {
		return 100
	}
	return limit
}
