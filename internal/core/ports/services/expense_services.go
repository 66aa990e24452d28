package services

import (
	"context"

	"github.com/expenseflow/expenseflow-backend/internal/core/domain"
	"github.com/expenseflow/expenseflow-backend/internal/core/workflow"
	"github.com/expenseflow/expenseflow-backend/internal/dto"
)

// ExpenseReaderSvc defines read operations for expense data
type ExpenseReaderSvc interface {
	// GetExpenseByID retrieves an expense with its full approval ledger.
	GetExpenseByID(ctx context.Context, expenseID string, requestingUserID string) (*domain.Expense, error)

	// GetResolutionState replays an expense's ledger and reports where it
	// stands in the approval chain.
	GetResolutionState(ctx context.Context, expenseID string, requestingUserID string) (*workflow.Resolution, error)

	// ListMyExpenses retrieves the requesting user's own expenses.
	ListMyExpenses(ctx context.Context, requestingUserID string, params dto.ListExpensesParams) (*dto.ListExpensesResponse, error)

	// ListPendingApprovals retrieves the expenses awaiting a decision from
	// the requesting user at their role's level.
	ListPendingApprovals(ctx context.Context, requestingUserID string, params dto.ListExpensesParams) (*dto.ListExpensesResponse, error)
}

// ExpenseWriterSvc defines write operations for expense data
type ExpenseWriterSvc interface {
	// SubmitExpense normalizes the amount to company base currency, routes
	// the expense to its initial level under the active policy, and persists
	// it. Amounts within the auto-approval limit are approved immediately.
	SubmitExpense(ctx context.Context, req dto.CreateExpenseRequest, submitterID string) (*domain.Expense, error)

	// RecordDecision validates and appends one approve or reject decision,
	// returning the expense's resolution afterwards.
	RecordDecision(ctx context.Context, expenseID string, req dto.DecisionRequest, approverID string) (*domain.Expense, error)
}

// ExpenseSvcFacade combines all expense-related service interfaces
type ExpenseSvcFacade interface {
	ExpenseReaderSvc
	ExpenseWriterSvc
}
