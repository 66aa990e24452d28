package repositories

import (
	"context"

	"github.com/expenseflow/expenseflow-backend/internal/core/domain"
)

// ExpenseReader defines read operations for expense data
type ExpenseReader interface {
	// FindExpenseByID retrieves an expense with its full approval ledger.
	FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error)

	// ListExpensesBySubmitter retrieves a paginated list of a user's expenses
	// using token-based pagination, newest first. It returns the expenses, a
	// token for the next page, and an error.
	ListExpensesBySubmitter(ctx context.Context, submitterID string, limit int, nextToken *string) ([]domain.Expense, *string, error)

	// ListPendingExpensesByCompany retrieves a company's pending expenses,
	// optionally narrowed to one approval level.
	ListPendingExpensesByCompany(ctx context.Context, companyID string, level *int, limit int, nextToken *string) ([]domain.Expense, *string, error)
}

// ExpenseWriter defines write operations for expense data
type ExpenseWriter interface {
	// SaveExpense persists a new expense and any initial ledger entries in a
	// single transaction.
	SaveExpense(ctx context.Context, expense domain.Expense) error

	// AppendApprovalEntry appends one ledger entry and moves the expense to
	// newStatus/newLevel, guarded by a compare-and-swap on expectedVersion.
	// It returns apperrors.ErrConflict when the stored version has moved on.
	AppendApprovalEntry(ctx context.Context, expenseID string, expectedVersion int64, entry domain.ApprovalEntry, newStatus domain.ExpenseStatus, newLevel int) error
}

// ExpenseRepositoryFacade combines all expense-related repository interfaces
type ExpenseRepositoryFacade interface {
	ExpenseReader
	ExpenseWriter
}

// ExpenseRepositoryWithTx extends ExpenseRepositoryFacade with transaction capabilities
type ExpenseRepositoryWithTx interface {
	ExpenseRepositoryFacade
	TransactionManager
}
