package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/expenseflow/expenseflow-backend/internal/apperrors"
	"github.com/expenseflow/expenseflow-backend/internal/core/domain"
	portsrepo "github.com/expenseflow/expenseflow-backend/internal/core/ports/repositories"
	"github.com/expenseflow/expenseflow-backend/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const expenseColumns = `expense_id, company_id, submitter_id, policy_id,
	amount, currency_code, normalized_amount, normalized_currency_code,
	category, description, expense_date, receipt_url, status, current_level, version,
	submitted_at, created_at, created_by, last_updated_at, last_updated_by`

// PgxExpenseRepository stores expenses and their append-only approval
// ledgers. Ledger appends go through a compare-and-swap on the expense
// version so concurrent decisions on one expense serialize.
type PgxExpenseRepository struct {
	BaseRepository
}

func newPgxExpenseRepository(db *pgxpool.Pool) portsrepo.ExpenseRepositoryFacade {
	return &PgxExpenseRepository{BaseRepository: BaseRepository{Pool: db}}
}

var _ portsrepo.ExpenseRepositoryFacade = (*PgxExpenseRepository)(nil)

func scanExpense(row pgx.Row) (*domain.Expense, error) {
	var exp domain.Expense
	err := row.Scan(
		&exp.ExpenseID,
		&exp.CompanyID,
		&exp.SubmitterID,
		&exp.PolicyID,
		&exp.Amount.Amount,
		&exp.Amount.CurrencyCode,
		&exp.NormalizedAmount.Amount,
		&exp.NormalizedAmount.CurrencyCode,
		&exp.Category,
		&exp.Description,
		&exp.ExpenseDate,
		&exp.ReceiptURL,
		&exp.Status,
		&exp.CurrentLevel,
		&exp.Version,
		&exp.SubmittedAt,
		&exp.CreatedAt,
		&exp.CreatedBy,
		&exp.LastUpdatedAt,
		&exp.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &exp, nil
}

// SaveExpense persists a new expense and any initial ledger entries (the
// synthetic auto-approval entry) in one transaction.
func (r *PgxExpenseRepository) SaveExpense(ctx context.Context, expense domain.Expense) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	query := `
		INSERT INTO expenses (` + expenseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20);
	`
	_, err = tx.Exec(ctx, query,
		expense.ExpenseID,
		expense.CompanyID,
		expense.SubmitterID,
		expense.PolicyID,
		expense.Amount.Amount,
		expense.Amount.CurrencyCode,
		expense.NormalizedAmount.Amount,
		expense.NormalizedAmount.CurrencyCode,
		expense.Category,
		expense.Description,
		expense.ExpenseDate,
		expense.ReceiptURL,
		expense.Status,
		expense.CurrentLevel,
		expense.Version,
		expense.SubmittedAt,
		expense.CreatedAt,
		expense.CreatedBy,
		expense.LastUpdatedAt,
		expense.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for _, entry := range expense.Ledger {
		if err := insertApprovalEntry(ctx, tx, expense.ExpenseID, entry); err != nil {
			return err
		}
	}

	return r.Commit(ctx, tx)
}

// AppendApprovalEntry appends one ledger entry and moves the expense to its
// new status and level. The UPDATE matches on expectedVersion; zero affected
// rows means another decision landed first and surfaces as ErrConflict.
func (r *PgxExpenseRepository) AppendApprovalEntry(ctx context.Context, expenseID string, expectedVersion int64, entry domain.ApprovalEntry, newStatus domain.ExpenseStatus, newLevel int) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	query := `
		UPDATE expenses
		SET status = $3, current_level = $4, version = version + 1,
		    last_updated_at = $5, last_updated_by = $6
		WHERE expense_id = $1 AND version = $2;
	`
	tag, err := tx.Exec(ctx, query,
		expenseID,
		expectedVersion,
		newStatus,
		newLevel,
		entry.CreatedAt,
		entry.ApproverID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense for ledger append: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: expense %s moved past version %d", apperrors.ErrConflict, expenseID, expectedVersion)
	}

	if err := insertApprovalEntry(ctx, tx, expenseID, entry); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

func insertApprovalEntry(ctx context.Context, tx pgx.Tx, expenseID string, entry domain.ApprovalEntry) error {
	query := `
		INSERT INTO approval_entries (entry_id, expense_id, level, approver_id, decision, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := tx.Exec(ctx, query,
		entry.EntryID,
		expenseID,
		entry.Level,
		nullifyEmpty(entry.ApproverID),
		entry.Decision,
		entry.Comment,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert approval entry: %w", err)
	}
	return nil
}

// nullifyEmpty maps the empty approver of a synthetic auto entry to NULL so
// the foreign key to users holds.
func nullifyEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r *PgxExpenseRepository) FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE expense_id = $1;`
	expense, err := scanExpense(r.Pool.QueryRow(ctx, query, expenseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find expense %s: %w", expenseID, err)
	}

	ledger, err := r.findLedger(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	expense.Ledger = ledger
	return expense, nil
}

func (r *PgxExpenseRepository) findLedger(ctx context.Context, expenseID string) ([]domain.ApprovalEntry, error) {
	query := `
		SELECT entry_id, expense_id, level, approver_id, decision, comment, created_at
		FROM approval_entries
		WHERE expense_id = $1
		ORDER BY created_at ASC, entry_id ASC;
	`
	rows, err := r.Pool.Query(ctx, query, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load approval ledger: %w", err)
	}
	defer rows.Close()

	var ledger []domain.ApprovalEntry
	for rows.Next() {
		var entry domain.ApprovalEntry
		var approverID *string
		if err := rows.Scan(
			&entry.EntryID,
			&entry.ExpenseID,
			&entry.Level,
			&approverID,
			&entry.Decision,
			&entry.Comment,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan approval entry: %w", err)
		}
		if approverID != nil {
			entry.ApproverID = *approverID
		}
		ledger = append(ledger, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating approval entries: %w", err)
	}
	return ledger, nil
}

// ListExpensesBySubmitter pages a user's expenses newest first with keyset
// pagination on (submitted_at, expense_id).
func (r *PgxExpenseRepository) ListExpensesBySubmitter(ctx context.Context, submitterID string, limit int, nextToken *string) ([]domain.Expense, *string, error) {
	args := []any{submitterID}
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE submitter_id = $1`

	if nextToken != nil && *nextToken != "" {
		submittedAt, expenseID, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		query += ` AND (submitted_at, expense_id) < ($2, $3)`
		args = append(args, submittedAt, expenseID)
	}

	query += fmt.Sprintf(` ORDER BY submitted_at DESC, expense_id DESC LIMIT %d;`, limit+1)
	return r.listExpenses(ctx, query, args, limit)
}

// ListPendingExpensesByCompany pages a company's pending expenses, optionally
// narrowed to one approval level.
func (r *PgxExpenseRepository) ListPendingExpensesByCompany(ctx context.Context, companyID string, level *int, limit int, nextToken *string) ([]domain.Expense, *string, error) {
	args := []any{companyID, domain.ExpensePending}
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE company_id = $1 AND status = $2`

	if level != nil {
		args = append(args, *level)
		query += fmt.Sprintf(` AND current_level = $%d`, len(args))
	}
	if nextToken != nil && *nextToken != "" {
		submittedAt, expenseID, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		args = append(args, submittedAt, expenseID)
		query += fmt.Sprintf(` AND (submitted_at, expense_id) < ($%d, $%d)`, len(args)-1, len(args))
	}

	query += fmt.Sprintf(` ORDER BY submitted_at DESC, expense_id DESC LIMIT %d;`, limit+1)
	return r.listExpenses(ctx, query, args, limit)
}

// listExpenses runs a page query fetching limit+1 rows to detect whether a
// next page exists, then loads each page row's ledger.
func (r *PgxExpenseRepository) listExpenses(ctx context.Context, query string, args []any, limit int) ([]domain.Expense, *string, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	expenses := make([]domain.Expense, 0, limit+1)
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan expense row: %w", err)
		}
		expenses = append(expenses, *expense)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating expense rows: %w", err)
	}

	var nextToken *string
	if len(expenses) > limit {
		expenses = expenses[:limit]
		last := expenses[len(expenses)-1]
		token := pagination.EncodeToken(last.SubmittedAt, last.ExpenseID)
		nextToken = &token
	}

	for i := range expenses {
		ledger, err := r.findLedger(ctx, expenses[i].ExpenseID)
		if err != nil {
			return nil, nil, err
		}
		expenses[i].Ledger = ledger
	}
	return expenses, nextToken, nil
}
