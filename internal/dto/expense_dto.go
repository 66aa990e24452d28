package dto

import (
	"time"

	"github.com/expenseflow/expenseflow-backend/internal/core/domain"
	"github.com/expenseflow/expenseflow-backend/internal/core/workflow"
	"github.com/shopspring/decimal"
)

// CreateExpenseRequest defines the data for submitting an expense claim.
type CreateExpenseRequest struct {
	Amount       decimal.Decimal        `json:"amount" binding:"required"`
	CurrencyCode string                 `json:"currencyCode" binding:"required,currencycode"`
	Category     domain.ExpenseCategory `json:"category" binding:"required"`
	Description  string                 `json:"description" binding:"required,max=500"`
	ExpenseDate  time.Time              `json:"expenseDate" binding:"required"`
	ReceiptURL   *string                `json:"receiptURL"`
}

// DecisionRequest defines the data for an approve or reject decision.
type DecisionRequest struct {
	Decision domain.Decision `json:"decision" binding:"required,oneof=APPROVE REJECT"`
	Comment  string          `json:"comment" binding:"max=500"`
}

// ListExpensesParams defines query parameters for listing expenses using
// token-based pagination.
type ListExpensesParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
	Level     *int    `form:"level"`
}

// ApprovalEntryResponse defines the data returned for one ledger entry.
type ApprovalEntryResponse struct {
	EntryID    string          `json:"entryID"`
	Level      int             `json:"level"`
	ApproverID string          `json:"approverID"`
	Decision   domain.Decision `json:"decision"`
	Comment    string          `json:"comment,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// ExpenseResponse defines the data returned for an expense claim.
type ExpenseResponse struct {
	ExpenseID          string                  `json:"expenseID"`
	CompanyID          string                  `json:"companyID"`
	SubmitterID        string                  `json:"submitterID"`
	PolicyID           string                  `json:"policyID"`
	Amount             decimal.Decimal         `json:"amount"`
	CurrencyCode       string                  `json:"currencyCode"`
	NormalizedAmount   decimal.Decimal         `json:"normalizedAmount"`
	NormalizedCurrency string                  `json:"normalizedCurrency"`
	Category           domain.ExpenseCategory  `json:"category"`
	Description        string                  `json:"description"`
	ExpenseDate        time.Time               `json:"expenseDate"`
	ReceiptURL         *string                 `json:"receiptURL,omitempty"`
	Status             domain.ExpenseStatus    `json:"status"`
	CurrentLevel       int                     `json:"currentLevel"`
	Version            int64                   `json:"version"`
	Ledger             []ApprovalEntryResponse `json:"ledger"`
	SubmittedAt        time.Time               `json:"submittedAt"`
}

// ResolutionStateResponse reports where an expense stands in its approval
// chain after replaying the ledger.
type ResolutionStateResponse struct {
	Status           domain.ExpenseStatus `json:"status"`
	CurrentLevel     int                  `json:"currentLevel,omitempty"`
	RequiredRole     domain.Role          `json:"requiredRole,omitempty"`
	ApprovalsAtLevel int                  `json:"approvalsAtLevel"`
	QuorumRequired   int                  `json:"quorumRequired"`
}

// ListExpensesResponse wraps a page of expenses with the token for the next page.
type ListExpensesResponse struct {
	Expenses  []ExpenseResponse `json:"expenses"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ToApprovalEntryResponse converts a domain.ApprovalEntry to ApprovalEntryResponse DTO.
func ToApprovalEntryResponse(e *domain.ApprovalEntry) ApprovalEntryResponse {
	return ApprovalEntryResponse{
		EntryID:    e.EntryID,
		Level:      e.Level,
		ApproverID: e.ApproverID,
		Decision:   e.Decision,
		Comment:    e.Comment,
		CreatedAt:  e.CreatedAt,
	}
}

// ToExpenseResponse converts a domain.Expense to ExpenseResponse DTO.
func ToExpenseResponse(exp *domain.Expense) ExpenseResponse {
	ledger := make([]ApprovalEntryResponse, len(exp.Ledger))
	for i := range exp.Ledger {
		ledger[i] = ToApprovalEntryResponse(&exp.Ledger[i])
	}
	return ExpenseResponse{
		ExpenseID:          exp.ExpenseID,
		CompanyID:          exp.CompanyID,
		SubmitterID:        exp.SubmitterID,
		PolicyID:           exp.PolicyID,
		Amount:             exp.Amount.Amount,
		CurrencyCode:       exp.Amount.CurrencyCode,
		NormalizedAmount:   exp.NormalizedAmount.Amount,
		NormalizedCurrency: exp.NormalizedAmount.CurrencyCode,
		Category:           exp.Category,
		Description:        exp.Description,
		ExpenseDate:        exp.ExpenseDate,
		ReceiptURL:         exp.ReceiptURL,
		Status:             exp.Status,
		CurrentLevel:       exp.CurrentLevel,
		Version:            exp.Version,
		Ledger:             ledger,
		SubmittedAt:        exp.SubmittedAt,
	}
}

// ToListExpensesResponse converts a page of domain expenses to the list DTO.
func ToListExpensesResponse(expenses []domain.Expense, nextToken *string) *ListExpensesResponse {
	responses := make([]ExpenseResponse, len(expenses))
	for i := range expenses {
		responses[i] = ToExpenseResponse(&expenses[i])
	}
	return &ListExpensesResponse{
		Expenses:  responses,
		NextToken: nextToken,
	}
}

// ToResolutionStateResponse converts a workflow.Resolution to its DTO.
func ToResolutionStateResponse(res *workflow.Resolution) ResolutionStateResponse {
	return ResolutionStateResponse{
		Status:           res.Status,
		CurrentLevel:     res.CurrentLevel,
		RequiredRole:     res.RequiredRole,
		ApprovalsAtLevel: res.ApprovalsAtLevel,
		QuorumRequired:   res.QuorumRequired,
	}
}
