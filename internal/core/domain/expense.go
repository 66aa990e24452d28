package domain

import "time"

// ExpenseStatus is the resolved state of an expense.
type ExpenseStatus string

const (
	ExpensePending  ExpenseStatus = "PENDING"
	ExpenseApproved ExpenseStatus = "APPROVED"
	ExpenseRejected ExpenseStatus = "REJECTED"
)

// IsTerminal reports whether the status admits no further ledger entries.
func (s ExpenseStatus) IsTerminal() bool {
	return s == ExpenseApproved || s == ExpenseRejected
}

// Decision is the kind of an approval ledger entry.
type Decision string

const (
	DecisionApprove Decision = "APPROVE"
	DecisionReject  Decision = "REJECT"
	// DecisionAuto marks the synthetic entry written when an expense resolves
	// below the auto-approval limit with no human involvement.
	DecisionAuto Decision = "AUTO"
)

// ExpenseCategory is the closed set of expense categories.
type ExpenseCategory string

const (
	CategoryTravel     ExpenseCategory = "TRAVEL"
	CategoryMeals      ExpenseCategory = "MEALS"
	CategoryOffice     ExpenseCategory = "OFFICE"
	CategoryTechnology ExpenseCategory = "TECHNOLOGY"
	CategoryMarketing  ExpenseCategory = "MARKETING"
	CategoryOther      ExpenseCategory = "OTHER"
)

// ApprovalEntry is one immutable record in an expense's approval ledger.
// Entries are append-only; the level must equal the level the resolver
// requires at the time the decision is recorded.
type ApprovalEntry struct {
	EntryID    string    `json:"entryID"`
	ExpenseID  string    `json:"expenseID"`
	Level      int       `json:"level"`
	ApproverID string    `json:"approverID"` // empty for DecisionAuto
	Decision   Decision  `json:"decision"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Expense is a submitted reimbursement request together with its approval
// ledger. The expense owns its ledger (same lifetime). PolicyID pins the
// policy the expense was routed under at submission; activating a different
// policy later never moves an in-flight expense, while edits to the pinned
// policy itself apply to it on the next decision.
type Expense struct {
	ExpenseID   string          `json:"expenseID"`
	CompanyID   string          `json:"companyID"`
	SubmitterID string          `json:"submitterID"`
	PolicyID    string          `json:"policyID"`
	Amount      Money           `json:"amount"`
	// NormalizedAmount is the amount converted to company base currency with
	// the rates in effect at submission. Routing and thresholds read this,
	// never the raw amount, and it does not drift with later rate updates.
	NormalizedAmount Money           `json:"normalizedAmount"`
	Category         ExpenseCategory `json:"category"`
	Description      string          `json:"description"`
	ExpenseDate      time.Time       `json:"expenseDate"`
	ReceiptURL       *string         `json:"receiptURL,omitempty"`
	Status           ExpenseStatus   `json:"status"`
	// CurrentLevel is the level the resolver requires next; zero once terminal.
	CurrentLevel int `json:"currentLevel"`
	// Version is bumped on every ledger append. The storage layer uses it for
	// compare-and-swap so two concurrent decisions never observe the same
	// current level.
	Version     int64           `json:"version"`
	Ledger      []ApprovalEntry `json:"ledger"`
	SubmittedAt time.Time       `json:"submittedAt"`
	AuditFields
}
