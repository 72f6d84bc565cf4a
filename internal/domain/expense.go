package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense amounts are base currency; creating one decreases the branch
// wallet, deleting restores it, updating adjusts by the difference.
type Expense struct {
	ID          int64
	CategoryID  int64
	Name        string
	Amount      decimal.Decimal
	Note        string
	BranchID    int64
	EmployeeID  int64
	UserID      int64
	ExpenseDate time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

type ExpenseFilter struct {
	StartDate  *time.Time
	EndDate    *time.Time
	CategoryID int64
	Name       string
	BranchID   int64
	EmployeeID int64
	UserID     int64
	SortBy     string
	SortOrder  string
	Page       int
	PageSize   int
}

// Salary follows the same wallet discipline as Expense.
type Salary struct {
	ID         int64
	EmployeeID int64
	BranchID   int64
	Amount     decimal.Decimal
	Note       string
	SalaryDate time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  *time.Time
}

type SalaryFilter struct {
	StartDate  time.Time
	EndDate    time.Time
	EmployeeID int64
	BranchID   int64
	SortBy     string
	SortOrder  string
	Page       int
	PageSize   int
}
