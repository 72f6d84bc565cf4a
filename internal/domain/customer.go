package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer carries a running loan balance denominated in the customer's own
// currency. Loan is positive when the customer owes the business; the sign is
// maintained only through the IncreaseLoan/DecreaseLoan mutators.
type Customer struct {
	ID         int64
	CategoryID int64
	Name       string
	Phone1     string
	Phone2     string
	Address    string
	CurrencyID int64
	Loan       decimal.Decimal
	Note       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  *time.Time
}

type CustomerFilter struct {
	Search       string
	CategoryID   int64
	LoanPositive bool
	LoanNegative bool
	LoanZero     bool
	SortBy       string
	SortOrder    string
	Page         int
	PageSize     int
}
