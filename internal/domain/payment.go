package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentType string

const (
	// PaymentTypePayment pays money out to the customer: the branch wallet
	// decreases and the customer loan increases.
	PaymentTypePayment PaymentType = "payment"
	// PaymentTypeReceipt collects money from the customer: the branch wallet
	// increases and the customer loan decreases.
	PaymentTypeReceipt PaymentType = "receipt"
)

func (t PaymentType) IsValid() bool {
	return t == PaymentTypePayment || t == PaymentTypeReceipt
}

type DiscountType string

const (
	DiscountTypeNone    DiscountType = ""
	DiscountTypeAmount  DiscountType = "amount"
	DiscountTypePercent DiscountType = "percent"
)

func (t DiscountType) IsValid() bool {
	return t == DiscountTypeNone || t == DiscountTypeAmount || t == DiscountTypePercent
}

// Payment is an immutable ledger entry once its balance effects are applied.
// ExchangeRate is the payment currency's rate captured at creation; reversal
// on update/delete always converts with this snapshot, never the live rate.
//
// Loan and Result hold the same value (the customer loan projected after this
// payment). Both columns are kept because downstream consumers read both.
type Payment struct {
	ID              int64
	CustomerID      int64
	BranchID        int64
	EmployeeID      int64
	UserID          int64
	Type            PaymentType
	Amount          decimal.Decimal
	CurrencyID      int64
	ExchangeRate    decimal.Decimal
	DiscountType    DiscountType
	DiscountValue   decimal.Decimal
	DiscountResult  decimal.Decimal
	Loan            decimal.Decimal
	Result          decimal.Decimal
	PaymentMethod   string
	ReferenceNumber string
	Note            string
	PaymentDate     time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       *time.Time
}

type PaymentFilter struct {
	StartDate       time.Time
	EndDate         time.Time
	CustomerID      int64
	EmployeeID      int64
	BranchID        int64
	CurrencyID      int64
	PaymentMethod   string
	Type            PaymentType
	ReferenceNumber string
	UserID          int64
	SortBy          string
	SortOrder       string
	Page            int
	PageSize        int
}
