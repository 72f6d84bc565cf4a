package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type InvoiceType string

const (
	// InvoiceTypeDirect is a walk-in sale with no customer record. The stored
	// customer id is forced to zero and the customer loan is never touched;
	// only the branch wallet moves.
	InvoiceTypeDirect InvoiceType = "direct"
	// InvoiceTypeCash is a sale to a known customer settled immediately: the
	// branch wallet increases.
	InvoiceTypeCash InvoiceType = "cash"
	// InvoiceTypeCredit is a sale on account: the customer loan increases.
	InvoiceTypeCredit InvoiceType = "credit"
)

func (t InvoiceType) IsValid() bool {
	return t == InvoiceTypeDirect || t == InvoiceTypeCash || t == InvoiceTypeCredit
}

// SellInvoice is the sale header. ExchangeRate snapshots the sell currency's
// rate at creation, Loan snapshots the customer's loan at creation (zero for
// direct sales).
type SellInvoice struct {
	ID                  int64
	Type                InvoiceType
	InvoiceNumber       string
	InvoiceDate         time.Time
	TotalAmount         decimal.Decimal
	CustomerID          int64
	BranchID            int64
	WarehouseID         int64
	EmployeeID          int64
	Note                string
	Loan                decimal.Decimal
	CurrencyID          int64
	ExchangeRate        decimal.Decimal
	DiscountType        DiscountType
	DiscountValue       decimal.Decimal
	DiscountResult      decimal.Decimal
	PaidAmount          decimal.Decimal
	DirectCustomerName  string
	DirectCustomerPhone string
	CreatedAt           time.Time
	UpdatedAt           time.Time
	DeletedAt           *time.Time
}

type InvoiceFilter struct {
	ID            int64
	StartDate     *time.Time
	EndDate       *time.Time
	BranchID      int64
	WarehouseID   int64
	CustomerID    int64
	Type          InvoiceType
	CurrencyID    int64
	InvoiceNumber string
	SortBy        string
	SortOrder     string
	Page          int
	PageSize      int
}

func (f InvoiceFilter) Empty() bool {
	return f.ID == 0 && f.StartDate == nil && f.EndDate == nil &&
		f.BranchID == 0 && f.WarehouseID == 0 && f.CustomerID == 0 &&
		f.Type == "" && f.CurrencyID == 0 && f.InvoiceNumber == ""
}

// SellItem is a sale line. BaseQuantity is Quantity multiplied by the item
// unit's conversion factor and is the only quantity that ever touches stock.
type SellItem struct {
	ID           int64
	InvoiceID    int64
	ItemID       int64
	ItemUnitID   int64
	Quantity     decimal.Decimal
	BaseQuantity decimal.Decimal
	UnitPrice    decimal.Decimal
	TotalAmount  decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}
