package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrCustomerNotFound    = errors.New("customer not found")
	ErrBranchNotFound      = errors.New("branch not found")
	ErrWarehouseNotFound   = errors.New("warehouse not found")
	ErrEmployeeNotFound    = errors.New("employee not found")
	ErrInvoiceNotFound     = errors.New("sell invoice not found")
	ErrItemUnitNotFound    = errors.New("item unit not found")
	ErrStockNotFound       = errors.New("stock record not found")
	ErrInvalidCurrency     = errors.New("invalid currency")
	ErrInvalidExchangeRate = errors.New("invalid exchange rate")
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrInvalidType         = errors.New("invalid transaction type")
	ErrNegativeDiscount    = errors.New("discount must not be negative")
	ErrDiscountExceedsLoan = errors.New("discount exceeds customer loan")
	ErrDiscountTooHigh     = errors.New("discount percentage exceeds 100")
	ErrInvalidRequest      = errors.New("invalid request")
	ErrDuplicateName       = errors.New("name already exists")
)
