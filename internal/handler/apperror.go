package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrMissingToken       = &AppError{http.StatusUnauthorized, "MISSING_TOKEN", "Authorization header required"}
	ErrInvalidToken       = &AppError{http.StatusUnauthorized, "INVALID_TOKEN", "Token is invalid or expired"}
	ErrInvalidCredentials = &AppError{http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password"}
	ErrInvalidRequest     = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body"}
	ErrValidationFailed   = &AppError{http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed"}
	ErrResourceNotFound   = &AppError{http.StatusNotFound, "RESOURCE_NOT_FOUND", "Resource not found"}
	ErrInternalError      = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"}

	ErrInvalidCurrency     = &AppError{http.StatusBadRequest, "INVALID_CURRENCY", "Currency does not exist"}
	ErrInvalidExchangeRate = &AppError{http.StatusBadRequest, "INVALID_EXCHANGE_RATE", "Exchange rate must be greater than zero"}
	ErrInvalidCustomer     = &AppError{http.StatusBadRequest, "INVALID_CUSTOMER", "Customer does not exist"}
	ErrInvalidBranch       = &AppError{http.StatusBadRequest, "INVALID_BRANCH", "Branch does not exist"}
	ErrInvalidWarehouse    = &AppError{http.StatusBadRequest, "INVALID_WAREHOUSE", "Warehouse does not exist"}
	ErrInvalidEmployee     = &AppError{http.StatusBadRequest, "INVALID_EMPLOYEE", "Employee does not exist"}
	ErrInvalidInvoice      = &AppError{http.StatusBadRequest, "INVALID_INVOICE", "Invoice does not exist"}
	ErrInvalidItemUnit     = &AppError{http.StatusBadRequest, "INVALID_ITEM_UNIT", "Item unit does not exist"}
	ErrStockNotFound       = &AppError{http.StatusUnprocessableEntity, "STOCK_NOT_FOUND", "No stock row for this item in the warehouse"}
	ErrInvalidType         = &AppError{http.StatusBadRequest, "INVALID_TYPE", "Unknown transaction type"}
	ErrInvalidAmount       = &AppError{http.StatusBadRequest, "INVALID_AMOUNT", "Amount must be greater than zero"}
	ErrNegativeDiscount    = &AppError{http.StatusBadRequest, "NEGATIVE_DISCOUNT", "Discount cannot be negative"}
	ErrDiscountTooHigh     = &AppError{http.StatusBadRequest, "DISCOUNT_TOO_HIGH", "Percentage discount cannot exceed 100"}
	ErrDiscountExceedsLoan = &AppError{http.StatusUnprocessableEntity, "DISCOUNT_EXCEEDS_LOAN", "Discount exceeds the customer's current loan"}
	ErrDuplicateName       = &AppError{http.StatusConflict, "DUPLICATE_NAME", "A record with this name already exists"}

	ErrIdempotencyConflict = &AppError{http.StatusConflict, "IDEMPOTENCY_CONFLICT", "Idempotency key already used with a different request"}
)
