package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/diyar150/crm-restaurant-backend/internal/domain"
)

type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data"`
	Error   *APIError `json:"error"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func RespondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func RespondSuccess(w http.ResponseWriter, status int, data any) {
	RespondJSON(w, status, APIResponse{
		Success: true,
		Data:    data,
		Error:   nil,
	})
}

func RespondAppError(w http.ResponseWriter, appErr *AppError, details any) {
	RespondJSON(w, appErr.Status, APIResponse{
		Success: false,
		Data:    nil,
		Error: &APIError{
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: details,
		},
	})
}

func RespondValidationError(w http.ResponseWriter, fields []FieldError) {
	RespondAppError(w, ErrValidationFailed, fields)
}

// RespondDomainError maps service sentinels onto the HTTP taxonomy. Missing
// referenced entities (customer, branch, currency) are client errors; only a
// missing target record itself is a 404. Anything unrecognized is a 500 with
// a generic body, the real error goes to the log.
func RespondDomainError(w http.ResponseWriter, err error) {
	var appErr *AppError

	switch {
	case errors.Is(err, domain.ErrCustomerNotFound):
		appErr = ErrInvalidCustomer
	case errors.Is(err, domain.ErrBranchNotFound):
		appErr = ErrInvalidBranch
	case errors.Is(err, domain.ErrWarehouseNotFound):
		appErr = ErrInvalidWarehouse
	case errors.Is(err, domain.ErrEmployeeNotFound):
		appErr = ErrInvalidEmployee
	case errors.Is(err, domain.ErrInvoiceNotFound):
		appErr = ErrInvalidInvoice
	case errors.Is(err, domain.ErrItemUnitNotFound):
		appErr = ErrInvalidItemUnit
	case errors.Is(err, domain.ErrStockNotFound):
		appErr = ErrStockNotFound
	case errors.Is(err, domain.ErrInvalidCurrency):
		appErr = ErrInvalidCurrency
	case errors.Is(err, domain.ErrInvalidExchangeRate):
		appErr = ErrInvalidExchangeRate
	case errors.Is(err, domain.ErrInvalidType):
		appErr = ErrInvalidType
	case errors.Is(err, domain.ErrInvalidAmount):
		appErr = ErrInvalidAmount
	case errors.Is(err, domain.ErrNegativeDiscount):
		appErr = ErrNegativeDiscount
	case errors.Is(err, domain.ErrDiscountTooHigh):
		appErr = ErrDiscountTooHigh
	case errors.Is(err, domain.ErrDiscountExceedsLoan):
		appErr = ErrDiscountExceedsLoan
	case errors.Is(err, domain.ErrDuplicateName):
		appErr = ErrDuplicateName
	case errors.Is(err, domain.ErrInvalidRequest):
		appErr = ErrInvalidRequest
	case errors.Is(err, domain.ErrNotFound):
		appErr = ErrResourceNotFound
	default:
		slog.Error("unhandled domain error", "error", err)
		appErr = ErrInternalError
	}

	RespondAppError(w, appErr, nil)
}
