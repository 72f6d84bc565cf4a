package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/diyar150/crm-restaurant-backend/internal/auth"
	"github.com/diyar150/crm-restaurant-backend/internal/domain"
	"github.com/diyar150/crm-restaurant-backend/internal/logging"
)

type expenseService interface {
	Create(ctx context.Context, e *domain.Expense) (*domain.Expense, error)
	Update(ctx context.Context, e *domain.Expense) (*domain.Expense, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*domain.Expense, error)
	Filter(ctx context.Context, f domain.ExpenseFilter) ([]domain.Expense, int, error)
}

type ExpenseHandler struct {
	expenses expenseService
}

func NewExpenseHandler(expenses expenseService) *ExpenseHandler {
	return &ExpenseHandler{expenses: expenses}
}

type expenseRequest struct {
	CategoryID  int64           `json:"category_id"`
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
	Note        string          `json:"note"`
	BranchID    int64           `json:"branch_id"`
	EmployeeID  int64           `json:"employee_id"`
	ExpenseDate time.Time       `json:"expense_date"`
}

func (r expenseRequest) Validate() []FieldError {
	var errs []FieldError

	if r.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "required"})
	}
	if r.BranchID <= 0 {
		errs = append(errs, FieldError{Field: "branch_id", Message: "required"})
	}
	if r.Amount.Sign() <= 0 {
		errs = append(errs, FieldError{Field: "amount", Message: "must be greater than 0"})
	}

	return errs
}

func (r expenseRequest) toDomain(userID int64) *domain.Expense {
	expenseDate := r.ExpenseDate
	if expenseDate.IsZero() {
		expenseDate = time.Now().UTC()
	}
	return &domain.Expense{
		CategoryID:  r.CategoryID,
		Name:        r.Name,
		Amount:      r.Amount,
		Note:        r.Note,
		BranchID:    r.BranchID,
		EmployeeID:  r.EmployeeID,
		UserID:      userID,
		ExpenseDate: expenseDate,
	}
}

type expenseDTO struct {
	ID          int64           `json:"id"`
	CategoryID  int64           `json:"category_id,omitempty"`
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
	Note        string          `json:"note,omitempty"`
	BranchID    int64           `json:"branch_id"`
	EmployeeID  int64           `json:"employee_id,omitempty"`
	UserID      int64           `json:"user_id"`
	ExpenseDate time.Time       `json:"expense_date"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func toExpenseDTO(e *domain.Expense) expenseDTO {
	return expenseDTO{
		ID:          e.ID,
		CategoryID:  e.CategoryID,
		Name:        e.Name,
		Amount:      e.Amount,
		Note:        e.Note,
		BranchID:    e.BranchID,
		EmployeeID:  e.EmployeeID,
		UserID:      e.UserID,
		ExpenseDate: e.ExpenseDate,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

type expenseListResponse struct {
	Expenses []expenseDTO `json:"expenses"`
	Total    int          `json:"total"`
}

func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	e, err := h.expenses.Create(r.Context(), req.toDomain(userID))
	if err != nil {
		log.Warn("expense creation failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/expenses/%d", e.ID))
	RespondSuccess(w, http.StatusCreated, toExpenseDTO(e))
}

func (h *ExpenseHandler) Update(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	id, ok := pathID(r)
	if !ok {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	e := req.toDomain(userID)
	e.ID = id

	updated, err := h.expenses.Update(r.Context(), e)
	if err != nil {
		log.Warn("expense update failed", "expense_id", id, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toExpenseDTO(updated))
}

func (h *ExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	id, ok := pathID(r)
	if !ok {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	if err := h.expenses.Delete(r.Context(), id); err != nil {
		log.Warn("expense delete failed", "expense_id", id, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, map[string]int64{"id": id})
}

func (h *ExpenseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	e, err := h.expenses.Get(r.Context(), id)
	if err != nil {
		logging.FromContext(r.Context()).Warn("expense lookup failed", "expense_id", id, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toExpenseDTO(e))
}

func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	f := domain.ExpenseFilter{
		StartDate:  queryDatePtr(r, "start_date"),
		EndDate:    queryDatePtr(r, "end_date"),
		CategoryID: queryInt64(r, "category_id"),
		Name:       r.URL.Query().Get("name"),
		BranchID:   queryInt64(r, "branch_id"),
		EmployeeID: queryInt64(r, "employee_id"),
		UserID:     queryInt64(r, "user_id"),
		SortBy:     r.URL.Query().Get("sort_by"),
		SortOrder:  r.URL.Query().Get("sort_order"),
		Page:       queryInt(r, "page"),
		PageSize:   queryInt(r, "page_size"),
	}

	expenses, total, err := h.expenses.Filter(r.Context(), f)
	if err != nil {
		logging.FromContext(r.Context()).Warn("expense filter failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]expenseDTO, 0, len(expenses))
	for i := range expenses {
		dtos = append(dtos, toExpenseDTO(&expenses[i]))
	}
	RespondSuccess(w, http.StatusOK, expenseListResponse{Expenses: dtos, Total: total})
}
