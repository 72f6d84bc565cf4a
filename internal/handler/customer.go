package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/diyar150/crm-restaurant-backend/internal/domain"
	"github.com/diyar150/crm-restaurant-backend/internal/logging"
)

type customerService interface {
	Create(ctx context.Context, c *domain.Customer) (*domain.Customer, error)
	Update(ctx context.Context, c *domain.Customer) (*domain.Customer, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*domain.Customer, error)
	Filter(ctx context.Context, f domain.CustomerFilter) ([]domain.Customer, error)
}

type CustomerHandler struct {
	customers customerService
}

func NewCustomerHandler(customers customerService) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

type customerRequest struct {
	CategoryID int64            `json:"category_id"`
	Name       string           `json:"name"`
	Phone1     string           `json:"phone1"`
	Phone2     string           `json:"phone2"`
	Address    string           `json:"address"`
	CurrencyID int64            `json:"currency_id"`
	Loan       *decimal.Decimal `json:"loan"`
	Note       string           `json:"note"`
}

func (r customerRequest) Validate() []FieldError {
	var errs []FieldError

	if r.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "required"})
	}
	if r.CurrencyID <= 0 {
		errs = append(errs, FieldError{Field: "currency_id", Message: "required"})
	}

	return errs
}

type customerDTO struct {
	ID         int64           `json:"id"`
	CategoryID int64           `json:"category_id,omitempty"`
	Name       string          `json:"name"`
	Phone1     string          `json:"phone1,omitempty"`
	Phone2     string          `json:"phone2,omitempty"`
	Address    string          `json:"address,omitempty"`
	CurrencyID int64           `json:"currency_id"`
	Loan       decimal.Decimal `json:"loan"`
	Note       string          `json:"note,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func toCustomerDTO(c *domain.Customer) customerDTO {
	return customerDTO{
		ID:         c.ID,
		CategoryID: c.CategoryID,
		Name:       c.Name,
		Phone1:     c.Phone1,
		Phone2:     c.Phone2,
		Address:    c.Address,
		CurrencyID: c.CurrencyID,
		Loan:       c.Loan,
		Note:       c.Note,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var req customerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	c, err := h.customers.Create(r.Context(), &domain.Customer{
		CategoryID: req.CategoryID,
		Name:       req.Name,
		Phone1:     req.Phone1,
		Phone2:     req.Phone2,
		Address:    req.Address,
		CurrencyID: req.CurrencyID,
		Note:       req.Note,
	})
	if err != nil {
		log.Warn("customer creation failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/customers/%d", c.ID))
	RespondSuccess(w, http.StatusCreated, toCustomerDTO(c))
}

func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	id, ok := pathID(r)
	if !ok {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	var req customerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	existing, err := h.customers.Get(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	// An omitted loan keeps the ledger-maintained balance; an explicit value
	// supersedes it.
	loan := existing.Loan
	if req.Loan != nil {
		loan = *req.Loan
	}

	updated, err := h.customers.Update(r.Context(), &domain.Customer{
		ID:         id,
		CategoryID: req.CategoryID,
		Name:       req.Name,
		Phone1:     req.Phone1,
		Phone2:     req.Phone2,
		Address:    req.Address,
		CurrencyID: req.CurrencyID,
		Loan:       loan,
		Note:       req.Note,
	})
	if err != nil {
		log.Warn("customer update failed", "customer_id", id, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toCustomerDTO(updated))
}

func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	id, ok := pathID(r)
	if !ok {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	if err := h.customers.Delete(r.Context(), id); err != nil {
		log.Warn("customer delete failed", "customer_id", id, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, map[string]int64{"id": id})
}

func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	c, err := h.customers.Get(r.Context(), id)
	if err != nil {
		logging.FromContext(r.Context()).Warn("customer lookup failed", "customer_id", id, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toCustomerDTO(c))
}

func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := domain.CustomerFilter{
		Search:       q.Get("search"),
		CategoryID:   queryInt64(r, "category_id"),
		LoanPositive: q.Get("loan") == "positive",
		LoanNegative: q.Get("loan") == "negative",
		LoanZero:     q.Get("loan") == "zero",
		SortBy:       q.Get("sort_by"),
		SortOrder:    q.Get("sort_order"),
		Page:         queryInt(r, "page"),
		PageSize:     queryInt(r, "page_size"),
	}

	customers, err := h.customers.Filter(r.Context(), f)
	if err != nil {
		logging.FromContext(r.Context()).Warn("customer filter failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]customerDTO, 0, len(customers))
	for i := range customers {
		dtos = append(dtos, toCustomerDTO(&customers[i]))
	}
	RespondSuccess(w, http.StatusOK, dtos)
}
