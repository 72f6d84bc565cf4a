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

type paymentService interface {
	CreatePayment(ctx context.Context, p *domain.Payment) (*domain.Payment, error)
	UpdatePayment(ctx context.Context, p *domain.Payment) (*domain.Payment, error)
	DeletePayment(ctx context.Context, id int64) error
	GetPayment(ctx context.Context, id int64) (*domain.Payment, error)
	FilterPayments(ctx context.Context, f domain.PaymentFilter) ([]domain.Payment, error)
}

type PaymentHandler struct {
	payments paymentService
}

func NewPaymentHandler(payments paymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

type paymentRequest struct {
	CustomerID      int64           `json:"customer_id"`
	BranchID        int64           `json:"branch_id"`
	EmployeeID      int64           `json:"employee_id"`
	Type            string          `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	CurrencyID      int64           `json:"currency_id"`
	DiscountType    string          `json:"discount_type"`
	DiscountValue   decimal.Decimal `json:"discount_value"`
	PaymentMethod   string          `json:"payment_method"`
	ReferenceNumber string          `json:"reference_number"`
	Note            string          `json:"note"`
	PaymentDate     time.Time       `json:"payment_date"`
}

func (r paymentRequest) Validate() []FieldError {
	var errs []FieldError

	if r.CustomerID <= 0 {
		errs = append(errs, FieldError{Field: "customer_id", Message: "required"})
	}
	if r.BranchID <= 0 {
		errs = append(errs, FieldError{Field: "branch_id", Message: "required"})
	}
	if r.CurrencyID <= 0 {
		errs = append(errs, FieldError{Field: "currency_id", Message: "required"})
	}
	if r.Type == "" {
		errs = append(errs, FieldError{Field: "type", Message: "required"})
	} else if !domain.PaymentType(r.Type).IsValid() {
		errs = append(errs, FieldError{Field: "type", Message: "must be payment or receipt"})
	}
	if !domain.DiscountType(r.DiscountType).IsValid() {
		errs = append(errs, FieldError{Field: "discount_type", Message: "must be amount or percent"})
	}
	if r.Amount.Sign() <= 0 {
		errs = append(errs, FieldError{Field: "amount", Message: "must be greater than 0"})
	}

	return errs
}

func (r paymentRequest) toDomain(userID int64) *domain.Payment {
	paymentDate := r.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = time.Now().UTC()
	}
	return &domain.Payment{
		CustomerID:      r.CustomerID,
		BranchID:        r.BranchID,
		EmployeeID:      r.EmployeeID,
		UserID:          userID,
		Type:            domain.PaymentType(r.Type),
		Amount:          r.Amount,
		CurrencyID:      r.CurrencyID,
		DiscountType:    domain.DiscountType(r.DiscountType),
		DiscountValue:   r.DiscountValue,
		PaymentMethod:   r.PaymentMethod,
		ReferenceNumber: r.ReferenceNumber,
		Note:            r.Note,
		PaymentDate:     paymentDate,
	}
}

type paymentDTO struct {
	ID              int64           `json:"id"`
	CustomerID      int64           `json:"customer_id"`
	BranchID        int64           `json:"branch_id"`
	EmployeeID      int64           `json:"employee_id,omitempty"`
	UserID          int64           `json:"user_id"`
	Type            string          `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	CurrencyID      int64           `json:"currency_id"`
	ExchangeRate    decimal.Decimal `json:"exchange_rate"`
	DiscountType    string          `json:"discount_type,omitempty"`
	DiscountValue   decimal.Decimal `json:"discount_value"`
	DiscountResult  decimal.Decimal `json:"discount_result"`
	Loan            decimal.Decimal `json:"loan"`
	Result          decimal.Decimal `json:"result"`
	PaymentMethod   string          `json:"payment_method,omitempty"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
	Note            string          `json:"note,omitempty"`
	PaymentDate     time.Time       `json:"payment_date"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func toPaymentDTO(p *domain.Payment) paymentDTO {
	return paymentDTO{
		ID:              p.ID,
		CustomerID:      p.CustomerID,
		BranchID:        p.BranchID,
		EmployeeID:      p.EmployeeID,
		UserID:          p.UserID,
		Type:            string(p.Type),
		Amount:          p.Amount,
		CurrencyID:      p.CurrencyID,
		ExchangeRate:    p.ExchangeRate,
		DiscountType:    string(p.DiscountType),
		DiscountValue:   p.DiscountValue,
		DiscountResult:  p.DiscountResult,
		Loan:            p.Loan,
		Result:          p.Result,
		PaymentMethod:   p.PaymentMethod,
		ReferenceNumber: p.ReferenceNumber,
		Note:            p.Note,
		PaymentDate:     p.PaymentDate,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func toPaymentDTOs(payments []domain.Payment) []paymentDTO {
	dtos := make([]paymentDTO, 0, len(payments))
	for i := range payments {
		dtos = append(dtos, toPaymentDTO(&payments[i]))
	}
	return dtos
}

func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	p, err := h.payments.CreatePayment(r.Context(), req.toDomain(userID))
	if err != nil {
		log.Warn("payment creation failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/payments/%d", p.ID))
	RespondSuccess(w, http.StatusCreated, toPaymentDTO(p))
}

func (h *PaymentHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	p := req.toDomain(userID)
	p.ID = id

	updated, err := h.payments.UpdatePayment(r.Context(), p)
	if err != nil {
		log.Warn("payment update failed", "payment_id", id, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toPaymentDTO(updated))
}

func (h *PaymentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	id, ok := pathID(r)
	if !ok {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	if err := h.payments.DeletePayment(r.Context(), id); err != nil {
		log.Warn("payment delete failed", "payment_id", id, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, map[string]int64{"id": id})
}

func (h *PaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	p, err := h.payments.GetPayment(r.Context(), id)
	if err != nil {
		logging.FromContext(r.Context()).Warn("payment lookup failed", "payment_id", id, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toPaymentDTO(p))
}

func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	start, okStart := queryDate(r, "start_date")
	end, okEnd := queryDate(r, "end_date")
	if !okStart || !okEnd {
		RespondValidationError(w, []FieldError{
			{Field: "start_date", Message: "required date range"},
			{Field: "end_date", Message: "required date range"},
		})
		return
	}

	f := domain.PaymentFilter{
		StartDate:       start,
		EndDate:         end,
		CustomerID:      queryInt64(r, "customer_id"),
		EmployeeID:      queryInt64(r, "employee_id"),
		BranchID:        queryInt64(r, "branch_id"),
		CurrencyID:      queryInt64(r, "currency_id"),
		PaymentMethod:   r.URL.Query().Get("payment_method"),
		Type:            domain.PaymentType(r.URL.Query().Get("type")),
		ReferenceNumber: r.URL.Query().Get("reference_number"),
		UserID:          queryInt64(r, "user_id"),
		SortBy:          r.URL.Query().Get("sort_by"),
		SortOrder:       r.URL.Query().Get("sort_order"),
		Page:            queryInt(r, "page"),
		PageSize:        queryInt(r, "page_size"),
	}

	payments, err := h.payments.FilterPayments(r.Context(), f)
	if err != nil {
		logging.FromContext(r.Context()).Warn("payment filter failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toPaymentDTOs(payments))
}
