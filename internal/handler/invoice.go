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

type invoiceService interface {
	CreateInvoice(ctx context.Context, inv *domain.SellInvoice) (*domain.SellInvoice, error)
	UpdateInvoice(ctx context.Context, inv *domain.SellInvoice) (*domain.SellInvoice, error)
	DeleteInvoice(ctx context.Context, id int64) error
	GetInvoice(ctx context.Context, id int64) (*domain.SellInvoice, error)
	FilterInvoices(ctx context.Context, f domain.InvoiceFilter) ([]domain.SellInvoice, int, error)
}

type InvoiceHandler struct {
	invoices invoiceService
}

func NewInvoiceHandler(invoices invoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices}
}

type invoiceRequest struct {
	Type                string          `json:"type"`
	InvoiceNumber       string          `json:"invoice_number"`
	InvoiceDate         time.Time       `json:"invoice_date"`
	TotalAmount         decimal.Decimal `json:"total_amount"`
	CustomerID          int64           `json:"customer_id"`
	BranchID            int64           `json:"branch_id"`
	WarehouseID         int64           `json:"warehouse_id"`
	EmployeeID          int64           `json:"employee_id"`
	Note                string          `json:"note"`
	CurrencyID          int64           `json:"currency_id"`
	DiscountType        string          `json:"discount_type"`
	DiscountValue       decimal.Decimal `json:"discount_value"`
	PaidAmount          decimal.Decimal `json:"paid_amount"`
	DirectCustomerName  string          `json:"direct_customer_name"`
	DirectCustomerPhone string          `json:"direct_customer_phone"`
}

func (r invoiceRequest) Validate() []FieldError {
	var errs []FieldError

	if r.Type == "" {
		errs = append(errs, FieldError{Field: "type", Message: "required"})
	} else if !domain.InvoiceType(r.Type).IsValid() {
		errs = append(errs, FieldError{Field: "type", Message: "must be direct, cash, or credit"})
	}
	if domain.InvoiceType(r.Type) != domain.InvoiceTypeDirect && r.CustomerID <= 0 {
		errs = append(errs, FieldError{Field: "customer_id", Message: "required for cash and credit sales"})
	}
	if r.BranchID <= 0 {
		errs = append(errs, FieldError{Field: "branch_id", Message: "required"})
	}
	if r.WarehouseID <= 0 {
		errs = append(errs, FieldError{Field: "warehouse_id", Message: "required"})
	}
	if r.CurrencyID <= 0 {
		errs = append(errs, FieldError{Field: "currency_id", Message: "required"})
	}
	if !domain.DiscountType(r.DiscountType).IsValid() {
		errs = append(errs, FieldError{Field: "discount_type", Message: "must be amount or percent"})
	}
	if r.TotalAmount.Sign() <= 0 {
		errs = append(errs, FieldError{Field: "total_amount", Message: "must be greater than 0"})
	}

	return errs
}

func (r invoiceRequest) toDomain() *domain.SellInvoice {
	invoiceDate := r.InvoiceDate
	if invoiceDate.IsZero() {
		invoiceDate = time.Now().UTC()
	}
	return &domain.SellInvoice{
		Type:                domain.InvoiceType(r.Type),
		InvoiceNumber:       r.InvoiceNumber,
		InvoiceDate:         invoiceDate,
		TotalAmount:         r.TotalAmount,
		CustomerID:          r.CustomerID,
		BranchID:            r.BranchID,
		WarehouseID:         r.WarehouseID,
		EmployeeID:          r.EmployeeID,
		Note:                r.Note,
		CurrencyID:          r.CurrencyID,
		DiscountType:        domain.DiscountType(r.DiscountType),
		DiscountValue:       r.DiscountValue,
		PaidAmount:          r.PaidAmount,
		DirectCustomerName:  r.DirectCustomerName,
		DirectCustomerPhone: r.DirectCustomerPhone,
	}
}

type invoiceDTO struct {
	ID                  int64           `json:"id"`
	Type                string          `json:"type"`
	InvoiceNumber       string          `json:"invoice_number,omitempty"`
	InvoiceDate         time.Time       `json:"invoice_date"`
	TotalAmount         decimal.Decimal `json:"total_amount"`
	CustomerID          int64           `json:"customer_id"`
	BranchID            int64           `json:"branch_id"`
	WarehouseID         int64           `json:"warehouse_id"`
	EmployeeID          int64           `json:"employee_id,omitempty"`
	Note                string          `json:"note,omitempty"`
	Loan                decimal.Decimal `json:"loan"`
	CurrencyID          int64           `json:"currency_id"`
	ExchangeRate        decimal.Decimal `json:"exchange_rate"`
	DiscountType        string          `json:"discount_type,omitempty"`
	DiscountValue       decimal.Decimal `json:"discount_value"`
	DiscountResult      decimal.Decimal `json:"discount_result"`
	PaidAmount          decimal.Decimal `json:"paid_amount"`
	DirectCustomerName  string          `json:"direct_customer_name,omitempty"`
	DirectCustomerPhone string          `json:"direct_customer_phone,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

func toInvoiceDTO(inv *domain.SellInvoice) invoiceDTO {
	return invoiceDTO{
		ID:                  inv.ID,
		Type:                string(inv.Type),
		InvoiceNumber:       inv.InvoiceNumber,
		InvoiceDate:         inv.InvoiceDate,
		TotalAmount:         inv.TotalAmount,
		CustomerID:          inv.CustomerID,
		BranchID:            inv.BranchID,
		WarehouseID:         inv.WarehouseID,
		EmployeeID:          inv.EmployeeID,
		Note:                inv.Note,
		Loan:                inv.Loan,
		CurrencyID:          inv.CurrencyID,
		ExchangeRate:        inv.ExchangeRate,
		DiscountType:        string(inv.DiscountType),
		DiscountValue:       inv.DiscountValue,
		DiscountResult:      inv.DiscountResult,
		PaidAmount:          inv.PaidAmount,
		DirectCustomerName:  inv.DirectCustomerName,
		DirectCustomerPhone: inv.DirectCustomerPhone,
		CreatedAt:           inv.CreatedAt,
		UpdatedAt:           inv.UpdatedAt,
	}
}

type invoiceListResponse struct {
	Invoices []invoiceDTO `json:"invoices"`
	Total    int          `json:"total"`
}

func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var req invoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	inv, err := h.invoices.CreateInvoice(r.Context(), req.toDomain())
	if err != nil {
		log.Warn("invoice creation failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/invoices/%d", inv.ID))
	RespondSuccess(w, http.StatusCreated, toInvoiceDTO(inv))
}

func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	id, ok := pathID(r)
	if !ok {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	var req invoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	inv := req.toDomain()
	inv.ID = id

	updated, err := h.invoices.UpdateInvoice(r.Context(), inv)
	if err != nil {
		log.Warn("invoice update failed", "invoice_id", id, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toInvoiceDTO(updated))
}

func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	id, ok := pathID(r)
	if !ok {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	if err := h.invoices.DeleteInvoice(r.Context(), id); err != nil {
		log.Warn("invoice delete failed", "invoice_id", id, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, map[string]int64{"id": id})
}

func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	inv, err := h.invoices.GetInvoice(r.Context(), id)
	if err != nil {
		logging.FromContext(r.Context()).Warn("invoice lookup failed", "invoice_id", id, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toInvoiceDTO(inv))
}

func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	f := domain.InvoiceFilter{
		ID:            queryInt64(r, "id"),
		StartDate:     queryDatePtr(r, "start_date"),
		EndDate:       queryDatePtr(r, "end_date"),
		BranchID:      queryInt64(r, "branch_id"),
		WarehouseID:   queryInt64(r, "warehouse_id"),
		CustomerID:    queryInt64(r, "customer_id"),
		Type:          domain.InvoiceType(r.URL.Query().Get("type")),
		CurrencyID:    queryInt64(r, "currency_id"),
		InvoiceNumber: r.URL.Query().Get("invoice_number"),
		SortBy:        r.URL.Query().Get("sort_by"),
		SortOrder:     r.URL.Query().Get("sort_order"),
		Page:          queryInt(r, "page"),
		PageSize:      queryInt(r, "page_size"),
	}

	invoices, total, err := h.invoices.FilterInvoices(r.Context(), f)
	if err != nil {
		logging.FromContext(r.Context()).Warn("invoice filter failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]invoiceDTO, 0, len(invoices))
	for i := range invoices {
		dtos = append(dtos, toInvoiceDTO(&invoices[i]))
	}
	RespondSuccess(w, http.StatusOK, invoiceListResponse{Invoices: dtos, Total: total})
}
