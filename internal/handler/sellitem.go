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

type sellItemService interface {
	CreateSellItem(ctx context.Context, it *domain.SellItem) (*domain.SellItem, error)
	UpdateSellItem(ctx context.Context, it *domain.SellItem) (*domain.SellItem, error)
	DeleteSellItem(ctx context.Context, id int64) error
	GetSellItem(ctx context.Context, id int64) (*domain.SellItem, error)
	ListSellItems(ctx context.Context, invoiceID int64) ([]domain.SellItem, error)
}

type SellItemHandler struct {
	items sellItemService
}

func NewSellItemHandler(items sellItemService) *SellItemHandler {
	return &SellItemHandler{items: items}
}

type sellItemRequest struct {
	InvoiceID  int64           `json:"invoice_id"`
	ItemID     int64           `json:"item_id"`
	ItemUnitID int64           `json:"item_unit_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
}

func (r sellItemRequest) Validate(requireInvoice bool) []FieldError {
	var errs []FieldError

	if requireInvoice && r.InvoiceID <= 0 {
		errs = append(errs, FieldError{Field: "invoice_id", Message: "required"})
	}
	if r.ItemID <= 0 {
		errs = append(errs, FieldError{Field: "item_id", Message: "required"})
	}
	if r.ItemUnitID <= 0 {
		errs = append(errs, FieldError{Field: "item_unit_id", Message: "required"})
	}
	if r.Quantity.Sign() <= 0 {
		errs = append(errs, FieldError{Field: "quantity", Message: "must be greater than 0"})
	}
	if r.UnitPrice.Sign() < 0 {
		errs = append(errs, FieldError{Field: "unit_price", Message: "must not be negative"})
	}

	return errs
}

type sellItemDTO struct {
	ID           int64           `json:"id"`
	InvoiceID    int64           `json:"invoice_id"`
	ItemID       int64           `json:"item_id"`
	ItemUnitID   int64           `json:"item_unit_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	BaseQuantity decimal.Decimal `json:"base_quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func toSellItemDTO(it *domain.SellItem) sellItemDTO {
	return sellItemDTO{
		ID:           it.ID,
		InvoiceID:    it.InvoiceID,
		ItemID:       it.ItemID,
		ItemUnitID:   it.ItemUnitID,
		Quantity:     it.Quantity,
		BaseQuantity: it.BaseQuantity,
		UnitPrice:    it.UnitPrice,
		TotalAmount:  it.TotalAmount,
		CreatedAt:    it.CreatedAt,
		UpdatedAt:    it.UpdatedAt,
	}
}

func (h *SellItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var req sellItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(true); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	it, err := h.items.CreateSellItem(r.Context(), &domain.SellItem{
		InvoiceID:  req.InvoiceID,
		ItemID:     req.ItemID,
		ItemUnitID: req.ItemUnitID,
		Quantity:   req.Quantity,
		UnitPrice:  req.UnitPrice,
	})
	if err != nil {
		log.Warn("sell item creation failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/invoices/items/%d", it.ID))
	RespondSuccess(w, http.StatusCreated, toSellItemDTO(it))
}

func (h *SellItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	id, ok := pathID(r)
	if !ok {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	var req sellItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(false); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	updated, err := h.items.UpdateSellItem(r.Context(), &domain.SellItem{
		ID:         id,
		ItemID:     req.ItemID,
		ItemUnitID: req.ItemUnitID,
		Quantity:   req.Quantity,
		UnitPrice:  req.UnitPrice,
	})
	if err != nil {
		log.Warn("sell item update failed", "sell_item_id", id, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toSellItemDTO(updated))
}

func (h *SellItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	id, ok := pathID(r)
	if !ok {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	if err := h.items.DeleteSellItem(r.Context(), id); err != nil {
		log.Warn("sell item delete failed", "sell_item_id", id, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, map[string]int64{"id": id})
}

func (h *SellItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	it, err := h.items.GetSellItem(r.Context(), id)
	if err != nil {
		logging.FromContext(r.Context()).Warn("sell item lookup failed", "sell_item_id", id, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toSellItemDTO(it))
}

func (h *SellItemHandler) List(w http.ResponseWriter, r *http.Request) {
	invoiceID := queryInt64(r, "invoice_id")
	if invoiceID <= 0 {
		RespondValidationError(w, []FieldError{{Field: "invoice_id", Message: "required"}})
		return
	}

	items, err := h.items.ListSellItems(r.Context(), invoiceID)
	if err != nil {
		logging.FromContext(r.Context()).Warn("sell item list failed", "invoice_id", invoiceID, "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]sellItemDTO, 0, len(items))
	for i := range items {
		dtos = append(dtos, toSellItemDTO(&items[i]))
	}
	RespondSuccess(w, http.StatusOK, dtos)
}
