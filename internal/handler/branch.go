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

type branchService interface {
	Create(ctx context.Context, b *domain.Branch) (*domain.Branch, error)
	Get(ctx context.Context, id int64) (*domain.Branch, error)
	List(ctx context.Context) ([]domain.Branch, error)
}

type BranchHandler struct {
	branches branchService
}

func NewBranchHandler(branches branchService) *BranchHandler {
	return &BranchHandler{branches: branches}
}

type branchRequest struct {
	CompanyID int64  `json:"company_id"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	City      string `json:"city"`
}

func (r branchRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "required"})
	}
	return errs
}

type branchDTO struct {
	ID        int64           `json:"id"`
	CompanyID int64           `json:"company_id,omitempty"`
	Name      string          `json:"name"`
	Address   string          `json:"address,omitempty"`
	City      string          `json:"city,omitempty"`
	Wallet    decimal.Decimal `json:"wallet"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func toBranchDTO(b *domain.Branch) branchDTO {
	return branchDTO{
		ID:        b.ID,
		CompanyID: b.CompanyID,
		Name:      b.Name,
		Address:   b.Address,
		City:      b.City,
		Wallet:    b.Wallet,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func (h *BranchHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var req branchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	b, err := h.branches.Create(r.Context(), &domain.Branch{
		CompanyID: req.CompanyID,
		Name:      req.Name,
		Address:   req.Address,
		City:      req.City,
	})
	if err != nil {
		log.Warn("branch creation failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/branches/%d", b.ID))
	RespondSuccess(w, http.StatusCreated, toBranchDTO(b))
}

func (h *BranchHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	b, err := h.branches.Get(r.Context(), id)
	if err != nil {
		logging.FromContext(r.Context()).Warn("branch lookup failed", "branch_id", id, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toBranchDTO(b))
}

func (h *BranchHandler) List(w http.ResponseWriter, r *http.Request) {
	branches, err := h.branches.List(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Warn("branch list failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]branchDTO, 0, len(branches))
	for i := range branches {
		dtos = append(dtos, toBranchDTO(&branches[i]))
	}
	RespondSuccess(w, http.StatusOK, dtos)
}
