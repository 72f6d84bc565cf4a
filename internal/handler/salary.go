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

type salaryService interface {
	Create(ctx context.Context, s *domain.Salary) (*domain.Salary, error)
	Update(ctx context.Context, s *domain.Salary) (*domain.Salary, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*domain.Salary, error)
	Filter(ctx context.Context, f domain.SalaryFilter) ([]domain.Salary, int, error)
}

type SalaryHandler struct {
	salaries salaryService
}

func NewSalaryHandler(salaries salaryService) *SalaryHandler {
	return &SalaryHandler{salaries: salaries}
}

type salaryRequest struct {
	EmployeeID int64           `json:"employee_id"`
	BranchID   int64           `json:"branch_id"`
	Amount     decimal.Decimal `json:"amount"`
	Note       string          `json:"note"`
	SalaryDate time.Time       `json:"salary_date"`
}

func (r salaryRequest) Validate() []FieldError {
	var errs []FieldError

	if r.EmployeeID <= 0 {
		errs = append(errs, FieldError{Field: "employee_id", Message: "required"})
	}
	if r.BranchID <= 0 {
		errs = append(errs, FieldError{Field: "branch_id", Message: "required"})
	}
	if r.Amount.Sign() <= 0 {
		errs = append(errs, FieldError{Field: "amount", Message: "must be greater than 0"})
	}

	return errs
}

func (r salaryRequest) toDomain() *domain.Salary {
	salaryDate := r.SalaryDate
	if salaryDate.IsZero() {
		salaryDate = time.Now().UTC()
	}
	return &domain.Salary{
		EmployeeID: r.EmployeeID,
		BranchID:   r.BranchID,
		Amount:     r.Amount,
		Note:       r.Note,
		SalaryDate: salaryDate,
	}
}

type salaryDTO struct {
	ID         int64           `json:"id"`
	EmployeeID int64           `json:"employee_id"`
	BranchID   int64           `json:"branch_id"`
	Amount     decimal.Decimal `json:"amount"`
	Note       string          `json:"note,omitempty"`
	SalaryDate time.Time       `json:"salary_date"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func toSalaryDTO(s *domain.Salary) salaryDTO {
	return salaryDTO{
		ID:         s.ID,
		EmployeeID: s.EmployeeID,
		BranchID:   s.BranchID,
		Amount:     s.Amount,
		Note:       s.Note,
		SalaryDate: s.SalaryDate,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}

type salaryListResponse struct {
	Salaries []salaryDTO `json:"salaries"`
	Total    int         `json:"total"`
}

func (h *SalaryHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var req salaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	s, err := h.salaries.Create(r.Context(), req.toDomain())
	if err != nil {
		log.Warn("salary creation failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/salaries/%d", s.ID))
	RespondSuccess(w, http.StatusCreated, toSalaryDTO(s))
}

func (h *SalaryHandler) Update(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	id, ok := pathID(r)
	if !ok {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	var req salaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	s := req.toDomain()
	s.ID = id

	updated, err := h.salaries.Update(r.Context(), s)
	if err != nil {
		log.Warn("salary update failed", "salary_id", id, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toSalaryDTO(updated))
}

func (h *SalaryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	id, ok := pathID(r)
	if !ok {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	if err := h.salaries.Delete(r.Context(), id); err != nil {
		log.Warn("salary delete failed", "salary_id", id, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, map[string]int64{"id": id})
}

func (h *SalaryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	s, err := h.salaries.Get(r.Context(), id)
	if err != nil {
		logging.FromContext(r.Context()).Warn("salary lookup failed", "salary_id", id, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toSalaryDTO(s))
}

func (h *SalaryHandler) List(w http.ResponseWriter, r *http.Request) {
	start, okStart := queryDate(r, "start_date")
	end, okEnd := queryDate(r, "end_date")
	if !okStart || !okEnd {
		RespondValidationError(w, []FieldError{
			{Field: "start_date", Message: "required date range"},
			{Field: "end_date", Message: "required date range"},
		})
		return
	}

	f := domain.SalaryFilter{
		StartDate:  start,
		EndDate:    end,
		EmployeeID: queryInt64(r, "employee_id"),
		BranchID:   queryInt64(r, "branch_id"),
		SortBy:     r.URL.Query().Get("sort_by"),
		SortOrder:  r.URL.Query().Get("sort_order"),
		Page:       queryInt(r, "page"),
		PageSize:   queryInt(r, "page_size"),
	}

	salaries, total, err := h.salaries.Filter(r.Context(), f)
	if err != nil {
		logging.FromContext(r.Context()).Warn("salary filter failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]salaryDTO, 0, len(salaries))
	for i := range salaries {
		dtos = append(dtos, toSalaryDTO(&salaries[i]))
	}
	RespondSuccess(w, http.StatusOK, salaryListResponse{Salaries: dtos, Total: total})
}
