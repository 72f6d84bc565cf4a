package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diyar150/crm-restaurant-backend/internal/auth"
	"github.com/diyar150/crm-restaurant-backend/internal/domain"
)

type stubPaymentService struct {
	createFn func(ctx context.Context, p *domain.Payment) (*domain.Payment, error)
	deleteFn func(ctx context.Context, id int64) error
}

func (s *stubPaymentService) CreatePayment(ctx context.Context, p *domain.Payment) (*domain.Payment, error) {
	return s.createFn(ctx, p)
}

func (s *stubPaymentService) UpdatePayment(ctx context.Context, p *domain.Payment) (*domain.Payment, error) {
	return nil, nil
}

func (s *stubPaymentService) DeletePayment(ctx context.Context, id int64) error {
	return s.deleteFn(ctx, id)
}

func (s *stubPaymentService) GetPayment(ctx context.Context, id int64) (*domain.Payment, error) {
	return nil, domain.ErrNotFound
}

func (s *stubPaymentService) FilterPayments(ctx context.Context, f domain.PaymentFilter) ([]domain.Payment, error) {
	return nil, nil
}

func authedRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	return req.WithContext(auth.ContextWithUserID(req.Context(), 1))
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestPaymentCreate_Success(t *testing.T) {
	svc := &stubPaymentService{
		createFn: func(ctx context.Context, p *domain.Payment) (*domain.Payment, error) {
			require.Equal(t, int64(1), p.UserID)
			p.ID = 42
			p.Result = decimal.NewFromInt(400)
			return p, nil
		},
	}
	h := NewPaymentHandler(svc)

	rec := httptest.NewRecorder()
	h.Create(rec, authedRequest(http.MethodPost, "/api/v1/payments",
		`{"customer_id":5,"branch_id":2,"currency_id":1,"type":"receipt","amount":"100"}`))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "/api/v1/payments/42", rec.Header().Get("Location"))
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
}

func TestPaymentCreate_ValidationErrors(t *testing.T) {
	h := NewPaymentHandler(&stubPaymentService{})

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{name: "missing customer", body: `{"branch_id":2,"currency_id":1,"type":"receipt","amount":"100"}`, field: "customer_id"},
		{name: "bad type", body: `{"customer_id":5,"branch_id":2,"currency_id":1,"type":"transfer","amount":"100"}`, field: "type"},
		{name: "bad discount type", body: `{"customer_id":5,"branch_id":2,"currency_id":1,"type":"receipt","amount":"100","discount_type":"rebate"}`, field: "discount_type"},
		{name: "zero amount", body: `{"customer_id":5,"branch_id":2,"currency_id":1,"type":"receipt","amount":"0"}`, field: "amount"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Create(rec, authedRequest(http.MethodPost, "/api/v1/payments", tc.body))

			require.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decodeResponse(t, rec)
			require.NotNil(t, resp.Error)
			assert.Equal(t, "VALIDATION_FAILED", resp.Error.Code)
			assert.Contains(t, rec.Body.String(), tc.field)
		})
	}
}

func TestPaymentCreate_DomainErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "customer missing", err: domain.ErrCustomerNotFound, wantStatus: http.StatusBadRequest, wantCode: "INVALID_CUSTOMER"},
		{name: "discount exceeds loan", err: domain.ErrDiscountExceedsLoan, wantStatus: http.StatusUnprocessableEntity, wantCode: "DISCOUNT_EXCEEDS_LOAN"},
		{name: "bad exchange rate", err: domain.ErrInvalidExchangeRate, wantStatus: http.StatusBadRequest, wantCode: "INVALID_EXCHANGE_RATE"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubPaymentService{
				createFn: func(ctx context.Context, p *domain.Payment) (*domain.Payment, error) {
					return nil, tc.err
				},
			}
			h := NewPaymentHandler(svc)

			rec := httptest.NewRecorder()
			h.Create(rec, authedRequest(http.MethodPost, "/api/v1/payments",
				`{"customer_id":5,"branch_id":2,"currency_id":1,"type":"receipt","amount":"100"}`))

			require.Equal(t, tc.wantStatus, rec.Code)
			resp := decodeResponse(t, rec)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tc.wantCode, resp.Error.Code)
		})
	}
}

func TestPaymentCreate_Unauthenticated(t *testing.T) {
	h := NewPaymentHandler(&stubPaymentService{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", strings.NewReader(`{}`))
	h.Create(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPaymentDelete_NotFound(t *testing.T) {
	svc := &stubPaymentService{
		deleteFn: func(ctx context.Context, id int64) error { return domain.ErrNotFound },
	}
	h := NewPaymentHandler(svc)

	rec := httptest.NewRecorder()
	req := authedRequest(http.MethodDelete, "/api/v1/payments/7", "")
	req.SetPathValue("id", "7")
	h.Delete(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}
