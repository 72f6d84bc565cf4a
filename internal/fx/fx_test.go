package fx

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diyar150/crm-restaurant-backend/internal/domain"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func currency(id int64, code, rate string, base bool) *domain.Currency {
	return &domain.Currency{ID: id, Code: code, ExchangeRate: dec(rate), IsBase: base}
}

func TestConvertRate(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		fromRate string
		toRate   string
		want     string
		wantErr  error
	}{
		{
			// 90 EUR at 0.9 EUR per base into USD at 1 per base.
			name:   "euro payment into base dollars",
			amount: "90", fromRate: "0.9", toRate: "1",
			want: "100",
		},
		{
			name:   "base dollars into dinar",
			amount: "100", fromRate: "1", toRate: "1310",
			want: "131000",
		},
		{
			name:   "dinar into euro",
			amount: "131000", fromRate: "1310", toRate: "0.9",
			want: "90",
		},
		{
			name:   "zero from rate",
			amount: "50", fromRate: "0", toRate: "1",
			wantErr: domain.ErrInvalidExchangeRate,
		},
		{
			name:   "negative to rate",
			amount: "50", fromRate: "1", toRate: "-0.5",
			wantErr: domain.ErrInvalidExchangeRate,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ConvertRate(dec(tc.amount), dec(tc.fromRate), dec(tc.toRate))

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(dec(tc.want)), "got %s, want %s", got, tc.want)
		})
	}
}

func TestConvertSameCurrencyPassthrough(t *testing.T) {
	eur := currency(2, "EUR", "0.9", false)

	// Same id means no multiply at all, even with an awkward amount.
	amount := dec("33.333333333333")
	got, err := Convert(amount, eur, eur)
	require.NoError(t, err)
	assert.True(t, got.Equal(amount))
}

func TestConvertCrossCurrency(t *testing.T) {
	usd := currency(1, "USD", "1", true)
	eur := currency(2, "EUR", "0.9", false)

	got, err := Convert(dec("90"), eur, usd)
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("100")), "got %s", got)

	_, err = Convert(dec("90"), currency(3, "BAD", "0", false), usd)
	require.ErrorIs(t, err, domain.ErrInvalidExchangeRate)
}

type stubCurrencyStore struct {
	byID map[int64]*domain.Currency
	base *domain.Currency
}

func (s *stubCurrencyStore) GetByID(_ context.Context, id int64) (*domain.Currency, error) {
	if c, ok := s.byID[id]; ok {
		return c, nil
	}
	return nil, domain.ErrNotFound
}

func (s *stubCurrencyStore) GetBase(_ context.Context) (*domain.Currency, error) {
	if s.base == nil {
		return nil, domain.ErrNotFound
	}
	return s.base, nil
}

func TestResolver(t *testing.T) {
	usd := currency(1, "USD", "1", true)
	store := &stubCurrencyStore{byID: map[int64]*domain.Currency{1: usd}, base: usd}
	r := NewResolver(store)
	ctx := context.Background()

	got, err := r.Resolve(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, usd, got)

	_, err = r.Resolve(ctx, 99)
	require.ErrorIs(t, err, domain.ErrInvalidCurrency)

	base, err := r.ResolveBase(ctx)
	require.NoError(t, err)
	assert.True(t, base.IsBase)

	store.base = nil
	_, err = r.ResolveBase(ctx)
	require.ErrorIs(t, err, domain.ErrInvalidCurrency)
}
