package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diyar150/crm-restaurant-backend/internal/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestValidatePayment(t *testing.T) {
	tests := []struct {
		name    string
		payment *domain.Payment
		wantErr error
	}{
		{
			name:    "valid payment",
			payment: &domain.Payment{Type: domain.PaymentTypePayment, Amount: dec("100")},
		},
		{
			name:    "valid receipt with percent discount",
			payment: &domain.Payment{Type: domain.PaymentTypeReceipt, Amount: dec("50"), DiscountType: domain.DiscountTypePercent},
		},
		{
			name:    "unknown type",
			payment: &domain.Payment{Type: domain.PaymentType("transfer"), Amount: dec("100")},
			wantErr: domain.ErrInvalidType,
		},
		{
			name:    "empty type",
			payment: &domain.Payment{Amount: dec("100")},
			wantErr: domain.ErrInvalidType,
		},
		{
			name:    "unknown discount type",
			payment: &domain.Payment{Type: domain.PaymentTypePayment, Amount: dec("100"), DiscountType: domain.DiscountType("rebate")},
			wantErr: domain.ErrInvalidType,
		},
		{
			name:    "zero amount",
			payment: &domain.Payment{Type: domain.PaymentTypePayment, Amount: decimal.Zero},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "negative amount",
			payment: &domain.Payment{Type: domain.PaymentTypeReceipt, Amount: dec("-1")},
			wantErr: domain.ErrInvalidAmount,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := validatePayment(tc.payment)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestValidateInvoice(t *testing.T) {
	tests := []struct {
		name    string
		invoice *domain.SellInvoice
		wantErr error
	}{
		{
			name:    "valid direct sale without customer",
			invoice: &domain.SellInvoice{Type: domain.InvoiceTypeDirect, TotalAmount: dec("100")},
		},
		{
			name:    "valid credit sale",
			invoice: &domain.SellInvoice{Type: domain.InvoiceTypeCredit, TotalAmount: dec("100"), CustomerID: 7},
		},
		{
			name:    "unknown type",
			invoice: &domain.SellInvoice{Type: domain.InvoiceType("wholesale"), TotalAmount: dec("100"), CustomerID: 7},
			wantErr: domain.ErrInvalidType,
		},
		{
			name:    "unknown discount type",
			invoice: &domain.SellInvoice{Type: domain.InvoiceTypeCash, TotalAmount: dec("100"), CustomerID: 7, DiscountType: domain.DiscountType("rebate")},
			wantErr: domain.ErrInvalidType,
		},
		{
			name:    "zero total",
			invoice: &domain.SellInvoice{Type: domain.InvoiceTypeCash, TotalAmount: decimal.Zero, CustomerID: 7},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "cash sale without customer",
			invoice: &domain.SellInvoice{Type: domain.InvoiceTypeCash, TotalAmount: dec("100")},
			wantErr: domain.ErrInvalidRequest,
		},
		{
			name:    "credit sale without customer",
			invoice: &domain.SellInvoice{Type: domain.InvoiceTypeCredit, TotalAmount: dec("100")},
			wantErr: domain.ErrInvalidRequest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := validateInvoice(tc.invoice)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestComputeDiscount(t *testing.T) {
	tests := []struct {
		name    string
		typ     domain.DiscountType
		value   string
		amount  string
		want    string
		wantErr error
	}{
		{name: "none ignores value", typ: domain.DiscountTypeNone, value: "50", amount: "100", want: "0"},
		{name: "percent of amount", typ: domain.DiscountTypePercent, value: "10", amount: "250", want: "25"},
		{name: "percent zero", typ: domain.DiscountTypePercent, value: "0", amount: "250", want: "0"},
		{name: "percent full", typ: domain.DiscountTypePercent, value: "100", amount: "250", want: "250"},
		{name: "percent over 100", typ: domain.DiscountTypePercent, value: "100.01", amount: "250", wantErr: domain.ErrDiscountTooHigh},
		{name: "percent negative", typ: domain.DiscountTypePercent, value: "-5", amount: "250", wantErr: domain.ErrNegativeDiscount},
		{name: "fixed amount passes through", typ: domain.DiscountTypeAmount, value: "40", amount: "250", want: "40"},
		{name: "fixed amount negative", typ: domain.DiscountTypeAmount, value: "-40", amount: "250", wantErr: domain.ErrNegativeDiscount},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := computeDiscount(tc.typ, dec(tc.value), dec(tc.amount))

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(dec(tc.want)), "got %s want %s", got, tc.want)
		})
	}
}

func TestValidateDiscountBound(t *testing.T) {
	tests := []struct {
		name     string
		typ      domain.DiscountType
		discount string
		loan     string
		wantErr  error
	}{
		{name: "within loan", typ: domain.DiscountTypeAmount, discount: "50", loan: "100"},
		{name: "equal to loan", typ: domain.DiscountTypeAmount, discount: "100", loan: "100"},
		{name: "exceeds loan", typ: domain.DiscountTypeAmount, discount: "100.01", loan: "100", wantErr: domain.ErrDiscountExceedsLoan},
		{name: "exceeds negative loan by magnitude", typ: domain.DiscountTypeAmount, discount: "60", loan: "-50", wantErr: domain.ErrDiscountExceedsLoan},
		{name: "within negative loan magnitude", typ: domain.DiscountTypeAmount, discount: "40", loan: "-50"},
		{name: "percent never bound-checked", typ: domain.DiscountTypePercent, discount: "500", loan: "10"},
		{name: "no discount", typ: domain.DiscountTypeNone, discount: "0", loan: "0"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := validateDiscountBound(tc.typ, dec(tc.discount), dec(tc.loan))

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestConvertSnapshot(t *testing.T) {
	usd := &domain.Currency{ID: 1, Code: "USD", ExchangeRate: dec("1")}
	eur := &domain.Currency{ID: 2, Code: "EUR", ExchangeRate: dec("0.9")}

	t.Run("same currency passes through", func(t *testing.T) {
		got, err := convertSnapshot(dec("123.45"), eur.ID, dec("0.85"), eur)
		require.NoError(t, err)
		assert.True(t, got.Equal(dec("123.45")))
	})

	t.Run("uses stored rate not live rate", func(t *testing.T) {
		// 90 EUR recorded at 0.9 EUR per USD converts to 100 USD no matter
		// what the live EUR rate has become.
		got, err := convertSnapshot(dec("90"), eur.ID, dec("0.9"), usd)
		require.NoError(t, err)
		assert.True(t, got.Equal(dec("100")), "got %s", got)
	})

	t.Run("non-positive stored rate rejected", func(t *testing.T) {
		_, err := convertSnapshot(dec("90"), eur.ID, decimal.Zero, usd)
		require.ErrorIs(t, err, domain.ErrInvalidExchangeRate)
	})
}

func TestSortedUnique(t *testing.T) {
	assert.Equal(t, []int64{1, 2, 9}, sortedUnique([]int64{9, 2, 1, 2, 9}))
	assert.Equal(t, []int64{3}, sortedUnique([]int64{0, 3, 0, 3}))
	assert.Empty(t, sortedUnique([]int64{0, 0}))
	assert.Empty(t, sortedUnique(nil))
}
