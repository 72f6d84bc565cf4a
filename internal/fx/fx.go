// Package fx resolves currencies and converts amounts between them.
//
// Every exchange rate is stored as units of that currency per one unit of the
// base currency, so converting from one currency to another is
// amount * toRate / fromRate. The base currency carries a rate of 1.
package fx

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/diyar150/crm-restaurant-backend/internal/domain"
)

type currencyStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Currency, error)
	GetBase(ctx context.Context) (*domain.Currency, error)
}

// Resolver looks up live currency rows. Lookups are per request; rates change
// at runtime so nothing is cached across requests.
type Resolver struct {
	currencies currencyStore
}

func NewResolver(currencies currencyStore) *Resolver {
	return &Resolver{currencies: currencies}
}

// Resolve returns the currency for id. A missing or soft-deleted currency is
// a validation failure for the caller, not a storage fault.
func (r *Resolver) Resolve(ctx context.Context, id int64) (*domain.Currency, error) {
	c, err := r.currencies.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("Resolve: currency %d: %w", id, domain.ErrInvalidCurrency)
		}
		return nil, fmt.Errorf("Resolve: %w", err)
	}
	return c, nil
}

// ResolveBase returns the currency flagged as base. A misconfigured table
// (no base row) surfaces like any other failed resolve.
func (r *Resolver) ResolveBase(ctx context.Context) (*domain.Currency, error) {
	c, err := r.currencies.GetBase(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("ResolveBase: %w", domain.ErrInvalidCurrency)
		}
		return nil, fmt.Errorf("ResolveBase: %w", err)
	}
	return c, nil
}

// Convert moves amount from one currency to another using live rates. When
// both ids match the amount passes through untouched, so a same-currency
// conversion can never introduce drift.
func Convert(amount decimal.Decimal, from, to *domain.Currency) (decimal.Decimal, error) {
	if from.ID == to.ID {
		return amount, nil
	}
	converted, err := ConvertRate(amount, from.ExchangeRate, to.ExchangeRate)
	if err != nil {
		return decimal.Zero, fmt.Errorf("Convert: %s to %s: %w", from.Code, to.Code, err)
	}
	return converted, nil
}

// ConvertRate converts against explicit rates. Reversals call this with the
// snapshot rate a ledger record stored at creation instead of the live rate.
// Non-positive rates are rejected before any division happens.
func ConvertRate(amount, fromRate, toRate decimal.Decimal) (decimal.Decimal, error) {
	if fromRate.Sign() <= 0 || toRate.Sign() <= 0 {
		return decimal.Zero, domain.ErrInvalidExchangeRate
	}
	return amount.Mul(toRate).Div(fromRate), nil
}
