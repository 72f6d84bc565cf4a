package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency is a live exchange-rate row. ExchangeRate is expressed as units of
// this currency per one unit of the base currency; the base row carries 1.
// Ledger records snapshot the rate at creation so reversals stay reproducible
// after live rates move.
type Currency struct {
	ID           int64
	Name         string
	Code         string
	Symbol       string
	ExchangeRate decimal.Decimal
	IsBase       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}
