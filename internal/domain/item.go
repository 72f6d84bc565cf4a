package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Item struct {
	ID         int64
	CategoryID int64
	Name       string
	Barcode    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  *time.Time
}

// ItemUnit maps a selling unit (carton, box, piece) to the stock-keeping
// unit. ConversionFactor is how many base units one selling unit holds.
type ItemUnit struct {
	ID               int64
	ItemID           int64
	Name             string
	ConversionFactor decimal.Decimal
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        *time.Time
}
