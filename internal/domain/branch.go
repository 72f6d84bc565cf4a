package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Branch holds a cash wallet denominated in the base currency. Wallet moves
// only through the IncreaseWallet/DecreaseWallet mutators.
type Branch struct {
	ID        int64
	CompanyID int64
	Name      string
	Address   string
	City      string
	Wallet    decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

type Warehouse struct {
	ID        int64
	BranchID  int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}
