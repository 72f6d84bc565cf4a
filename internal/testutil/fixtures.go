package testutil

import (
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/diyar150/crm-restaurant-backend/internal/domain"
)

// SeedCurrency inserts a live exchange-rate row. The base currency should be
// seeded with rate 1 and isBase=true before any other rows.
func SeedCurrency(t *testing.T, db *sql.DB, name, code string, rate decimal.Decimal, isBase bool) int64 {
	t.Helper()

	var id int64
	err := db.QueryRow(
		`INSERT INTO currency (name, code, symbol, exchange_rate, is_base)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		name, code, "", rate, isBase,
	).Scan(&id)
	if err != nil {
		t.Fatalf("seed currency %s: %v", code, err)
	}
	return id
}

func SeedUser(t *testing.T, db *sql.DB, email, name string) *domain.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &domain.User{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Status:       domain.UserStatusActive,
	}
	err = db.QueryRow(
		`INSERT INTO users (email, name, password_hash, status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		u.Email, u.Name, u.PasswordHash, u.Status,
	).Scan(&u.ID)
	if err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return u
}

func SeedBranch(t *testing.T, db *sql.DB, name string, wallet decimal.Decimal) int64 {
	t.Helper()

	var id int64
	err := db.QueryRow(
		`INSERT INTO branch (name, wallet) VALUES ($1, $2) RETURNING id`,
		name, wallet,
	).Scan(&id)
	if err != nil {
		t.Fatalf("seed branch %s: %v", name, err)
	}
	return id
}

func SeedWarehouse(t *testing.T, db *sql.DB, branchID int64, name string) int64 {
	t.Helper()

	var id int64
	err := db.QueryRow(
		`INSERT INTO warehouse (branch_id, name) VALUES ($1, $2) RETURNING id`,
		branchID, name,
	).Scan(&id)
	if err != nil {
		t.Fatalf("seed warehouse %s: %v", name, err)
	}
	return id
}

func SeedCustomer(t *testing.T, db *sql.DB, name string, currencyID int64, loan decimal.Decimal) int64 {
	t.Helper()

	var id int64
	err := db.QueryRow(
		`INSERT INTO customer (name, currency_id, loan) VALUES ($1, $2, $3) RETURNING id`,
		name, currencyID, loan,
	).Scan(&id)
	if err != nil {
		t.Fatalf("seed customer %s: %v", name, err)
	}
	return id
}

// SeedItem creates the item, one selling unit with the given conversion
// factor, and an opening stock row in the warehouse. It returns the item and
// unit ids.
func SeedItem(t *testing.T, db *sql.DB, warehouseID int64, name string, factor, stock decimal.Decimal) (itemID, unitID int64) {
	t.Helper()

	err := db.QueryRow(
		`INSERT INTO item (name) VALUES ($1) RETURNING id`,
		name,
	).Scan(&itemID)
	if err != nil {
		t.Fatalf("seed item %s: %v", name, err)
	}
	err = db.QueryRow(
		`INSERT INTO item_unit (item_id, name, conversion_factor)
		 VALUES ($1, $2, $3) RETURNING id`,
		itemID, "piece", factor,
	).Scan(&unitID)
	if err != nil {
		t.Fatalf("seed item unit for %s: %v", name, err)
	}
	_, err = db.Exec(
		`INSERT INTO item_quantity (warehouse_id, item_id, quantity) VALUES ($1, $2, $3)`,
		warehouseID, itemID, stock,
	)
	if err != nil {
		t.Fatalf("seed stock for %s: %v", name, err)
	}
	return itemID, unitID
}

func GetLoan(t *testing.T, db *sql.DB, customerID int64) decimal.Decimal {
	t.Helper()

	var loan decimal.Decimal
	err := db.QueryRow(`SELECT loan FROM customer WHERE id = $1`, customerID).Scan(&loan)
	if err != nil {
		t.Fatalf("get loan for customer %d: %v", customerID, err)
	}
	return loan
}

func GetWallet(t *testing.T, db *sql.DB, branchID int64) decimal.Decimal {
	t.Helper()

	var wallet decimal.Decimal
	err := db.QueryRow(`SELECT wallet FROM branch WHERE id = $1`, branchID).Scan(&wallet)
	if err != nil {
		t.Fatalf("get wallet for branch %d: %v", branchID, err)
	}
	return wallet
}

func GetStock(t *testing.T, db *sql.DB, warehouseID, itemID int64) decimal.Decimal {
	t.Helper()

	var qty decimal.Decimal
	err := db.QueryRow(
		`SELECT quantity FROM item_quantity WHERE warehouse_id = $1 AND item_id = $2`,
		warehouseID, itemID,
	).Scan(&qty)
	if err != nil {
		t.Fatalf("get stock for warehouse %d item %d: %v", warehouseID, itemID, err)
	}
	return qty
}
