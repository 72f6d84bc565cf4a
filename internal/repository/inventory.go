package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/diyar150/crm-restaurant-backend/internal/domain"
)

type InventoryRepository struct {
	db *sql.DB
}

func NewInventoryRepository(db *sql.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// Adjust moves on-hand stock for an item in a warehouse. revert=false is a
// sale (stock decreases), revert=true undoes one (stock increases). Always
// called with a base quantity, never a raw selling-unit quantity.
func (r *InventoryRepository) Adjust(ctx context.Context, tx *sql.Tx, warehouseID, itemID int64, baseQuantity decimal.Decimal, revert bool) error {
	if baseQuantity.Sign() <= 0 {
		return fmt.Errorf("Adjust: %w", domain.ErrInvalidAmount)
	}

	op := "-"
	if revert {
		op = "+"
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE item_quantity SET quantity = quantity `+op+` $1, updated_at = now()
		 WHERE warehouse_id = $2 AND item_id = $3`,
		baseQuantity, warehouseID, itemID,
	)
	if err != nil {
		return fmt.Errorf("Adjust: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Adjust: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("Adjust: warehouse %d item %d: %w", warehouseID, itemID, domain.ErrStockNotFound)
	}
	return nil
}

// GetQuantity reads the current on-hand stock outside any transaction.
func (r *InventoryRepository) GetQuantity(ctx context.Context, warehouseID, itemID int64) (decimal.Decimal, error) {
	var qty decimal.Decimal
	err := r.db.QueryRowContext(ctx,
		`SELECT quantity FROM item_quantity WHERE warehouse_id = $1 AND item_id = $2`,
		warehouseID, itemID,
	).Scan(&qty)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, fmt.Errorf("GetQuantity: %w", domain.ErrStockNotFound)
		}
		return decimal.Zero, fmt.Errorf("GetQuantity: %w", err)
	}
	return qty, nil
}
