package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/diyar150/crm-restaurant-backend/internal/domain"
)

const sellItemColumns = `id, invoice_id, item_id, item_unit_id, quantity,
	base_quantity, unit_price, total_amount, created_at, updated_at, deleted_at`

type SellItemRepository struct {
	db *sql.DB
}

func NewSellItemRepository(db *sql.DB) *SellItemRepository {
	return &SellItemRepository{db: db}
}

func (r *SellItemRepository) Create(ctx context.Context, tx *sql.Tx, it *domain.SellItem) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx,
		`INSERT INTO sell_item (
			invoice_id, item_id, item_unit_id, quantity, base_quantity,
			unit_price, total_amount, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now()) RETURNING id`,
		it.InvoiceID, it.ItemID, it.ItemUnitID, it.Quantity, it.BaseQuantity,
		it.UnitPrice, it.TotalAmount,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("Create: %w", err)
	}
	return id, nil
}

func (r *SellItemRepository) GetByID(ctx context.Context, id int64) (*domain.SellItem, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sellItemColumns+` FROM sell_item WHERE id = $1 AND deleted_at IS NULL`, id,
	)
	it, err := scanSellItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return it, nil
}

func (r *SellItemRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.SellItem, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+sellItemColumns+` FROM sell_item WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`, id,
	)
	it, err := scanSellItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetForUpdate: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetForUpdate: %w", err)
	}
	return it, nil
}

// GetByInvoiceID returns the live (not soft-deleted) lines of an invoice.
func (r *SellItemRepository) GetByInvoiceID(ctx context.Context, tx *sql.Tx, invoiceID int64) ([]domain.SellItem, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT `+sellItemColumns+` FROM sell_item
		 WHERE invoice_id = $1 AND deleted_at IS NULL ORDER BY id`, invoiceID,
	)
	if err != nil {
		return nil, fmt.Errorf("GetByInvoiceID: %w", err)
	}
	defer rows.Close()

	var items []domain.SellItem
	for rows.Next() {
		it, err := scanSellItem(rows)
		if err != nil {
			return nil, fmt.Errorf("GetByInvoiceID: scan: %w", err)
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetByInvoiceID: rows: %w", err)
	}
	return items, nil
}

// ListByInvoiceID is the read-path variant of GetByInvoiceID for handlers
// that render an invoice's lines outside any transaction.
func (r *SellItemRepository) ListByInvoiceID(ctx context.Context, invoiceID int64) ([]domain.SellItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sellItemColumns+` FROM sell_item
		 WHERE invoice_id = $1 AND deleted_at IS NULL ORDER BY id`, invoiceID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByInvoiceID: %w", err)
	}
	defer rows.Close()

	var items []domain.SellItem
	for rows.Next() {
		it, err := scanSellItem(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByInvoiceID: scan: %w", err)
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByInvoiceID: rows: %w", err)
	}
	return items, nil
}

func (r *SellItemRepository) Update(ctx context.Context, tx *sql.Tx, it *domain.SellItem) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE sell_item SET
			item_id = $1, item_unit_id = $2, quantity = $3, base_quantity = $4,
			unit_price = $5, total_amount = $6, updated_at = now()
		 WHERE id = $7 AND deleted_at IS NULL`,
		it.ItemID, it.ItemUnitID, it.Quantity, it.BaseQuantity,
		it.UnitPrice, it.TotalAmount, it.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	return requireAffected(res, "Update")
}

func (r *SellItemRepository) SoftDelete(ctx context.Context, tx *sql.Tx, id int64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE sell_item SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, id,
	)
	if err != nil {
		return fmt.Errorf("SoftDelete: %w", err)
	}
	return requireAffected(res, "SoftDelete")
}

// SoftDeleteByInvoiceID removes every live line of an invoice. Zero lines is
// not an error: a credit invoice can legitimately have no items yet.
func (r *SellItemRepository) SoftDeleteByInvoiceID(ctx context.Context, tx *sql.Tx, invoiceID int64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE sell_item SET deleted_at = now() WHERE invoice_id = $1 AND deleted_at IS NULL`, invoiceID,
	)
	if err != nil {
		return fmt.Errorf("SoftDeleteByInvoiceID: %w", err)
	}
	return nil
}

func scanSellItem(s scanner) (*domain.SellItem, error) {
	var it domain.SellItem
	err := s.Scan(
		&it.ID, &it.InvoiceID, &it.ItemID, &it.ItemUnitID, &it.Quantity,
		&it.BaseQuantity, &it.UnitPrice, &it.TotalAmount,
		&it.CreatedAt, &it.UpdatedAt, &it.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}
