package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/diyar150/crm-restaurant-backend/internal/domain"
)

const invoiceColumns = `id, type, invoice_number, invoice_date, total_amount,
	customer_id, branch_id, warehouse_id, employee_id, note, loan, currency_id,
	exchange_rate, discount_type, discount_value, discount_result, paid_amount,
	direct_customer_name, direct_customer_phone, created_at, updated_at, deleted_at`

type SellInvoiceRepository struct {
	db *sql.DB
}

func NewSellInvoiceRepository(db *sql.DB) *SellInvoiceRepository {
	return &SellInvoiceRepository{db: db}
}

func (r *SellInvoiceRepository) Create(ctx context.Context, tx *sql.Tx, inv *domain.SellInvoice) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx,
		`INSERT INTO sell_invoice (
			type, invoice_number, invoice_date, total_amount,
			customer_id, branch_id, warehouse_id, employee_id, note, loan, currency_id,
			exchange_rate, discount_type, discount_value, discount_result, paid_amount,
			direct_customer_name, direct_customer_phone, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, now(), now()
		) RETURNING id`,
		inv.Type, inv.InvoiceNumber, inv.InvoiceDate, inv.TotalAmount,
		inv.CustomerID, inv.BranchID, inv.WarehouseID, inv.EmployeeID, inv.Note, inv.Loan, inv.CurrencyID,
		inv.ExchangeRate, inv.DiscountType, inv.DiscountValue, inv.DiscountResult, inv.PaidAmount,
		inv.DirectCustomerName, inv.DirectCustomerPhone,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("Create: %w", err)
	}
	return id, nil
}

func (r *SellInvoiceRepository) GetByID(ctx context.Context, id int64) (*domain.SellInvoice, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+invoiceColumns+` FROM sell_invoice WHERE id = $1 AND deleted_at IS NULL`, id,
	)
	inv, err := scanInvoice(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return inv, nil
}

func (r *SellInvoiceRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.SellInvoice, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+invoiceColumns+` FROM sell_invoice WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`, id,
	)
	inv, err := scanInvoice(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetForUpdate: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetForUpdate: %w", err)
	}
	return inv, nil
}

func (r *SellInvoiceRepository) Update(ctx context.Context, tx *sql.Tx, inv *domain.SellInvoice) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE sell_invoice SET
			type = $1, invoice_number = $2, invoice_date = $3, total_amount = $4,
			customer_id = $5, branch_id = $6, warehouse_id = $7, employee_id = $8,
			note = $9, loan = $10, currency_id = $11, exchange_rate = $12,
			discount_type = $13, discount_value = $14, discount_result = $15,
			paid_amount = $16, direct_customer_name = $17, direct_customer_phone = $18,
			updated_at = now()
		 WHERE id = $19 AND deleted_at IS NULL`,
		inv.Type, inv.InvoiceNumber, inv.InvoiceDate, inv.TotalAmount,
		inv.CustomerID, inv.BranchID, inv.WarehouseID, inv.EmployeeID,
		inv.Note, inv.Loan, inv.CurrencyID, inv.ExchangeRate,
		inv.DiscountType, inv.DiscountValue, inv.DiscountResult,
		inv.PaidAmount, inv.DirectCustomerName, inv.DirectCustomerPhone,
		inv.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	return requireAffected(res, "Update")
}

func (r *SellInvoiceRepository) SoftDelete(ctx context.Context, tx *sql.Tx, id int64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE sell_invoice SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, id,
	)
	if err != nil {
		return fmt.Errorf("SoftDelete: %w", err)
	}
	return requireAffected(res, "SoftDelete")
}

// Filter returns the matching page plus the unpaginated total.
func (r *SellInvoiceRepository) Filter(ctx context.Context, f domain.InvoiceFilter) ([]domain.SellInvoice, int, error) {
	where := ` FROM sell_invoice WHERE deleted_at IS NULL`
	var args []any

	addEq := func(col string, v any, present bool) {
		if present {
			args = append(args, v)
			where += fmt.Sprintf(` AND %s = $%d`, col, len(args))
		}
	}
	addEq("id", f.ID, f.ID != 0)
	addEq("branch_id", f.BranchID, f.BranchID != 0)
	addEq("warehouse_id", f.WarehouseID, f.WarehouseID != 0)
	addEq("customer_id", f.CustomerID, f.CustomerID != 0)
	addEq("type", f.Type, f.Type != "")
	addEq("currency_id", f.CurrencyID, f.CurrencyID != 0)
	addEq("invoice_number", f.InvoiceNumber, f.InvoiceNumber != "")
	if f.StartDate != nil {
		args = append(args, *f.StartDate)
		where += fmt.Sprintf(` AND invoice_date >= $%d`, len(args))
	}
	if f.EndDate != nil {
		args = append(args, *f.EndDate)
		where += fmt.Sprintf(` AND invoice_date <= $%d`, len(args))
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*)`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("Filter: count: %w", err)
	}

	query := `SELECT ` + invoiceColumns + where
	query += ` ORDER BY ` + sortClause(f.SortBy, f.SortOrder, map[string]bool{
		"id": true, "invoice_date": true, "total_amount": true, "created_at": true,
	})
	query += paginationClause(&args, f.Page, f.PageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("Filter: %w", err)
	}
	defer rows.Close()

	var invoices []domain.SellInvoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("Filter: scan: %w", err)
		}
		invoices = append(invoices, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("Filter: rows: %w", err)
	}
	return invoices, total, nil
}

func scanInvoice(s scanner) (*domain.SellInvoice, error) {
	var inv domain.SellInvoice
	err := s.Scan(
		&inv.ID, &inv.Type, &inv.InvoiceNumber, &inv.InvoiceDate, &inv.TotalAmount,
		&inv.CustomerID, &inv.BranchID, &inv.WarehouseID, &inv.EmployeeID, &inv.Note,
		&inv.Loan, &inv.CurrencyID, &inv.ExchangeRate, &inv.DiscountType,
		&inv.DiscountValue, &inv.DiscountResult, &inv.PaidAmount,
		&inv.DirectCustomerName, &inv.DirectCustomerPhone,
		&inv.CreatedAt, &inv.UpdatedAt, &inv.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}
