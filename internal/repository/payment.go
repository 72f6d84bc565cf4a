package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/diyar150/crm-restaurant-backend/internal/domain"
)

const paymentColumns = `id, customer_id, branch_id, employee_id, user_id, type,
	amount, currency_id, exchange_rate, discount_type, discount_value,
	discount_result, loan, result, payment_method, reference_number, note,
	payment_date, created_at, updated_at, deleted_at`

type PaymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, tx *sql.Tx, p *domain.Payment) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx,
		`INSERT INTO payment (
			customer_id, branch_id, employee_id, user_id, type,
			amount, currency_id, exchange_rate, discount_type, discount_value,
			discount_result, loan, result, payment_method, reference_number, note,
			payment_date, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, now(), now()
		) RETURNING id`,
		p.CustomerID, p.BranchID, p.EmployeeID, p.UserID, p.Type,
		p.Amount, p.CurrencyID, p.ExchangeRate, p.DiscountType, p.DiscountValue,
		p.DiscountResult, p.Loan, p.Result, p.PaymentMethod, p.ReferenceNumber, p.Note,
		p.PaymentDate,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("Create: %w", err)
	}
	return id, nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payment WHERE id = $1 AND deleted_at IS NULL`, id,
	)
	p, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return p, nil
}

// GetForUpdate locks the payment row so the reverse/apply sequence cannot
// race a concurrent update or delete of the same record.
func (r *PaymentRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.Payment, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payment WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`, id,
	)
	p, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetForUpdate: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetForUpdate: %w", err)
	}
	return p, nil
}

func (r *PaymentRepository) Update(ctx context.Context, tx *sql.Tx, p *domain.Payment) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE payment SET
			customer_id = $1, branch_id = $2, employee_id = $3, user_id = $4, type = $5,
			amount = $6, currency_id = $7, exchange_rate = $8, discount_type = $9,
			discount_value = $10, discount_result = $11, loan = $12, result = $13,
			payment_method = $14, reference_number = $15, note = $16, payment_date = $17,
			updated_at = now()
		 WHERE id = $18 AND deleted_at IS NULL`,
		p.CustomerID, p.BranchID, p.EmployeeID, p.UserID, p.Type,
		p.Amount, p.CurrencyID, p.ExchangeRate, p.DiscountType,
		p.DiscountValue, p.DiscountResult, p.Loan, p.Result,
		p.PaymentMethod, p.ReferenceNumber, p.Note, p.PaymentDate,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	return requireAffected(res, "Update")
}

func (r *PaymentRepository) SoftDelete(ctx context.Context, tx *sql.Tx, id int64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE payment SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, id,
	)
	if err != nil {
		return fmt.Errorf("SoftDelete: %w", err)
	}
	return requireAffected(res, "SoftDelete")
}

func (r *PaymentRepository) Filter(ctx context.Context, f domain.PaymentFilter) ([]domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payment
		WHERE deleted_at IS NULL AND payment_date BETWEEN $1 AND $2`
	args := []any{f.StartDate, f.EndDate}

	addEq := func(col string, v any, present bool) {
		if present {
			args = append(args, v)
			query += fmt.Sprintf(` AND %s = $%d`, col, len(args))
		}
	}
	addEq("customer_id", f.CustomerID, f.CustomerID != 0)
	addEq("employee_id", f.EmployeeID, f.EmployeeID != 0)
	addEq("branch_id", f.BranchID, f.BranchID != 0)
	addEq("currency_id", f.CurrencyID, f.CurrencyID != 0)
	addEq("payment_method", f.PaymentMethod, f.PaymentMethod != "")
	addEq("type", f.Type, f.Type != "")
	addEq("reference_number", f.ReferenceNumber, f.ReferenceNumber != "")
	addEq("user_id", f.UserID, f.UserID != 0)

	query += ` ORDER BY ` + sortClause(f.SortBy, f.SortOrder, map[string]bool{
		"id": true, "payment_date": true, "amount": true, "created_at": true,
	})
	query += paginationClause(&args, f.Page, f.PageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("Filter: %w", err)
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("Filter: scan: %w", err)
		}
		payments = append(payments, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Filter: rows: %w", err)
	}
	return payments, nil
}

func scanPayment(s scanner) (*domain.Payment, error) {
	var p domain.Payment
	err := s.Scan(
		&p.ID, &p.CustomerID, &p.BranchID, &p.EmployeeID, &p.UserID, &p.Type,
		&p.Amount, &p.CurrencyID, &p.ExchangeRate, &p.DiscountType, &p.DiscountValue,
		&p.DiscountResult, &p.Loan, &p.Result, &p.PaymentMethod, &p.ReferenceNumber, &p.Note,
		&p.PaymentDate, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
