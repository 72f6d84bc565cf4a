package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/diyar150/crm-restaurant-backend/internal/domain"
)

const customerColumns = `id, category_id, name, phone_1, phone_2, address,
	currency_id, loan, note, created_at, updated_at, deleted_at`

type CustomerRepository struct {
	db *sql.DB
}

func NewCustomerRepository(db *sql.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) Create(ctx context.Context, c *domain.Customer) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO customer (category_id, name, phone_1, phone_2, address, currency_id, loan, note, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		 RETURNING id`,
		c.CategoryID, c.Name, c.Phone1, c.Phone2, c.Address, c.CurrencyID, c.Loan, c.Note,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("Create: %w", err)
	}
	return id, nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customer WHERE id = $1 AND deleted_at IS NULL`, id,
	)
	c, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return c, nil
}

// GetForUpdate locks the customer row for the duration of tx. The ledger
// engine takes this lock before reading the loan it validates against.
func (r *CustomerRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.Customer, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customer WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`, id,
	)
	c, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetForUpdate: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetForUpdate: %w", err)
	}
	return c, nil
}

func (r *CustomerRepository) Filter(ctx context.Context, f domain.CustomerFilter) ([]domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customer WHERE deleted_at IS NULL`
	var args []any

	if f.CategoryID != 0 {
		args = append(args, f.CategoryID)
		query += fmt.Sprintf(` AND category_id = $%d`, len(args))
	}
	if f.LoanPositive {
		query += ` AND loan > 0`
	}
	if f.LoanNegative {
		query += ` AND loan < 0`
	}
	if f.LoanZero {
		query += ` AND loan = 0`
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		p := len(args)
		query += fmt.Sprintf(` AND (name ILIKE $%d OR phone_1 ILIKE $%d OR phone_2 ILIKE $%d)`, p, p, p)
	}

	query += ` ORDER BY ` + sortClause(f.SortBy, f.SortOrder, map[string]bool{
		"id": true, "name": true, "loan": true, "created_at": true,
	})
	query += paginationClause(&args, f.Page, f.PageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("Filter: %w", err)
	}
	defer rows.Close()

	var customers []domain.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("Filter: scan: %w", err)
		}
		customers = append(customers, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Filter: rows: %w", err)
	}
	return customers, nil
}

func (r *CustomerRepository) Update(ctx context.Context, c *domain.Customer) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE customer SET category_id = $1, name = $2, phone_1 = $3, phone_2 = $4,
		 address = $5, currency_id = $6, loan = $7, note = $8, updated_at = now()
		 WHERE id = $9 AND deleted_at IS NULL`,
		c.CategoryID, c.Name, c.Phone1, c.Phone2, c.Address, c.CurrencyID, c.Loan, c.Note, c.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	return requireAffected(res, "Update")
}

func (r *CustomerRepository) SoftDelete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE customer SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, id,
	)
	if err != nil {
		return fmt.Errorf("SoftDelete: %w", err)
	}
	return requireAffected(res, "SoftDelete")
}

// IncreaseLoan adds amount to the customer's loan in a single conditional
// update. Direction encodes the sign; amount must be strictly positive.
func (r *CustomerRepository) IncreaseLoan(ctx context.Context, tx *sql.Tx, id int64, amount decimal.Decimal) error {
	return r.adjustLoan(ctx, tx, id, amount, "+", "IncreaseLoan")
}

func (r *CustomerRepository) DecreaseLoan(ctx context.Context, tx *sql.Tx, id int64, amount decimal.Decimal) error {
	return r.adjustLoan(ctx, tx, id, amount, "-", "DecreaseLoan")
}

func (r *CustomerRepository) adjustLoan(ctx context.Context, tx *sql.Tx, id int64, amount decimal.Decimal, op, fn string) error {
	if amount.Sign() <= 0 {
		return fmt.Errorf("%s: %w", fn, domain.ErrInvalidAmount)
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE customer SET loan = loan `+op+` $1, updated_at = now()
		 WHERE id = $2 AND deleted_at IS NULL`,
		amount, id,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", fn, err)
	}
	return requireAffected(res, fn)
}

func scanCustomer(s scanner) (*domain.Customer, error) {
	var c domain.Customer
	err := s.Scan(
		&c.ID, &c.CategoryID, &c.Name, &c.Phone1, &c.Phone2, &c.Address,
		&c.CurrencyID, &c.Loan, &c.Note, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func requireAffected(res sql.Result, fn string) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", fn, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", fn, domain.ErrNotFound)
	}
	return nil
}

// sortClause whitelists the sort column so filter input never reaches SQL.
func sortClause(sortBy, sortOrder string, allowed map[string]bool) string {
	col := "id"
	if allowed[sortBy] {
		col = sortBy
	}
	dir := "ASC"
	if strings.EqualFold(sortOrder, "desc") {
		dir = "DESC"
	}
	return col + " " + dir
}

func paginationClause(args *[]any, page, pageSize int) string {
	if page <= 0 || pageSize <= 0 {
		return ""
	}
	*args = append(*args, pageSize, (page-1)*pageSize)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(*args)-1, len(*args))
}
