package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/diyar150/crm-restaurant-backend/internal/domain"
)

const expenseColumns = `id, category_id, name, amount, note, branch_id,
	employee_id, user_id, expense_date, created_at, updated_at, deleted_at`

type ExpenseRepository struct {
	db *sql.DB
}

func NewExpenseRepository(db *sql.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

func (r *ExpenseRepository) Create(ctx context.Context, tx *sql.Tx, e *domain.Expense) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx,
		`INSERT INTO expense (
			category_id, name, amount, note, branch_id, employee_id, user_id,
			expense_date, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now()) RETURNING id`,
		e.CategoryID, e.Name, e.Amount, e.Note, e.BranchID, e.EmployeeID, e.UserID,
		e.ExpenseDate,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("Create: %w", err)
	}
	return id, nil
}

func (r *ExpenseRepository) GetByID(ctx context.Context, id int64) (*domain.Expense, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expense WHERE id = $1 AND deleted_at IS NULL`, id,
	)
	e, err := scanExpense(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return e, nil
}

func (r *ExpenseRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.Expense, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expense WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`, id,
	)
	e, err := scanExpense(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetForUpdate: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetForUpdate: %w", err)
	}
	return e, nil
}

func (r *ExpenseRepository) Update(ctx context.Context, tx *sql.Tx, e *domain.Expense) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE expense SET
			category_id = $1, name = $2, amount = $3, note = $4, branch_id = $5,
			employee_id = $6, expense_date = $7, updated_at = now()
		 WHERE id = $8 AND deleted_at IS NULL`,
		e.CategoryID, e.Name, e.Amount, e.Note, e.BranchID,
		e.EmployeeID, e.ExpenseDate, e.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	return requireAffected(res, "Update")
}

func (r *ExpenseRepository) SoftDelete(ctx context.Context, tx *sql.Tx, id int64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE expense SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, id,
	)
	if err != nil {
		return fmt.Errorf("SoftDelete: %w", err)
	}
	return requireAffected(res, "SoftDelete")
}

func (r *ExpenseRepository) Filter(ctx context.Context, f domain.ExpenseFilter) ([]domain.Expense, int, error) {
	where := ` FROM expense WHERE deleted_at IS NULL`
	var args []any

	addEq := func(col string, v any, present bool) {
		if present {
			args = append(args, v)
			where += fmt.Sprintf(` AND %s = $%d`, col, len(args))
		}
	}
	addEq("category_id", f.CategoryID, f.CategoryID != 0)
	addEq("branch_id", f.BranchID, f.BranchID != 0)
	addEq("employee_id", f.EmployeeID, f.EmployeeID != 0)
	addEq("user_id", f.UserID, f.UserID != 0)
	if f.Name != "" {
		args = append(args, "%"+f.Name+"%")
		where += fmt.Sprintf(` AND name ILIKE $%d`, len(args))
	}
	if f.StartDate != nil {
		args = append(args, *f.StartDate)
		where += fmt.Sprintf(` AND expense_date >= $%d`, len(args))
	}
	if f.EndDate != nil {
		args = append(args, *f.EndDate)
		where += fmt.Sprintf(` AND expense_date <= $%d`, len(args))
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*)`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("Filter: count: %w", err)
	}

	query := `SELECT ` + expenseColumns + where
	query += ` ORDER BY ` + sortClause(f.SortBy, f.SortOrder, map[string]bool{
		"id": true, "expense_date": true, "amount": true, "created_at": true,
	})
	query += paginationClause(&args, f.Page, f.PageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("Filter: %w", err)
	}
	defer rows.Close()

	var expenses []domain.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("Filter: scan: %w", err)
		}
		expenses = append(expenses, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("Filter: rows: %w", err)
	}
	return expenses, total, nil
}

func scanExpense(s scanner) (*domain.Expense, error) {
	var e domain.Expense
	err := s.Scan(
		&e.ID, &e.CategoryID, &e.Name, &e.Amount, &e.Note, &e.BranchID,
		&e.EmployeeID, &e.UserID, &e.ExpenseDate,
		&e.CreatedAt, &e.UpdatedAt, &e.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
