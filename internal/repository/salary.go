package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/diyar150/crm-restaurant-backend/internal/domain"
)

const salaryColumns = `id, employee_id, branch_id, amount, note, salary_date,
	created_at, updated_at, deleted_at`

type SalaryRepository struct {
	db *sql.DB
}

func NewSalaryRepository(db *sql.DB) *SalaryRepository {
	return &SalaryRepository{db: db}
}

func (r *SalaryRepository) Create(ctx context.Context, tx *sql.Tx, s *domain.Salary) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx,
		`INSERT INTO salary (
			employee_id, branch_id, amount, note, salary_date, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, now(), now()) RETURNING id`,
		s.EmployeeID, s.BranchID, s.Amount, s.Note, s.SalaryDate,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("Create: %w", err)
	}
	return id, nil
}

func (r *SalaryRepository) GetByID(ctx context.Context, id int64) (*domain.Salary, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+salaryColumns+` FROM salary WHERE id = $1 AND deleted_at IS NULL`, id,
	)
	s, err := scanSalary(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return s, nil
}

func (r *SalaryRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.Salary, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+salaryColumns+` FROM salary WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`, id,
	)
	s, err := scanSalary(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetForUpdate: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetForUpdate: %w", err)
	}
	return s, nil
}

func (r *SalaryRepository) Update(ctx context.Context, tx *sql.Tx, s *domain.Salary) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE salary SET
			employee_id = $1, branch_id = $2, amount = $3, note = $4,
			salary_date = $5, updated_at = now()
		 WHERE id = $6 AND deleted_at IS NULL`,
		s.EmployeeID, s.BranchID, s.Amount, s.Note, s.SalaryDate, s.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	return requireAffected(res, "Update")
}

func (r *SalaryRepository) SoftDelete(ctx context.Context, tx *sql.Tx, id int64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE salary SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, id,
	)
	if err != nil {
		return fmt.Errorf("SoftDelete: %w", err)
	}
	return requireAffected(res, "SoftDelete")
}

func (r *SalaryRepository) Filter(ctx context.Context, f domain.SalaryFilter) ([]domain.Salary, int, error) {
	where := ` FROM salary WHERE deleted_at IS NULL AND salary_date >= $1 AND salary_date <= $2`
	args := []any{f.StartDate, f.EndDate}

	if f.EmployeeID != 0 {
		args = append(args, f.EmployeeID)
		where += fmt.Sprintf(` AND employee_id = $%d`, len(args))
	}
	if f.BranchID != 0 {
		args = append(args, f.BranchID)
		where += fmt.Sprintf(` AND branch_id = $%d`, len(args))
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*)`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("Filter: count: %w", err)
	}

	query := `SELECT ` + salaryColumns + where
	query += ` ORDER BY ` + sortClause(f.SortBy, f.SortOrder, map[string]bool{
		"id": true, "salary_date": true, "amount": true, "created_at": true,
	})
	query += paginationClause(&args, f.Page, f.PageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("Filter: %w", err)
	}
	defer rows.Close()

	var salaries []domain.Salary
	for rows.Next() {
		s, err := scanSalary(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("Filter: scan: %w", err)
		}
		salaries = append(salaries, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("Filter: rows: %w", err)
	}
	return salaries, total, nil
}

func scanSalary(s scanner) (*domain.Salary, error) {
	var sal domain.Salary
	err := s.Scan(
		&sal.ID, &sal.EmployeeID, &sal.BranchID, &sal.Amount, &sal.Note,
		&sal.SalaryDate, &sal.CreatedAt, &sal.UpdatedAt, &sal.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sal, nil
}
