package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/diyar150/crm-restaurant-backend/internal/domain"
)

type salaryRepo interface {
	Create(ctx context.Context, tx *sql.Tx, s *domain.Salary) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Salary, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.Salary, error)
	Update(ctx context.Context, tx *sql.Tx, s *domain.Salary) error
	SoftDelete(ctx context.Context, tx *sql.Tx, id int64) error
	Filter(ctx context.Context, f domain.SalaryFilter) ([]domain.Salary, int, error)
}

type employeeChecker interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// SalaryService pays salaries out of the branch wallet in base currency,
// with the same charge/refund discipline as expenses.
type SalaryService struct {
	salaries  salaryRepo
	branches  walletMutator
	employees employeeChecker
	db        *sql.DB
}

func NewSalaryService(salaries salaryRepo, branches walletMutator, employees employeeChecker, db *sql.DB) *SalaryService {
	return &SalaryService{salaries: salaries, branches: branches, employees: employees, db: db}
}

func (s *SalaryService) Create(ctx context.Context, sal *domain.Salary) (*domain.Salary, error) {
	if sal.Amount.Sign() <= 0 {
		return nil, fmt.Errorf("Create: amount: %w", domain.ErrInvalidAmount)
	}
	if _, err := s.employees.GetByID(ctx, sal.EmployeeID); err != nil {
		return nil, fmt.Errorf("Create: %w", asEmployeeErr(err))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("Create: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := s.branches.GetForUpdate(ctx, tx, sal.BranchID); err != nil {
		return nil, fmt.Errorf("Create: %w", asBranchErr(err))
	}

	id, err := s.salaries.Create(ctx, tx, sal)
	if err != nil {
		return nil, fmt.Errorf("Create: %w", err)
	}
	if err := s.branches.DecreaseWallet(ctx, tx, sal.BranchID, sal.Amount); err != nil {
		return nil, fmt.Errorf("Create: wallet: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("Create: commit: %w", err)
	}

	created, err := s.salaries.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("Create: reload: %w", err)
	}
	return created, nil
}

func (s *SalaryService) Update(ctx context.Context, sal *domain.Salary) (*domain.Salary, error) {
	if sal.Amount.Sign() <= 0 {
		return nil, fmt.Errorf("Update: amount: %w", domain.ErrInvalidAmount)
	}
	if _, err := s.employees.GetByID(ctx, sal.EmployeeID); err != nil {
		return nil, fmt.Errorf("Update: %w", asEmployeeErr(err))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("Update: begin tx: %w", err)
	}
	defer tx.Rollback()

	old, err := s.salaries.GetForUpdate(ctx, tx, sal.ID)
	if err != nil {
		return nil, fmt.Errorf("Update: %w", err)
	}
	if _, err := s.branches.GetForUpdate(ctx, tx, old.BranchID); err != nil {
		return nil, fmt.Errorf("Update: %w", asBranchErr(err))
	}
	if sal.BranchID != old.BranchID {
		if _, err := s.branches.GetForUpdate(ctx, tx, sal.BranchID); err != nil {
			return nil, fmt.Errorf("Update: %w", asBranchErr(err))
		}
	}

	if err := s.salaries.Update(ctx, tx, sal); err != nil {
		return nil, fmt.Errorf("Update: %w", err)
	}
	if err := swapWalletCharge(ctx, tx, s.branches, old.BranchID, old.Amount, sal.BranchID, sal.Amount); err != nil {
		return nil, fmt.Errorf("Update: wallet: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("Update: commit: %w", err)
	}

	updated, err := s.salaries.GetByID(ctx, sal.ID)
	if err != nil {
		return nil, fmt.Errorf("Update: reload: %w", err)
	}
	return updated, nil
}

func (s *SalaryService) Delete(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("Delete: begin tx: %w", err)
	}
	defer tx.Rollback()

	old, err := s.salaries.GetForUpdate(ctx, tx, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if _, err := s.branches.GetForUpdate(ctx, tx, old.BranchID); err != nil {
		return fmt.Errorf("Delete: %w", asBranchErr(err))
	}

	if err := s.salaries.SoftDelete(ctx, tx, id); err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if err := s.branches.IncreaseWallet(ctx, tx, old.BranchID, old.Amount); err != nil {
		return fmt.Errorf("Delete: wallet: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("Delete: commit: %w", err)
	}
	return nil
}

func (s *SalaryService) Get(ctx context.Context, id int64) (*domain.Salary, error) {
	sal, err := s.salaries.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return sal, nil
}

func (s *SalaryService) Filter(ctx context.Context, f domain.SalaryFilter) ([]domain.Salary, int, error) {
	salaries, total, err := s.salaries.Filter(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("Filter: %w", err)
	}
	return salaries, total, nil
}

func asBranchErr(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrBranchNotFound
	}
	return err
}

func asEmployeeErr(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrEmployeeNotFound
	}
	return err
}
