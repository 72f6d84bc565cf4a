// Package service holds the record-keeping services around the ledger
// engine: expenses and salaries that move the branch wallet, and plain
// customer and branch CRUD.
package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/diyar150/crm-restaurant-backend/internal/domain"
)

type expenseRepo interface {
	Create(ctx context.Context, tx *sql.Tx, e *domain.Expense) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Expense, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.Expense, error)
	Update(ctx context.Context, tx *sql.Tx, e *domain.Expense) error
	SoftDelete(ctx context.Context, tx *sql.Tx, id int64) error
	Filter(ctx context.Context, f domain.ExpenseFilter) ([]domain.Expense, int, error)
}

type walletMutator interface {
	GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.Branch, error)
	IncreaseWallet(ctx context.Context, tx *sql.Tx, id int64, amount decimal.Decimal) error
	DecreaseWallet(ctx context.Context, tx *sql.Tx, id int64, amount decimal.Decimal) error
}

// ExpenseService records expenses in base currency and keeps the branch
// wallet in step: creating spends, deleting refunds, updating adjusts by the
// difference.
type ExpenseService struct {
	expenses expenseRepo
	branches walletMutator
	db       *sql.DB
}

func NewExpenseService(expenses expenseRepo, branches walletMutator, db *sql.DB) *ExpenseService {
	return &ExpenseService{expenses: expenses, branches: branches, db: db}
}

func (s *ExpenseService) Create(ctx context.Context, e *domain.Expense) (*domain.Expense, error) {
	if e.Amount.Sign() <= 0 {
		return nil, fmt.Errorf("Create: amount: %w", domain.ErrInvalidAmount)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("Create: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := s.branches.GetForUpdate(ctx, tx, e.BranchID); err != nil {
		return nil, fmt.Errorf("Create: %w", asBranchErr(err))
	}

	id, err := s.expenses.Create(ctx, tx, e)
	if err != nil {
		return nil, fmt.Errorf("Create: %w", err)
	}
	if err := s.branches.DecreaseWallet(ctx, tx, e.BranchID, e.Amount); err != nil {
		return nil, fmt.Errorf("Create: wallet: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("Create: commit: %w", err)
	}

	created, err := s.expenses.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("Create: reload: %w", err)
	}
	return created, nil
}

func (s *ExpenseService) Update(ctx context.Context, e *domain.Expense) (*domain.Expense, error) {
	if e.Amount.Sign() <= 0 {
		return nil, fmt.Errorf("Update: amount: %w", domain.ErrInvalidAmount)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("Update: begin tx: %w", err)
	}
	defer tx.Rollback()

	old, err := s.expenses.GetForUpdate(ctx, tx, e.ID)
	if err != nil {
		return nil, fmt.Errorf("Update: %w", err)
	}
	if _, err := s.branches.GetForUpdate(ctx, tx, old.BranchID); err != nil {
		return nil, fmt.Errorf("Update: %w", asBranchErr(err))
	}
	if e.BranchID != old.BranchID {
		if _, err := s.branches.GetForUpdate(ctx, tx, e.BranchID); err != nil {
			return nil, fmt.Errorf("Update: %w", asBranchErr(err))
		}
	}

	if err := s.expenses.Update(ctx, tx, e); err != nil {
		return nil, fmt.Errorf("Update: %w", err)
	}
	if err := swapWalletCharge(ctx, tx, s.branches, old.BranchID, old.Amount, e.BranchID, e.Amount); err != nil {
		return nil, fmt.Errorf("Update: wallet: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("Update: commit: %w", err)
	}

	updated, err := s.expenses.GetByID(ctx, e.ID)
	if err != nil {
		return nil, fmt.Errorf("Update: reload: %w", err)
	}
	return updated, nil
}

func (s *ExpenseService) Delete(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("Delete: begin tx: %w", err)
	}
	defer tx.Rollback()

	old, err := s.expenses.GetForUpdate(ctx, tx, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if _, err := s.branches.GetForUpdate(ctx, tx, old.BranchID); err != nil {
		return fmt.Errorf("Delete: %w", asBranchErr(err))
	}

	if err := s.expenses.SoftDelete(ctx, tx, id); err != nil {
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

func (s *ExpenseService) Get(ctx context.Context, id int64) (*domain.Expense, error) {
	e, err := s.expenses.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return e, nil
}

func (s *ExpenseService) Filter(ctx context.Context, f domain.ExpenseFilter) ([]domain.Expense, int, error) {
	expenses, total, err := s.expenses.Filter(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("Filter: %w", err)
	}
	return expenses, total, nil
}

// swapWalletCharge moves a wallet charge from the old (branch, amount) pair
// to the new one. Same branch adjusts by the difference; a branch change
// refunds the old branch in full and charges the new one.
func swapWalletCharge(ctx context.Context, tx *sql.Tx, branches walletMutator, oldBranchID int64, oldAmount decimal.Decimal, newBranchID int64, newAmount decimal.Decimal) error {
	if oldBranchID != newBranchID {
		if err := branches.IncreaseWallet(ctx, tx, oldBranchID, oldAmount); err != nil {
			return err
		}
		return branches.DecreaseWallet(ctx, tx, newBranchID, newAmount)
	}
	diff := newAmount.Sub(oldAmount)
	switch {
	case diff.Sign() > 0:
		return branches.DecreaseWallet(ctx, tx, newBranchID, diff)
	case diff.Sign() < 0:
		return branches.IncreaseWallet(ctx, tx, newBranchID, diff.Neg())
	default:
		return nil
	}
}
