package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diyar150/crm-restaurant-backend/internal/domain"
	"github.com/diyar150/crm-restaurant-backend/internal/repository"
	"github.com/diyar150/crm-restaurant-backend/internal/service"
	"github.com/diyar150/crm-restaurant-backend/internal/testutil"
)

func assertWallet(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, got.Equal(decimal.RequireFromString(want)), "want %s got %s", want, got)
}

func TestExpense_WalletRoundTrip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := service.NewExpenseService(repository.NewExpenseRepository(db), repository.NewBranchRepository(db), db)
	ctx := context.Background()

	branchID := testutil.SeedBranch(t, db, "Main", decimal.NewFromInt(1000))

	e, err := svc.Create(ctx, &domain.Expense{
		Name:        "Electricity",
		Amount:      decimal.NewFromInt(150),
		BranchID:    branchID,
		ExpenseDate: time.Now().UTC(),
	})
	require.NoError(t, err)
	assertWallet(t, "850", testutil.GetWallet(t, db, branchID))

	e.Amount = decimal.NewFromInt(200)
	_, err = svc.Update(ctx, e)
	require.NoError(t, err)
	assertWallet(t, "800", testutil.GetWallet(t, db, branchID))

	require.NoError(t, svc.Delete(ctx, e.ID))
	assertWallet(t, "1000", testutil.GetWallet(t, db, branchID))

	_, err = svc.Get(ctx, e.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestExpense_UpdateMovesBranch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := service.NewExpenseService(repository.NewExpenseRepository(db), repository.NewBranchRepository(db), db)
	ctx := context.Background()

	branchA := testutil.SeedBranch(t, db, "A", decimal.NewFromInt(1000))
	branchB := testutil.SeedBranch(t, db, "B", decimal.NewFromInt(1000))

	e, err := svc.Create(ctx, &domain.Expense{
		Name:        "Rent",
		Amount:      decimal.NewFromInt(300),
		BranchID:    branchA,
		ExpenseDate: time.Now().UTC(),
	})
	require.NoError(t, err)

	e.BranchID = branchB
	e.Amount = decimal.NewFromInt(250)
	_, err = svc.Update(ctx, e)
	require.NoError(t, err)

	// A is refunded in full; B carries the new charge.
	assertWallet(t, "1000", testutil.GetWallet(t, db, branchA))
	assertWallet(t, "750", testutil.GetWallet(t, db, branchB))
}

func TestSalary_WalletRoundTrip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := service.NewSalaryService(
		repository.NewSalaryRepository(db),
		repository.NewBranchRepository(db),
		repository.NewUserRepository(db),
		db,
	)
	ctx := context.Background()

	branchID := testutil.SeedBranch(t, db, "Main", decimal.NewFromInt(1000))
	employee := testutil.SeedUser(t, db, "cook@pos.local", "Cook")

	s, err := svc.Create(ctx, &domain.Salary{
		EmployeeID: employee.ID,
		BranchID:   branchID,
		Amount:     decimal.NewFromInt(400),
		SalaryDate: time.Now().UTC(),
	})
	require.NoError(t, err)
	assertWallet(t, "600", testutil.GetWallet(t, db, branchID))

	require.NoError(t, svc.Delete(ctx, s.ID))
	assertWallet(t, "1000", testutil.GetWallet(t, db, branchID))
}

func TestSalary_UnknownEmployee(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := service.NewSalaryService(
		repository.NewSalaryRepository(db),
		repository.NewBranchRepository(db),
		repository.NewUserRepository(db),
		db,
	)
	ctx := context.Background()

	branchID := testutil.SeedBranch(t, db, "Main", decimal.NewFromInt(1000))

	_, err := svc.Create(ctx, &domain.Salary{
		EmployeeID: 9999,
		BranchID:   branchID,
		Amount:     decimal.NewFromInt(400),
		SalaryDate: time.Now().UTC(),
	})
	require.ErrorIs(t, err, domain.ErrEmployeeNotFound)
	assertWallet(t, "1000", testutil.GetWallet(t, db, branchID))
}
