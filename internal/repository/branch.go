package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/diyar150/crm-restaurant-backend/internal/domain"
)

const branchColumns = `id, company_id, name, address, city, wallet,
	created_at, updated_at, deleted_at`

type BranchRepository struct {
	db *sql.DB
}

func NewBranchRepository(db *sql.DB) *BranchRepository {
	return &BranchRepository{db: db}
}

func (r *BranchRepository) Create(ctx context.Context, b *domain.Branch) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO branch (company_id, name, address, city, wallet, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, now(), now())
		 RETURNING id`,
		b.CompanyID, b.Name, b.Address, b.City, b.Wallet,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("Create: %w", err)
	}
	return id, nil
}

func (r *BranchRepository) GetByID(ctx context.Context, id int64) (*domain.Branch, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+branchColumns+` FROM branch WHERE id = $1 AND deleted_at IS NULL`, id,
	)
	b, err := scanBranch(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return b, nil
}

func (r *BranchRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.Branch, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+branchColumns+` FROM branch WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`, id,
	)
	b, err := scanBranch(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetForUpdate: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetForUpdate: %w", err)
	}
	return b, nil
}

func (r *BranchRepository) GetAll(ctx context.Context) ([]domain.Branch, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+branchColumns+` FROM branch WHERE deleted_at IS NULL ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("GetAll: %w", err)
	}
	defer rows.Close()

	var branches []domain.Branch
	for rows.Next() {
		b, err := scanBranch(rows)
		if err != nil {
			return nil, fmt.Errorf("GetAll: scan: %w", err)
		}
		branches = append(branches, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetAll: rows: %w", err)
	}
	return branches, nil
}

// IncreaseWallet adds a base-currency amount to the branch wallet. Same
// contract as the loan mutators: positive amount, direction encodes sign,
// zero affected rows means the branch is missing or soft-deleted.
func (r *BranchRepository) IncreaseWallet(ctx context.Context, tx *sql.Tx, id int64, amount decimal.Decimal) error {
	return r.adjustWallet(ctx, tx, id, amount, "+", "IncreaseWallet")
}

func (r *BranchRepository) DecreaseWallet(ctx context.Context, tx *sql.Tx, id int64, amount decimal.Decimal) error {
	return r.adjustWallet(ctx, tx, id, amount, "-", "DecreaseWallet")
}

func (r *BranchRepository) adjustWallet(ctx context.Context, tx *sql.Tx, id int64, amount decimal.Decimal, op, fn string) error {
	if amount.Sign() <= 0 {
		return fmt.Errorf("%s: %w", fn, domain.ErrInvalidAmount)
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE branch SET wallet = wallet `+op+` $1, updated_at = now()
		 WHERE id = $2 AND deleted_at IS NULL`,
		amount, id,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", fn, err)
	}
	return requireAffected(res, fn)
}

func scanBranch(s scanner) (*domain.Branch, error) {
	var b domain.Branch
	err := s.Scan(
		&b.ID, &b.CompanyID, &b.Name, &b.Address, &b.City, &b.Wallet,
		&b.CreatedAt, &b.UpdatedAt, &b.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
