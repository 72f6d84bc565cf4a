package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/diyar150/crm-restaurant-backend/internal/domain"
)

const currencyColumns = `id, name, code, symbol, exchange_rate, is_base,
	created_at, updated_at, deleted_at`

type CurrencyRepository struct {
	db *sql.DB
}

func NewCurrencyRepository(db *sql.DB) *CurrencyRepository {
	return &CurrencyRepository{db: db}
}

func (r *CurrencyRepository) GetByID(ctx context.Context, id int64) (*domain.Currency, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+currencyColumns+` FROM currency WHERE id = $1 AND deleted_at IS NULL`, id,
	)
	c, err := scanCurrency(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return c, nil
}

func (r *CurrencyRepository) GetBase(ctx context.Context) (*domain.Currency, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+currencyColumns+` FROM currency WHERE is_base AND deleted_at IS NULL`,
	)
	c, err := scanCurrency(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetBase: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetBase: %w", err)
	}
	return c, nil
}

func (r *CurrencyRepository) GetAll(ctx context.Context) ([]domain.Currency, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+currencyColumns+` FROM currency WHERE deleted_at IS NULL ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("GetAll: %w", err)
	}
	defer rows.Close()

	var currencies []domain.Currency
	for rows.Next() {
		c, err := scanCurrency(rows)
		if err != nil {
			return nil, fmt.Errorf("GetAll: scan: %w", err)
		}
		currencies = append(currencies, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetAll: rows: %w", err)
	}
	return currencies, nil
}

func scanCurrency(s scanner) (*domain.Currency, error) {
	var c domain.Currency
	err := s.Scan(
		&c.ID, &c.Name, &c.Code, &c.Symbol, &c.ExchangeRate, &c.IsBase,
		&c.CreatedAt, &c.UpdatedAt, &c.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
