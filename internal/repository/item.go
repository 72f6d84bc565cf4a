package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/diyar150/crm-restaurant-backend/internal/domain"
)

type ItemRepository struct {
	db *sql.DB
}

func NewItemRepository(db *sql.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

func (r *ItemRepository) GetByID(ctx context.Context, id int64) (*domain.Item, error) {
	var it domain.Item
	err := r.db.QueryRowContext(ctx,
		`SELECT id, category_id, name, barcode, created_at, updated_at, deleted_at
		 FROM item WHERE id = $1 AND deleted_at IS NULL`, id,
	).Scan(&it.ID, &it.CategoryID, &it.Name, &it.Barcode, &it.CreatedAt, &it.UpdatedAt, &it.DeletedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return &it, nil
}

func (r *ItemRepository) GetUnitByID(ctx context.Context, id int64) (*domain.ItemUnit, error) {
	var u domain.ItemUnit
	err := r.db.QueryRowContext(ctx,
		`SELECT id, item_id, name, conversion_factor, created_at, updated_at, deleted_at
		 FROM item_unit WHERE id = $1 AND deleted_at IS NULL`, id,
	).Scan(&u.ID, &u.ItemID, &u.Name, &u.ConversionFactor, &u.CreatedAt, &u.UpdatedAt, &u.DeletedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetUnitByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetUnitByID: %w", err)
	}
	return &u, nil
}
