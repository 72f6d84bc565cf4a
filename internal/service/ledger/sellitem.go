package ledger

import (
	"context"
	"fmt"

	"github.com/diyar150/crm-restaurant-backend/internal/domain"
)

// CreateSellItem adds a line to an invoice and draws the stock down in the
// invoice's warehouse. The quantity that hits stock is always the base
// quantity: the requested quantity scaled by the unit's conversion factor.
func (s *Service) CreateSellItem(ctx context.Context, it *domain.SellItem) (*domain.SellItem, error) {
	if it.Quantity.Sign() <= 0 {
		return nil, fmt.Errorf("CreateSellItem: quantity: %w", domain.ErrInvalidAmount)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("CreateSellItem: begin tx: %w", err)
	}
	defer tx.Rollback()

	inv, err := s.invoices.GetForUpdate(ctx, tx, it.InvoiceID)
	if err != nil {
		return nil, fmt.Errorf("CreateSellItem: %w", mapNotFound(err, domain.ErrInvoiceNotFound))
	}
	if _, err := s.items.GetByID(ctx, it.ItemID); err != nil {
		return nil, fmt.Errorf("CreateSellItem: item %d: %w", it.ItemID, err)
	}
	unit, err := s.items.GetUnitByID(ctx, it.ItemUnitID)
	if err != nil {
		return nil, fmt.Errorf("CreateSellItem: %w", mapNotFound(err, domain.ErrItemUnitNotFound))
	}

	it.BaseQuantity = it.Quantity.Mul(unit.ConversionFactor)
	it.TotalAmount = it.UnitPrice.Mul(it.Quantity)

	id, err := s.sellItems.Create(ctx, tx, it)
	if err != nil {
		return nil, fmt.Errorf("CreateSellItem: create record: %w", err)
	}
	it.ID = id

	if err := s.inventory.Adjust(ctx, tx, inv.WarehouseID, it.ItemID, it.BaseQuantity, false); err != nil {
		return nil, fmt.Errorf("CreateSellItem: draw stock: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("CreateSellItem: commit: %w", err)
	}

	created, err := s.sellItems.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("CreateSellItem: reload: %w", err)
	}
	return created, nil
}

// UpdateSellItem restores the old base quantity to stock, rewrites the line,
// then draws the new base quantity, so stock ends up exactly as if the line
// had been created with the new values.
func (s *Service) UpdateSellItem(ctx context.Context, it *domain.SellItem) (*domain.SellItem, error) {
	if it.Quantity.Sign() <= 0 {
		return nil, fmt.Errorf("UpdateSellItem: quantity: %w", domain.ErrInvalidAmount)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("UpdateSellItem: begin tx: %w", err)
	}
	defer tx.Rollback()

	old, err := s.sellItems.GetForUpdate(ctx, tx, it.ID)
	if err != nil {
		return nil, fmt.Errorf("UpdateSellItem: %w", err)
	}
	inv, err := s.invoices.GetForUpdate(ctx, tx, old.InvoiceID)
	if err != nil {
		return nil, fmt.Errorf("UpdateSellItem: %w", mapNotFound(err, domain.ErrInvoiceNotFound))
	}
	if _, err := s.items.GetByID(ctx, it.ItemID); err != nil {
		return nil, fmt.Errorf("UpdateSellItem: item %d: %w", it.ItemID, err)
	}
	unit, err := s.items.GetUnitByID(ctx, it.ItemUnitID)
	if err != nil {
		return nil, fmt.Errorf("UpdateSellItem: %w", mapNotFound(err, domain.ErrItemUnitNotFound))
	}

	if err := s.inventory.Adjust(ctx, tx, inv.WarehouseID, old.ItemID, old.BaseQuantity, true); err != nil {
		return nil, fmt.Errorf("UpdateSellItem: restore stock: %w", err)
	}

	it.InvoiceID = old.InvoiceID
	it.BaseQuantity = it.Quantity.Mul(unit.ConversionFactor)
	it.TotalAmount = it.UnitPrice.Mul(it.Quantity)

	if err := s.sellItems.Update(ctx, tx, it); err != nil {
		return nil, fmt.Errorf("UpdateSellItem: write record: %w", err)
	}
	if err := s.inventory.Adjust(ctx, tx, inv.WarehouseID, it.ItemID, it.BaseQuantity, false); err != nil {
		return nil, fmt.Errorf("UpdateSellItem: draw stock: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("UpdateSellItem: commit: %w", err)
	}

	updated, err := s.sellItems.GetByID(ctx, it.ID)
	if err != nil {
		return nil, fmt.Errorf("UpdateSellItem: reload: %w", err)
	}
	return updated, nil
}

// DeleteSellItem soft-deletes a line and puts its base quantity back.
func (s *Service) DeleteSellItem(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("DeleteSellItem: begin tx: %w", err)
	}
	defer tx.Rollback()

	old, err := s.sellItems.GetForUpdate(ctx, tx, id)
	if err != nil {
		return fmt.Errorf("DeleteSellItem: %w", err)
	}
	inv, err := s.invoices.GetForUpdate(ctx, tx, old.InvoiceID)
	if err != nil {
		return fmt.Errorf("DeleteSellItem: %w", mapNotFound(err, domain.ErrInvoiceNotFound))
	}

	if err := s.sellItems.SoftDelete(ctx, tx, id); err != nil {
		return fmt.Errorf("DeleteSellItem: %w", err)
	}
	if err := s.inventory.Adjust(ctx, tx, inv.WarehouseID, old.ItemID, old.BaseQuantity, true); err != nil {
		return fmt.Errorf("DeleteSellItem: restore stock: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("DeleteSellItem: commit: %w", err)
	}
	return nil
}

func (s *Service) GetSellItem(ctx context.Context, id int64) (*domain.SellItem, error) {
	it, err := s.sellItems.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetSellItem: %w", err)
	}
	return it, nil
}

func (s *Service) ListSellItems(ctx context.Context, invoiceID int64) ([]domain.SellItem, error) {
	items, err := s.sellItems.ListByInvoiceID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("ListSellItems: %w", err)
	}
	return items, nil
}
