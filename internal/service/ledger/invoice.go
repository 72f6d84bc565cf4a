package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/diyar150/crm-restaurant-backend/internal/domain"
	"github.com/diyar150/crm-restaurant-backend/internal/fx"
)

// invoiceAmounts holds a sell invoice's converted total: amountCust in the
// customer's currency (credit sales), walletDelta in base (direct and cash).
type invoiceAmounts struct {
	amountCust  decimal.Decimal
	walletDelta decimal.Decimal
}

// CreateInvoice persists a sell invoice and applies its single balance
// effect: direct and cash sales grow the branch wallet, credit sales grow the
// customer loan. Direct sales carry no customer; the stored customer id and
// loan snapshot are forced to zero.
func (s *Service) CreateInvoice(ctx context.Context, inv *domain.SellInvoice) (*domain.SellInvoice, error) {
	if err := validateInvoice(inv); err != nil {
		return nil, fmt.Errorf("CreateInvoice: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("CreateInvoice: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := s.lockBranches(ctx, tx, inv.BranchID); err != nil {
		return nil, fmt.Errorf("CreateInvoice: %w", branchErr(err))
	}
	if _, err := s.warehouses.GetByID(ctx, inv.WarehouseID); err != nil {
		return nil, fmt.Errorf("CreateInvoice: %w", mapNotFound(err, domain.ErrWarehouseNotFound))
	}
	if inv.EmployeeID != 0 {
		if _, err := s.users.GetByID(ctx, inv.EmployeeID); err != nil {
			return nil, fmt.Errorf("CreateInvoice: %w", mapNotFound(err, domain.ErrEmployeeNotFound))
		}
	}

	sellCur, err := s.fx.Resolve(ctx, inv.CurrencyID)
	if err != nil {
		return nil, fmt.Errorf("CreateInvoice: %w", err)
	}
	baseCur, err := s.fx.ResolveBase(ctx)
	if err != nil {
		return nil, fmt.Errorf("CreateInvoice: %w", err)
	}
	if sellCur.ExchangeRate.Sign() <= 0 {
		return nil, fmt.Errorf("CreateInvoice: %w", domain.ErrInvalidExchangeRate)
	}

	amounts := invoiceAmounts{}
	amounts.walletDelta, err = fx.Convert(inv.TotalAmount, sellCur, baseCur)
	if err != nil {
		return nil, fmt.Errorf("CreateInvoice: %w", err)
	}

	if inv.Type == domain.InvoiceTypeDirect {
		inv.CustomerID = 0
		inv.Loan = decimal.Zero
	} else {
		customers, err := s.lockCustomers(ctx, tx, inv.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("CreateInvoice: %w", customerErr(err))
		}
		customer, ok := customers[inv.CustomerID]
		if !ok {
			return nil, fmt.Errorf("CreateInvoice: %w", domain.ErrCustomerNotFound)
		}
		custCur, err := s.fx.Resolve(ctx, customer.CurrencyID)
		if err != nil {
			return nil, fmt.Errorf("CreateInvoice: %w", err)
		}
		amounts.amountCust, err = fx.Convert(inv.TotalAmount, sellCur, custCur)
		if err != nil {
			return nil, fmt.Errorf("CreateInvoice: %w", err)
		}
		inv.Loan = customer.Loan
	}

	discount, err := computeDiscount(inv.DiscountType, inv.DiscountValue, inv.TotalAmount)
	if err != nil {
		return nil, fmt.Errorf("CreateInvoice: %w", err)
	}
	inv.DiscountResult = discount
	inv.ExchangeRate = sellCur.ExchangeRate

	id, err := s.invoices.Create(ctx, tx, inv)
	if err != nil {
		return nil, fmt.Errorf("CreateInvoice: create record: %w", err)
	}
	inv.ID = id

	if err := s.applyInvoiceEffect(ctx, tx, inv.Type, inv.CustomerID, inv.BranchID, amounts, false); err != nil {
		return nil, fmt.Errorf("CreateInvoice: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("CreateInvoice: commit: %w", err)
	}

	created, err := s.invoices.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("CreateInvoice: reload: %w", err)
	}
	return created, nil
}

// UpdateInvoice rewrites an invoice and swaps its effect. Reversal always
// uses the old record's type, branch, customer and snapshot rate; a credit
// sale turned cash releases the old customer's loan and grows the new
// branch's wallet.
func (s *Service) UpdateInvoice(ctx context.Context, inv *domain.SellInvoice) (*domain.SellInvoice, error) {
	if err := validateInvoice(inv); err != nil {
		return nil, fmt.Errorf("UpdateInvoice: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("UpdateInvoice: begin tx: %w", err)
	}
	defer tx.Rollback()

	old, err := s.invoices.GetForUpdate(ctx, tx, inv.ID)
	if err != nil {
		return nil, fmt.Errorf("UpdateInvoice: %w", err)
	}

	customers, err := s.lockCustomers(ctx, tx, old.CustomerID, inv.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("UpdateInvoice: %w", customerErr(err))
	}
	if _, err := s.lockBranches(ctx, tx, old.BranchID, inv.BranchID); err != nil {
		return nil, fmt.Errorf("UpdateInvoice: %w", branchErr(err))
	}
	if _, err := s.warehouses.GetByID(ctx, inv.WarehouseID); err != nil {
		return nil, fmt.Errorf("UpdateInvoice: %w", mapNotFound(err, domain.ErrWarehouseNotFound))
	}

	baseCur, err := s.fx.ResolveBase(ctx)
	if err != nil {
		return nil, fmt.Errorf("UpdateInvoice: %w", err)
	}
	oldAmounts, err := s.convertInvoiceSnapshot(ctx, old, customers[old.CustomerID], baseCur)
	if err != nil {
		return nil, fmt.Errorf("UpdateInvoice: %w", err)
	}

	sellCur, err := s.fx.Resolve(ctx, inv.CurrencyID)
	if err != nil {
		return nil, fmt.Errorf("UpdateInvoice: %w", err)
	}
	if sellCur.ExchangeRate.Sign() <= 0 {
		return nil, fmt.Errorf("UpdateInvoice: %w", domain.ErrInvalidExchangeRate)
	}

	newAmounts := invoiceAmounts{}
	newAmounts.walletDelta, err = fx.Convert(inv.TotalAmount, sellCur, baseCur)
	if err != nil {
		return nil, fmt.Errorf("UpdateInvoice: %w", err)
	}
	if inv.Type == domain.InvoiceTypeDirect {
		inv.CustomerID = 0
		inv.Loan = decimal.Zero
	} else {
		customer, ok := customers[inv.CustomerID]
		if !ok {
			return nil, fmt.Errorf("UpdateInvoice: %w", domain.ErrCustomerNotFound)
		}
		custCur, err := s.fx.Resolve(ctx, customer.CurrencyID)
		if err != nil {
			return nil, fmt.Errorf("UpdateInvoice: %w", err)
		}
		newAmounts.amountCust, err = fx.Convert(inv.TotalAmount, sellCur, custCur)
		if err != nil {
			return nil, fmt.Errorf("UpdateInvoice: %w", err)
		}
		inv.Loan = customer.Loan
	}

	discount, err := computeDiscount(inv.DiscountType, inv.DiscountValue, inv.TotalAmount)
	if err != nil {
		return nil, fmt.Errorf("UpdateInvoice: %w", err)
	}
	inv.DiscountResult = discount
	inv.ExchangeRate = sellCur.ExchangeRate

	if err := s.invoices.Update(ctx, tx, inv); err != nil {
		return nil, fmt.Errorf("UpdateInvoice: write record: %w", err)
	}

	if err := s.applyInvoiceEffect(ctx, tx, old.Type, old.CustomerID, old.BranchID, oldAmounts, true); err != nil {
		return nil, fmt.Errorf("UpdateInvoice: reverse old: %w", err)
	}
	if err := s.applyInvoiceEffect(ctx, tx, inv.Type, inv.CustomerID, inv.BranchID, newAmounts, false); err != nil {
		return nil, fmt.Errorf("UpdateInvoice: apply new: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("UpdateInvoice: commit: %w", err)
	}

	updated, err := s.invoices.GetByID(ctx, inv.ID)
	if err != nil {
		return nil, fmt.Errorf("UpdateInvoice: reload: %w", err)
	}
	return updated, nil
}

// DeleteInvoice restores stock for every live line, soft-deletes the lines
// and the invoice, and reverses the invoice's balance effect, all in one
// transaction. A stock row that cannot be restored aborts the whole delete.
func (s *Service) DeleteInvoice(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("DeleteInvoice: begin tx: %w", err)
	}
	defer tx.Rollback()

	inv, err := s.invoices.GetForUpdate(ctx, tx, id)
	if err != nil {
		return fmt.Errorf("DeleteInvoice: %w", err)
	}

	customers, err := s.lockCustomers(ctx, tx, inv.CustomerID)
	if err != nil {
		return fmt.Errorf("DeleteInvoice: %w", customerErr(err))
	}
	if _, err := s.lockBranches(ctx, tx, inv.BranchID); err != nil {
		return fmt.Errorf("DeleteInvoice: %w", branchErr(err))
	}

	items, err := s.sellItems.GetByInvoiceID(ctx, tx, inv.ID)
	if err != nil {
		return fmt.Errorf("DeleteInvoice: %w", err)
	}
	for _, it := range items {
		if err := s.inventory.Adjust(ctx, tx, inv.WarehouseID, it.ItemID, it.BaseQuantity, true); err != nil {
			return fmt.Errorf("DeleteInvoice: restore stock item %d: %w", it.ItemID, err)
		}
		if err := s.sellItems.SoftDelete(ctx, tx, it.ID); err != nil {
			return fmt.Errorf("DeleteInvoice: item %d: %w", it.ID, err)
		}
	}

	baseCur, err := s.fx.ResolveBase(ctx)
	if err != nil {
		return fmt.Errorf("DeleteInvoice: %w", err)
	}
	amounts, err := s.convertInvoiceSnapshot(ctx, inv, customers[inv.CustomerID], baseCur)
	if err != nil {
		return fmt.Errorf("DeleteInvoice: %w", err)
	}

	if err := s.invoices.SoftDelete(ctx, tx, inv.ID); err != nil {
		return fmt.Errorf("DeleteInvoice: %w", err)
	}
	if err := s.applyInvoiceEffect(ctx, tx, inv.Type, inv.CustomerID, inv.BranchID, amounts, true); err != nil {
		return fmt.Errorf("DeleteInvoice: reverse: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("DeleteInvoice: commit: %w", err)
	}
	return nil
}

func (s *Service) GetInvoice(ctx context.Context, id int64) (*domain.SellInvoice, error) {
	inv, err := s.invoices.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetInvoice: %w", err)
	}
	return inv, nil
}

func (s *Service) FilterInvoices(ctx context.Context, f domain.InvoiceFilter) ([]domain.SellInvoice, int, error) {
	invoices, total, err := s.invoices.Filter(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("FilterInvoices: %w", err)
	}
	return invoices, total, nil
}

// applyInvoiceEffect moves exactly one balance: the branch wallet for direct
// and cash sales, the customer loan for credit sales. Never both.
func (s *Service) applyInvoiceEffect(ctx context.Context, tx *sql.Tx, t domain.InvoiceType, customerID, branchID int64, a invoiceAmounts, revert bool) error {
	if t == domain.InvoiceTypeCredit {
		if revert {
			if err := s.customers.DecreaseLoan(ctx, tx, customerID, a.amountCust); err != nil {
				return fmt.Errorf("applyInvoiceEffect: loan: %w", err)
			}
			return nil
		}
		if err := s.customers.IncreaseLoan(ctx, tx, customerID, a.amountCust); err != nil {
			return fmt.Errorf("applyInvoiceEffect: loan: %w", err)
		}
		return nil
	}
	if revert {
		if err := s.branches.DecreaseWallet(ctx, tx, branchID, a.walletDelta); err != nil {
			return fmt.Errorf("applyInvoiceEffect: wallet: %w", err)
		}
		return nil
	}
	if err := s.branches.IncreaseWallet(ctx, tx, branchID, a.walletDelta); err != nil {
		return fmt.Errorf("applyInvoiceEffect: wallet: %w", err)
	}
	return nil
}

// convertInvoiceSnapshot recomputes an existing invoice's deltas with its
// stored rate. customer is nil for direct sales.
func (s *Service) convertInvoiceSnapshot(ctx context.Context, inv *domain.SellInvoice, customer *domain.Customer, baseCur *domain.Currency) (invoiceAmounts, error) {
	a := invoiceAmounts{}
	var err error
	a.walletDelta, err = convertSnapshot(inv.TotalAmount, inv.CurrencyID, inv.ExchangeRate, baseCur)
	if err != nil {
		return invoiceAmounts{}, err
	}
	if inv.Type == domain.InvoiceTypeCredit {
		if customer == nil {
			return invoiceAmounts{}, domain.ErrCustomerNotFound
		}
		custCur, err := s.fx.Resolve(ctx, customer.CurrencyID)
		if err != nil {
			return invoiceAmounts{}, err
		}
		a.amountCust, err = convertSnapshot(inv.TotalAmount, inv.CurrencyID, inv.ExchangeRate, custCur)
		if err != nil {
			return invoiceAmounts{}, err
		}
	}
	return a, nil
}

func validateInvoice(inv *domain.SellInvoice) error {
	if !inv.Type.IsValid() {
		return fmt.Errorf("invoice type %q: %w", inv.Type, domain.ErrInvalidType)
	}
	if !inv.DiscountType.IsValid() {
		return fmt.Errorf("discount type %q: %w", inv.DiscountType, domain.ErrInvalidType)
	}
	if inv.TotalAmount.Sign() <= 0 {
		return fmt.Errorf("total amount: %w", domain.ErrInvalidAmount)
	}
	if inv.Type != domain.InvoiceTypeDirect && inv.CustomerID == 0 {
		return fmt.Errorf("customer: %w", domain.ErrInvalidRequest)
	}
	return nil
}
