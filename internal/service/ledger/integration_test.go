package ledger_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diyar150/crm-restaurant-backend/internal/domain"
	"github.com/diyar150/crm-restaurant-backend/internal/fx"
	"github.com/diyar150/crm-restaurant-backend/internal/repository"
	"github.com/diyar150/crm-restaurant-backend/internal/service/ledger"
	"github.com/diyar150/crm-restaurant-backend/internal/testutil"
)

func setupLedgerService(t *testing.T, db *sql.DB) *ledger.Service {
	t.Helper()
	return ledger.NewService(
		repository.NewPaymentRepository(db),
		repository.NewSellInvoiceRepository(db),
		repository.NewSellItemRepository(db),
		repository.NewCustomerRepository(db),
		repository.NewBranchRepository(db),
		repository.NewWarehouseRepository(db),
		repository.NewUserRepository(db),
		repository.NewItemRepository(db),
		repository.NewInventoryRepository(db),
		fx.NewResolver(repository.NewCurrencyRepository(db)),
		db,
	)
}

func setLiveRate(t *testing.T, db *sql.DB, currencyID int64, rate string) {
	t.Helper()
	_, err := db.Exec(`UPDATE currency SET exchange_rate = $1 WHERE id = $2`, rate, currencyID)
	require.NoError(t, err)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, got.Equal(decimal.RequireFromString(want)), "want %s got %s", want, got)
}

func TestCreatePayment_SameCurrency(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupLedgerService(t, db)
	ctx := context.Background()

	usd := testutil.SeedCurrency(t, db, "US Dollar", "USD", decimal.NewFromInt(1), true)
	branchID := testutil.SeedBranch(t, db, "Main", decimal.NewFromInt(1000))
	customerID := testutil.SeedCustomer(t, db, "Azad", usd, decimal.NewFromInt(500))

	p, err := svc.CreatePayment(ctx, &domain.Payment{
		CustomerID: customerID,
		BranchID:   branchID,
		Type:       domain.PaymentTypePayment,
		Amount:     decimal.NewFromInt(100),
		CurrencyID: usd,
	})

	require.NoError(t, err)
	// A payment pays the customer out: wallet down, loan up.
	assertDecimal(t, "900", testutil.GetWallet(t, db, branchID))
	assertDecimal(t, "600", testutil.GetLoan(t, db, customerID))
	// The record projects the loan as if this were a receipt settling it.
	assertDecimal(t, "400", p.Result)
	assertDecimal(t, "400", p.Loan)
	assertDecimal(t, "1", p.ExchangeRate)
}

func TestCreateReceipt_CrossCurrency(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupLedgerService(t, db)
	ctx := context.Background()

	usd := testutil.SeedCurrency(t, db, "US Dollar", "USD", decimal.NewFromInt(1), true)
	eur := testutil.SeedCurrency(t, db, "Euro", "EUR", decimal.RequireFromString("0.9"), false)
	branchID := testutil.SeedBranch(t, db, "Main", decimal.NewFromInt(1000))
	customerID := testutil.SeedCustomer(t, db, "Azad", usd, decimal.NewFromInt(500))

	// 90 EUR at 0.9 EUR per USD is 100 USD in both the customer's currency
	// and the base currency.
	p, err := svc.CreatePayment(ctx, &domain.Payment{
		CustomerID: customerID,
		BranchID:   branchID,
		Type:       domain.PaymentTypeReceipt,
		Amount:     decimal.NewFromInt(90),
		CurrencyID: eur,
	})

	require.NoError(t, err)
	assertDecimal(t, "1100", testutil.GetWallet(t, db, branchID))
	assertDecimal(t, "400", testutil.GetLoan(t, db, customerID))
	assertDecimal(t, "400", p.Result)
	assertDecimal(t, "0.9", p.ExchangeRate)
}

func TestCreateReceipt_FixedDiscount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupLedgerService(t, db)
	ctx := context.Background()

	usd := testutil.SeedCurrency(t, db, "US Dollar", "USD", decimal.NewFromInt(1), true)
	branchID := testutil.SeedBranch(t, db, "Main", decimal.NewFromInt(1000))
	customerID := testutil.SeedCustomer(t, db, "Azad", usd, decimal.NewFromInt(500))

	p, err := svc.CreatePayment(ctx, &domain.Payment{
		CustomerID:    customerID,
		BranchID:      branchID,
		Type:          domain.PaymentTypeReceipt,
		Amount:        decimal.NewFromInt(100),
		CurrencyID:    usd,
		DiscountType:  domain.DiscountTypeAmount,
		DiscountValue: decimal.NewFromInt(20),
	})

	require.NoError(t, err)
	// Only the paid amount reaches the wallet; the discount is forgiven loan.
	assertDecimal(t, "1100", testutil.GetWallet(t, db, branchID))
	assertDecimal(t, "380", testutil.GetLoan(t, db, customerID))
	assertDecimal(t, "20", p.DiscountResult)
	assertDecimal(t, "380", p.Result)
}

func TestCreatePayment_DiscountExceedsLoan(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupLedgerService(t, db)
	ctx := context.Background()

	usd := testutil.SeedCurrency(t, db, "US Dollar", "USD", decimal.NewFromInt(1), true)
	branchID := testutil.SeedBranch(t, db, "Main", decimal.NewFromInt(1000))
	customerID := testutil.SeedCustomer(t, db, "Azad", usd, decimal.NewFromInt(10))

	_, err := svc.CreatePayment(ctx, &domain.Payment{
		CustomerID:    customerID,
		BranchID:      branchID,
		Type:          domain.PaymentTypeReceipt,
		Amount:        decimal.NewFromInt(100),
		CurrencyID:    usd,
		DiscountType:  domain.DiscountTypeAmount,
		DiscountValue: decimal.NewFromInt(50),
	})

	require.ErrorIs(t, err, domain.ErrDiscountExceedsLoan)
	// Nothing moved.
	assertDecimal(t, "1000", testutil.GetWallet(t, db, branchID))
	assertDecimal(t, "10", testutil.GetLoan(t, db, customerID))
}

func TestDeletePayment_RestoresBalancesAfterRateChange(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupLedgerService(t, db)
	ctx := context.Background()

	usd := testutil.SeedCurrency(t, db, "US Dollar", "USD", decimal.NewFromInt(1), true)
	eur := testutil.SeedCurrency(t, db, "Euro", "EUR", decimal.RequireFromString("0.9"), false)
	branchID := testutil.SeedBranch(t, db, "Main", decimal.NewFromInt(1000))
	customerID := testutil.SeedCustomer(t, db, "Azad", usd, decimal.NewFromInt(500))

	p, err := svc.CreatePayment(ctx, &domain.Payment{
		CustomerID: customerID,
		BranchID:   branchID,
		Type:       domain.PaymentTypeReceipt,
		Amount:     decimal.NewFromInt(90),
		CurrencyID: eur,
	})
	require.NoError(t, err)

	// The live rate moving must not change what the reversal undoes.
	setLiveRate(t, db, eur, "0.5")

	require.NoError(t, svc.DeletePayment(ctx, p.ID))

	assertDecimal(t, "1000", testutil.GetWallet(t, db, branchID))
	assertDecimal(t, "500", testutil.GetLoan(t, db, customerID))

	_, err = svc.GetPayment(ctx, p.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdatePayment_EqualsDeleteThenCreate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupLedgerService(t, db)
	ctx := context.Background()

	usd := testutil.SeedCurrency(t, db, "US Dollar", "USD", decimal.NewFromInt(1), true)
	branchA := testutil.SeedBranch(t, db, "A", decimal.NewFromInt(1000))
	branchB := testutil.SeedBranch(t, db, "B", decimal.NewFromInt(1000))
	customerID := testutil.SeedCustomer(t, db, "Azad", usd, decimal.NewFromInt(500))

	p, err := svc.CreatePayment(ctx, &domain.Payment{
		CustomerID: customerID,
		BranchID:   branchA,
		Type:       domain.PaymentTypeReceipt,
		Amount:     decimal.NewFromInt(100),
		CurrencyID: usd,
	})
	require.NoError(t, err)

	// Flip the type, move the branch, change the amount. The old effect on
	// branch A is fully reversed and the new one lands on branch B.
	p.Type = domain.PaymentTypePayment
	p.BranchID = branchB
	p.Amount = decimal.NewFromInt(40)

	updated, err := svc.UpdatePayment(ctx, p)
	require.NoError(t, err)

	assertDecimal(t, "1000", testutil.GetWallet(t, db, branchA))
	assertDecimal(t, "960", testutil.GetWallet(t, db, branchB))
	// 500 - 100 (receipt reversed) + 40 (payment applied) back to 540.
	assertDecimal(t, "540", testutil.GetLoan(t, db, customerID))
	// Result projects from the loan as read before the swap: 400 - 40.
	assertDecimal(t, "360", updated.Result)
}

func TestCreateInvoice_Direct(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupLedgerService(t, db)
	ctx := context.Background()

	usd := testutil.SeedCurrency(t, db, "US Dollar", "USD", decimal.NewFromInt(1), true)
	branchID := testutil.SeedBranch(t, db, "Main", decimal.NewFromInt(1000))
	warehouseID := testutil.SeedWarehouse(t, db, branchID, "Central")
	customerID := testutil.SeedCustomer(t, db, "Azad", usd, decimal.NewFromInt(500))

	inv, err := svc.CreateInvoice(ctx, &domain.SellInvoice{
		Type:        domain.InvoiceTypeDirect,
		TotalAmount: decimal.NewFromInt(200),
		CustomerID:  customerID, // ignored for direct sales
		BranchID:    branchID,
		WarehouseID: warehouseID,
		CurrencyID:  usd,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(0), inv.CustomerID)
	assertDecimal(t, "0", inv.Loan)
	assertDecimal(t, "1200", testutil.GetWallet(t, db, branchID))
	assertDecimal(t, "500", testutil.GetLoan(t, db, customerID))
}

func TestCreateInvoice_Cash(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupLedgerService(t, db)
	ctx := context.Background()

	usd := testutil.SeedCurrency(t, db, "US Dollar", "USD", decimal.NewFromInt(1), true)
	branchID := testutil.SeedBranch(t, db, "Main", decimal.NewFromInt(1000))
	warehouseID := testutil.SeedWarehouse(t, db, branchID, "Central")
	customerID := testutil.SeedCustomer(t, db, "Azad", usd, decimal.NewFromInt(500))

	inv, err := svc.CreateInvoice(ctx, &domain.SellInvoice{
		Type:        domain.InvoiceTypeCash,
		TotalAmount: decimal.NewFromInt(200),
		CustomerID:  customerID,
		BranchID:    branchID,
		WarehouseID: warehouseID,
		CurrencyID:  usd,
	})

	require.NoError(t, err)
	// Cash settles immediately: wallet moves, the loan only gets snapshotted.
	assertDecimal(t, "1200", testutil.GetWallet(t, db, branchID))
	assertDecimal(t, "500", testutil.GetLoan(t, db, customerID))
	assertDecimal(t, "500", inv.Loan)
}

func TestCreateInvoice_Credit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupLedgerService(t, db)
	ctx := context.Background()

	usd := testutil.SeedCurrency(t, db, "US Dollar", "USD", decimal.NewFromInt(1), true)
	branchID := testutil.SeedBranch(t, db, "Main", decimal.NewFromInt(1000))
	warehouseID := testutil.SeedWarehouse(t, db, branchID, "Central")
	customerID := testutil.SeedCustomer(t, db, "Azad", usd, decimal.NewFromInt(500))

	_, err := svc.CreateInvoice(ctx, &domain.SellInvoice{
		Type:        domain.InvoiceTypeCredit,
		TotalAmount: decimal.NewFromInt(200),
		CustomerID:  customerID,
		BranchID:    branchID,
		WarehouseID: warehouseID,
		CurrencyID:  usd,
	})

	require.NoError(t, err)
	// Credit never touches the wallet.
	assertDecimal(t, "1000", testutil.GetWallet(t, db, branchID))
	assertDecimal(t, "700", testutil.GetLoan(t, db, customerID))
}

func TestDeleteInvoice_RestoresStockAndBalances(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupLedgerService(t, db)
	ctx := context.Background()

	usd := testutil.SeedCurrency(t, db, "US Dollar", "USD", decimal.NewFromInt(1), true)
	branchID := testutil.SeedBranch(t, db, "Main", decimal.NewFromInt(1000))
	warehouseID := testutil.SeedWarehouse(t, db, branchID, "Central")
	customerID := testutil.SeedCustomer(t, db, "Azad", usd, decimal.NewFromInt(500))
	itemID, unitID := testutil.SeedItem(t, db, warehouseID, "Rice 5kg", decimal.NewFromInt(1), decimal.NewFromInt(50))

	inv, err := svc.CreateInvoice(ctx, &domain.SellInvoice{
		Type:        domain.InvoiceTypeCredit,
		TotalAmount: decimal.NewFromInt(200),
		CustomerID:  customerID,
		BranchID:    branchID,
		WarehouseID: warehouseID,
		CurrencyID:  usd,
	})
	require.NoError(t, err)

	_, err = svc.CreateSellItem(ctx, &domain.SellItem{
		InvoiceID:  inv.ID,
		ItemID:     itemID,
		ItemUnitID: unitID,
		Quantity:   decimal.NewFromInt(8),
		UnitPrice:  decimal.NewFromInt(25),
	})
	require.NoError(t, err)
	assertDecimal(t, "42", testutil.GetStock(t, db, warehouseID, itemID))

	require.NoError(t, svc.DeleteInvoice(ctx, inv.ID))

	assertDecimal(t, "50", testutil.GetStock(t, db, warehouseID, itemID))
	assertDecimal(t, "500", testutil.GetLoan(t, db, customerID))
	assertDecimal(t, "1000", testutil.GetWallet(t, db, branchID))

	_, err = svc.GetInvoice(ctx, inv.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	items, err := svc.ListSellItems(ctx, inv.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestUpdateInvoice_CreditToCash(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupLedgerService(t, db)
	ctx := context.Background()

	usd := testutil.SeedCurrency(t, db, "US Dollar", "USD", decimal.NewFromInt(1), true)
	branchID := testutil.SeedBranch(t, db, "Main", decimal.NewFromInt(1000))
	warehouseID := testutil.SeedWarehouse(t, db, branchID, "Central")
	customerID := testutil.SeedCustomer(t, db, "Azad", usd, decimal.NewFromInt(500))

	inv, err := svc.CreateInvoice(ctx, &domain.SellInvoice{
		Type:        domain.InvoiceTypeCredit,
		TotalAmount: decimal.NewFromInt(200),
		CustomerID:  customerID,
		BranchID:    branchID,
		WarehouseID: warehouseID,
		CurrencyID:  usd,
	})
	require.NoError(t, err)
	assertDecimal(t, "700", testutil.GetLoan(t, db, customerID))

	inv.Type = domain.InvoiceTypeCash
	_, err = svc.UpdateInvoice(ctx, inv)
	require.NoError(t, err)

	// The credit effect is released and the cash effect applied.
	assertDecimal(t, "500", testutil.GetLoan(t, db, customerID))
	assertDecimal(t, "1200", testutil.GetWallet(t, db, branchID))
}

func TestSellItem_StockSymmetry(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupLedgerService(t, db)
	ctx := context.Background()

	usd := testutil.SeedCurrency(t, db, "US Dollar", "USD", decimal.NewFromInt(1), true)
	branchID := testutil.SeedBranch(t, db, "Main", decimal.NewFromInt(1000))
	warehouseID := testutil.SeedWarehouse(t, db, branchID, "Central")
	// One carton is 12 pieces of stock.
	itemID, unitID := testutil.SeedItem(t, db, warehouseID, "Cola", decimal.NewFromInt(12), decimal.NewFromInt(120))

	inv, err := svc.CreateInvoice(ctx, &domain.SellInvoice{
		Type:        domain.InvoiceTypeDirect,
		TotalAmount: decimal.NewFromInt(100),
		BranchID:    branchID,
		WarehouseID: warehouseID,
		CurrencyID:  usd,
	})
	require.NoError(t, err)

	it, err := svc.CreateSellItem(ctx, &domain.SellItem{
		InvoiceID:  inv.ID,
		ItemID:     itemID,
		ItemUnitID: unitID,
		Quantity:   decimal.NewFromInt(3),
		UnitPrice:  decimal.NewFromInt(10),
	})
	require.NoError(t, err)
	assertDecimal(t, "36", it.BaseQuantity)
	assertDecimal(t, "30", it.TotalAmount)
	assertDecimal(t, "84", testutil.GetStock(t, db, warehouseID, itemID))

	it.Quantity = decimal.NewFromInt(5)
	updated, err := svc.UpdateSellItem(ctx, it)
	require.NoError(t, err)
	assertDecimal(t, "60", updated.BaseQuantity)
	assertDecimal(t, "60", testutil.GetStock(t, db, warehouseID, itemID))

	require.NoError(t, svc.DeleteSellItem(ctx, updated.ID))
	assertDecimal(t, "120", testutil.GetStock(t, db, warehouseID, itemID))
}

func TestCreateSellItem_NoStockRow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupLedgerService(t, db)
	ctx := context.Background()

	usd := testutil.SeedCurrency(t, db, "US Dollar", "USD", decimal.NewFromInt(1), true)
	branchID := testutil.SeedBranch(t, db, "Main", decimal.NewFromInt(1000))
	warehouseID := testutil.SeedWarehouse(t, db, branchID, "Central")
	otherWarehouse := testutil.SeedWarehouse(t, db, branchID, "Remote")
	// Stock exists only in the other warehouse.
	itemID, unitID := testutil.SeedItem(t, db, otherWarehouse, "Cola", decimal.NewFromInt(1), decimal.NewFromInt(10))

	inv, err := svc.CreateInvoice(ctx, &domain.SellInvoice{
		Type:        domain.InvoiceTypeDirect,
		TotalAmount: decimal.NewFromInt(100),
		BranchID:    branchID,
		WarehouseID: warehouseID,
		CurrencyID:  usd,
	})
	require.NoError(t, err)

	_, err = svc.CreateSellItem(ctx, &domain.SellItem{
		InvoiceID:  inv.ID,
		ItemID:     itemID,
		ItemUnitID: unitID,
		Quantity:   decimal.NewFromInt(1),
		UnitPrice:  decimal.NewFromInt(10),
	})
	require.ErrorIs(t, err, domain.ErrStockNotFound)

	// The line must not survive the failed stock draw.
	items, err := svc.ListSellItems(ctx, inv.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}
