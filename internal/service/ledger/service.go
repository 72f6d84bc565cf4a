// Package ledger applies and reverses the balance effects of payments and
// sell invoices. Every mutation runs inside a single database transaction:
// the record write and all loan/wallet/stock adjustments commit together or
// not at all.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/diyar150/crm-restaurant-backend/internal/domain"
)

type paymentRepo interface {
	Create(ctx context.Context, tx *sql.Tx, p *domain.Payment) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Payment, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.Payment, error)
	Update(ctx context.Context, tx *sql.Tx, p *domain.Payment) error
	SoftDelete(ctx context.Context, tx *sql.Tx, id int64) error
	Filter(ctx context.Context, f domain.PaymentFilter) ([]domain.Payment, error)
}

type invoiceRepo interface {
	Create(ctx context.Context, tx *sql.Tx, inv *domain.SellInvoice) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.SellInvoice, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.SellInvoice, error)
	Update(ctx context.Context, tx *sql.Tx, inv *domain.SellInvoice) error
	SoftDelete(ctx context.Context, tx *sql.Tx, id int64) error
	Filter(ctx context.Context, f domain.InvoiceFilter) ([]domain.SellInvoice, int, error)
}

type sellItemRepo interface {
	Create(ctx context.Context, tx *sql.Tx, it *domain.SellItem) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.SellItem, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.SellItem, error)
	GetByInvoiceID(ctx context.Context, tx *sql.Tx, invoiceID int64) ([]domain.SellItem, error)
	ListByInvoiceID(ctx context.Context, invoiceID int64) ([]domain.SellItem, error)
	Update(ctx context.Context, tx *sql.Tx, it *domain.SellItem) error
	SoftDelete(ctx context.Context, tx *sql.Tx, id int64) error
}

type customerRepo interface {
	GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.Customer, error)
	IncreaseLoan(ctx context.Context, tx *sql.Tx, id int64, amount decimal.Decimal) error
	DecreaseLoan(ctx context.Context, tx *sql.Tx, id int64, amount decimal.Decimal) error
}

type branchRepo interface {
	GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.Branch, error)
	IncreaseWallet(ctx context.Context, tx *sql.Tx, id int64, amount decimal.Decimal) error
	DecreaseWallet(ctx context.Context, tx *sql.Tx, id int64, amount decimal.Decimal) error
}

type warehouseRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Warehouse, error)
}

type userRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type itemRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Item, error)
	GetUnitByID(ctx context.Context, id int64) (*domain.ItemUnit, error)
}

type inventoryRepo interface {
	Adjust(ctx context.Context, tx *sql.Tx, warehouseID, itemID int64, baseQuantity decimal.Decimal, revert bool) error
}

type currencyResolver interface {
	Resolve(ctx context.Context, id int64) (*domain.Currency, error)
	ResolveBase(ctx context.Context) (*domain.Currency, error)
}

type Service struct {
	payments   paymentRepo
	invoices   invoiceRepo
	sellItems  sellItemRepo
	customers  customerRepo
	branches   branchRepo
	warehouses warehouseRepo
	users      userRepo
	items      itemRepo
	inventory  inventoryRepo
	fx         currencyResolver
	db         *sql.DB
}

func NewService(
	payments paymentRepo,
	invoices invoiceRepo,
	sellItems sellItemRepo,
	customers customerRepo,
	branches branchRepo,
	warehouses warehouseRepo,
	users userRepo,
	items itemRepo,
	inventory inventoryRepo,
	fxResolver currencyResolver,
	db *sql.DB,
) *Service {
	return &Service{
		payments:   payments,
		invoices:   invoices,
		sellItems:  sellItems,
		customers:  customers,
		branches:   branches,
		warehouses: warehouses,
		users:      users,
		items:      items,
		inventory:  inventory,
		fx:         fxResolver,
		db:         db,
	}
}

// lockCustomers acquires FOR UPDATE locks on the given customer rows in
// ascending id order so two concurrent mutations touching the same pair of
// customers cannot deadlock. Duplicate ids are locked once.
func (s *Service) lockCustomers(ctx context.Context, tx *sql.Tx, ids ...int64) (map[int64]*domain.Customer, error) {
	locked := make(map[int64]*domain.Customer, len(ids))
	for _, id := range sortedUnique(ids) {
		c, err := s.customers.GetForUpdate(ctx, tx, id)
		if err != nil {
			return nil, fmt.Errorf("lockCustomers: customer %d: %w", id, err)
		}
		locked[id] = c
	}
	return locked, nil
}

func (s *Service) lockBranches(ctx context.Context, tx *sql.Tx, ids ...int64) (map[int64]*domain.Branch, error) {
	locked := make(map[int64]*domain.Branch, len(ids))
	for _, id := range sortedUnique(ids) {
		b, err := s.branches.GetForUpdate(ctx, tx, id)
		if err != nil {
			return nil, fmt.Errorf("lockBranches: branch %d: %w", id, err)
		}
		locked[id] = b
	}
	return locked, nil
}

// mapNotFound narrows a generic missing-row error to the sentinel naming the
// entity, so a missing customer reads as a validation failure and not as the
// target record being gone.
func mapNotFound(err error, sentinel error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return sentinel
	}
	return err
}

func sortedUnique(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	var out []int64
	for _, id := range ids {
		if id != 0 && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
