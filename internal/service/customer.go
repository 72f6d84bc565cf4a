package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/diyar150/crm-restaurant-backend/internal/domain"
)

type customerRepo interface {
	Create(ctx context.Context, c *domain.Customer) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
	Filter(ctx context.Context, f domain.CustomerFilter) ([]domain.Customer, error)
	Update(ctx context.Context, c *domain.Customer) error
	SoftDelete(ctx context.Context, id int64) error
}

type currencyChecker interface {
	Resolve(ctx context.Context, id int64) (*domain.Currency, error)
}

type CustomerService struct {
	customers  customerRepo
	currencies currencyChecker
}

func NewCustomerService(customers customerRepo, currencies currencyChecker) *CustomerService {
	return &CustomerService{customers: customers, currencies: currencies}
}

// Create registers a customer with a zero opening loan. Only the ledger
// engine moves loans after this point, except for an explicit Update.
func (s *CustomerService) Create(ctx context.Context, c *domain.Customer) (*domain.Customer, error) {
	if c.Name == "" {
		return nil, fmt.Errorf("Create: name: %w", domain.ErrInvalidRequest)
	}
	if _, err := s.currencies.Resolve(ctx, c.CurrencyID); err != nil {
		return nil, fmt.Errorf("Create: %w", err)
	}

	c.Loan = decimal.Zero
	id, err := s.customers.Create(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("Create: %w", err)
	}

	created, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("Create: reload: %w", err)
	}
	return created, nil
}

// Update rewrites the customer row, loan included: an explicit loan value in
// the request supersedes whatever the ledger accumulated.
func (s *CustomerService) Update(ctx context.Context, c *domain.Customer) (*domain.Customer, error) {
	if c.Name == "" {
		return nil, fmt.Errorf("Update: name: %w", domain.ErrInvalidRequest)
	}
	if _, err := s.currencies.Resolve(ctx, c.CurrencyID); err != nil {
		return nil, fmt.Errorf("Update: %w", err)
	}

	if err := s.customers.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("Update: %w", err)
	}

	updated, err := s.customers.GetByID(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("Update: reload: %w", err)
	}
	return updated, nil
}

func (s *CustomerService) Delete(ctx context.Context, id int64) error {
	if err := s.customers.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	return nil
}

func (s *CustomerService) Get(ctx context.Context, id int64) (*domain.Customer, error) {
	c, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return c, nil
}

func (s *CustomerService) Filter(ctx context.Context, f domain.CustomerFilter) ([]domain.Customer, error) {
	customers, err := s.customers.Filter(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("Filter: %w", err)
	}
	return customers, nil
}
