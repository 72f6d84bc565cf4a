package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/diyar150/crm-restaurant-backend/internal/domain"
)

type branchRepo interface {
	Create(ctx context.Context, b *domain.Branch) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Branch, error)
	GetAll(ctx context.Context) ([]domain.Branch, error)
}

// BranchService is plain CRUD. The wallet starts at zero and only moves
// through the ledger engine and the expense/salary services.
type BranchService struct {
	branches branchRepo
}

func NewBranchService(branches branchRepo) *BranchService {
	return &BranchService{branches: branches}
}

func (s *BranchService) Create(ctx context.Context, b *domain.Branch) (*domain.Branch, error) {
	if b.Name == "" {
		return nil, fmt.Errorf("Create: name: %w", domain.ErrInvalidRequest)
	}

	b.Wallet = decimal.Zero
	id, err := s.branches.Create(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("Create: %w", err)
	}

	created, err := s.branches.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("Create: reload: %w", err)
	}
	return created, nil
}

func (s *BranchService) Get(ctx context.Context, id int64) (*domain.Branch, error) {
	b, err := s.branches.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return b, nil
}

func (s *BranchService) List(ctx context.Context) ([]domain.Branch, error) {
	branches, err := s.branches.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	return branches, nil
}
