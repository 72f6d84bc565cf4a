package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/diyar150/crm-restaurant-backend/internal/domain"
	"github.com/diyar150/crm-restaurant-backend/internal/fx"
)

var oneHundred = decimal.NewFromInt(100)

// paymentAmounts holds a payment's balance deltas after conversion:
// loanDelta in the customer's currency, walletDelta in the base currency.
type paymentAmounts struct {
	amountCust   decimal.Decimal
	discountCust decimal.Decimal
	walletDelta  decimal.Decimal
}

func (a paymentAmounts) loanDelta() decimal.Decimal {
	return a.amountCust.Add(a.discountCust)
}

// CreatePayment validates, converts, persists and applies a payment in one
// transaction. The stored record snapshots the payment currency's rate so the
// effect can later be reversed with the rate that was actually in force.
func (s *Service) CreatePayment(ctx context.Context, p *domain.Payment) (*domain.Payment, error) {
	if err := validatePayment(p); err != nil {
		return nil, fmt.Errorf("CreatePayment: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("CreatePayment: begin tx: %w", err)
	}
	defer tx.Rollback()

	customers, err := s.lockCustomers(ctx, tx, p.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("CreatePayment: %w", customerErr(err))
	}
	customer := customers[p.CustomerID]

	if _, err := s.lockBranches(ctx, tx, p.BranchID); err != nil {
		return nil, fmt.Errorf("CreatePayment: %w", branchErr(err))
	}

	payCur, custCur, baseCur, err := s.resolvePaymentCurrencies(ctx, p.CurrencyID, customer.CurrencyID)
	if err != nil {
		return nil, fmt.Errorf("CreatePayment: %w", err)
	}

	discount, err := computeDiscount(p.DiscountType, p.DiscountValue, p.Amount)
	if err != nil {
		return nil, fmt.Errorf("CreatePayment: %w", err)
	}
	amounts, err := convertPayment(p.Amount, discount, payCur, custCur, baseCur)
	if err != nil {
		return nil, fmt.Errorf("CreatePayment: %w", err)
	}
	if err := validateDiscountBound(p.DiscountType, amounts.discountCust, customer.Loan); err != nil {
		return nil, fmt.Errorf("CreatePayment: %w", err)
	}

	p.DiscountResult = discount
	p.ExchangeRate = payCur.ExchangeRate
	p.Result = customer.Loan.Sub(amounts.amountCust).Sub(amounts.discountCust)
	p.Loan = p.Result

	id, err := s.payments.Create(ctx, tx, p)
	if err != nil {
		return nil, fmt.Errorf("CreatePayment: create record: %w", err)
	}
	p.ID = id

	if err := s.applyPaymentEffect(ctx, tx, p.Type, p.CustomerID, p.BranchID, amounts, false); err != nil {
		return nil, fmt.Errorf("CreatePayment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("CreatePayment: commit: %w", err)
	}

	created, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("CreatePayment: reload: %w", err)
	}
	return created, nil
}

// UpdatePayment rewrites a payment and swaps its balance effect: the old
// effect is reversed against the old customer, branch and type using the
// stored snapshot rate, then the new effect is applied with live rates.
func (s *Service) UpdatePayment(ctx context.Context, p *domain.Payment) (*domain.Payment, error) {
	if err := validatePayment(p); err != nil {
		return nil, fmt.Errorf("UpdatePayment: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("UpdatePayment: begin tx: %w", err)
	}
	defer tx.Rollback()

	old, err := s.payments.GetForUpdate(ctx, tx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("UpdatePayment: %w", err)
	}

	customers, err := s.lockCustomers(ctx, tx, old.CustomerID, p.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("UpdatePayment: %w", customerErr(err))
	}
	if _, err := s.lockBranches(ctx, tx, old.BranchID, p.BranchID); err != nil {
		return nil, fmt.Errorf("UpdatePayment: %w", branchErr(err))
	}
	oldCustomer := customers[old.CustomerID]
	newCustomer := customers[p.CustomerID]

	baseCur, err := s.fx.ResolveBase(ctx)
	if err != nil {
		return nil, fmt.Errorf("UpdatePayment: %w", err)
	}
	oldCustCur, err := s.fx.Resolve(ctx, oldCustomer.CurrencyID)
	if err != nil {
		return nil, fmt.Errorf("UpdatePayment: %w", err)
	}
	oldAmounts, err := convertPaymentSnapshot(old, oldCustCur, baseCur)
	if err != nil {
		return nil, fmt.Errorf("UpdatePayment: %w", err)
	}

	payCur, custCur, _, err := s.resolvePaymentCurrencies(ctx, p.CurrencyID, newCustomer.CurrencyID)
	if err != nil {
		return nil, fmt.Errorf("UpdatePayment: %w", err)
	}
	discount, err := computeDiscount(p.DiscountType, p.DiscountValue, p.Amount)
	if err != nil {
		return nil, fmt.Errorf("UpdatePayment: %w", err)
	}
	newAmounts, err := convertPayment(p.Amount, discount, payCur, custCur, baseCur)
	if err != nil {
		return nil, fmt.Errorf("UpdatePayment: %w", err)
	}
	if err := validateDiscountBound(p.DiscountType, newAmounts.discountCust, newCustomer.Loan); err != nil {
		return nil, fmt.Errorf("UpdatePayment: %w", err)
	}

	p.DiscountResult = discount
	p.ExchangeRate = payCur.ExchangeRate
	p.Result = newCustomer.Loan.Sub(newAmounts.amountCust).Sub(newAmounts.discountCust)
	p.Loan = p.Result

	if err := s.payments.Update(ctx, tx, p); err != nil {
		return nil, fmt.Errorf("UpdatePayment: write record: %w", err)
	}

	if err := s.applyPaymentEffect(ctx, tx, old.Type, old.CustomerID, old.BranchID, oldAmounts, true); err != nil {
		return nil, fmt.Errorf("UpdatePayment: reverse old: %w", err)
	}
	if err := s.applyPaymentEffect(ctx, tx, p.Type, p.CustomerID, p.BranchID, newAmounts, false); err != nil {
		return nil, fmt.Errorf("UpdatePayment: apply new: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("UpdatePayment: commit: %w", err)
	}

	updated, err := s.payments.GetByID(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("UpdatePayment: reload: %w", err)
	}
	return updated, nil
}

// DeletePayment soft-deletes a payment and reverses its balance effect using
// the snapshot rate stored on the record.
func (s *Service) DeletePayment(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("DeletePayment: begin tx: %w", err)
	}
	defer tx.Rollback()

	p, err := s.payments.GetForUpdate(ctx, tx, id)
	if err != nil {
		return fmt.Errorf("DeletePayment: %w", err)
	}

	customers, err := s.lockCustomers(ctx, tx, p.CustomerID)
	if err != nil {
		return fmt.Errorf("DeletePayment: %w", customerErr(err))
	}
	if _, err := s.lockBranches(ctx, tx, p.BranchID); err != nil {
		return fmt.Errorf("DeletePayment: %w", branchErr(err))
	}
	customer := customers[p.CustomerID]

	baseCur, err := s.fx.ResolveBase(ctx)
	if err != nil {
		return fmt.Errorf("DeletePayment: %w", err)
	}
	custCur, err := s.fx.Resolve(ctx, customer.CurrencyID)
	if err != nil {
		return fmt.Errorf("DeletePayment: %w", err)
	}
	amounts, err := convertPaymentSnapshot(p, custCur, baseCur)
	if err != nil {
		return fmt.Errorf("DeletePayment: %w", err)
	}

	if err := s.payments.SoftDelete(ctx, tx, id); err != nil {
		return fmt.Errorf("DeletePayment: %w", err)
	}
	if err := s.applyPaymentEffect(ctx, tx, p.Type, p.CustomerID, p.BranchID, amounts, true); err != nil {
		return fmt.Errorf("DeletePayment: reverse: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("DeletePayment: commit: %w", err)
	}
	return nil
}

func (s *Service) GetPayment(ctx context.Context, id int64) (*domain.Payment, error) {
	p, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetPayment: %w", err)
	}
	return p, nil
}

func (s *Service) FilterPayments(ctx context.Context, f domain.PaymentFilter) ([]domain.Payment, error) {
	payments, err := s.payments.Filter(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("FilterPayments: %w", err)
	}
	return payments, nil
}

// applyPaymentEffect moves the balances for one payment. A "payment" pays the
// customer out: wallet down by the base amount, loan up by the
// customer-currency total. A "receipt" mirrors both; revert mirrors again.
func (s *Service) applyPaymentEffect(ctx context.Context, tx *sql.Tx, t domain.PaymentType, customerID, branchID int64, a paymentAmounts, revert bool) error {
	walletDown := (t == domain.PaymentTypePayment) != revert
	if walletDown {
		if err := s.branches.DecreaseWallet(ctx, tx, branchID, a.walletDelta); err != nil {
			return fmt.Errorf("applyPaymentEffect: wallet: %w", err)
		}
		if err := s.customers.IncreaseLoan(ctx, tx, customerID, a.loanDelta()); err != nil {
			return fmt.Errorf("applyPaymentEffect: loan: %w", err)
		}
		return nil
	}
	if err := s.branches.IncreaseWallet(ctx, tx, branchID, a.walletDelta); err != nil {
		return fmt.Errorf("applyPaymentEffect: wallet: %w", err)
	}
	if err := s.customers.DecreaseLoan(ctx, tx, customerID, a.loanDelta()); err != nil {
		return fmt.Errorf("applyPaymentEffect: loan: %w", err)
	}
	return nil
}

func (s *Service) resolvePaymentCurrencies(ctx context.Context, paymentCurrencyID, customerCurrencyID int64) (payCur, custCur, baseCur *domain.Currency, err error) {
	payCur, err = s.fx.Resolve(ctx, paymentCurrencyID)
	if err != nil {
		return nil, nil, nil, err
	}
	custCur, err = s.fx.Resolve(ctx, customerCurrencyID)
	if err != nil {
		return nil, nil, nil, err
	}
	baseCur, err = s.fx.ResolveBase(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	if payCur.ExchangeRate.Sign() <= 0 || custCur.ExchangeRate.Sign() <= 0 {
		return nil, nil, nil, domain.ErrInvalidExchangeRate
	}
	return payCur, custCur, baseCur, nil
}

// convertPayment computes the balance deltas with live rates.
func convertPayment(amount, discount decimal.Decimal, payCur, custCur, baseCur *domain.Currency) (paymentAmounts, error) {
	amountCust, err := fx.Convert(amount, payCur, custCur)
	if err != nil {
		return paymentAmounts{}, err
	}
	discountCust, err := fx.Convert(discount, payCur, custCur)
	if err != nil {
		return paymentAmounts{}, err
	}
	walletDelta, err := fx.Convert(amount, payCur, baseCur)
	if err != nil {
		return paymentAmounts{}, err
	}
	return paymentAmounts{amountCust: amountCust, discountCust: discountCust, walletDelta: walletDelta}, nil
}

// convertPaymentSnapshot computes the deltas of an existing record with the
// exchange rate stored at creation, so a reversal undoes exactly what the
// create applied even if the live rate has since changed.
func convertPaymentSnapshot(p *domain.Payment, custCur, baseCur *domain.Currency) (paymentAmounts, error) {
	amountCust, err := convertSnapshot(p.Amount, p.CurrencyID, p.ExchangeRate, custCur)
	if err != nil {
		return paymentAmounts{}, err
	}
	discountCust, err := convertSnapshot(p.DiscountResult, p.CurrencyID, p.ExchangeRate, custCur)
	if err != nil {
		return paymentAmounts{}, err
	}
	walletDelta, err := convertSnapshot(p.Amount, p.CurrencyID, p.ExchangeRate, baseCur)
	if err != nil {
		return paymentAmounts{}, err
	}
	return paymentAmounts{amountCust: amountCust, discountCust: discountCust, walletDelta: walletDelta}, nil
}

// convertSnapshot converts with a stored rate on the from side. Same-currency
// amounts pass through so no snapshot drift can appear.
func convertSnapshot(amount decimal.Decimal, fromCurrencyID int64, snapshotRate decimal.Decimal, to *domain.Currency) (decimal.Decimal, error) {
	if fromCurrencyID == to.ID {
		return amount, nil
	}
	return fx.ConvertRate(amount, snapshotRate, to.ExchangeRate)
}

func validatePayment(p *domain.Payment) error {
	if !p.Type.IsValid() {
		return fmt.Errorf("payment type %q: %w", p.Type, domain.ErrInvalidType)
	}
	if !p.DiscountType.IsValid() {
		return fmt.Errorf("discount type %q: %w", p.DiscountType, domain.ErrInvalidType)
	}
	if p.Amount.Sign() <= 0 {
		return fmt.Errorf("amount: %w", domain.ErrInvalidAmount)
	}
	return nil
}

// computeDiscount turns the requested discount into a concrete amount in the
// transaction currency.
func computeDiscount(t domain.DiscountType, value, amount decimal.Decimal) (decimal.Decimal, error) {
	switch t {
	case domain.DiscountTypeNone:
		return decimal.Zero, nil
	case domain.DiscountTypePercent:
		if value.Sign() < 0 {
			return decimal.Zero, domain.ErrNegativeDiscount
		}
		if value.GreaterThan(oneHundred) {
			return decimal.Zero, domain.ErrDiscountTooHigh
		}
		return amount.Mul(value).Div(oneHundred), nil
	case domain.DiscountTypeAmount:
		if value.Sign() < 0 {
			return decimal.Zero, domain.ErrNegativeDiscount
		}
		return value, nil
	default:
		return decimal.Zero, domain.ErrInvalidType
	}
}

// validateDiscountBound checks a fixed-amount discount against the customer's
// current loan before anything is persisted.
func validateDiscountBound(t domain.DiscountType, discountCust, loan decimal.Decimal) error {
	if t != domain.DiscountTypeAmount {
		return nil
	}
	if discountCust.Abs().GreaterThan(loan.Abs()) {
		return domain.ErrDiscountExceedsLoan
	}
	return nil
}

func customerErr(err error) error {
	return mapNotFound(err, domain.ErrCustomerNotFound)
}

func branchErr(err error) error {
	return mapNotFound(err, domain.ErrBranchNotFound)
}
