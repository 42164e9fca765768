package loanmock

import (
	"context"

	domain "loan-ledger/internal/domain/loan"

	"github.com/shopspring/decimal"
)

var (
	_ domain.Repository            = (*Repo)(nil)
	_ domain.TransactionRepository = (*TxRepo)(nil)
)

// Repo is a function-backed mock that satisfies domain.Repository.
// Writes default to a nil error, reads to context.Canceled.
type Repo struct {
	CreateFn           func(ctx context.Context, l *domain.Loan) error
	GetByIDFn          func(ctx context.Context, id string) (*domain.Loan, error)
	ListByUserIDFn     func(ctx context.Context, userID string) ([]domain.Loan, error)
	ListAllFn          func(ctx context.Context) ([]domain.Loan, error)
	IncrementBalanceFn func(ctx context.Context, id string, amountDelta, paidDelta decimal.Decimal) error
}

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id string) (*domain.Loan, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) ListByUserID(ctx context.Context, userID string) ([]domain.Loan, error) {
	if m.ListByUserIDFn != nil {
		return m.ListByUserIDFn(ctx, userID)
	}
	return nil, context.Canceled
}

func (m *Repo) ListAll(ctx context.Context) ([]domain.Loan, error) {
	if m.ListAllFn != nil {
		return m.ListAllFn(ctx)
	}
	return nil, context.Canceled
}

func (m *Repo) IncrementBalance(ctx context.Context, id string, amountDelta, paidDelta decimal.Decimal) error {
	if m.IncrementBalanceFn != nil {
		return m.IncrementBalanceFn(ctx, id, amountDelta, paidDelta)
	}
	return nil
}

// TxRepo is a function-backed mock that satisfies domain.TransactionRepository.
type TxRepo struct {
	CreateFn       func(ctx context.Context, t *domain.Transaction) error
	GetFn          func(ctx context.Context, loanID, transactionID string) (*domain.Transaction, error)
	ListByLoanIDFn func(ctx context.Context, loanID string) ([]domain.Transaction, error)
	DeleteFn       func(ctx context.Context, loanID, transactionID string) error
}

func (m *TxRepo) Create(ctx context.Context, t *domain.Transaction) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, t)
	}
	return nil
}

func (m *TxRepo) Get(ctx context.Context, loanID, transactionID string) (*domain.Transaction, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, loanID, transactionID)
	}
	return nil, context.Canceled
}

func (m *TxRepo) ListByLoanID(ctx context.Context, loanID string) ([]domain.Transaction, error) {
	if m.ListByLoanIDFn != nil {
		return m.ListByLoanIDFn(ctx, loanID)
	}
	return nil, context.Canceled
}

func (m *TxRepo) Delete(ctx context.Context, loanID, transactionID string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, loanID, transactionID)
	}
	return nil
}
