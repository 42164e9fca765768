package loan

import (
	"context"

	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, l *Loan) error
	// GetByID returns ErrNotFound when no loan has the id.
	GetByID(ctx context.Context, id string) (*Loan, error)
	ListByUserID(ctx context.Context, userID string) ([]Loan, error)
	ListAll(ctx context.Context) ([]Loan, error)
	// IncrementBalance atomically adds the deltas to amount and paid without
	// reading the loan first. Returns ErrNotFound when no loan has the id.
	IncrementBalance(ctx context.Context, id string, amountDelta, paidDelta decimal.Decimal) error
}

type TransactionRepository interface {
	// Create assigns ID and CreatedAt when they are empty.
	Create(ctx context.Context, t *Transaction) error
	// Get returns ErrTransactionNotFound when the transaction does not exist under the loan.
	Get(ctx context.Context, loanID, transactionID string) (*Transaction, error)
	// ListByLoanID returns the loan's transactions, most recent first.
	ListByLoanID(ctx context.Context, loanID string) ([]Transaction, error)
	Delete(ctx context.Context, loanID, transactionID string) error
}
