package uow

import (
	"context"

	"loan-ledger/internal/domain/loan"
)

type Repos struct {
	Loans        loan.Repository
	Transactions loan.TransactionRepository
}

type UnitOfWork interface {
	// WithinTx runs fn with repositories bound to one unit of work. Stores with
	// multi-document transactions commit or roll back fn as a whole; stores
	// without them run fn's steps in order and a failure leaves earlier steps
	// applied, so fn must order its writes accordingly.
	WithinTx(ctx context.Context, fn func(r Repos) error) error
}
