package firestore

import (
	"context"

	fsapi "cloud.google.com/go/firestore"

	domain "loan-ledger/internal/domain/loan"
	"loan-ledger/internal/domain/uow"
)

var _ uow.UnitOfWork = (*UoW)(nil)

// UoW runs fn inside a Firestore transaction: documents fn reads are checked
// again at commit, and a conflicting writer makes Firestore rerun fn against
// fresh data. fn may therefore run more than once and must not keep state
// from a failed attempt other than assigned IDs.
type UoW struct{ client *fsapi.Client }

func NewUoW(client *fsapi.Client) *UoW { return &UoW{client: client} }

func (u *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if u.client == nil {
		return errNilClient
	}
	err := u.client.RunTransaction(ctx, func(ctx context.Context, tx *fsapi.Transaction) error {
		return fn(reposFor(session{client: u.client, tx: tx}))
	})
	// buffered writes against a missing loan fail at commit
	if isNotFound(err) {
		return domain.ErrNotFound
	}
	return err
}

// Repos returns repositories outside any transaction, for reads.
func (u *UoW) Repos() uow.Repos { return reposFor(session{client: u.client}) }

func reposFor(s session) uow.Repos {
	return uow.Repos{
		Loans:        &LoanRepository{s: s},
		Transactions: &TransactionRepository{s: s},
	}
}
