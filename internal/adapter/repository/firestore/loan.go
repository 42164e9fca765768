package firestore

import (
	"context"

	fsapi "cloud.google.com/go/firestore"
	"github.com/shopspring/decimal"
	"google.golang.org/api/iterator"

	domain "loan-ledger/internal/domain/loan"
)

type LoanRepository struct{ s session }

func NewLoanRepository(client *fsapi.Client) *LoanRepository {
	return &LoanRepository{s: session{client: client}}
}

func (r *LoanRepository) col() *fsapi.CollectionRef { return r.s.client.Collection(loansCollection) }

func (r *LoanRepository) Create(ctx context.Context, l *domain.Loan) error {
	if r.s.client == nil {
		return errNilClient
	}
	ref := r.col().NewDoc()
	if l.ID != "" {
		ref = r.col().Doc(l.ID)
	}
	created, err := r.s.create(ctx, ref, loanFields(l))
	if err != nil {
		return err
	}
	l.ID = ref.ID
	if l.CreatedAt.IsZero() {
		l.CreatedAt = created
	}
	return nil
}

func (r *LoanRepository) GetByID(ctx context.Context, id string) (*domain.Loan, error) {
	if id == "" {
		return nil, domain.ErrNotFound
	}
	snap, err := r.s.get(ctx, r.col().Doc(id))
	if isNotFound(err) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	l := loanFrom(snap.Ref.ID, snap.Data())
	return &l, nil
}

func (r *LoanRepository) ListByUserID(ctx context.Context, userID string) ([]domain.Loan, error) {
	return r.collect(r.s.documents(ctx, r.col().Where(fUserID, "==", userID)))
}

func (r *LoanRepository) ListAll(ctx context.Context) ([]domain.Loan, error) {
	return r.collect(r.s.documents(ctx, r.col().Query))
}

func (r *LoanRepository) collect(it *fsapi.DocumentIterator) ([]domain.Loan, error) {
	defer it.Stop()
	var out []domain.Loan
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, loanFrom(snap.Ref.ID, snap.Data()))
	}
}

// IncrementBalance uses server-side increments, so concurrent writers never
// lose each other's updates. Inside a transaction a missing loan surfaces
// when the transaction commits.
func (r *LoanRepository) IncrementBalance(ctx context.Context, id string, amountDelta, paidDelta decimal.Decimal) error {
	if id == "" {
		return domain.ErrNotFound
	}
	err := r.s.update(ctx, r.col().Doc(id), []fsapi.Update{
		{Path: fAmount, Value: fsapi.Increment(amountDelta.InexactFloat64())},
		{Path: fPaid, Value: fsapi.Increment(paidDelta.InexactFloat64())},
	})
	if isNotFound(err) {
		return domain.ErrNotFound
	}
	return err
}
