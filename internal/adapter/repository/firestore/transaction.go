package firestore

import (
	"context"

	fsapi "cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	domain "loan-ledger/internal/domain/loan"
)

type TransactionRepository struct{ s session }

func NewTransactionRepository(client *fsapi.Client) *TransactionRepository {
	return &TransactionRepository{s: session{client: client}}
}

func (r *TransactionRepository) col(loanID string) *fsapi.CollectionRef {
	return r.s.client.Collection(loansCollection).Doc(loanID).Collection(transactionsCollection)
}

// Create keeps an ID assigned by an earlier attempt, so a retried
// transaction writes the same document.
func (r *TransactionRepository) Create(ctx context.Context, t *domain.Transaction) error {
	if r.s.client == nil {
		return errNilClient
	}
	ref := r.col(t.LoanID).NewDoc()
	if t.ID != "" {
		ref = r.col(t.LoanID).Doc(t.ID)
	}
	created, err := r.s.create(ctx, ref, transactionFields(t))
	if err != nil {
		return err
	}
	t.ID = ref.ID
	if t.CreatedAt.IsZero() {
		t.CreatedAt = created
	}
	return nil
}

func (r *TransactionRepository) Get(ctx context.Context, loanID, transactionID string) (*domain.Transaction, error) {
	if loanID == "" || transactionID == "" {
		return nil, domain.ErrTransactionNotFound
	}
	snap, err := r.s.get(ctx, r.col(loanID).Doc(transactionID))
	if isNotFound(err) {
		return nil, domain.ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	t := transactionFrom(loanID, snap.Ref.ID, snap.Data())
	return &t, nil
}

// ListByLoanID sorts in memory: createdAt is a timestamp on new documents and
// a string on old ones, and Firestore orders values of different types apart.
func (r *TransactionRepository) ListByLoanID(ctx context.Context, loanID string) ([]domain.Transaction, error) {
	if loanID == "" {
		return nil, nil
	}
	it := r.s.documents(ctx, r.col(loanID).Query)
	defer it.Stop()
	var out []domain.Transaction
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, transactionFrom(loanID, snap.Ref.ID, snap.Data()))
	}
	sortByCreatedDesc(out)
	return out, nil
}

func (r *TransactionRepository) Delete(ctx context.Context, loanID, transactionID string) error {
	if loanID == "" || transactionID == "" {
		return domain.ErrTransactionNotFound
	}
	err := r.s.delete(ctx, r.col(loanID).Doc(transactionID))
	if isNotFound(err) {
		return domain.ErrTransactionNotFound
	}
	return err
}
