package firestore

import (
	"context"
	"time"

	fsapi "cloud.google.com/go/firestore"
)

// session routes document operations through a transaction when one is
// bound, and straight to the client otherwise. Inside a transaction every
// read must come before the first write.
type session struct {
	client *fsapi.Client
	tx     *fsapi.Transaction
}

func (s session) get(ctx context.Context, ref *fsapi.DocumentRef) (*fsapi.DocumentSnapshot, error) {
	if s.tx != nil {
		return s.tx.Get(ref)
	}
	return ref.Get(ctx)
}

// create returns the creation time when the write is committed here; inside a
// transaction the commit happens later, so the local clock stands in.
func (s session) create(ctx context.Context, ref *fsapi.DocumentRef, data map[string]any) (time.Time, error) {
	if s.tx != nil {
		if err := s.tx.Create(ref, data); err != nil {
			return time.Time{}, err
		}
		return time.Now().UTC(), nil
	}
	wr, err := ref.Create(ctx, data)
	if err != nil {
		return time.Time{}, err
	}
	return wr.UpdateTime.UTC(), nil
}

func (s session) update(ctx context.Context, ref *fsapi.DocumentRef, updates []fsapi.Update) error {
	if s.tx != nil {
		return s.tx.Update(ref, updates)
	}
	_, err := ref.Update(ctx, updates)
	return err
}

func (s session) delete(ctx context.Context, ref *fsapi.DocumentRef) error {
	if s.tx != nil {
		return s.tx.Delete(ref, fsapi.Exists)
	}
	_, err := ref.Delete(ctx, fsapi.Exists)
	return err
}

func (s session) documents(ctx context.Context, q fsapi.Query) *fsapi.DocumentIterator {
	if s.tx != nil {
		return s.tx.Documents(q)
	}
	return q.Documents(ctx)
}
