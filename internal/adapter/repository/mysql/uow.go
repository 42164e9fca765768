package mysql

import (
	"context"

	"loan-ledger/internal/domain/uow"

	"gorm.io/gorm"
)

// GormUoW runs ledger steps inside one database transaction, so a payment
// record and its balance increment commit together.
type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(reposFor(tx))
	})
}

// Repos returns repositories bound to the plain connection, for reads.
func (u *GormUoW) Repos() uow.Repos { return reposFor(u.db) }

func reposFor(db *gorm.DB) uow.Repos {
	return uow.Repos{
		Loans:        &LoanRepository{db: db},
		Transactions: &TransactionRepository{db: db},
	}
}
