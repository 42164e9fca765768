package mysql

import (
	"context"
	"errors"
	"time"

	loanDomain "loan-ledger/internal/domain/loan"
	"loan-ledger/pkg/id"

	"gorm.io/gorm"
)

type TransactionRepository struct{ db *gorm.DB }

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, t *loanDomain.Transaction) error {
	if t.ID == "" {
		t.ID = id.NewID32()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *TransactionRepository) Get(ctx context.Context, loanID, transactionID string) (*loanDomain.Transaction, error) {
	var out loanDomain.Transaction
	err := r.db.WithContext(ctx).
		Where("loan_id = ? AND id = ?", loanID, transactionID).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, loanDomain.ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *TransactionRepository) ListByLoanID(ctx context.Context, loanID string) ([]loanDomain.Transaction, error) {
	var out []loanDomain.Transaction
	err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

func (r *TransactionRepository) Delete(ctx context.Context, loanID, transactionID string) error {
	res := r.db.WithContext(ctx).
		Where("loan_id = ? AND id = ?", loanID, transactionID).
		Delete(&loanDomain.Transaction{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return loanDomain.ErrTransactionNotFound
	}
	return nil
}
