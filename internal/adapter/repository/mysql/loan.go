package mysql

import (
	"context"
	"errors"

	loanDomain "loan-ledger/internal/domain/loan"
	"loan-ledger/pkg/id"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.Loan) error {
	if l.ID == "" {
		l.ID = id.NewID32()
	}
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LoanRepository) GetByID(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	err := r.db.WithContext(ctx).Where("id = ?", loanID).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, loanDomain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *LoanRepository) ListByUserID(ctx context.Context, userID string) ([]loanDomain.Loan, error) {
	var out []loanDomain.Loan
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

func (r *LoanRepository) ListAll(ctx context.Context) ([]loanDomain.Loan, error) {
	var out []loanDomain.Loan
	err := r.db.WithContext(ctx).Order("due_date ASC, id ASC").Find(&out).Error
	return out, err
}

// IncrementBalance issues a single UPDATE ... SET col = col + ? so concurrent
// payments never overwrite each other.
func (r *LoanRepository) IncrementBalance(ctx context.Context, loanID string, amountDelta, paidDelta decimal.Decimal) error {
	db := r.db.WithContext(ctx)
	if amountDelta.IsZero() && paidDelta.IsZero() {
		// MySQL reports 0 affected rows for a no-op update; only check existence.
		var n int64
		if err := db.Model(&loanDomain.Loan{}).Where("id = ?", loanID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return loanDomain.ErrNotFound
		}
		return nil
	}

	updates := map[string]any{}
	if !amountDelta.IsZero() {
		updates["amount"] = gorm.Expr("amount + ?", amountDelta)
	}
	if !paidDelta.IsZero() {
		updates["paid"] = gorm.Expr("paid + ?", paidDelta)
	}
	res := db.Model(&loanDomain.Loan{}).Where("id = ?", loanID).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return loanDomain.ErrNotFound
	}
	return nil
}
