package loan

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-date format used for due dates and transaction dates.
const DateLayout = "2006-01-02"

// Loan is a tracked debt obligation. Amount and Paid are only ever changed
// through IncrementBalance.
type Loan struct {
	ID        string          `gorm:"primaryKey;size:32;column:id" json:"id"`
	CustomID  *string         `gorm:"size:50;column:custom_id" json:"custom_id,omitempty"`
	UserID    string          `gorm:"size:128;column:user_id;index:idx_loans_user_id" json:"user_id"`
	UserEmail string          `gorm:"size:320;column:user_email" json:"user_email"`
	Title     string          `gorm:"size:255;column:title" json:"title"`
	Bank      string          `gorm:"size:255;column:bank" json:"bank"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,2);column:amount" json:"amount"`
	Paid      decimal.Decimal `gorm:"type:decimal(18,2);column:paid" json:"paid"`
	DueDate   string          `gorm:"size:10;column:due_date" json:"due_date"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Loan) TableName() string { return "loans" }

// Remaining is Amount - Paid.
func (l *Loan) Remaining() decimal.Decimal { return l.Amount.Sub(l.Paid) }

// Settled reports whether nothing remains to be paid.
func (l *Loan) Settled() bool { return !l.Remaining().IsPositive() }

// ProgressPercent is the rounded share of Amount already paid, capped at 100.
func (l *Loan) ProgressPercent() int64 {
	if !l.Amount.IsPositive() {
		return 0
	}
	pct := l.Paid.Div(l.Amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}

// Valid reports whether the loan carries every required field. Stores may
// hold documents written by hand, so reads check this before surfacing one.
func (l *Loan) Valid() bool {
	if l == nil || l.ID == "" {
		return false
	}
	if strings.TrimSpace(l.UserID) == "" || l.Title == "" || l.Bank == "" || l.DueDate == "" {
		return false
	}
	return true
}

// Transaction is one signed payment (positive) or reversal (negative) on a loan.
type Transaction struct {
	ID        string          `gorm:"primaryKey;size:32;column:id" json:"id"`
	LoanID    string          `gorm:"size:32;column:loan_id;index:idx_transactions_loan_created,priority:1" json:"loan_id"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,2);column:amount" json:"amount"`
	Date      string          `gorm:"size:10;column:date" json:"date"`
	Note      *string         `gorm:"type:text;column:note" json:"note,omitempty"`
	CreatedAt time.Time       `gorm:"column:created_at;index:idx_transactions_loan_created,priority:2" json:"created_at"`
}

func (Transaction) TableName() string { return "transactions" }

// IsReversal reports whether the transaction reversed an earlier payment.
func (t *Transaction) IsReversal() bool { return !t.Amount.IsPositive() }

// BalanceDelta is the change a transaction applied to its loan when it was
// recorded. Undoing it means applying the negation.
//
//	payment  (+a): amount += 0, paid += a
//	reversal (-a): amount += a, paid += 0
func (t *Transaction) BalanceDelta() (amountDelta, paidDelta decimal.Decimal) {
	if t.IsReversal() {
		return t.Amount.Neg(), decimal.Zero
	}
	return decimal.Zero, t.Amount
}

// Summary aggregates a set of loans.
type Summary struct {
	TotalLoan      decimal.Decimal `json:"total_loan"`
	TotalPaid      decimal.Decimal `json:"total_paid"`
	TotalRemaining decimal.Decimal `json:"total_remaining"`
	NumberOfLoans  int             `json:"number_of_loans"`
}

// Summarize folds loans into a Summary. An empty slice yields all zeros.
func Summarize(loans []Loan) Summary {
	s := Summary{TotalLoan: decimal.Zero, TotalPaid: decimal.Zero}
	for i := range loans {
		s.TotalLoan = s.TotalLoan.Add(loans[i].Amount)
		s.TotalPaid = s.TotalPaid.Add(loans[i].Paid)
	}
	s.TotalRemaining = s.TotalLoan.Sub(s.TotalPaid)
	s.NumberOfLoans = len(loans)
	return s
}
