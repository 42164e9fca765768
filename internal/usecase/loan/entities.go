package loan

import (
	"time"

	domain "loan-ledger/internal/domain/loan"

	"github.com/shopspring/decimal"
)

type LoanDTO struct {
	ID              string          `json:"id"`
	CustomID        string          `json:"custom_id,omitempty"`
	UserID          string          `json:"user_id"`
	UserEmail       string          `json:"user_email,omitempty"`
	Title           string          `json:"title"`
	Bank            string          `json:"bank"`
	Amount          decimal.Decimal `json:"amount"`
	Paid            decimal.Decimal `json:"paid"`
	Remaining       decimal.Decimal `json:"remaining"`
	DueDate         string          `json:"due_date"`
	Settled         bool            `json:"settled"`
	ProgressPercent int64           `json:"progress_percent"`
	CreatedAt       time.Time       `json:"created_at"`
}

type TransactionDTO struct {
	ID         string          `json:"id"`
	Amount     decimal.Decimal `json:"amount"`
	Date       string          `json:"date"`
	Note       string          `json:"note,omitempty"`
	IsReversal bool            `json:"is_reversal"`
	CreatedAt  time.Time       `json:"created_at"`
}

type SummaryDTO struct {
	TotalLoan      decimal.Decimal `json:"total_loan"`
	TotalPaid      decimal.Decimal `json:"total_paid"`
	TotalRemaining decimal.Decimal `json:"total_remaining"`
	NumberOfLoans  int             `json:"number_of_loans"`
}

func toLoanDTO(l *domain.Loan) LoanDTO {
	dto := LoanDTO{
		ID:              l.ID,
		UserID:          l.UserID,
		UserEmail:       l.UserEmail,
		Title:           l.Title,
		Bank:            l.Bank,
		Amount:          l.Amount,
		Paid:            l.Paid,
		Remaining:       l.Remaining(),
		DueDate:         l.DueDate,
		Settled:         l.Settled(),
		ProgressPercent: l.ProgressPercent(),
		CreatedAt:       l.CreatedAt,
	}
	if l.CustomID != nil {
		dto.CustomID = *l.CustomID
	}
	return dto
}

func toTransactionDTO(t *domain.Transaction) TransactionDTO {
	dto := TransactionDTO{
		ID:         t.ID,
		Amount:     t.Amount,
		Date:       t.Date,
		IsReversal: t.IsReversal(),
		CreatedAt:  t.CreatedAt,
	}
	if t.Note != nil {
		dto.Note = *t.Note
	}
	return dto
}
