package ledger

import "github.com/shopspring/decimal"

// RecordInput records a payment, or a reversal when IsReverse is set.
// Amount is always given as a positive magnitude.
type RecordInput struct {
	LoanID    string
	Amount    decimal.Decimal
	Date      string // YYYY-MM-DD
	Note      string
	IsReverse bool
}

type CreateLoanInput struct {
	UserEmail string
	Title     string
	Bank      string
	Amount    decimal.Decimal
	DueDate   string
	CustomID  string
}

type CreatedLoan struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	CustomID string `json:"custom_id,omitempty"`
}
