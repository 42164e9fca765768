// Package firestore stores loans in Cloud Firestore: a loans collection with a
// transactions sub-collection per loan.
package firestore

import (
	"errors"
	"sort"
	"strconv"
	"time"

	fsapi "cloud.google.com/go/firestore"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	domain "loan-ledger/internal/domain/loan"
)

const (
	loansCollection        = "loans"
	transactionsCollection = "transactions"
)

// document field names
const (
	fUserID    = "userId"
	fUserEmail = "userEmail"
	fTitle     = "title"
	fBank      = "bank"
	fAmount    = "amount"
	fPaid      = "paid"
	fDueDate   = "dueDate"
	fCustomID  = "customId"
	fCreatedAt = "createdAt"
	fDate      = "date"
	fNote      = "note"
)

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func loanFields(l *domain.Loan) map[string]any {
	m := map[string]any{
		fUserID:    l.UserID,
		fUserEmail: l.UserEmail,
		fTitle:     l.Title,
		fBank:      l.Bank,
		fAmount:    l.Amount.InexactFloat64(),
		fPaid:      l.Paid.InexactFloat64(),
		fDueDate:   l.DueDate,
		fCreatedAt: fsapi.ServerTimestamp,
	}
	if l.CustomID != nil {
		m[fCustomID] = *l.CustomID
	}
	if !l.CreatedAt.IsZero() {
		m[fCreatedAt] = l.CreatedAt
	}
	return m
}

// loanFrom decodes a loan document. Documents edited by hand may lack fields
// or carry them with the wrong type; those come back zero-valued and are
// filtered later by Loan.Valid.
func loanFrom(id string, data map[string]any) domain.Loan {
	l := domain.Loan{
		ID:        id,
		UserID:    str(data[fUserID]),
		UserEmail: str(data[fUserEmail]),
		Title:     str(data[fTitle]),
		Bank:      str(data[fBank]),
		Amount:    money(data[fAmount]),
		Paid:      money(data[fPaid]),
		DueDate:   str(data[fDueDate]),
		CreatedAt: timeOf(data[fCreatedAt]),
	}
	if c := str(data[fCustomID]); c != "" {
		l.CustomID = &c
	}
	return l
}

func transactionFields(t *domain.Transaction) map[string]any {
	m := map[string]any{
		fAmount:    t.Amount.InexactFloat64(),
		fDate:      t.Date,
		fCreatedAt: fsapi.ServerTimestamp,
	}
	if t.Note != nil {
		m[fNote] = *t.Note
	}
	if !t.CreatedAt.IsZero() {
		m[fCreatedAt] = t.CreatedAt
	}
	return m
}

func transactionFrom(loanID, id string, data map[string]any) domain.Transaction {
	t := domain.Transaction{
		ID:        id,
		LoanID:    loanID,
		Amount:    money(data[fAmount]),
		Date:      str(data[fDate]),
		CreatedAt: timeOf(data[fCreatedAt]),
	}
	if n := str(data[fNote]); n != "" {
		t.Note = &n
	}
	return t
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func money(v any) decimal.Decimal {
	switch n := v.(type) {
	case int64:
		return decimal.NewFromInt(n)
	case float64:
		return decimal.NewFromFloat(n).Round(2)
	case string:
		if d, err := decimal.NewFromString(n); err == nil {
			return d
		}
	}
	return decimal.Zero
}

// timeOf accepts a Firestore timestamp, an RFC 3339 string, or epoch
// milliseconds; older documents stored createdAt as an ISO string.
func timeOf(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t.UTC()
	case string:
		if p, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return p.UTC()
		}
		if ms, err := strconv.ParseInt(t, 10, 64); err == nil {
			return time.UnixMilli(ms).UTC()
		}
	case int64:
		return time.UnixMilli(t).UTC()
	}
	return time.Time{}
}

func sortByCreatedDesc(txs []domain.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if !txs[i].CreatedAt.Equal(txs[j].CreatedAt) {
			return txs[i].CreatedAt.After(txs[j].CreatedAt)
		}
		return txs[i].ID > txs[j].ID
	})
}

var errNilClient = errors.New("firestore: nil client")
