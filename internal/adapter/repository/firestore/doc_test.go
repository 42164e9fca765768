package firestore

import (
	"testing"
	"time"

	fsapi "cloud.google.com/go/firestore"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	domain "loan-ledger/internal/domain/loan"
)

func TestLoanFrom_FullDocument(t *testing.T) {
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	l := loanFrom("abc", map[string]any{
		"userId":    "u1",
		"userEmail": "u1@example.com",
		"title":     "Home",
		"bank":      "HDFC",
		"amount":    int64(100000),
		"paid":      25000.5,
		"dueDate":   "2030-01-01",
		"customId":  "HL-1",
		"createdAt": created,
	})

	assert.Equal(t, "abc", l.ID)
	assert.True(t, l.Amount.Equal(decimal.NewFromInt(100000)))
	assert.True(t, l.Paid.Equal(decimal.RequireFromString("25000.5")))
	require.NotNil(t, l.CustomID)
	assert.Equal(t, "HL-1", *l.CustomID)
	assert.Equal(t, created, l.CreatedAt)
	assert.True(t, l.Valid())
}

func TestLoanFrom_HandWrittenDocumentIsInvalid(t *testing.T) {
	l := loanFrom("x", map[string]any{"title": "No owner", "amount": "oops", "bank": 7})
	assert.False(t, l.Valid())
	assert.True(t, l.Amount.IsZero())
	assert.Empty(t, l.Bank)
	assert.Nil(t, l.CustomID)
}

func TestTimeOf(t *testing.T) {
	want := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	cases := map[string]any{
		"timestamp": want,
		"rfc3339":   "2024-06-01T12:00:00Z",
		"offset":    "2024-06-01T14:00:00+02:00",
		"millis":    "1717243200000",
		"int":       int64(1717243200000),
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			assert.True(t, want.Equal(timeOf(in)), "got %v", timeOf(in))
		})
	}
	assert.True(t, timeOf(nil).IsZero())
	assert.True(t, timeOf("yesterday").IsZero())
}

func TestLoanFields_ServerTimestampWhenUnset(t *testing.T) {
	m := loanFields(&domain.Loan{UserID: "u", Amount: decimal.NewFromInt(10), Paid: decimal.Zero})
	assert.Equal(t, fsapi.ServerTimestamp, m["createdAt"])
	assert.Equal(t, float64(10), m["amount"])
	_, hasCustom := m["customId"]
	assert.False(t, hasCustom)

	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m = loanFields(&domain.Loan{CreatedAt: at})
	assert.Equal(t, at, m["createdAt"])
}

func TestTransactionRoundTripThroughFields(t *testing.T) {
	note := "March"
	in := &domain.Transaction{
		Amount:    decimal.NewFromInt(-5000),
		Date:      "2025-03-01",
		Note:      &note,
		CreatedAt: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	out := transactionFrom("L1", "T1", transactionFields(in))
	assert.True(t, out.Amount.Equal(in.Amount))
	assert.True(t, out.IsReversal())
	assert.Equal(t, "L1", out.LoanID)
	require.NotNil(t, out.Note)
	assert.Equal(t, note, *out.Note)
	assert.Equal(t, in.CreatedAt, out.CreatedAt)
}

func TestSortByCreatedDesc(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	txs := []domain.Transaction{
		{ID: "a", CreatedAt: base},
		{ID: "c", CreatedAt: base.Add(time.Hour)},
		{ID: "b", CreatedAt: base},
		{ID: "z"},
	}
	sortByCreatedDesc(txs)
	ids := []string{txs[0].ID, txs[1].ID, txs[2].ID, txs[3].ID}
	assert.Equal(t, []string{"c", "b", "a", "z"}, ids)
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(status.Error(codes.NotFound, "no document")))
	assert.False(t, isNotFound(status.Error(codes.Unavailable, "down")))
	assert.False(t, isNotFound(nil))
}
