package loan

import (
	"context"
	"errors"
	"testing"
	"time"

	"loan-ledger/internal/domain/apperr"
	"loan-ledger/internal/domain/identity"
	domain "loan-ledger/internal/domain/loan"
	"loan-ledger/internal/testutil/loanmock"

	"github.com/shopspring/decimal"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func sampleLoan(id, uid string, amount, paid int64) domain.Loan {
	return domain.Loan{
		ID: id, UserID: uid, UserEmail: uid + "@example.com",
		Title: "Loan " + id, Bank: "BCA",
		Amount: dec(amount), Paid: dec(paid), DueDate: "2026-01-01",
	}
}

func TestGetLoanByID(t *testing.T) {
	ctx := context.Background()
	store := map[string]domain.Loan{
		"ok":         sampleLoan("ok", "u1", 100000, 25000),
		"incomplete": {ID: "incomplete", UserID: "u1"},
	}
	uc := NewUsecase(&loanmock.Repo{
		GetByIDFn: func(_ context.Context, id string) (*domain.Loan, error) {
			l, ok := store[id]
			if !ok {
				return nil, domain.ErrNotFound
			}
			return &l, nil
		},
	}, &loanmock.TxRepo{}, nil)

	dto, err := uc.GetLoanByID(ctx, "ok")
	if err != nil || dto == nil {
		t.Fatalf("GetLoanByID: got %+v, %v", dto, err)
	}
	if !dto.Remaining.Equal(dec(75000)) || dto.ProgressPercent != 25 || dto.Settled {
		t.Fatalf("derived fields wrong: %+v", dto)
	}

	for _, id := range []string{"missing", "incomplete", ""} {
		dto, err := uc.GetLoanByID(ctx, id)
		if err != nil || dto != nil {
			t.Fatalf("GetLoanByID(%q): want nil, nil; got %+v, %v", id, dto, err)
		}
	}
}

func TestGetLoanByID_StoreFailure(t *testing.T) {
	uc := NewUsecase(&loanmock.Repo{
		GetByIDFn: func(context.Context, string) (*domain.Loan, error) {
			return nil, errors.New("unavailable")
		},
	}, &loanmock.TxRepo{}, nil)
	if _, err := uc.GetLoanByID(context.Background(), "x"); !errors.Is(err, apperr.ErrPersistence) {
		t.Fatalf("want ErrPersistence, got %v", err)
	}
}

func TestGetLoanForViewer(t *testing.T) {
	ctx := context.Background()
	l := sampleLoan("L1", "owner", 100, 0)
	uc := NewUsecase(&loanmock.Repo{
		GetByIDFn: func(context.Context, string) (*domain.Loan, error) { return &l, nil },
	}, &loanmock.TxRepo{}, nil)

	cases := []struct {
		name    string
		viewer  *identity.Claims
		visible bool
	}{
		{"owner", &identity.Claims{UID: "owner"}, true},
		{"admin", &identity.Claims{UID: "someone", Admin: true}, true},
		{"other user", &identity.Claims{UID: "intruder"}, false},
	}
	for _, tc := range cases {
		dto, err := uc.GetLoanForViewer(ctx, "L1", tc.viewer)
		if err != nil {
			t.Fatalf("%s: unexpected err %v", tc.name, err)
		}
		if (dto != nil) != tc.visible {
			t.Fatalf("%s: visible=%v, want %v", tc.name, dto != nil, tc.visible)
		}
	}
	if _, err := uc.GetLoanForViewer(ctx, "L1", nil); !errors.Is(err, identity.ErrUnauthenticated) {
		t.Fatalf("nil viewer: want ErrUnauthenticated, got %v", err)
	}
}

func TestGetLoanTransactions_NewestFirst(t *testing.T) {
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	note := "fee"
	uc := NewUsecase(&loanmock.Repo{}, &loanmock.TxRepo{
		ListByLoanIDFn: func(_ context.Context, loanID string) ([]domain.Transaction, error) {
			if loanID != "L1" {
				return nil, nil
			}
			// Entry dates deliberately disagree with creation order.
			return []domain.Transaction{
				{ID: "t1", Amount: dec(100), Date: "2025-03-05", CreatedAt: base},
				{ID: "t3", Amount: dec(-20), Date: "2025-01-01", Note: &note, CreatedAt: base.Add(2 * time.Hour)},
				{ID: "t2", Amount: dec(50), Date: "2025-02-01", CreatedAt: base.Add(time.Hour)},
			}, nil
		},
	}, nil)

	got, err := uc.GetLoanTransactions(context.Background(), "L1")
	if err != nil {
		t.Fatalf("GetLoanTransactions: %v", err)
	}
	if len(got) != 3 || got[0].ID != "t3" || got[1].ID != "t2" || got[2].ID != "t1" {
		t.Fatalf("order wrong: %+v", got)
	}
	if !got[0].IsReversal || got[0].Note != "fee" || got[1].IsReversal {
		t.Fatalf("dto mapping wrong: %+v", got)
	}

	empty, err := uc.GetLoanTransactions(context.Background(), "other")
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("unknown loan: want empty non-nil list, got %#v, %v", empty, err)
	}
}

func TestGetUserLoans_SkipsIncomplete(t *testing.T) {
	uc := NewUsecase(&loanmock.Repo{
		ListByUserIDFn: func(_ context.Context, uid string) ([]domain.Loan, error) {
			return []domain.Loan{
				sampleLoan("a", uid, 100, 10),
				{ID: "broken", UserID: uid, Title: "no bank"},
				sampleLoan("b", uid, 200, 200),
			}, nil
		},
	}, &loanmock.TxRepo{}, nil)

	got, err := uc.GetUserLoans(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetUserLoans: %v", err)
	}
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Fatalf("want a,b; got %+v", got)
	}
	if !got[1].Settled || got[1].ProgressPercent != 100 {
		t.Fatalf("fully paid loan should be settled: %+v", got[1])
	}

	none, err := uc.GetUserLoans(context.Background(), "")
	if err != nil || none == nil || len(none) != 0 {
		t.Fatalf("empty uid: want empty list, got %#v, %v", none, err)
	}
}

func TestGetLoanSummary(t *testing.T) {
	ctx := context.Background()
	uc := NewUsecase(&loanmock.Repo{
		ListByUserIDFn: func(_ context.Context, uid string) ([]domain.Loan, error) {
			if uid != "u1" {
				return nil, nil
			}
			return []domain.Loan{
				sampleLoan("a", uid, 100000, 25000),
				sampleLoan("b", uid, 50000, 50000),
			}, nil
		},
	}, &loanmock.TxRepo{}, nil)

	s, err := uc.GetLoanSummary(ctx, "u1")
	if err != nil {
		t.Fatalf("GetLoanSummary: %v", err)
	}
	if !s.TotalLoan.Equal(dec(150000)) || !s.TotalPaid.Equal(dec(75000)) ||
		!s.TotalRemaining.Equal(dec(75000)) || s.NumberOfLoans != 2 {
		t.Fatalf("summary wrong: %+v", s)
	}

	zero, err := uc.GetLoanSummary(ctx, "nobody")
	if err != nil || zero.NumberOfLoans != 0 || !zero.TotalLoan.IsZero() || !zero.TotalRemaining.IsZero() {
		t.Fatalf("empty summary wrong: %+v, %v", zero, err)
	}
}

func TestListAllLoans_FilterAndOrder(t *testing.T) {
	a := sampleLoan("a", "alice", 100, 0)
	a.DueDate = "2026-05-01"
	b := sampleLoan("b", "bob", 100, 0)
	b.Title = "Motorbike"
	b.DueDate = "2026-02-01"
	c := sampleLoan("c", "carol", 100, 0)
	c.DueDate = "2026-03-01"

	uc := NewUsecase(&loanmock.Repo{
		ListAllFn: func(context.Context) ([]domain.Loan, error) { return []domain.Loan{a, b, c}, nil },
	}, &loanmock.TxRepo{}, nil)

	all, err := uc.ListAllLoans(context.Background(), "")
	if err != nil || len(all) != 3 || all[0].ID != "b" || all[1].ID != "c" || all[2].ID != "a" {
		t.Fatalf("unfiltered: got %+v, %v", all, err)
	}
	byTitle, _ := uc.ListAllLoans(context.Background(), "MOTOR")
	if len(byTitle) != 1 || byTitle[0].ID != "b" {
		t.Fatalf("title filter: got %+v", byTitle)
	}
	byEmail, _ := uc.ListAllLoans(context.Background(), "carol@")
	if len(byEmail) != 1 || byEmail[0].ID != "c" {
		t.Fatalf("email filter: got %+v", byEmail)
	}
}

func TestListAllLoans_StoreFailure(t *testing.T) {
	uc := NewUsecase(&loanmock.Repo{}, &loanmock.TxRepo{}, nil) // ListAll default → context.Canceled
	if _, err := uc.ListAllLoans(context.Background(), ""); !errors.Is(err, apperr.ErrPersistence) {
		t.Fatalf("want ErrPersistence, got %v", err)
	}
}
