package loan

import (
	"context"
	"sort"
	"strings"

	"loan-ledger/internal/domain/apperr"
	"loan-ledger/internal/domain/identity"
	domain "loan-ledger/internal/domain/loan"

	"github.com/labstack/gommon/log"
)

// Usecase serves the read-only loan views. Reads never mutate the store.
type Usecase struct {
	loans domain.Repository
	txs   domain.TransactionRepository
	log   *log.Logger
}

func NewUsecase(loans domain.Repository, txs domain.TransactionRepository, logger *log.Logger) *Usecase {
	if logger == nil {
		logger = log.New("loan")
	}
	return &Usecase{loans: loans, txs: txs, log: logger}
}

// GetLoanByID returns nil (and no error) when the loan is absent or its
// stored document is incomplete.
func (u *Usecase) GetLoanByID(ctx context.Context, id string) (*LoanDTO, error) {
	if strings.TrimSpace(id) == "" {
		return nil, nil
	}
	l, err := u.loans.GetByID(ctx, id)
	if domain.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, u.fail("get_loan", id, err)
	}
	if !l.Valid() {
		u.log.Warnj(log.JSON{"op": "get_loan", "loan_id": id, "msg": "skipping incomplete loan"})
		return nil, nil
	}
	dto := toLoanDTO(l)
	return &dto, nil
}

// GetLoanForViewer is GetLoanByID restricted to what the caller may see:
// admins see every loan, everyone else only their own.
func (u *Usecase) GetLoanForViewer(ctx context.Context, id string, viewer *identity.Claims) (*LoanDTO, error) {
	if viewer == nil {
		return nil, identity.ErrUnauthenticated
	}
	dto, err := u.GetLoanByID(ctx, id)
	if err != nil || dto == nil {
		return nil, err
	}
	if !viewer.Admin && dto.UserID != viewer.UID {
		return nil, nil
	}
	return dto, nil
}

// GetLoanTransactions lists a loan's transactions, most recently recorded first.
// An unknown loan yields an empty list.
func (u *Usecase) GetLoanTransactions(ctx context.Context, loanID string) ([]TransactionDTO, error) {
	out := []TransactionDTO{}
	if strings.TrimSpace(loanID) == "" {
		return out, nil
	}
	txs, err := u.txs.ListByLoanID(ctx, loanID)
	if err != nil {
		return nil, u.fail("list_transactions", loanID, err)
	}
	sort.SliceStable(txs, func(i, j int) bool { return txs[i].CreatedAt.After(txs[j].CreatedAt) })
	for i := range txs {
		out = append(out, toTransactionDTO(&txs[i]))
	}
	return out, nil
}

// GetUserLoans lists the loans owned by uid. Incomplete documents are logged
// and left out.
func (u *Usecase) GetUserLoans(ctx context.Context, uid string) ([]LoanDTO, error) {
	loans, err := u.userLoans(ctx, uid)
	if err != nil {
		return nil, err
	}
	return toLoanDTOs(loans), nil
}

func (u *Usecase) GetLoanSummary(ctx context.Context, uid string) (SummaryDTO, error) {
	loans, err := u.userLoans(ctx, uid)
	if err != nil {
		return SummaryDTO{}, err
	}
	s := domain.Summarize(loans)
	return SummaryDTO{
		TotalLoan:      s.TotalLoan,
		TotalPaid:      s.TotalPaid,
		TotalRemaining: s.TotalRemaining,
		NumberOfLoans:  s.NumberOfLoans,
	}, nil
}

// ListAllLoans backs the admin dashboard. query matches title or borrower
// email, case-insensitively. Results are ordered by due date.
func (u *Usecase) ListAllLoans(ctx context.Context, query string) ([]LoanDTO, error) {
	all, err := u.loans.ListAll(ctx)
	if err != nil {
		return nil, u.fail("list_all_loans", "", err)
	}
	q := strings.ToLower(strings.TrimSpace(query))
	kept := u.valid("list_all_loans", all)
	filtered := kept[:0]
	for _, l := range kept {
		if q == "" ||
			strings.Contains(strings.ToLower(l.Title), q) ||
			strings.Contains(strings.ToLower(l.UserEmail), q) {
			filtered = append(filtered, l)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].DueDate < filtered[j].DueDate })
	return toLoanDTOs(filtered), nil
}

func (u *Usecase) userLoans(ctx context.Context, uid string) ([]domain.Loan, error) {
	if strings.TrimSpace(uid) == "" {
		return nil, nil
	}
	loans, err := u.loans.ListByUserID(ctx, uid)
	if err != nil {
		return nil, u.fail("list_user_loans", "", err)
	}
	return u.valid("list_user_loans", loans), nil
}

func (u *Usecase) valid(op string, loans []domain.Loan) []domain.Loan {
	out := make([]domain.Loan, 0, len(loans))
	for i := range loans {
		if !loans[i].Valid() {
			u.log.Warnj(log.JSON{"op": op, "loan_id": loans[i].ID, "msg": "skipping incomplete loan"})
			continue
		}
		out = append(out, loans[i])
	}
	return out
}

func (u *Usecase) fail(op, loanID string, err error) error {
	fields := log.JSON{"op": op, "error": err.Error()}
	if loanID != "" {
		fields["loan_id"] = loanID
	}
	u.log.Errorj(fields)
	return apperr.Persistence(op, err)
}

func toLoanDTOs(loans []domain.Loan) []LoanDTO {
	out := make([]LoanDTO, 0, len(loans))
	for i := range loans {
		out = append(out, toLoanDTO(&loans[i]))
	}
	return out
}
