package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"loan-ledger/internal/domain/apperr"
	"loan-ledger/internal/domain/identity"
	domain "loan-ledger/internal/domain/loan"
	"loan-ledger/internal/domain/uow"

	"github.com/labstack/gommon/log"
	"github.com/shopspring/decimal"
)

const maxCustomIDLen = 50

type Usecase struct {
	uow   uow.UnitOfWork
	users identity.Provider
	log   *log.Logger
}

// NewUsecase wires the ledger writes. users resolves borrower emails for CreateLoan.
func NewUsecase(tx uow.UnitOfWork, users identity.Provider, logger *log.Logger) *Usecase {
	if logger == nil {
		logger = log.New("ledger")
	}
	return &Usecase{uow: tx, users: users, log: logger}
}

// RecordTransaction stores a payment or reversal and applies it to the loan
// balance. The record is written before the balance so a failure in between
// leaves a visible record rather than an unexplained balance change.
func (u *Usecase) RecordTransaction(ctx context.Context, in RecordInput) error {
	ve := &apperr.ValidationError{}
	if strings.TrimSpace(in.LoanID) == "" {
		ve.Add("loanId", "is required")
	}
	if !in.Amount.IsPositive() {
		ve.Add("amount", "must be greater than 0")
	}
	if !validDate(in.Date) {
		ve.Add("date", "must be a date in YYYY-MM-DD format")
	}
	if err := ve.OrNil(); err != nil {
		return err
	}

	signed := in.Amount
	if in.IsReverse {
		signed = signed.Neg()
	}
	t := &domain.Transaction{
		LoanID: in.LoanID,
		Amount: signed,
		Date:   in.Date,
		Note:   optional(in.Note),
	}

	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if _, err := r.Loans.GetByID(ctx, in.LoanID); err != nil {
			return err
		}
		if err := r.Transactions.Create(ctx, t); err != nil {
			return fmt.Errorf("create transaction: %w", err)
		}
		amountDelta, paidDelta := t.BalanceDelta()
		if err := r.Loans.IncrementBalance(ctx, in.LoanID, amountDelta, paidDelta); err != nil {
			return fmt.Errorf("apply balance: %w", err)
		}
		return nil
	})
	return u.fail("record_transaction", in.LoanID, t.ID, err)
}

// DeleteTransaction undoes a recorded transaction. The balance is rolled back
// before the record is removed, the mirror image of RecordTransaction.
func (u *Usecase) DeleteTransaction(ctx context.Context, loanID, transactionID string) error {
	ve := &apperr.ValidationError{}
	if strings.TrimSpace(loanID) == "" {
		ve.Add("loanId", "is required")
	}
	if strings.TrimSpace(transactionID) == "" {
		ve.Add("transactionId", "is required")
	}
	if err := ve.OrNil(); err != nil {
		return err
	}

	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		t, err := r.Transactions.Get(ctx, loanID, transactionID)
		if err != nil {
			return err
		}
		amountDelta, paidDelta := t.BalanceDelta()
		if err := r.Loans.IncrementBalance(ctx, loanID, amountDelta.Neg(), paidDelta.Neg()); err != nil {
			return fmt.Errorf("roll back balance: %w", err)
		}
		if err := r.Transactions.Delete(ctx, loanID, transactionID); err != nil {
			return fmt.Errorf("delete transaction: %w", err)
		}
		return nil
	})
	return u.fail("delete_transaction", loanID, transactionID, err)
}

// CreateLoan registers a new loan for the borrower with the given email.
func (u *Usecase) CreateLoan(ctx context.Context, in CreateLoanInput) (*CreatedLoan, error) {
	email := strings.TrimSpace(in.UserEmail)
	customID := strings.TrimSpace(in.CustomID)

	ve := &apperr.ValidationError{}
	if email == "" {
		ve.Add("userEmail", "is required")
	}
	if strings.TrimSpace(in.Title) == "" {
		ve.Add("title", "is required")
	}
	if strings.TrimSpace(in.Bank) == "" {
		ve.Add("bank", "is required")
	}
	if !in.Amount.IsPositive() {
		ve.Add("amount", "must be greater than 0")
	}
	if !validDate(in.DueDate) {
		ve.Add("dueDate", "must be a date in YYYY-MM-DD format")
	}
	if len(customID) > maxCustomIDLen {
		ve.Add("customId", fmt.Sprintf("must be at most %d characters", maxCustomIDLen))
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	user, err := u.users.GetUserByEmail(ctx, email)
	if errors.Is(err, identity.ErrUserNotFound) {
		return nil, apperr.Invalid("userEmail", "user not found")
	}
	if err != nil {
		u.log.Errorj(log.JSON{"op": "create_loan", "error": err.Error()})
		return nil, apperr.Persistence("create_loan", err)
	}

	l := &domain.Loan{
		CustomID:  optional(customID),
		UserID:    user.UID,
		UserEmail: user.Email,
		Title:     strings.TrimSpace(in.Title),
		Bank:      strings.TrimSpace(in.Bank),
		Amount:    in.Amount,
		Paid:      decimal.Zero,
		DueDate:   in.DueDate,
	}
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		return r.Loans.Create(ctx, l)
	})
	if err := u.fail("create_loan", l.ID, "", err); err != nil {
		return nil, err
	}
	return &CreatedLoan{ID: l.ID, UserID: l.UserID, CustomID: customID}, nil
}

// fail passes not-found errors through and logs everything else as a
// persistence failure.
func (u *Usecase) fail(op, loanID, transactionID string, err error) error {
	if err == nil {
		return nil
	}
	if domain.IsNotFound(err) {
		return err
	}
	fields := log.JSON{"op": op, "error": err.Error()}
	if loanID != "" {
		fields["loan_id"] = loanID
	}
	if transactionID != "" {
		fields["transaction_id"] = transactionID
	}
	u.log.Errorj(fields)
	return apperr.Persistence(op, err)
}

func validDate(s string) bool {
	if s == "" {
		return false
	}
	_, err := time.Parse(domain.DateLayout, s)
	return err == nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
