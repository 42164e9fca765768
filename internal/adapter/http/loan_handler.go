package http

import (
	"net/http"

	"loan-ledger/internal/adapter/middleware"
	"loan-ledger/internal/domain/identity"
	"loan-ledger/internal/usecase/loan"

	"github.com/labstack/echo/v4"
)

// LoanHandler serves the borrower's own views.
type LoanHandler struct{ uc *loan.Usecase }

func NewLoanHandler(uc *loan.Usecase) *LoanHandler { return &LoanHandler{uc: uc} }

func (h *LoanHandler) ListMine(c echo.Context) error {
	claims, ok := middleware.IdentityFrom(c)
	if !ok {
		return writeError(c, identity.ErrUnauthenticated)
	}
	loans, err := h.uc.GetUserLoans(c.Request().Context(), claims.UID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, loans)
}

func (h *LoanHandler) Summary(c echo.Context) error {
	claims, ok := middleware.IdentityFrom(c)
	if !ok {
		return writeError(c, identity.ErrUnauthenticated)
	}
	s, err := h.uc.GetLoanSummary(c.Request().Context(), claims.UID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	dto, err := h.visibleLoan(c)
	if err != nil || dto == nil {
		return err
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) ListTransactions(c echo.Context) error {
	dto, err := h.visibleLoan(c)
	if err != nil || dto == nil {
		return err
	}
	txs, err := h.uc.GetLoanTransactions(c.Request().Context(), dto.ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, txs)
}

// visibleLoan writes the response itself and returns a nil dto when the loan
// is missing or belongs to someone else.
func (h *LoanHandler) visibleLoan(c echo.Context) (*loan.LoanDTO, error) {
	claims, ok := middleware.IdentityFrom(c)
	if !ok {
		return nil, writeError(c, identity.ErrUnauthenticated)
	}
	dto, err := h.uc.GetLoanForViewer(c.Request().Context(), c.Param("id"), claims)
	if err != nil {
		return nil, writeError(c, err)
	}
	if dto == nil {
		return nil, c.JSON(http.StatusNotFound, ErrorResponse{Error: "loan not found"})
	}
	return dto, nil
}
