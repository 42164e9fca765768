package http

import (
	"encoding/json"
	"net/http"

	"loan-ledger/internal/usecase/admin"
	"loan-ledger/internal/usecase/ledger"
	"loan-ledger/internal/usecase/loan"

	"github.com/labstack/echo/v4"
)

// ManageUsersPath is where a successful role toggle sends the browser.
const ManageUsersPath = "/admin/manage-users"

type AdminHandler struct {
	reads  *loan.Usecase
	ledger *ledger.Usecase
	admin  *admin.Usecase
}

func NewAdminHandler(reads *loan.Usecase, l *ledger.Usecase, a *admin.Usecase) *AdminHandler {
	return &AdminHandler{reads: reads, ledger: l, admin: a}
}

func (h *AdminHandler) ListLoans(c echo.Context) error {
	loans, err := h.reads.ListAllLoans(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, loans)
}

func (h *AdminHandler) GetLoan(c echo.Context) error {
	dto, err := h.reads.GetLoanByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	if dto == nil {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "loan not found"})
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *AdminHandler) ListTransactions(c echo.Context) error {
	txs, err := h.reads.GetLoanTransactions(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, txs)
}

type createLoanReq struct {
	UserEmail string      `json:"userEmail" form:"userEmail" validate:"required,email"`
	Title     string      `json:"title"     form:"title"     validate:"required"`
	Bank      string      `json:"bank"      form:"bank"      validate:"required"`
	Amount    json.Number `json:"amount"    form:"amount"    validate:"required,money"`
	DueDate   string      `json:"dueDate"   form:"dueDate"   validate:"required,datetime=2006-01-02"`
	CustomID  string      `json:"customId"  form:"customId"  validate:"max=50"`
}

func (h *AdminHandler) CreateLoan(c echo.Context) error {
	var req createLoanReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return invalid(c, err)
	}
	amount, err := parseMoney(req.Amount)
	if err != nil {
		return badBody(c)
	}
	out, err := h.ledger.CreateLoan(c.Request().Context(), ledger.CreateLoanInput{
		UserEmail: req.UserEmail,
		Title:     req.Title,
		Bank:      req.Bank,
		Amount:    amount,
		DueDate:   req.DueDate,
		CustomID:  req.CustomID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

type recordTxReq struct {
	Amount    json.Number `json:"amount"    form:"amount"    validate:"required,money"`
	Date      string      `json:"date"      form:"date"      validate:"required,datetime=2006-01-02"`
	Note      string      `json:"note"      form:"note"`
	IsReverse FormBool    `json:"isReverse" form:"isReverse"`
}

func (h *AdminHandler) RecordTransaction(c echo.Context) error {
	var req recordTxReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return invalid(c, err)
	}
	amount, err := parseMoney(req.Amount)
	if err != nil {
		return badBody(c)
	}
	err = h.ledger.RecordTransaction(c.Request().Context(), ledger.RecordInput{
		LoanID:    c.Param("id"),
		Amount:    amount,
		Date:      req.Date,
		Note:      req.Note,
		IsReverse: bool(req.IsReverse),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, successResponse{Success: true, Message: "Payment recorded!"})
}

func (h *AdminHandler) DeleteTransaction(c echo.Context) error {
	if err := h.ledger.DeleteTransaction(c.Request().Context(), c.Param("id"), c.Param("txId")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, successResponse{Success: true, Message: "Transaction deleted"})
}

func (h *AdminHandler) ListUsers(c echo.Context) error {
	users, err := h.admin.ListUsers(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

type toggleAdminReq struct {
	UID       string   `json:"uid"       form:"uid"`
	MakeAdmin FormBool `json:"makeAdmin" form:"makeAdmin"`
}

func (h *AdminHandler) ToggleAdmin(c echo.Context) error {
	var req toggleAdminReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	if req.UID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing uid"})
	}
	if err := h.admin.ToggleAdminRole(c.Request().Context(), req.UID, bool(req.MakeAdmin)); err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to update user role"})
	}
	return c.Redirect(http.StatusSeeOther, ManageUsersPath)
}
