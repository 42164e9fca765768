package http

import (
	"errors"
	"net/http"

	"loan-ledger/internal/domain/apperr"
	"loan-ledger/internal/domain/identity"
	domain "loan-ledger/internal/domain/loan"

	"github.com/labstack/echo/v4"
)

const genericFailure = "something went wrong, please try again"

// writeError maps use-case errors to status codes. Store and provider details
// never reach the client.
func writeError(c echo.Context, err error) error {
	var ve *apperr.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: fieldErrorsOf(ve)})
	case errors.Is(err, apperr.ErrValidation):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed"})
	case errors.Is(err, domain.ErrTransactionNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "transaction not found"})
	case errors.Is(err, domain.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "loan not found"})
	case errors.Is(err, identity.ErrUnauthenticated), errors.Is(err, identity.ErrInvalidSession):
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated"})
	case errors.Is(err, identity.ErrForbidden):
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden"})
	default:
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: genericFailure})
	}
}

func badBody(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
}

func invalid(c echo.Context, err error) error {
	return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
}

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
