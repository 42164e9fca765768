package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type Handler struct{}

func NewHandler() *Handler { return &Handler{} }

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// Login stands in for the sign-in page: it tells the client where to return
// after authenticating.
func (h *Handler) Login(c echo.Context) error {
	redirect := c.QueryParam("redirect")
	if redirect == "" || redirect[0] != '/' || (len(redirect) > 1 && redirect[1] == '/') {
		redirect = "/"
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message":  "sign in and POST the ID token to /api/auth/session",
		"redirect": redirect,
	})
}

func (h *Handler) Unauthorized(c echo.Context) error {
	return c.JSON(http.StatusForbidden, ErrorResponse{Error: "you do not have access to this page"})
}
