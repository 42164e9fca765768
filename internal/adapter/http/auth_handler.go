package http

import (
	"context"
	"errors"
	"net/http"

	"loan-ledger/internal/adapter/middleware"
	"loan-ledger/internal/domain/identity"
	"loan-ledger/internal/usecase/auth"

	"github.com/labstack/echo/v4"
)

// PasswordSignIn is implemented by identity providers that check passwords
// themselves and hand out ID tokens.
type PasswordSignIn interface {
	SignIn(ctx context.Context, email, password string) (string, error)
}

type AuthHandler struct {
	uc     *auth.Usecase
	gate   middleware.GateConfig
	signIn PasswordSignIn
}

// NewAuthHandler wires the session endpoints. signIn may be nil.
func NewAuthHandler(uc *auth.Usecase, gate middleware.GateConfig, signIn PasswordSignIn) *AuthHandler {
	return &AuthHandler{uc: uc, gate: gate, signIn: signIn}
}

type sessionReq struct {
	IDToken string `json:"idToken" form:"idToken"`
}

func (h *AuthHandler) CreateSession(c echo.Context) error {
	var req sessionReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	if req.IDToken == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "no token provided"})
	}
	s, err := h.uc.CreateSession(c.Request().Context(), req.IDToken)
	if err != nil {
		if errors.Is(err, identity.ErrUnauthenticated) {
			return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "session creation failed"})
		}
		return writeError(c, err)
	}
	middleware.SetSessionCookie(c, h.gate, s.Cookie, int(s.MaxAge.Seconds()))
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	middleware.ClearSessionCookie(c, h.gate)
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

type signInReq struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

// SignIn exchanges email and password for an ID token.
func (h *AuthHandler) SignIn(c echo.Context) error {
	if h.signIn == nil {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "password sign-in is not enabled"})
	}
	var req signInReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return invalid(c, err)
	}
	tok, err := h.signIn.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid email or password"})
	}
	return c.JSON(http.StatusOK, map[string]string{"idToken": tok})
}

// Me returns the caller's session claims.
func (h *AuthHandler) Me(c echo.Context) error {
	claims, ok := middleware.IdentityFrom(c)
	if !ok {
		return writeError(c, identity.ErrUnauthenticated)
	}
	return c.JSON(http.StatusOK, claims)
}
