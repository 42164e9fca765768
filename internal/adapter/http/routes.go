package http

import (
	"loan-ledger/internal/adapter/middleware"
	"loan-ledger/internal/domain/identity"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// Server bundles what Register needs. Idempotency may be nil.
type Server struct {
	Provider    identity.Provider
	Gate        middleware.GateConfig
	Idempotency echo.MiddlewareFunc
	Logger      *log.Logger

	Health *Handler
	Auth   *AuthHandler
	Loans  *LoanHandler
	Admin  *AdminHandler
}

// Register mounts every route behind the session gate.
func Register(e *echo.Echo, s Server) {
	if e.Validator == nil {
		e.Validator = NewValidator()
	}
	e.Use(middleware.SessionGate(s.Provider, s.Gate, s.Logger))

	e.GET("/health", s.Health.Health)
	e.GET("/login", s.Health.Login)
	e.GET("/unauthorized", s.Health.Unauthorized)

	authGroup := e.Group("/api/auth")
	authGroup.POST("/session", s.Auth.CreateSession)
	authGroup.POST("/logout", s.Auth.Logout)
	authGroup.POST("/login", s.Auth.SignIn)

	api := e.Group("/api")
	api.GET("/me", s.Auth.Me)
	api.GET("/loans", s.Loans.ListMine)
	api.GET("/loans/summary", s.Loans.Summary)
	api.GET("/loans/:id", s.Loans.GetLoan)
	api.GET("/loans/:id/transactions", s.Loans.ListTransactions)

	adm := e.Group("/api/admin")
	adm.GET("/loans", s.Admin.ListLoans)
	adm.GET("/loans/:id", s.Admin.GetLoan)
	adm.GET("/loans/:id/transactions", s.Admin.ListTransactions)
	adm.GET("/users", s.Admin.ListUsers)
	adm.POST("/toggle-admin", s.Admin.ToggleAdmin)

	// ledger writes are the ones a double submit would corrupt
	var writes []echo.MiddlewareFunc
	if s.Idempotency != nil {
		writes = append(writes, s.Idempotency)
	}
	adm.POST("/loans", s.Admin.CreateLoan, writes...)
	adm.POST("/loans/:id/transactions", s.Admin.RecordTransaction, writes...)
	adm.DELETE("/loans/:id/transactions/:txId", s.Admin.DeleteTransaction, writes...)
	adm.POST("/loans/:id/transactions/:txId/delete", s.Admin.DeleteTransaction, writes...)
}
