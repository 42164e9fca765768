package auth

import (
	"context"
	"strings"
	"time"

	"loan-ledger/internal/domain/apperr"
	"loan-ledger/internal/domain/identity"

	"github.com/labstack/gommon/log"
)

// Session is a freshly minted session cookie value.
type Session struct {
	Cookie string
	MaxAge time.Duration
}

type Usecase struct {
	provider identity.Provider
	ttl      time.Duration
	log      *log.Logger
}

func NewUsecase(p identity.Provider, ttl time.Duration, logger *log.Logger) *Usecase {
	if logger == nil {
		logger = log.New("auth")
	}
	return &Usecase{provider: p, ttl: ttl, log: logger}
}

// CreateSession exchanges a short-lived ID token for a session cookie.
func (u *Usecase) CreateSession(ctx context.Context, idToken string) (*Session, error) {
	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return nil, apperr.Invalid("idToken", "is required")
	}
	if _, err := u.provider.VerifyIDToken(ctx, idToken); err != nil {
		u.log.Warnj(log.JSON{"op": "create_session", "error": err.Error()})
		return nil, identity.ErrUnauthenticated
	}
	cookie, err := u.provider.CreateSessionCookie(ctx, idToken, u.ttl)
	if err != nil {
		u.log.Warnj(log.JSON{"op": "create_session", "error": err.Error()})
		return nil, identity.ErrUnauthenticated
	}
	return &Session{Cookie: cookie, MaxAge: u.ttl}, nil
}
