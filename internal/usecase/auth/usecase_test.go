package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"loan-ledger/internal/domain/apperr"
	"loan-ledger/internal/domain/identity"
	"loan-ledger/internal/testutil/identitymock"
)

func TestCreateSession(t *testing.T) {
	ctx := context.Background()
	ttl := 120 * time.Hour

	okProvider := func() *identitymock.Provider {
		return &identitymock.Provider{
			VerifyIDTokenFn: func(_ context.Context, tok string) (*identity.Claims, error) {
				if tok != "good" {
					return nil, errors.New("bad signature")
				}
				return &identity.Claims{UID: "u1"}, nil
			},
			CreateSessionCookieFn: func(_ context.Context, tok string, gotTTL time.Duration) (string, error) {
				if gotTTL != ttl {
					t.Fatalf("ttl = %s, want %s", gotTTL, ttl)
				}
				return "cookie-for-" + tok, nil
			},
		}
	}

	t.Run("happy path", func(t *testing.T) {
		s, err := NewUsecase(okProvider(), ttl, nil).CreateSession(ctx, "good")
		if err != nil {
			t.Fatalf("CreateSession: %v", err)
		}
		if s.Cookie != "cookie-for-good" || s.MaxAge != ttl {
			t.Fatalf("session = %+v", s)
		}
	})

	t.Run("missing token", func(t *testing.T) {
		_, err := NewUsecase(okProvider(), ttl, nil).CreateSession(ctx, " ")
		if !errors.Is(err, apperr.ErrValidation) {
			t.Fatalf("want ErrValidation, got %v", err)
		}
	})

	t.Run("verification failure", func(t *testing.T) {
		_, err := NewUsecase(okProvider(), ttl, nil).CreateSession(ctx, "forged")
		if !errors.Is(err, identity.ErrUnauthenticated) {
			t.Fatalf("want ErrUnauthenticated, got %v", err)
		}
	})

	t.Run("cookie minting failure", func(t *testing.T) {
		p := okProvider()
		p.CreateSessionCookieFn = func(context.Context, string, time.Duration) (string, error) {
			return "", errors.New("token too old")
		}
		_, err := NewUsecase(p, ttl, nil).CreateSession(ctx, "good")
		if !errors.Is(err, identity.ErrUnauthenticated) {
			t.Fatalf("want ErrUnauthenticated, got %v", err)
		}
	})
}
