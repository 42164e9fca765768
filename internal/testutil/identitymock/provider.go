package identitymock

import (
	"context"
	"errors"
	"time"

	"loan-ledger/internal/domain/identity"
)

var _ identity.Provider = (*Provider)(nil)

var errUnimplemented = errors.New("identitymock: method not implemented")

// Provider is a function-backed mock that satisfies identity.Provider.
// Unset functions return errUnimplemented.
type Provider struct {
	VerifySessionCookieFn func(ctx context.Context, cookie string) (*identity.Claims, error)
	VerifyIDTokenFn       func(ctx context.Context, idToken string) (*identity.Claims, error)
	CreateSessionCookieFn func(ctx context.Context, idToken string, ttl time.Duration) (string, error)
	SetAdminClaimFn       func(ctx context.Context, uid string, admin bool) error
	ListUsersFn           func(ctx context.Context, pageSize int, pageToken string) (*identity.UsersPage, error)
	GetUserByEmailFn      func(ctx context.Context, email string) (*identity.User, error)
}

func (m *Provider) VerifySessionCookie(ctx context.Context, cookie string) (*identity.Claims, error) {
	if m.VerifySessionCookieFn != nil {
		return m.VerifySessionCookieFn(ctx, cookie)
	}
	return nil, errUnimplemented
}

func (m *Provider) VerifyIDToken(ctx context.Context, idToken string) (*identity.Claims, error) {
	if m.VerifyIDTokenFn != nil {
		return m.VerifyIDTokenFn(ctx, idToken)
	}
	return nil, errUnimplemented
}

func (m *Provider) CreateSessionCookie(ctx context.Context, idToken string, ttl time.Duration) (string, error) {
	if m.CreateSessionCookieFn != nil {
		return m.CreateSessionCookieFn(ctx, idToken, ttl)
	}
	return "", errUnimplemented
}

func (m *Provider) SetAdminClaim(ctx context.Context, uid string, admin bool) error {
	if m.SetAdminClaimFn != nil {
		return m.SetAdminClaimFn(ctx, uid, admin)
	}
	return errUnimplemented
}

func (m *Provider) ListUsers(ctx context.Context, pageSize int, pageToken string) (*identity.UsersPage, error) {
	if m.ListUsersFn != nil {
		return m.ListUsersFn(ctx, pageSize, pageToken)
	}
	return nil, errUnimplemented
}

func (m *Provider) GetUserByEmail(ctx context.Context, email string) (*identity.User, error) {
	if m.GetUserByEmailFn != nil {
		return m.GetUserByEmailFn(ctx, email)
	}
	return nil, errUnimplemented
}
