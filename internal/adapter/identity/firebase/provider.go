// Package firebase adapts the Firebase Admin auth client to identity.Provider.
package firebase

import (
	"context"
	"fmt"
	"time"

	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/iterator"

	"loan-ledger/internal/domain/identity"
)

var _ identity.Provider = (*Provider)(nil)

// AuthClient is the part of *auth.Client the provider calls.
type AuthClient interface {
	VerifySessionCookieAndCheckRevoked(ctx context.Context, sessionCookie string) (*auth.Token, error)
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
	SessionCookie(ctx context.Context, idToken string, expiresIn time.Duration) (string, error)
	GetUser(ctx context.Context, uid string) (*auth.UserRecord, error)
	GetUserByEmail(ctx context.Context, email string) (*auth.UserRecord, error)
	SetCustomUserClaims(ctx context.Context, uid string, customClaims map[string]interface{}) error
}

type pageFunc func(ctx context.Context, pageSize int, pageToken string) ([]*auth.ExportedUserRecord, string, error)

type Provider struct {
	client   AuthClient
	listPage pageFunc
}

// New wraps a real auth client; listing goes through its Users iterator.
func New(client *auth.Client) *Provider {
	return &Provider{
		client: client,
		listPage: func(ctx context.Context, pageSize int, pageToken string) ([]*auth.ExportedUserRecord, string, error) {
			var users []*auth.ExportedUserRecord
			pager := iterator.NewPager(client.Users(ctx, ""), pageSize, pageToken)
			next, err := pager.NextPage(&users)
			return users, next, err
		},
	}
}

func (p *Provider) VerifySessionCookie(ctx context.Context, cookie string) (*identity.Claims, error) {
	if cookie == "" {
		return nil, identity.ErrUnauthenticated
	}
	tok, err := p.client.VerifySessionCookieAndCheckRevoked(ctx, cookie)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", identity.ErrInvalidSession, err)
	}
	return claimsFrom(tok), nil
}

func (p *Provider) VerifyIDToken(ctx context.Context, idToken string) (*identity.Claims, error) {
	if idToken == "" {
		return nil, identity.ErrUnauthenticated
	}
	tok, err := p.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", identity.ErrUnauthenticated, err)
	}
	return claimsFrom(tok), nil
}

func (p *Provider) CreateSessionCookie(ctx context.Context, idToken string, ttl time.Duration) (string, error) {
	return p.client.SessionCookie(ctx, idToken, ttl)
}

// SetAdminClaim rewrites only the admin key; other custom claims survive.
func (p *Provider) SetAdminClaim(ctx context.Context, uid string, admin bool) error {
	u, err := p.client.GetUser(ctx, uid)
	if auth.IsUserNotFound(err) {
		return identity.ErrUserNotFound
	}
	if err != nil {
		return err
	}
	claims := make(map[string]interface{}, len(u.CustomClaims)+1)
	for k, v := range u.CustomClaims {
		claims[k] = v
	}
	claims["admin"] = admin
	return p.client.SetCustomUserClaims(ctx, uid, claims)
}

func (p *Provider) ListUsers(ctx context.Context, pageSize int, pageToken string) (*identity.UsersPage, error) {
	records, next, err := p.listPage(ctx, pageSize, pageToken)
	if err != nil {
		return nil, err
	}
	page := &identity.UsersPage{Users: make([]identity.User, 0, len(records)), NextPageToken: next}
	for _, r := range records {
		if r == nil || r.UserRecord == nil {
			continue
		}
		page.Users = append(page.Users, userFrom(r.UserRecord))
	}
	return page, nil
}

func (p *Provider) GetUserByEmail(ctx context.Context, email string) (*identity.User, error) {
	u, err := p.client.GetUserByEmail(ctx, email)
	if auth.IsUserNotFound(err) {
		return nil, identity.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	out := userFrom(u)
	return &out, nil
}

func claimsFrom(tok *auth.Token) *identity.Claims {
	c := &identity.Claims{UID: tok.UID}
	if tok.Expires > 0 {
		c.ExpiresAt = time.Unix(tok.Expires, 0).UTC()
	}
	if email, ok := tok.Claims["email"].(string); ok {
		c.Email = email
	}
	c.Admin, _ = tok.Claims["admin"].(bool)
	return c
}

func userFrom(u *auth.UserRecord) identity.User {
	out := identity.User{Disabled: u.Disabled}
	if u.UserInfo != nil {
		out.UID = u.UID
		out.Email = u.Email
	}
	out.Admin, _ = u.CustomClaims["admin"].(bool)
	return out
}
