package identity

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrUnauthenticated means no usable credential was presented.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInvalidSession means a session cookie failed verification (expired, malformed, revoked).
	ErrInvalidSession = errors.New("invalid session")
	// ErrForbidden means the caller is authenticated but lacks the admin claim.
	ErrForbidden = errors.New("forbidden")
	// ErrUserNotFound is returned by lookups for unknown users.
	ErrUserNotFound = errors.New("user not found")
)

// Claims is the decoded content of a verified session cookie or ID token.
// Admin reflects the claim at the time the session was issued.
type Claims struct {
	UID       string    `json:"uid"`
	Email     string    `json:"email,omitempty"`
	Admin     bool      `json:"admin"`
	ExpiresAt time.Time `json:"expires_at"`
}

// User is an identity-provider account as listed by administrators.
type User struct {
	UID      string `json:"uid"`
	Email    string `json:"email"`
	Admin    bool   `json:"admin"`
	Disabled bool   `json:"disabled"`
}

// UsersPage is one page of ListUsers. NextPageToken is empty on the last page.
type UsersPage struct {
	Users         []User
	NextPageToken string
}

type ctxKey struct{}

// WithClaims returns a copy of ctx carrying c.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// FromContext returns the claims stored by WithClaims.
func FromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(ctxKey{}).(*Claims)
	return c, ok && c != nil
}
