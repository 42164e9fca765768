package identity

import (
	"context"
	"time"
)

// Provider is the narrow view of the external identity provider.
//
// Admin claim changes made through SetAdminClaim are only visible in sessions
// issued afterwards: a live session keeps its claims until the user signs out
// and back in.
type Provider interface {
	VerifySessionCookie(ctx context.Context, cookie string) (*Claims, error)
	VerifyIDToken(ctx context.Context, idToken string) (*Claims, error)
	CreateSessionCookie(ctx context.Context, idToken string, ttl time.Duration) (string, error)
	SetAdminClaim(ctx context.Context, uid string, admin bool) error
	ListUsers(ctx context.Context, pageSize int, pageToken string) (*UsersPage, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}
