package identitymock

import (
	"context"
	"errors"
	"testing"
	"time"

	"loan-ledger/internal/domain/identity"
)

func TestProvider_Defaults_Unimplemented(t *testing.T) {
	ctx := context.Background()
	m := &Provider{}
	if _, err := m.VerifySessionCookie(ctx, "c"); !errors.Is(err, errUnimplemented) {
		t.Fatalf("VerifySessionCookie default: got %v", err)
	}
	if _, err := m.VerifyIDToken(ctx, "t"); !errors.Is(err, errUnimplemented) {
		t.Fatalf("VerifyIDToken default: got %v", err)
	}
	if _, err := m.CreateSessionCookie(ctx, "t", time.Hour); !errors.Is(err, errUnimplemented) {
		t.Fatalf("CreateSessionCookie default: got %v", err)
	}
	if err := m.SetAdminClaim(ctx, "u", true); !errors.Is(err, errUnimplemented) {
		t.Fatalf("SetAdminClaim default: got %v", err)
	}
	if _, err := m.ListUsers(ctx, 10, ""); !errors.Is(err, errUnimplemented) {
		t.Fatalf("ListUsers default: got %v", err)
	}
	if _, err := m.GetUserByEmail(ctx, "a@b.c"); !errors.Is(err, errUnimplemented) {
		t.Fatalf("GetUserByEmail default: got %v", err)
	}
}

func TestProvider_Forwards(t *testing.T) {
	ctx := context.Background()
	var gotUID string
	var gotAdmin bool
	m := &Provider{
		VerifySessionCookieFn: func(_ context.Context, cookie string) (*identity.Claims, error) {
			return &identity.Claims{UID: "u-" + cookie}, nil
		},
		SetAdminClaimFn: func(_ context.Context, uid string, admin bool) error {
			gotUID, gotAdmin = uid, admin
			return nil
		},
	}
	c, err := m.VerifySessionCookie(ctx, "abc")
	if err != nil || c.UID != "u-abc" {
		t.Fatalf("VerifySessionCookie: got %+v, %v", c, err)
	}
	if err := m.SetAdminClaim(ctx, "u1", true); err != nil || gotUID != "u1" || !gotAdmin {
		t.Fatalf("SetAdminClaim not forwarded: %s %v %v", gotUID, gotAdmin, err)
	}
}
