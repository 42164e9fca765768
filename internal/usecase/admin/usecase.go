package admin

import (
	"context"
	"sort"
	"strings"

	"loan-ledger/internal/domain/apperr"
	"loan-ledger/internal/domain/identity"

	"github.com/labstack/gommon/log"
)

// listPageSize is the largest page the identity provider hands out.
const listPageSize = 1000

type Usecase struct {
	provider identity.Provider
	log      *log.Logger
}

func NewUsecase(p identity.Provider, logger *log.Logger) *Usecase {
	if logger == nil {
		logger = log.New("admin")
	}
	return &Usecase{provider: p, log: logger}
}

// ToggleAdminRole grants or revokes the admin claim. Sessions issued before
// the change keep the old value until the user signs in again.
func (u *Usecase) ToggleAdminRole(ctx context.Context, uid string, makeAdmin bool) error {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return apperr.Invalid("uid", "is required")
	}
	if err := u.provider.SetAdminClaim(ctx, uid, makeAdmin); err != nil {
		u.log.Errorj(log.JSON{"op": "toggle_admin", "uid": uid, "make_admin": makeAdmin, "error": err.Error()})
		return apperr.Persistence("toggle_admin", err)
	}
	u.log.Infoj(log.JSON{"op": "toggle_admin", "uid": uid, "make_admin": makeAdmin})
	return nil
}

// ListUsers walks every page of the provider's user list, sorted by email.
func (u *Usecase) ListUsers(ctx context.Context) ([]identity.User, error) {
	users := []identity.User{}
	token := ""
	for {
		page, err := u.provider.ListUsers(ctx, listPageSize, token)
		if err != nil {
			u.log.Errorj(log.JSON{"op": "list_users", "error": err.Error()})
			return nil, apperr.Persistence("list_users", err)
		}
		users = append(users, page.Users...)
		if page.NextPageToken == "" || page.NextPageToken == token {
			break
		}
		token = page.NextPageToken
	}
	sort.SliceStable(users, func(i, j int) bool {
		return strings.ToLower(users[i].Email) < strings.ToLower(users[j].Email)
	})
	return users, nil
}
