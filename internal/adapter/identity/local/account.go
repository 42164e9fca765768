// Package local is a self-hosted identity provider: accounts live in the SQL
// store, passwords are bcrypt hashes and tokens are HS256 JWTs.
package local

import (
	"strings"
	"time"

	"loan-ledger/internal/domain/identity"
)

// Account is a row of the users table.
type Account struct {
	UID          string    `gorm:"primaryKey;size:36;column:uid"`
	Email        string    `gorm:"size:320;column:email;uniqueIndex:ux_users_email"`
	PasswordHash string    `gorm:"size:255;column:password_hash"`
	Admin        bool      `gorm:"column:admin"`
	Disabled     bool      `gorm:"column:disabled"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Account) TableName() string { return "users" }

func (a *Account) user() identity.User {
	return identity.User{UID: a.UID, Email: a.Email, Admin: a.Admin, Disabled: a.Disabled}
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
