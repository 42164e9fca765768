package local

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"loan-ledger/internal/domain/identity"
)

var _ identity.Provider = (*Provider)(nil)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
)

const minSecretLen = 32

type Options struct {
	Secret     string
	Issuer     string
	BcryptCost int
}

type Provider struct {
	db     *gorm.DB
	secret []byte
	issuer string
	cost   int
	now    func() time.Time
}

func NewProvider(db *gorm.DB, opts Options) (*Provider, error) {
	if db == nil {
		return nil, errors.New("local identity: nil db")
	}
	if len(opts.Secret) < minSecretLen {
		return nil, fmt.Errorf("local identity: secret must be at least %d bytes", minSecretLen)
	}
	if opts.Issuer == "" {
		opts.Issuer = "loan-ledger"
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	return &Provider{
		db:     db,
		secret: []byte(opts.Secret),
		issuer: opts.Issuer,
		cost:   opts.BcryptCost,
		now:    time.Now,
	}, nil
}

// VerifySessionCookie checks the signature and expiry, then that the account
// still exists and is enabled. Admin comes from the cookie, as issued.
func (p *Provider) VerifySessionCookie(ctx context.Context, cookie string) (*identity.Claims, error) {
	if cookie == "" {
		return nil, identity.ErrUnauthenticated
	}
	c, err := p.parse(cookie, typSession)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", identity.ErrInvalidSession, err)
	}
	a, err := p.account(ctx, "uid = ?", c.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", identity.ErrInvalidSession, err)
	}
	if a.Disabled {
		return nil, fmt.Errorf("%w: account disabled", identity.ErrInvalidSession)
	}
	return claimsOf(c), nil
}

func (p *Provider) VerifyIDToken(_ context.Context, idToken string) (*identity.Claims, error) {
	if idToken == "" {
		return nil, identity.ErrUnauthenticated
	}
	c, err := p.parse(idToken, typID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", identity.ErrUnauthenticated, err)
	}
	return claimsOf(c), nil
}

func (p *Provider) CreateSessionCookie(ctx context.Context, idToken string, ttl time.Duration) (string, error) {
	c, err := p.parse(idToken, typID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", identity.ErrUnauthenticated, err)
	}
	a, err := p.account(ctx, "uid = ?", c.Subject)
	if err != nil {
		return "", err
	}
	if a.Disabled {
		return "", fmt.Errorf("%w: account disabled", identity.ErrUnauthenticated)
	}
	return p.issue(a, c.Admin, typSession, ttl)
}

func (p *Provider) SetAdminClaim(ctx context.Context, uid string, admin bool) error {
	res := p.db.WithContext(ctx).Model(&Account{}).Where("uid = ?", uid).Update("admin", admin)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := p.db.WithContext(ctx).Model(&Account{}).Where("uid = ?", uid).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return identity.ErrUserNotFound
		}
	}
	return nil
}

// ListUsers pages by uid; the page token is the last uid of the previous page.
func (p *Provider) ListUsers(ctx context.Context, pageSize int, pageToken string) (*identity.UsersPage, error) {
	if pageSize <= 0 {
		pageSize = 1000
	}
	q := p.db.WithContext(ctx).Order("uid ASC").Limit(pageSize + 1)
	if pageToken != "" {
		q = q.Where("uid > ?", pageToken)
	}
	var rows []Account
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	page := &identity.UsersPage{}
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		page.NextPageToken = rows[pageSize-1].UID
	}
	page.Users = make([]identity.User, 0, len(rows))
	for i := range rows {
		page.Users = append(page.Users, rows[i].user())
	}
	return page, nil
}

func (p *Provider) GetUserByEmail(ctx context.Context, email string) (*identity.User, error) {
	a, err := p.account(ctx, "email = ?", normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	u := a.user()
	return &u, nil
}

// SignIn checks a password and returns a one-hour ID token for the session
// endpoint.
func (p *Provider) SignIn(ctx context.Context, email, password string) (string, error) {
	a, err := p.account(ctx, "email = ?", normalizeEmail(email))
	if errors.Is(err, identity.ErrUserNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil || a.Disabled {
		return "", ErrInvalidCredentials
	}
	return p.issue(a, a.Admin, typID, idTokenTTL)
}

// CreateUser registers an account; emails are stored lower-cased.
func (p *Provider) CreateUser(ctx context.Context, email, password string, admin bool) (*identity.User, error) {
	return CreateAccount(ctx, p.db, p.cost, email, password, admin)
}

// CreateAccount inserts a user without needing a signing secret, for tooling
// that only provisions accounts.
func CreateAccount(ctx context.Context, db *gorm.DB, cost int, email, password string, admin bool) (*identity.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, errors.New("email and password are required")
	}
	var n int64
	if err := db.WithContext(ctx).Model(&Account{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, ErrEmailTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, err
	}
	a := &Account{UID: uuid.NewString(), Email: email, PasswordHash: string(hash), Admin: admin}
	if err := db.WithContext(ctx).Create(a).Error; err != nil {
		return nil, err
	}
	u := a.user()
	return &u, nil
}

func (p *Provider) account(ctx context.Context, where string, arg any) (*Account, error) {
	var a Account
	err := p.db.WithContext(ctx).Where(where, arg).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, identity.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func claimsOf(c *tokenClaims) *identity.Claims {
	out := &identity.Claims{UID: c.Subject, Email: c.Email, Admin: c.Admin}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.UTC()
	}
	return out
}
