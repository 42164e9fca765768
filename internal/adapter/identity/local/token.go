package local

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	typID      = "id"
	typSession = "session"

	idTokenTTL = time.Hour
)

type tokenClaims struct {
	Email string `json:"email,omitempty"`
	Admin bool   `json:"admin"`
	Type  string `json:"typ"`
	jwt.RegisteredClaims
}

func (p *Provider) issue(a *Account, admin bool, typ string, ttl time.Duration) (string, error) {
	now := p.now()
	claims := tokenClaims{
		Email: a.Email,
		Admin: admin,
		Type:  typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    p.issuer,
			Subject:   a.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}

func (p *Provider) parse(raw, typ string) (*tokenClaims, error) {
	var c tokenClaims
	_, err := jwt.ParseWithClaims(raw, &c,
		func(*jwt.Token) (any, error) { return p.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(p.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		return nil, err
	}
	if c.Type != typ {
		return nil, fmt.Errorf("token type %q, want %q", c.Type, typ)
	}
	if c.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return &c, nil
}
