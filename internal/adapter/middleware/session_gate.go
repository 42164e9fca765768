package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"loan-ledger/internal/domain/identity"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// CtxKeyIdentity is the echo context key holding the caller's *identity.Claims.
const CtxKeyIdentity = "identity"

type GateDecision int

const (
	Allow GateDecision = iota
	RedirectLogin
	RedirectUnauthorized
)

func (d GateDecision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect_login"
	case RedirectUnauthorized:
		return "redirect_unauthorized"
	}
	return fmt.Sprintf("GateDecision(%d)", int(d))
}

// VerifyFunc checks a session cookie and returns its claims.
type VerifyFunc func(cookie string) (*identity.Claims, error)

type GateConfig struct {
	CookieName       string
	LoginPath        string
	UnauthorizedPath string
	PublicPrefixes   []string
	AdminPrefixes    []string
	SecureCookie     bool
}

func DefaultGateConfig() GateConfig {
	return GateConfig{
		CookieName:       "session",
		LoginPath:        "/login",
		UnauthorizedPath: "/unauthorized",
		PublicPrefixes:   []string{"/login", "/api/auth", "/health", "/unauthorized"},
		AdminPrefixes:    []string{"/admin", "/api/admin"},
	}
}

// Decide classifies a request path given the raw session cookie. It is free
// of HTTP concerns; the error explains any non-Allow outcome.
func (g GateConfig) Decide(path, cookie string, verify VerifyFunc) (GateDecision, *identity.Claims, error) {
	if hasPrefix(path, g.PublicPrefixes) {
		return Allow, nil, nil
	}
	if cookie == "" {
		return RedirectLogin, nil, identity.ErrUnauthenticated
	}
	claims, err := verify(cookie)
	if err != nil || claims == nil {
		return RedirectLogin, nil, fmt.Errorf("%w: %v", identity.ErrInvalidSession, err)
	}
	if hasPrefix(path, g.AdminPrefixes) && !claims.Admin {
		return RedirectUnauthorized, claims, identity.ErrForbidden
	}
	return Allow, claims, nil
}

// hasPrefix matches whole path segments: "/admin" covers "/admin" and
// "/admin/x" but not "/administer".
func hasPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		p = strings.TrimSuffix(p, "/")
		if p == "" {
			continue
		}
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// SessionGate runs Decide for every request. Allowed requests carry the
// claims on the echo context and on the request context.
func SessionGate(p identity.Provider, cfg GateConfig, logger *log.Logger) echo.MiddlewareFunc {
	if logger == nil {
		logger = log.New("gate")
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			path := req.URL.Path

			cookie := ""
			if ck, err := c.Cookie(cfg.CookieName); err == nil {
				cookie = ck.Value
			}

			verify := func(v string) (*identity.Claims, error) {
				return p.VerifySessionCookie(req.Context(), v)
			}
			decision, claims, err := cfg.Decide(path, cookie, verify)

			switch decision {
			case RedirectLogin:
				if errors.Is(err, identity.ErrInvalidSession) {
					logger.Warnj(log.JSON{"msg": "invalid session cookie", "path": path})
					ClearSessionCookie(c, cfg)
				}
				target := req.URL.Path
				if req.URL.RawQuery != "" {
					target += "?" + req.URL.RawQuery
				}
				return c.Redirect(http.StatusFound, cfg.LoginPath+"?redirect="+url.QueryEscape(target))
			case RedirectUnauthorized:
				logger.Warnj(log.JSON{"msg": "admin path denied", "path": path, "uid": claims.UID})
				return c.Redirect(http.StatusFound, cfg.UnauthorizedPath)
			}

			if claims != nil {
				c.Set(CtxKeyIdentity, claims)
				c.SetRequest(req.WithContext(identity.WithClaims(req.Context(), claims)))
			}
			return next(c)
		}
	}
}

// IdentityFrom returns the claims SessionGate stored on c.
func IdentityFrom(c echo.Context) (*identity.Claims, bool) {
	claims, ok := c.Get(CtxKeyIdentity).(*identity.Claims)
	if ok && claims != nil {
		return claims, true
	}
	return identity.FromContext(requestContext(c))
}

func requestContext(c echo.Context) context.Context {
	if r := c.Request(); r != nil {
		return r.Context()
	}
	return context.Background()
}

// SetSessionCookie writes the session cookie with the gate's attributes.
func SetSessionCookie(c echo.Context, cfg GateConfig, value string, maxAgeSeconds int) {
	c.SetCookie(&http.Cookie{
		Name:     cfg.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAgeSeconds,
		HttpOnly: true,
		Secure:   cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c echo.Context, cfg GateConfig) {
	SetSessionCookie(c, cfg, "", -1)
}
