package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
)

const (
	sessionName     = "chargedrops_admin"
	sessionEmailKey = "admin_email"
)

// SessionManager owns the admin cookie session lifecycle and the middleware
// gating /admin routes. The gate accepts either a live cookie session or a
// bearer token from the TokenManager.
type SessionManager struct {
	store  *sessions.CookieStore
	tokens *TokenManager
	ttl    time.Duration
	secure bool
}

func NewSessionManager(secret []byte, tokens *TokenManager, ttl time.Duration, secure bool) (*SessionManager, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("session secret is required")
	}
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionManager{store: store, tokens: tokens, ttl: ttl, secure: secure}, nil
}

// SignIn establishes the admin session cookie.
func (m *SessionManager) SignIn(c echo.Context, email string) error {
	// A decode error here just means a stale or tampered cookie; a fresh
	// session is returned alongside it.
	session, _ := m.store.Get(c.Request(), sessionName)
	session.Values[sessionEmailKey] = email
	if err := session.Save(c.Request(), c.Response().Writer); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// SignOut invalidates the session cookie.
func (m *SessionManager) SignOut(c echo.Context) error {
	session, _ := m.store.Get(c.Request(), sessionName)
	session.Options.MaxAge = -1
	delete(session.Values, sessionEmailKey)
	if err := session.Save(c.Request(), c.Response().Writer); err != nil {
		return fmt.Errorf("failed to expire session: %w", err)
	}
	return nil
}

// Identity returns the signed-in admin, if any.
func (m *SessionManager) Identity(c echo.Context) (string, bool) {
	session, _ := m.store.Get(c.Request(), sessionName)
	email, ok := session.Values[sessionEmailKey].(string)
	return email, ok && email != ""
}

// Middleware rejects unauthenticated requests with 401.
func (m *SessionManager) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if email, ok := m.Identity(c); ok {
				c.Set("admin_email", email)
				return next(c)
			}
			if header := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(header, "Bearer ") {
				email, err := m.tokens.Validate(strings.TrimPrefix(header, "Bearer "))
				if err == nil {
					c.Set("admin_email", email)
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusUnauthorized, "admin authentication required")
		}
	}
}
