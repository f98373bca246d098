package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManagers(t *testing.T) (*SessionManager, *TokenManager) {
	t.Helper()
	tokens, err := NewTokenManager([]byte("jwt-secret"), time.Hour)
	require.NoError(t, err)
	sessions, err := NewSessionManager([]byte("session-secret"), tokens, time.Hour, false)
	require.NoError(t, err)
	return sessions, tokens
}

func protectedEcho(sessions *SessionManager) *echo.Echo {
	e := echo.New()
	e.GET("/protected", func(c echo.Context) error {
		return c.String(http.StatusOK, c.Get("admin_email").(string))
	}, sessions.Middleware())
	return e
}

func TestMiddlewareRejectsAnonymous(t *testing.T) {
	sessions, _ := newTestManagers(t)
	e := protectedEcho(sessions)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/protected", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddlewareAcceptsBearerToken(t *testing.T) {
	sessions, tokens := newTestManagers(t)
	e := protectedEcho(sessions)

	token, err := tokens.Generate("admin@chargedrops.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin@chargedrops.com", rec.Body.String())
}

func TestMiddlewareRejectsBadBearerToken(t *testing.T) {
	sessions, _ := newTestManagers(t)
	e := protectedEcho(sessions)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer not-a-token")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddlewareAcceptsCookieSession(t *testing.T) {
	sessions, _ := newTestManagers(t)

	e := echo.New()
	e.POST("/login", func(c echo.Context) error {
		require.NoError(t, sessions.SignIn(c, "admin@chargedrops.com"))
		return c.NoContent(http.StatusOK)
	})
	e.GET("/protected", func(c echo.Context) error {
		return c.String(http.StatusOK, c.Get("admin_email").(string))
	}, sessions.Middleware())

	// Sign in and capture the cookie.
	loginRec := httptest.NewRecorder()
	e.ServeHTTP(loginRec, httptest.NewRequest(http.MethodPost, "/login", nil))
	cookies := loginRec.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin@chargedrops.com", rec.Body.String())
}

func TestSignOutExpiresSession(t *testing.T) {
	sessions, _ := newTestManagers(t)

	e := echo.New()
	e.POST("/logout", func(c echo.Context) error {
		require.NoError(t, sessions.SignOut(c))
		return c.NoContent(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/logout", nil))

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Negative(t, cookies[0].MaxAge)
}
