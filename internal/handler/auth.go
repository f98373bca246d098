package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/chargedrops/chargedrops-api/internal/domain/auth"
)

// AuthHandler owns admin login and logout.
type AuthHandler struct {
	logger   *slog.Logger
	auth     auth.Authenticator
	sessions *auth.SessionManager
	tokens   *auth.TokenManager
}

func NewAuthHandler(authenticator auth.Authenticator, sessions *auth.SessionManager, tokens *auth.TokenManager, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		logger:   logger,
		auth:     authenticator,
		sessions: sessions,
		tokens:   tokens,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials, establishes the session cookie, and returns a
// bearer token for API clients.
func (h *AuthHandler) Login(c echo.Context) error {
	var body loginRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid login payload")
	}

	ctx := c.Request().Context()
	if err := h.auth.Authenticate(ctx, body.Email, body.Password); err != nil {
		return httpError(err)
	}
	if err := h.sessions.SignIn(c, body.Email); err != nil {
		h.logger.ErrorContext(ctx, "failed to establish admin session", slog.Any("error", err))
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	token, err := h.tokens.Generate(body.Email)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to issue admin token", slog.Any("error", err))
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	return c.JSON(http.StatusOK, map[string]any{"token": token, "email": body.Email})
}

// Logout expires the session cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.sessions.SignOut(c); err != nil {
		h.logger.ErrorContext(c.Request().Context(), "failed to expire admin session", slog.Any("error", err))
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	return c.NoContent(http.StatusNoContent)
}
