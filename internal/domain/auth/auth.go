// Package auth gates the admin surface. The authenticator is an explicit
// capability selected by configuration, never a bypass baked into routing:
// "real" verifies credentials with bcrypt, "stub" accepts anything and is
// refused outside development by config validation.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/chargedrops/chargedrops-api/internal/types"
	"github.com/chargedrops/chargedrops-api/pkg/config"
)

// Authenticator verifies admin credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) error
}

// NewAuthenticator selects the implementation for the configured mode.
func NewAuthenticator(cfg config.AuthConfig, logger *slog.Logger) (Authenticator, error) {
	switch cfg.Mode {
	case "stub":
		logger.Warn("admin authentication is stubbed; every login succeeds")
		return StubAuthenticator{}, nil
	case "real":
		if cfg.AdminEmail == "" || cfg.AdminPasswordHash == "" {
			return nil, fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD_HASH are required when AUTH_MODE=real")
		}
		return &StaticAuthenticator{
			logger:       logger,
			email:        strings.ToLower(cfg.AdminEmail),
			passwordHash: []byte(cfg.AdminPasswordHash),
		}, nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Mode)
	}
}

// StaticAuthenticator checks against the single configured admin credential.
type StaticAuthenticator struct {
	logger       *slog.Logger
	email        string
	passwordHash []byte
}

var _ Authenticator = (*StaticAuthenticator)(nil)

func (a *StaticAuthenticator) Authenticate(ctx context.Context, email, password string) error {
	if strings.ToLower(strings.TrimSpace(email)) != a.email {
		// Burn a comparison anyway so the two failure modes take the same time.
		_ = bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password))
		return types.ErrUnauthenticated
	}
	if err := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)); err != nil {
		a.logger.WarnContext(ctx, "admin login rejected", slog.String("email", email))
		return types.ErrUnauthenticated
	}
	return nil
}

// StubAuthenticator authorizes everyone. Development only.
type StubAuthenticator struct{}

var _ Authenticator = StubAuthenticator{}

func (StubAuthenticator) Authenticate(ctx context.Context, email, password string) error {
	return nil
}
