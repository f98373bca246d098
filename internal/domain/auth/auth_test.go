package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/chargedrops/chargedrops-api/internal/types"
	"github.com/chargedrops/chargedrops-api/pkg/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func hash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestNewAuthenticatorModes(t *testing.T) {
	_, err := NewAuthenticator(config.AuthConfig{Mode: "stub"}, testLogger())
	require.NoError(t, err)

	_, err = NewAuthenticator(config.AuthConfig{Mode: "real"}, testLogger())
	assert.Error(t, err, "real mode without credentials must fail")

	_, err = NewAuthenticator(config.AuthConfig{Mode: "magic"}, testLogger())
	assert.Error(t, err)

	a, err := NewAuthenticator(config.AuthConfig{
		Mode:              "real",
		AdminEmail:        "admin@chargedrops.com",
		AdminPasswordHash: hash(t, "hunter2"),
	}, testLogger())
	require.NoError(t, err)
	assert.IsType(t, (*StaticAuthenticator)(nil), a)
}

func TestStaticAuthenticator(t *testing.T) {
	a, err := NewAuthenticator(config.AuthConfig{
		Mode:              "real",
		AdminEmail:        "Admin@Chargedrops.com",
		AdminPasswordHash: hash(t, "hunter2"),
	}, testLogger())
	require.NoError(t, err)

	ctx := context.Background()

	assert.NoError(t, a.Authenticate(ctx, "admin@chargedrops.com", "hunter2"))
	// Email comparison is case-insensitive.
	assert.NoError(t, a.Authenticate(ctx, "ADMIN@chargedrops.com", "hunter2"))

	assert.ErrorIs(t, a.Authenticate(ctx, "admin@chargedrops.com", "wrong"), types.ErrUnauthenticated)
	assert.ErrorIs(t, a.Authenticate(ctx, "other@chargedrops.com", "hunter2"), types.ErrUnauthenticated)
}

func TestStubAuthenticatorAcceptsAnything(t *testing.T) {
	a, err := NewAuthenticator(config.AuthConfig{Mode: "stub"}, testLogger())
	require.NoError(t, err)
	assert.NoError(t, a.Authenticate(context.Background(), "whoever", "whatever"))
}

func TestTokenRoundTrip(t *testing.T) {
	m, err := NewTokenManager([]byte("secret"), time.Hour)
	require.NoError(t, err)

	token, err := m.Generate("admin@chargedrops.com")
	require.NoError(t, err)

	email, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "admin@chargedrops.com", email)
}

func TestTokenValidateRejects(t *testing.T) {
	m, err := NewTokenManager([]byte("secret"), time.Hour)
	require.NoError(t, err)

	_, err = m.Validate("garbage")
	assert.ErrorIs(t, err, types.ErrUnauthenticated)

	// A token signed with a different secret is rejected.
	other, err := NewTokenManager([]byte("other-secret"), time.Hour)
	require.NoError(t, err)
	token, err := other.Generate("admin@chargedrops.com")
	require.NoError(t, err)
	_, err = m.Validate(token)
	assert.ErrorIs(t, err, types.ErrUnauthenticated)
}

func TestTokenExpires(t *testing.T) {
	m, err := NewTokenManager([]byte("secret"), -time.Minute)
	require.NoError(t, err)

	token, err := m.Generate("admin@chargedrops.com")
	require.NoError(t, err)

	_, err = m.Validate(token)
	assert.ErrorIs(t, err, types.ErrUnauthenticated)
}

func TestTokenManagerRequiresSecret(t *testing.T) {
	_, err := NewTokenManager(nil, time.Hour)
	assert.Error(t, err)
}
