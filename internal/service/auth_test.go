package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BloggingApp/blog-gateway/internal/config"
	"github.com/BloggingApp/blog-gateway/internal/repository/sqlite"
	"github.com/BloggingApp/blog-gateway/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestGate(t *testing.T) *session.Gate {
	t.Helper()
	store, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))

	return session.NewGate(store, config.SessionConfig{
		Secret:     "a-test-secret-of-some-length",
		CookieName: "blog_session",
		MaxAge:     time.Hour,
	}, zap.NewNop())
}

func TestAuthLogin(t *testing.T) {
	b := newFakeBackend(t)
	b.on(http.MethodPost, "/auth/login", http.StatusOK, map[string]any{
		"id":    "u1",
		"name":  "Ada",
		"email": "ada@example.com",
		"role":  "user",
		"token": "backend-token",
	})
	gate := newTestGate(t)
	svc := newAuthService(zap.NewNop(), b.factory(), gate)

	token, sess, err := svc.Login(context.Background(), "ada@example.com", "secret")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "u1", sess.UserID)
	assert.Equal(t, "backend-token", sess.AccessToken)

	var sent loginRequest
	require.NoError(t, json.Unmarshal(b.lastCall().Body, &sent))
	assert.Equal(t, loginRequest{Email: "ada@example.com", Password: "secret"}, sent)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(gate.Cookie(token))
	resolved, err := gate.Resolve(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, resolved.ID)

	require.NoError(t, svc.Logout(context.Background(), resolved))
	_, err = gate.Resolve(context.Background(), req)
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestAuthLoginErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    any
		wantErr error
	}{
		{name: "wrong password", status: http.StatusUnauthorized, body: map[string]string{"message": "wrong password"}, wantErr: ErrInvalidCredentials},
		{name: "unknown user", status: http.StatusNotFound, body: map[string]string{"message": "user not found"}, wantErr: ErrInvalidCredentials},
		{name: "backend down", status: http.StatusBadGateway, body: nil, wantErr: ErrInvalidCredentials},
		{name: "no backend token", status: http.StatusOK, body: map[string]string{"id": "u1"}, wantErr: ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newFakeBackend(t)
			b.on(http.MethodPost, "/auth/login", tt.status, tt.body)
			svc := newAuthService(zap.NewNop(), b.factory(), newTestGate(t))

			_, _, err := svc.Login(context.Background(), "ada@example.com", "secret")
			assert.ErrorIs(t, err, tt.wantErr)
			assert.NotContains(t, err.Error(), "password")
			assert.NotContains(t, err.Error(), "not found")
		})
	}
}

func TestAuthLoginBlankCredentials(t *testing.T) {
	b := newFakeBackend(t)
	svc := newAuthService(zap.NewNop(), b.factory(), newTestGate(t))

	_, _, err := svc.Login(context.Background(), " ", "secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login(context.Background(), "ada@example.com", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Zero(t, b.callCount())
}

func TestAuthGoogleLogin(t *testing.T) {
	b := newFakeBackend(t)
	b.on(http.MethodPost, "/auth/google", http.StatusOK, map[string]any{"id": "u7", "name": "Grace", "token": "backend-token"})
	svc := newAuthService(zap.NewNop(), b.factory(), newTestGate(t))

	_, sess, err := svc.GoogleLogin(context.Background(), "google-access-token")
	require.NoError(t, err)
	assert.Equal(t, "u7", sess.UserID)

	var sent googleLoginRequest
	require.NoError(t, json.Unmarshal(b.lastCall().Body, &sent))
	assert.Equal(t, "google-access-token", sent.Token)

	_, _, err = svc.GoogleLogin(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthLogoutWithoutSession(t *testing.T) {
	svc := newAuthService(zap.NewNop(), nil, newTestGate(t))
	assert.ErrorIs(t, svc.Logout(context.Background(), nil), ErrUnauthorized)
}
