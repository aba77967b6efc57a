package services

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"
	"time"

	"rewind-bknd/internal/auth"
	"rewind-bknd/internal/config"
	"rewind-bknd/internal/logger"
	"rewind-bknd/internal/models"
)

type fakeDirectory struct {
	user *auth.DirectoryUser
	err  error
}

func (d fakeDirectory) Authenticate(context.Context, string, string) (*auth.DirectoryUser, error) {
	return d.user, d.err
}

func newTestAuth(t *testing.T, dir auth.Directory) *AuthService {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	cfg := &config.Config{AccessTokenTTL: time.Minute, RefreshTokenTTL: time.Hour}
	return NewAuthService(newTestDB(t), auth.NewTokenManager(key, "rewind-test"), dir, cfg, logger.Nop())
}

func TestLocalLogin(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuth(t, nil)

	if _, err := svc.CreateLocalUser(ctx, " Atelier@Example.com ", "Atelier", "s3cret", ""); err != nil {
		t.Fatalf("create user: %v", err)
	}

	pair, user, err := svc.LoginLocal(ctx, "atelier@example.com", "s3cret", "bench-pc")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.Email != "atelier@example.com" || user.Role != "technician" || user.Provider != "local" {
		t.Fatalf("unexpected user %+v", user)
	}
	claims, err := svc.Verify(pair.AccessToken)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	ok, err := svc.CheckTokenVersion(ctx, claims.Subject, claims.Version)
	if err != nil || !ok {
		t.Fatalf("fresh token should be current: ok=%v err=%v", ok, err)
	}

	for name, tc := range map[string]struct{ email, password string }{
		"wrong password": {"atelier@example.com", "nope"},
		"unknown user":   {"ghost@example.com", "s3cret"},
	} {
		t.Run(name, func(t *testing.T) {
			if _, _, err := svc.LoginLocal(ctx, tc.email, tc.password, ""); !errors.Is(err, ErrUnauthorized) {
				t.Fatalf("expected ErrUnauthorized, got %v", err)
			}
		})
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuth(t, nil)
	if _, err := svc.CreateLocalUser(ctx, "a@example.com", "A", "pw", ""); err != nil {
		t.Fatalf("create user: %v", err)
	}
	first, _, err := svc.LoginLocal(ctx, "a@example.com", "pw", "")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	second, err := svc.Refresh(ctx, first.RefreshToken, "")
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if second.RefreshToken == first.RefreshToken {
		t.Fatalf("refresh must issue a new token")
	}
	if _, err := svc.Refresh(ctx, first.RefreshToken, ""); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("reusing a rotated token: expected ErrUnauthorized, got %v", err)
	}

	if err := svc.Logout(ctx, second.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.Refresh(ctx, second.RefreshToken, ""); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("refresh after logout: expected ErrUnauthorized, got %v", err)
	}
	if _, err := svc.Refresh(ctx, second.AccessToken, ""); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("access token used as refresh: expected ErrUnauthorized, got %v", err)
	}
}

func TestSessionsCapped(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuth(t, nil)
	if _, err := svc.CreateLocalUser(ctx, "a@example.com", "A", "pw", ""); err != nil {
		t.Fatalf("create user: %v", err)
	}
	for i := 0; i < 4; i++ {
		if _, _, err := svc.LoginLocal(ctx, "a@example.com", "pw", ""); err != nil {
			t.Fatalf("login %d: %v", i, err)
		}
	}
	n, err := svc.db.NewSelect().
		Model((*models.RefreshToken)(nil)).
		Where("revoked = ?", false).
		Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != maxActiveSessions {
		t.Fatalf("expected %d active sessions, got %d", maxActiveSessions, n)
	}
}

func TestPasswordResetRevokesTokens(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuth(t, nil)
	if _, err := svc.CreateLocalUser(ctx, "a@example.com", "A", "old", ""); err != nil {
		t.Fatalf("create user: %v", err)
	}
	pair, _, err := svc.LoginLocal(ctx, "a@example.com", "old", "")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := svc.CreateLocalUser(ctx, "a@example.com", "A", "new", ""); err != nil {
		t.Fatalf("reset user: %v", err)
	}

	claims, err := svc.Verify(pair.AccessToken)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	ok, err := svc.CheckTokenVersion(ctx, claims.Subject, claims.Version)
	if err != nil || ok {
		t.Fatalf("token issued before reset must be stale: ok=%v err=%v", ok, err)
	}
	if _, err := svc.Refresh(ctx, pair.RefreshToken, ""); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, _, err := svc.LoginLocal(ctx, "a@example.com", "new", ""); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestDirectoryLogin(t *testing.T) {
	ctx := context.Background()
	entry := &auth.DirectoryUser{Username: "kofi", Email: "kofi@workshop.local", Name: "Kofi Mensah"}

	svc := newTestAuth(t, fakeDirectory{user: entry})
	_, user, err := svc.LoginDirectory(ctx, "kofi", "pw", "")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.Provider != "ldap" || user.Name != "Kofi Mensah" {
		t.Fatalf("unexpected user %+v", user)
	}
	_, again, err := svc.LoginDirectory(ctx, "kofi", "pw", "")
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	if again.ID != user.ID {
		t.Fatalf("second login provisioned a new user")
	}
}

func TestDirectoryLoginFailures(t *testing.T) {
	tests := []struct {
		name string
		dir  auth.Directory
		want error
	}{
		{"not configured", nil, ErrUnauthorized},
		{"bad password", fakeDirectory{err: auth.ErrInvalidCredentials}, ErrUnauthorized},
		{"no mail", fakeDirectory{err: auth.ErrDirectoryEntry}, ErrUnauthorized},
		{"server down", fakeDirectory{err: errors.New("dial tcp: connection refused")}, ErrTransientIO},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestAuth(t, tt.dir)
			if _, _, err := svc.LoginDirectory(context.Background(), "kofi", "pw", ""); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
