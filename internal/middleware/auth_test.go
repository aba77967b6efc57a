package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"rewind-bknd/internal/auth"
	"rewind-bknd/internal/logger"

	"github.com/golang-jwt/jwt/v5"
)

type stubVerifier struct {
	claims   *auth.Claims
	err      error
	current  bool
	checkErr error
}

func (s stubVerifier) Verify(string) (*auth.Claims, error) { return s.claims, s.err }

func (s stubVerifier) CheckTokenVersion(context.Context, string, int) (bool, error) {
	return s.current, s.checkErr
}

func TestJWTAuth(t *testing.T) {
	claims := &auth.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"}, AuthMethod: "local"}

	tests := []struct {
		name     string
		header   string
		verifier stubVerifier
		want     int
	}{
		{"missing header", "", stubVerifier{claims: claims, current: true}, http.StatusUnauthorized},
		{"not bearer", "Basic abc", stubVerifier{claims: claims, current: true}, http.StatusUnauthorized},
		{"bad token", "Bearer x", stubVerifier{err: errors.New("expired")}, http.StatusUnauthorized},
		{"stale version", "Bearer x", stubVerifier{claims: claims, current: false}, http.StatusUnauthorized},
		{"store down", "Bearer x", stubVerifier{claims: claims, checkErr: errors.New("down")}, http.StatusServiceUnavailable},
		{"ok", "Bearer x", stubVerifier{claims: claims, current: true}, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = UserID(r.Context())
				w.WriteHeader(http.StatusNoContent)
			})
			mw := NewAuthMiddleware(tt.verifier, logger.Nop())

			req := httptest.NewRequest(http.MethodPost, "/api/v1/projects", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			mw.JWTAuth(next).ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("status %d, want %d", rec.Code, tt.want)
			}
			if tt.want == http.StatusNoContent && seen != "user-1" {
				t.Fatalf("user id not propagated, got %q", seen)
			}
		})
	}
}
