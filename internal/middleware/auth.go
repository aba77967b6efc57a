package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"rewind-bknd/internal/auth"
	"rewind-bknd/internal/logger"

	"go.uber.org/zap"
)

// TokenVerifier checks access tokens and whether their version is still current
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
	CheckTokenVersion(ctx context.Context, userID string, version int) (bool, error)
}

type AuthMiddleware struct {
	verifier TokenVerifier
	logr     *logger.Logger
}

type contextKey string

const (
	ContextUserIDKey  contextKey = "userID"
	ContextAuthMethod contextKey = "authMethod"
	ContextRoleKey    contextKey = "role"
)

// NewAuthMiddleware creates a reusable JWT auth middleware instance
func NewAuthMiddleware(verifier TokenVerifier, logr *logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier, logr: logr}
}

func unauthorized(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": message})
}

// JWTAuth validates the bearer token and attaches user info to the request context
func (m *AuthMiddleware) JWTAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			unauthorized(w, http.StatusUnauthorized, "missing authorization header")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			unauthorized(w, http.StatusUnauthorized, "invalid token format")
			return
		}

		claims, err := m.verifier.Verify(tokenString)
		if err != nil {
			m.logr.Warn("token rejected", zap.Error(err))
			unauthorized(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		valid, err := m.verifier.CheckTokenVersion(r.Context(), claims.Subject, claims.Version)
		if err != nil {
			m.logr.Error("failed checking token version", zap.Error(err), zap.String("user_id", claims.Subject))
			unauthorized(w, http.StatusServiceUnavailable, "unable to verify session")
			return
		}
		if !valid {
			m.logr.Warn("token version invalid", zap.String("user_id", claims.Subject))
			unauthorized(w, http.StatusUnauthorized, "token revoked or invalid")
			return
		}

		ctx := context.WithValue(r.Context(), ContextUserIDKey, claims.Subject)
		ctx = context.WithValue(ctx, ContextAuthMethod, claims.AuthMethod)
		ctx = context.WithValue(ctx, ContextRoleKey, claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID returns the authenticated user id, empty when the request was not authenticated
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(ContextUserIDKey).(string)
	return id
}
