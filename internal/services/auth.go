package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"rewind-bknd/internal/auth"
	"rewind-bknd/internal/config"
	"rewind-bknd/internal/logger"
	"rewind-bknd/internal/models"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	maxActiveSessions = 2
	defaultUserRole   = "technician"

	providerLocal = "local"
	providerLDAP  = "ldap"
)

type AuthService struct {
	db         *bun.DB
	tokens     *auth.TokenManager
	dir        auth.Directory
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
	logr       *logger.Logger
}

// NewAuthService wires token issuing and session storage. dir may be nil, in
// which case directory sign-in is refused.
func NewAuthService(db *bun.DB, tokens *auth.TokenManager, dir auth.Directory, cfg *config.Config, logr *logger.Logger) *AuthService {
	return &AuthService{
		db:         db,
		tokens:     tokens,
		dir:        dir,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		now:        func() time.Time { return time.Now().UTC() },
		logr:       logr,
	}
}

// HashPassword uses bcrypt
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(b), err
}

type UserInfo struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Provider string `json:"provider"`
	Role     string `json:"role"`
}

func userInfo(u *models.User) *UserInfo {
	return &UserInfo{
		ID:       u.ID.String(),
		Email:    u.Email,
		Name:     u.Name,
		Provider: u.Provider,
		Role:     u.Role,
	}
}

// CreateLocalUser registers or resets a password account
func (s *AuthService) CreateLocalUser(ctx context.Context, email, name, password, role string) (*UserInfo, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, validationError("email and password are required")
	}
	if role == "" {
		role = defaultUserRole
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := new(models.User)
	err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		err := tx.NewSelect().Model(u).Where("email = ?", email).Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			*u = models.User{
				ID:           uuid.New(),
				Email:        email,
				Name:         name,
				PasswordHash: hash,
				Provider:     providerLocal,
				Role:         role,
				CreatedAt:    s.now(),
			}
			_, err = tx.NewInsert().Model(u).Exec(ctx)
			return err
		}
		if err != nil {
			return err
		}

		// resetting a password signs out every existing session
		u.Name, u.PasswordHash, u.Provider, u.Role = name, hash, providerLocal, role
		u.TokenVersion++
		_, err = tx.NewUpdate().
			Model(u).
			Column("name", "password_hash", "provider", "role", "token_version").
			WherePK().
			Exec(ctx)
		return err
	})
	if err != nil {
		return nil, storageError("save user", err)
	}
	return userInfo(u), nil
}

// LoginLocal checks an email/password account and opens a session
func (s *AuthService) LoginLocal(ctx context.Context, email, password, deviceInfo string) (*auth.TokenPair, *UserInfo, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var u models.User
	if err := s.db.NewSelect().Model(&u).Where("email = ?", email).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, unauthorized("invalid credentials")
		}
		return nil, nil, storageError("find user", err)
	}
	if u.PasswordHash == "" {
		return nil, nil, unauthorized("account not configured for local login")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, nil, unauthorized("invalid credentials")
	}

	pair, err := s.openSession(ctx, &u, providerLocal, deviceInfo)
	if err != nil {
		return nil, nil, err
	}
	return pair, userInfo(&u), nil
}

// LoginDirectory authenticates against the workshop directory and provisions
// the user on first sign-in.
func (s *AuthService) LoginDirectory(ctx context.Context, username, password, deviceInfo string) (*auth.TokenPair, *UserInfo, error) {
	if s.dir == nil {
		return nil, nil, unauthorized("directory sign-in is not configured")
	}

	entry, err := s.dir.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) || errors.Is(err, auth.ErrDirectoryEntry) {
			s.logr.Warn("directory login refused", zap.String("username", username), zap.Error(err))
			return nil, nil, unauthorized("invalid credentials")
		}
		s.logr.Error("directory unavailable", zap.Error(err))
		return nil, nil, fmt.Errorf("%w: directory: %v", ErrTransientIO, err)
	}

	var u models.User
	err = s.db.NewSelect().Model(&u).Where("email = ?", entry.Email).Scan(ctx)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		u = models.User{
			ID:        uuid.New(),
			Email:     entry.Email,
			Name:      entry.Name,
			Provider:  providerLDAP,
			Role:      defaultUserRole,
			CreatedAt: s.now(),
		}
		if _, err := s.db.NewInsert().Model(&u).Exec(ctx); err != nil {
			return nil, nil, storageError("create user", err)
		}
		s.logr.Info("provisioned directory user", zap.String("email", u.Email), zap.String("user_id", u.ID.String()))
	case err != nil:
		return nil, nil, storageError("find user", err)
	case u.Provider != providerLDAP || u.Name != entry.Name:
		u.Provider, u.Name = providerLDAP, entry.Name
		if _, err := s.db.NewUpdate().Model(&u).Column("provider", "name").WherePK().Exec(ctx); err != nil {
			return nil, nil, storageError("update user", err)
		}
	}

	pair, err := s.openSession(ctx, &u, providerLDAP, deviceInfo)
	if err != nil {
		return nil, nil, err
	}
	return pair, userInfo(&u), nil
}

func (s *AuthService) openSession(ctx context.Context, u *models.User, method, deviceInfo string) (*auth.TokenPair, error) {
	now := s.now()
	u.LastLoginAt = &now
	if _, err := s.db.NewUpdate().Model(u).Column("last_login_at").WherePK().Exec(ctx); err != nil {
		s.logr.Warn("failed to record last login", zap.Error(err), zap.String("user_id", u.ID.String()))
	}

	pair, err := s.tokens.GenerateTokenPair(auth.Subject{
		UserID:     u.ID,
		Version:    u.TokenVersion,
		AuthMethod: method,
		Role:       u.Role,
	}, s.accessTTL, s.refreshTTL)
	if err != nil {
		return nil, err
	}
	if err := s.storeRefreshToken(ctx, u.ID, pair, deviceInfo); err != nil {
		return nil, err
	}
	return pair, nil
}

// storeRefreshToken stores the refresh token hashed and keeps at most
// maxActiveSessions live sessions per user, dropping the oldest.
func (s *AuthService) storeRefreshToken(ctx context.Context, userID uuid.UUID, pair *auth.TokenPair, deviceInfo string) error {
	now := s.now()
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewDelete().
			Model((*models.RefreshToken)(nil)).
			Where("user_id = ? AND expires_at < ?", userID, now).
			Exec(ctx)
		if err != nil {
			return storageError("prune sessions", err)
		}

		var active []models.RefreshToken
		err = tx.NewSelect().
			Model(&active).
			Column("id").
			Where("user_id = ? AND revoked = ?", userID, false).
			OrderExpr("created_at DESC").
			Scan(ctx)
		if err != nil {
			return storageError("list sessions", err)
		}
		if len(active) >= maxActiveSessions {
			stale := make([]uuid.UUID, 0, len(active))
			for _, rt := range active[maxActiveSessions-1:] {
				stale = append(stale, rt.ID)
			}
			_, err = tx.NewDelete().
				Model((*models.RefreshToken)(nil)).
				Where("id IN (?)", bun.In(stale)).
				Exec(ctx)
			if err != nil {
				return storageError("drop old sessions", err)
			}
		}

		rt := &models.RefreshToken{
			ID:         uuid.New(),
			UserID:     userID,
			JTI:        pair.RefreshJTI,
			TokenHash:  auth.HashToken(pair.RefreshToken),
			DeviceInfo: deviceInfo,
			CreatedAt:  now,
			ExpiresAt:  pair.RefreshExp,
		}
		if _, err := tx.NewInsert().Model(rt).Exec(ctx); err != nil {
			return storageError("store session", err)
		}
		return nil
	})
}

// Refresh verifies a refresh token, revokes it and issues a new pair
func (s *AuthService) Refresh(ctx context.Context, refreshToken, deviceInfo string) (*auth.TokenPair, error) {
	claims, err := s.tokens.Verify(refreshToken, auth.RefreshToken)
	if err != nil {
		return nil, unauthorized("invalid refresh token: %v", err)
	}

	var rt models.RefreshToken
	err = s.db.NewSelect().
		Model(&rt).
		Where("jti = ? AND token_hash = ?", claims.ID, auth.HashToken(refreshToken)).
		Where("revoked = ? AND expires_at > ?", false, s.now()).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, unauthorized("refresh token not found or revoked")
		}
		return nil, storageError("find session", err)
	}

	var u models.User
	if err := s.db.NewSelect().Model(&u).Where("id = ?", rt.UserID).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, unauthorized("user no longer exists")
		}
		return nil, storageError("find user", err)
	}
	if u.TokenVersion != claims.Version {
		return nil, unauthorized("token revoked")
	}

	rt.Revoked = true
	if _, err := s.db.NewUpdate().Model(&rt).Column("revoked").WherePK().Exec(ctx); err != nil {
		return nil, storageError("revoke session", err)
	}

	pair, err := s.tokens.GenerateTokenPair(auth.Subject{
		UserID:     u.ID,
		Version:    u.TokenVersion,
		AuthMethod: claims.AuthMethod,
		Role:       u.Role,
	}, s.accessTTL, s.refreshTTL)
	if err != nil {
		return nil, err
	}
	if err := s.storeRefreshToken(ctx, u.ID, pair, deviceInfo); err != nil {
		return nil, err
	}
	return pair, nil
}

// Logout revokes the session a refresh token belongs to
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.tokens.Verify(refreshToken, auth.RefreshToken)
	if err != nil {
		return unauthorized("invalid refresh token: %v", err)
	}
	_, err = s.db.NewUpdate().
		Model((*models.RefreshToken)(nil)).
		Set("revoked = ?", true).
		Where("jti = ?", claims.ID).
		Exec(ctx)
	return storageError("revoke session", err)
}

// CheckTokenVersion reports whether tokens issued at version are still honoured
func (s *AuthService) CheckTokenVersion(ctx context.Context, userID string, version int) (bool, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return false, nil
	}
	var current int
	err = s.db.NewSelect().
		Model((*models.User)(nil)).
		Column("token_version").
		Where("id = ?", id).
		Scan(ctx, &current)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, storageError("check token version", err)
	}
	return current == version, nil
}

// Verify checks an access token, used by the request middleware
func (s *AuthService) Verify(token string) (*auth.Claims, error) {
	claims, err := s.tokens.Verify(token, auth.AccessToken)
	if err != nil {
		return nil, unauthorized("%v", err)
	}
	return claims, nil
}
