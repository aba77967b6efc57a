package auth

import (
	"crypto/rsa"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenKind string

const (
	AccessToken  TokenKind = "access"
	RefreshToken TokenKind = "refresh"
)

var ErrWrongTokenKind = errors.New("wrong token kind")

// Claims carried by both access and refresh tokens
type Claims struct {
	jwt.RegisteredClaims
	Kind       TokenKind `json:"typ"`
	Version    int       `json:"ver"`
	AuthMethod string    `json:"auth_method"`
	Role       string    `json:"role,omitempty"`
}

// Subject describes the user a token pair is issued for
type Subject struct {
	UserID     uuid.UUID
	Version    int
	AuthMethod string
	Role       string
}

type TokenManager struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	issuer     string
	now        func() time.Time
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
	RefreshJTI   string
}

func NewTokenManager(privateKey *rsa.PrivateKey, issuer string) *TokenManager {
	return &TokenManager{
		privateKey: privateKey,
		publicKey:  &privateKey.PublicKey,
		issuer:     issuer,
		now:        time.Now,
	}
}

// LoadTokenManager reads the RS256 key pair from PEM files
func LoadTokenManager(privatePath, publicPath, issuer string) (*TokenManager, error) {
	privPem, err := os.ReadFile(privatePath)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	privKey, err := jwt.ParseRSAPrivateKeyFromPEM(privPem)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	pubPem, err := os.ReadFile(publicPath)
	if err != nil {
		return nil, fmt.Errorf("read public key: %w", err)
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubPem)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	if !privKey.PublicKey.Equal(pubKey) {
		return nil, errors.New("public key does not match private key")
	}

	m := NewTokenManager(privKey, issuer)
	m.publicKey = pubKey
	return m, nil
}

func (m *TokenManager) sign(sub Subject, kind TokenKind, ttl time.Duration) (string, string, time.Time, error) {
	now := m.now().UTC()
	exp := now.Add(ttl)
	jti := uuid.New().String()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   sub.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        jti,
		},
		Kind:       kind,
		Version:    sub.Version,
		AuthMethod: sub.AuthMethod,
		Role:       sub.Role,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(m.privateKey)
	if err != nil {
		return "", "", time.Time{}, err
	}
	return token, jti, exp, nil
}

// GenerateTokenPair creates an access token and a refresh token, each with its own jti
func (m *TokenManager) GenerateTokenPair(sub Subject, accessTTL, refreshTTL time.Duration) (*TokenPair, error) {
	access, _, accessExp, err := m.sign(sub, AccessToken, accessTTL)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, refreshJTI, refreshExp, err := m.sign(sub, RefreshToken, refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
		RefreshJTI:   refreshJTI,
	}, nil
}

// Verify checks the RS256 signature, expiry, issuer and token kind
func (m *TokenManager) Verify(tokenStr string, kind TokenKind) (*Claims, error) {
	claims := new(Claims)
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodRS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.publicKey, nil
	},
		jwt.WithLeeway(5*time.Second),
		jwt.WithIssuer(m.issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, err
	}
	if claims.Kind != kind {
		return nil, fmt.Errorf("%w: got %q, want %q", ErrWrongTokenKind, claims.Kind, kind)
	}
	return claims, nil
}

// HashToken produces SHA256 hex of the token for storage
func HashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}
