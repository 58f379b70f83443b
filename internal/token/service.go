// Package token issues and validates the platform's JWT credentials and
// tracks refresh-token issuance for revocation.
//
// Access tokens are short-lived and never persisted; their lifetime makes a
// revocation list unnecessary. Refresh tokens are recorded as a one-way hash
// so a database read alone cannot be used to forge a session.
package token

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/lupamo/realtime-collab/internal/config"
	"github.com/lupamo/realtime-collab/internal/db/models"
	"github.com/lupamo/realtime-collab/internal/repository"
)

// Token types carried in the "type" claim.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

var (
	// ErrTokenInvalid is returned when a token's signature, format, or claims
	// are wrong.
	ErrTokenInvalid = errors.New("invalid token")

	// ErrTokenExpired is returned when a structurally valid token is past its
	// expiry.
	ErrTokenExpired = errors.New("token expired")
)

// Claims is the payload encoded into every issued token.
type Claims struct {
	UserID    int64  `json:"user_id"`
	Email     string `json:"email"`
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

// Service signs, validates, and records tokens. Validation is purely
// computational; only the refresh-token liveness and revocation operations
// touch the store.
type Service struct {
	secret        []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
	refreshTokens repository.RefreshTokenRepository
}

// NewService constructs a token service from the JWT configuration.
func NewService(cfg config.JWTConfig, refreshTokens repository.RefreshTokenRepository) *Service {
	return &Service{
		secret:        []byte(cfg.Secret),
		accessTTL:     cfg.AccessTokenTTL,
		refreshTTL:    cfg.RefreshTokenTTL,
		now:           time.Now,
		refreshTokens: refreshTokens,
	}
}

// WithClock overrides the time source, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// IssueAccessToken signs a short-lived access token for the user.
func (s *Service) IssueAccessToken(userID int64, email string) (string, time.Time, error) {
	return s.issue(userID, email, TypeAccess, s.accessTTL)
}

// IssueRefreshToken signs a refresh token for the user.
func (s *Service) IssueRefreshToken(userID int64, email string) (string, time.Time, error) {
	return s.issue(userID, email, TypeRefresh, s.refreshTTL)
}

func (s *Service) issue(userID int64, email, tokenType string, ttl time.Duration) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(ttl)

	claims := Claims{
		UserID:    userID,
		Email:     email,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", tokenType, err)
	}
	return signed, expiresAt, nil
}

// Validate verifies the token's signature and expiry and returns its claims.
// It never consults the store. Expired tokens yield ErrTokenExpired; every
// other failure yields ErrTokenInvalid.
func (s *Service) Validate(raw string) (*Claims, error) {
	claims := new(Claims)
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if claims.TokenType != TypeAccess && claims.TokenType != TypeRefresh {
		return nil, fmt.Errorf("%w: unknown token type %q", ErrTokenInvalid, claims.TokenType)
	}
	return claims, nil
}

// HashToken creates a SHA256 hash of a token string.
func HashToken(raw string) string {
	hasher := sha256.New()
	hasher.Write([]byte(raw))
	return hex.EncodeToString(hasher.Sum(nil))
}

// Record persists an issuance record for the refresh token. Only the hash is
// stored, never the token itself.
func (s *Service) Record(ctx context.Context, raw string, userID int64, expiresAt time.Time) error {
	record := &models.RefreshToken{
		TokenHash: HashToken(raw),
		UserID:    userID,
		ExpiresAt: expiresAt,
	}
	if err := s.refreshTokens.Create(ctx, record); err != nil {
		return fmt.Errorf("record refresh token: %w", err)
	}
	return nil
}

// IsLive reports whether the refresh token still backs a session: a record
// with its hash exists, belongs to the user, is not revoked, and is not past
// its expiry.
func (s *Service) IsLive(ctx context.Context, raw string, userID int64) (bool, error) {
	record, err := s.refreshTokens.GetByHash(ctx, HashToken(raw))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("look up refresh token: %w", err)
	}

	if record.UserID != userID {
		return false, nil
	}
	return record.Usable(s.now()), nil
}

// Revoke marks the refresh token's record revoked. Revoking an unknown or
// already-revoked token is not an error.
func (s *Service) Revoke(ctx context.Context, raw string, userID int64) error {
	if err := s.refreshTokens.Revoke(ctx, HashToken(raw), userID); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}
