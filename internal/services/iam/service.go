// Package iam holds the identity side of the platform: credential checks,
// session issuance and revocation, and the access gate consulted by every
// protected endpoint.
package iam

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/lupamo/realtime-collab/internal/db/models"
	"github.com/lupamo/realtime-collab/internal/repository"
	"github.com/lupamo/realtime-collab/internal/token"
)

// Session is the credential pair handed out at login.
type Session struct {
	AccessToken  string
	RefreshToken string
}

// Service implements registration and the session lifecycle.
type Service struct {
	users      repository.UserRepository
	tokens     *token.Service
	bcryptCost int
}

// NewService constructs the identity service.
func NewService(users repository.UserRepository, tokens *token.Service, bcryptCost int) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{users: users, tokens: tokens, bcryptCost: bcryptCost}
}

// Register creates a user with a bcrypt-hashed password. A taken email
// surfaces as repository.ErrAlreadyExists.
func (s *Service) Register(ctx context.Context, email, password, fullName string) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Email:          email,
		HashedPassword: string(hashed),
		FullName:       fullName,
		IsActive:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies the credentials and issues a session. An unknown email and a
// wrong password are indistinguishable to the caller; a deactivated account
// is ErrForbidden.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, *Session, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: bad credentials", ErrUnauthorized)
		}
		return nil, nil, fmt.Errorf("look up user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return nil, nil, fmt.Errorf("%w: bad credentials", ErrUnauthorized)
	}
	if !user.IsActive {
		return nil, nil, fmt.Errorf("%w: account is deactivated", ErrForbidden)
	}

	session, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, session, nil
}

func (s *Service) issueSession(ctx context.Context, user *models.User) (*Session, error) {
	access, _, err := s.tokens.IssueAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	refresh, refreshExpiry, err := s.tokens.IssueRefreshToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Record(ctx, refresh, user.ID, refreshExpiry); err != nil {
		return nil, err
	}
	return &Session{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh exchanges a live refresh token for a new access token. The refresh
// token itself is untouched; it keeps backing the session until logout or
// expiry.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.Validate(refreshToken)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if claims.TokenType != token.TypeRefresh {
		return "", fmt.Errorf("%w: token type %q cannot refresh a session", ErrUnauthorized, claims.TokenType)
	}

	live, err := s.tokens.IsLive(ctx, refreshToken, claims.UserID)
	if err != nil {
		return "", err
	}
	if !live {
		return "", fmt.Errorf("%w: refresh token is revoked or unknown", ErrUnauthorized)
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", fmt.Errorf("%w: user %d no longer exists", ErrUnauthorized, claims.UserID)
		}
		return "", fmt.Errorf("look up user %d: %w", claims.UserID, err)
	}
	if !user.IsActive {
		return "", fmt.Errorf("%w: account is deactivated", ErrUnauthorized)
	}

	access, _, err := s.tokens.IssueAccessToken(user.ID, user.Email)
	if err != nil {
		return "", err
	}
	return access, nil
}

// Logout revokes the user's refresh token. Logging out twice, or with a token
// that was never recorded, succeeds quietly.
func (s *Service) Logout(ctx context.Context, user *models.User, refreshToken string) error {
	return s.tokens.Revoke(ctx, refreshToken, user.ID)
}
