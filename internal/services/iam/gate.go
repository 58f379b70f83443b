package iam

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lupamo/realtime-collab/internal/db/models"
	"github.com/lupamo/realtime-collab/internal/repository"
	"github.com/lupamo/realtime-collab/internal/token"
)

var (
	// ErrUnauthorized covers every authentication failure. Callers must not
	// leak which step failed; the distinction stays in the wrapped error for
	// server-side logs only.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden means the caller is authenticated but has no grant for the
	// resource.
	ErrForbidden = errors.New("forbidden")
)

const bearerPrefix = "Bearer "

// lookupTimeout bounds the store lookups performed per request so a stalled
// database cannot hold authentication hostage.
const lookupTimeout = 5 * time.Second

// Gate answers the two questions every protected request asks: who is the
// caller, and may they touch this team's resources.
type Gate struct {
	tokens      *token.Service
	users       repository.UserRepository
	memberships repository.MembershipRepository
}

// NewGate constructs an access gate over the token service and the stores it
// consults.
func NewGate(tokens *token.Service, users repository.UserRepository, memberships repository.MembershipRepository) *Gate {
	return &Gate{tokens: tokens, users: users, memberships: memberships}
}

// Authenticate resolves an Authorization header to an active user. Every
// failure mode, from a missing header to a deactivated account, collapses to
// ErrUnauthorized.
func (g *Gate) Authenticate(ctx context.Context, authorization string) (*models.User, error) {
	if !strings.HasPrefix(authorization, bearerPrefix) {
		return nil, fmt.Errorf("%w: missing bearer token", ErrUnauthorized)
	}
	raw := strings.TrimPrefix(authorization, bearerPrefix)

	claims, err := g.tokens.Validate(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if claims.TokenType != token.TypeAccess {
		return nil, fmt.Errorf("%w: token type %q is not usable for requests", ErrUnauthorized, claims.TokenType)
	}

	lookupCtx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	user, err := g.users.GetByID(lookupCtx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %d no longer exists", ErrUnauthorized, claims.UserID)
		}
		return nil, fmt.Errorf("look up user %d: %w", claims.UserID, err)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: user %d is deactivated", ErrUnauthorized, user.ID)
	}
	return user, nil
}

// AuthorizeTeamAccess checks that the user is a member of the team. When
// roles are given, the membership must additionally carry one of them. A
// missing membership and an insufficient role are both ErrForbidden.
func (g *Gate) AuthorizeTeamAccess(ctx context.Context, user *models.User, teamID int64, roles ...models.TeamRole) (*models.TeamMember, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	membership, err := g.memberships.Get(lookupCtx, teamID, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %d is not a member of team %d", ErrForbidden, user.ID, teamID)
		}
		return nil, fmt.Errorf("look up membership: %w", err)
	}

	if len(roles) > 0 {
		allowed := false
		for _, role := range roles {
			if membership.Role == role {
				allowed = true
				break
			}
		}
		if !allowed {
			return nil, fmt.Errorf("%w: role %q does not grant this operation on team %d", ErrForbidden, membership.Role, teamID)
		}
	}
	return membership, nil
}
