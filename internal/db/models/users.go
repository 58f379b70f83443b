package models

import (
	"time"

	"github.com/uptrace/bun"
)

// User represents a registered principal. The password is stored as a bcrypt
// hash; the account can be deactivated without deleting it via IsActive.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID             int64     `bun:"id,pk,autoincrement"`
	Email          string    `bun:"email,notnull,unique"`
	HashedPassword string    `bun:"hashed_password,notnull"`
	FullName       string    `bun:"full_name"`
	AvatarURL      string    `bun:"avatar_url"`
	IsActive       bool      `bun:"is_active,notnull,default:true"`
	IsSuperuser    bool      `bun:"is_superuser,notnull,default:false"`
	CreatedAt      time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt      time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// RefreshToken stores a one-way hash of an issued refresh token. The raw
// token string is never persisted; revocation flips the Revoked flag and the
// row is kept as an audit trail of issuance.
type RefreshToken struct {
	bun.BaseModel `bun:"table:refresh_tokens,alias:rt"`

	ID        int64     `bun:"id,pk,autoincrement"`
	TokenHash string    `bun:"token_hash,notnull,unique"` // SHA-256 hex of the token string
	UserID    int64     `bun:"user_id,notnull"`           // FK to users(id), cascade delete
	ExpiresAt time.Time `bun:"expires_at,notnull"`
	Revoked   bool      `bun:"revoked,notnull,default:false"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// Usable reports whether the record still backs a live session at the given
// instant: not revoked and not past its expiry.
func (rt *RefreshToken) Usable(now time.Time) bool {
	return rt != nil && !rt.Revoked && rt.ExpiresAt.After(now)
}
