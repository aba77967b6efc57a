package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is a workshop account allowed to save and delete projects
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           uuid.UUID  `bun:"id,pk,type:uuid" json:"id"`
	Email        string     `bun:"email,notnull,unique" json:"email"`
	Name         string     `bun:"name,notnull,default:''" json:"name"`
	PasswordHash string     `bun:"password_hash,notnull,default:''" json:"-"`
	Provider     string     `bun:"provider,notnull,default:'local'" json:"provider"`
	Role         string     `bun:"role,notnull,default:'technician'" json:"role"`
	TokenVersion int        `bun:"token_version,notnull,default:0" json:"-"`
	CreatedAt    time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	LastLoginAt  *time.Time `bun:"last_login_at" json:"last_login_at,omitempty"`
}

type RefreshToken struct {
	bun.BaseModel `bun:"table:refresh_tokens,alias:rt"`

	ID         uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	UserID     uuid.UUID `bun:"user_id,type:uuid,notnull" json:"user_id"`
	JTI        string    `bun:"jti,notnull,unique" json:"jti"`
	TokenHash  string    `bun:"token_hash,notnull" json:"-"`
	DeviceInfo string    `bun:"device_info,notnull,default:''" json:"device_info"`
	Revoked    bool      `bun:"revoked,notnull,default:false" json:"revoked"`
	CreatedAt  time.Time `bun:"created_at,notnull" json:"created_at"`
	ExpiresAt  time.Time `bun:"expires_at,notnull" json:"expires_at"`
}
