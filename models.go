package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the identity record backing every authentication decision.
type User struct {
	bun.BaseModel       `bun:"table:users,alias:usr"`
	ID                  uuid.UUID       `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email               string          `bun:"email,notnull,unique" json:"email,omitempty"`
	Phone               string          `bun:"phone_number" json:"phone_number,omitempty"`
	PasswordHash        string          `bun:"password_hash,notnull" json:"-"`
	UserType            UserType        `bun:"user_type,notnull" json:"user_type,omitempty"`
	Verified            bool            `bun:"is_verified" json:"is_verified"`
	Active              bool            `bun:"is_active" json:"is_active"`
	ProfileCompleted    bool            `bun:"profile_completed" json:"profile_completed"`
	ProfileServiceID    string          `bun:"profile_service_id,nullzero" json:"profile_service_id,omitempty"`
	LastLoginAt         *time.Time      `bun:"last_login,nullzero" json:"last_login,omitempty"`
	FailedLoginAttempts int             `bun:"failed_login_attempts" json:"failed_login_attempts,omitempty"`
	LockedUntil         *time.Time      `bun:"account_locked_until,nullzero" json:"account_locked_until,omitempty"`
	CreatedAt           *time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt           *time.Time      `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	Roles               []*Role         `bun:"m2m:user_roles,join:User=Role" json:"roles,omitempty"`
	RefreshTokens       []*RefreshToken `bun:"rel:has-many,join:id=user_id" json:"-"`
}

// Role is a named bundle of permissions assigned to users.
type Role struct {
	bun.BaseModel `bun:"table:roles,alias:rol"`
	ID            uuid.UUID     `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string        `bun:"role_name,notnull,unique" json:"role_name,omitempty"`
	Description   string        `bun:"description" json:"description,omitempty"`
	Active        bool          `bun:"is_active" json:"is_active"`
	CreatedAt     *time.Time    `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	Permissions   []*Permission `bun:"m2m:role_permissions,join:Role=Permission" json:"permissions,omitempty"`
}

// Permission names a single allowed action on a resource.
type Permission struct {
	bun.BaseModel `bun:"table:permissions,alias:prm"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"permission_name,notnull,unique" json:"permission_name,omitempty"`
	Resource      string     `bun:"resource" json:"resource,omitempty"`
	Action        string     `bun:"action" json:"action,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// UserRole is the users<->roles join table.
type UserRole struct {
	bun.BaseModel `bun:"table:user_roles,alias:usrrol"`
	UserID        uuid.UUID `bun:"user_id,pk,type:uuid"`
	User          *User     `bun:"rel:belongs-to,join:user_id=id"`
	RoleID        uuid.UUID `bun:"role_id,pk,type:uuid"`
	Role          *Role     `bun:"rel:belongs-to,join:role_id=id"`
}

// RolePermission is the roles<->permissions join table.
type RolePermission struct {
	bun.BaseModel `bun:"table:role_permissions,alias:rolprm"`
	RoleID        uuid.UUID   `bun:"role_id,pk,type:uuid"`
	Role          *Role       `bun:"rel:belongs-to,join:role_id=id"`
	PermissionID  uuid.UUID   `bun:"permission_id,pk,type:uuid"`
	Permission    *Permission `bun:"rel:belongs-to,join:permission_id=id"`
}

// RefreshToken is a ledger row for one issued refresh token. Rows are
// only ever mutated to flip Revoked, everything else is immutable.
type RefreshToken struct {
	bun.BaseModel `bun:"table:refresh_tokens,alias:rt"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	User          *User      `bun:"rel:belongs-to,join:user_id=id" json:"-"`
	Token         string     `bun:"token,notnull,unique" json:"-"`
	IPAddress     string     `bun:"ip_address" json:"ip_address,omitempty"`
	UserAgent     string     `bun:"user_agent" json:"user_agent,omitempty"`
	ExpiresAt     time.Time  `bun:"expires_at,notnull" json:"expires_at"`
	Revoked       bool       `bun:"is_revoked" json:"is_revoked"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// IsValid reports whether the ledger row can still be exchanged. The
// persisted expiry is checked independently of the signed token's own.
func (t *RefreshToken) IsValid(now time.Time) bool {
	if t == nil {
		return false
	}
	return !t.Revoked && t.ExpiresAt.After(now)
}
