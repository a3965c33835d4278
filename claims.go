package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token kind markers embedded in the kind claim.
const (
	TokenKindAccess  = "access"
	TokenKindRefresh = "refresh"
)

// AuthClaims represents the verified claims of a signed token.
type AuthClaims interface {
	Subject() string
	UserID() string
	UserType() UserType
	Authorities() []string
	HasAuthority(authority string) bool
	HasRole(role string) bool
	Kind() string
	Expires() time.Time
	IssuedAt() time.Time
}

// JWTClaims is the concrete implementation of AuthClaims
type JWTClaims struct {
	jwt.RegisteredClaims
	UID          string   `json:"uid,omitempty"`
	Type         string   `json:"user_type,omitempty"`
	AuthorityStr []string `json:"authorities,omitempty"`
	TokenKind    string   `json:"kind,omitempty"`
}

var _ AuthClaims = (*JWTClaims)(nil)

// Subject returns the subject claim, the account email.
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the identity id claim.
func (c *JWTClaims) UserID() string {
	return c.UID
}

// UserType returns the account type claim.
func (c *JWTClaims) UserType() UserType {
	return UserType(c.Type)
}

// Authorities returns the role and permission authority strings.
func (c *JWTClaims) Authorities() []string {
	return c.AuthorityStr
}

// HasAuthority checks for an exact authority string.
func (c *JWTClaims) HasAuthority(authority string) bool {
	for _, a := range c.AuthorityStr {
		if a == authority {
			return true
		}
	}
	return false
}

// HasRole checks for a role authority, with or without the ROLE_ prefix.
func (c *JWTClaims) HasRole(role string) bool {
	return c.HasAuthority(RolePrefix + role)
}

// Kind returns the token kind marker; empty means access for tokens
// issued before the marker existed.
func (c *JWTClaims) Kind() string {
	if c.TokenKind == "" {
		return TokenKindAccess
	}
	return c.TokenKind
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
