package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	auth "github.com/recn/platform-auth"
	"github.com/stretchr/testify/assert"
)

func TestJWTClaims(t *testing.T) {
	now := time.Now()
	claims := &auth.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user@example.com",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		UID:          "some-uuid",
		Type:         "STUDENT",
		AuthorityStr: []string{"ROLE_STUDENT", "profile:read"},
		TokenKind:    auth.TokenKindAccess,
	}

	assert.Equal(t, "user@example.com", claims.Subject())
	assert.Equal(t, "some-uuid", claims.UserID())
	assert.Equal(t, auth.UserTypeStudent, claims.UserType())
	assert.Equal(t, auth.TokenKindAccess, claims.Kind())

	assert.True(t, claims.HasAuthority("profile:read"))
	assert.True(t, claims.HasRole("STUDENT"))
	assert.True(t, claims.HasAuthority("ROLE_STUDENT"))
	assert.False(t, claims.HasRole("SUPER_ADMIN"))
	assert.False(t, claims.HasAuthority("profile:write"))

	assert.True(t, claims.IssuedAt().Equal(now.Truncate(time.Second)))
	assert.True(t, claims.Expires().After(now))
}

func TestJWTClaimsKindDefaultsToAccess(t *testing.T) {
	claims := &auth.JWTClaims{}
	assert.Equal(t, auth.TokenKindAccess, claims.Kind())

	claims.TokenKind = auth.TokenKindRefresh
	assert.Equal(t, auth.TokenKindRefresh, claims.Kind())
}

func TestJWTClaimsZeroTimes(t *testing.T) {
	claims := &auth.JWTClaims{}
	assert.True(t, claims.Expires().IsZero())
	assert.True(t, claims.IssuedAt().IsZero())
}
