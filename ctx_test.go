package auth_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	auth "github.com/recn/platform-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserContext(t *testing.T) {
	ctx := context.Background()

	_, ok := auth.FromContext(ctx)
	assert.False(t, ok)

	user := &auth.User{ID: uuid.New(), Email: "user@example.com"}
	ctx = auth.WithContext(ctx, user)

	got, ok := auth.FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, user, got)
}

func TestClaimsContext(t *testing.T) {
	ctx := context.Background()

	_, ok := auth.GetClaims(ctx)
	assert.False(t, ok)

	claims := &auth.JWTClaims{
		AuthorityStr: []string{"ROLE_SUPER_ADMIN", "platform:manage"},
	}
	ctx = auth.WithClaimsContext(ctx, claims)

	got, ok := auth.GetClaims(ctx)
	require.True(t, ok)
	assert.Equal(t, claims.Authorities(), got.Authorities())
}

func TestContextAuthorityChecks(t *testing.T) {
	ctx := context.Background()

	// no claims always fails closed
	assert.False(t, auth.HasAuthority(ctx, "platform:manage"))
	assert.False(t, auth.HasRole(ctx, auth.RoleSuperAdmin))

	ctx = auth.WithClaimsContext(ctx, &auth.JWTClaims{
		AuthorityStr: []string{"ROLE_SUPER_ADMIN", "platform:manage"},
	})

	assert.True(t, auth.HasAuthority(ctx, "platform:manage"))
	assert.True(t, auth.HasRole(ctx, auth.RoleSuperAdmin))
	assert.False(t, auth.HasRole(ctx, auth.RoleStudent))
}
