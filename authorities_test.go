package auth_test

import (
	"testing"

	"github.com/google/uuid"
	auth "github.com/recn/platform-auth"
	"github.com/stretchr/testify/assert"
)

func TestAuthorities(t *testing.T) {
	t.Run("Roles are prefixed, permissions are raw", func(t *testing.T) {
		user := &auth.User{
			Roles: []*auth.Role{
				{
					ID:   uuid.New(),
					Name: auth.RoleStudent,
					Permissions: []*auth.Permission{
						{ID: uuid.New(), Name: "profile:read"},
						{ID: uuid.New(), Name: "jobs:read"},
					},
				},
			},
		}

		assert.Equal(t, []string{
			"ROLE_STUDENT",
			"jobs:read",
			"profile:read",
		}, auth.Authorities(user))
	})

	t.Run("Permissions shared across roles are deduped", func(t *testing.T) {
		shared := &auth.Permission{ID: uuid.New(), Name: "profile:read"}
		user := &auth.User{
			Roles: []*auth.Role{
				{ID: uuid.New(), Name: auth.RoleStudent, Permissions: []*auth.Permission{shared}},
				{ID: uuid.New(), Name: auth.RoleSuperAdmin, Permissions: []*auth.Permission{
					shared,
					{ID: uuid.New(), Name: "platform:manage"},
				}},
			},
		}

		perms := auth.PermissionNames(user)
		assert.Equal(t, []string{"platform:manage", "profile:read"}, perms)

		names := auth.RoleNames(user)
		assert.Equal(t, []string{auth.RoleStudent, auth.RoleSuperAdmin}, names)
	})

	t.Run("Nil entries are skipped", func(t *testing.T) {
		user := &auth.User{
			Roles: []*auth.Role{
				nil,
				{ID: uuid.New(), Name: auth.RoleStudent, Permissions: []*auth.Permission{nil}},
			},
		}

		assert.Equal(t, []string{"ROLE_STUDENT"}, auth.Authorities(user))
	})

	t.Run("Nil user", func(t *testing.T) {
		assert.Empty(t, auth.Authorities(nil))
		assert.Nil(t, auth.RoleNames(nil))
		assert.Nil(t, auth.PermissionNames(nil))
	})
}
