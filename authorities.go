package auth

import "sort"

// RolePrefix marks role-derived authorities so downstream checks can
// tell them apart from raw permission names.
const RolePrefix = "ROLE_"

// RoleNames returns the names of the user's attached roles. No caching:
// the result is recomputed from the loaded role graph on every call.
func RoleNames(u *User) []string {
	if u == nil {
		return nil
	}

	seen := map[string]struct{}{}
	names := make([]string, 0, len(u.Roles))
	for _, role := range u.Roles {
		if role == nil || role.Name == "" {
			continue
		}
		if _, ok := seen[role.Name]; ok {
			continue
		}
		seen[role.Name] = struct{}{}
		names = append(names, role.Name)
	}

	sort.Strings(names)
	return names
}

// PermissionNames returns the union of the permissions inherited from
// the user's roles.
func PermissionNames(u *User) []string {
	if u == nil {
		return nil
	}

	seen := map[string]struct{}{}
	names := []string{}
	for _, role := range u.Roles {
		if role == nil {
			continue
		}
		for _, perm := range role.Permissions {
			if perm == nil || perm.Name == "" {
				continue
			}
			if _, ok := seen[perm.Name]; ok {
				continue
			}
			seen[perm.Name] = struct{}{}
			names = append(names, perm.Name)
		}
	}

	sort.Strings(names)
	return names
}

// Authorities builds the authorization context embedded in access
// tokens: ROLE_-prefixed role names plus raw permission names, deduped.
func Authorities(u *User) []string {
	roles := RoleNames(u)
	perms := PermissionNames(u)

	out := make([]string, 0, len(roles)+len(perms))
	for _, name := range roles {
		out = append(out, RolePrefix+name)
	}
	out = append(out, perms...)

	return out
}
