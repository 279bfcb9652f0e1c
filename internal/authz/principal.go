package authz

import (
	"sort"

	"github.com/harukim/task-tracker-api/internal/models"
)

// Principal is the authenticated identity making a request: the user record
// plus its role and permission names resolved at request time. It is built
// fresh for every request and passed explicitly, never read from a global.
type Principal struct {
	user        *models.User
	roles       []string
	permissions map[string]struct{}
}

// NewPrincipal resolves a principal from a user whose Roles (and their
// Permissions) have been preloaded. The effective permission set is the
// union across all assigned roles, deduplicated.
func NewPrincipal(user *models.User) *Principal {
	roles := make([]string, 0, len(user.Roles))
	permissions := make(map[string]struct{})
	for _, role := range user.Roles {
		roles = append(roles, role.Name)
		for _, perm := range role.Permissions {
			permissions[perm.Name] = struct{}{}
		}
	}
	sort.Strings(roles)

	return &Principal{
		user:        user,
		roles:       roles,
		permissions: permissions,
	}
}

// ID returns the principal's user ID.
func (p *Principal) ID() uint64 {
	return p.user.ID
}

// User returns the underlying user record.
func (p *Principal) User() *models.User {
	return p.user
}

// HasPermission reports whether the principal holds the named permission.
func (p *Principal) HasPermission(name string) bool {
	_, ok := p.permissions[name]
	return ok
}

// RoleNames returns the principal's role names, sorted.
func (p *Principal) RoleNames() []string {
	return p.roles
}

// PermissionNames returns the principal's effective permission names, sorted.
func (p *Principal) PermissionNames() []string {
	names := make([]string, 0, len(p.permissions))
	for name := range p.permissions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
