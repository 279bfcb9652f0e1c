package authz

import (
	"testing"

	"github.com/harukim/task-tracker-api/internal/models"
	"github.com/stretchr/testify/require"
)

func newTestPrincipal(id uint64, roleName string, permissions ...string) *Principal {
	perms := make([]models.Permission, len(permissions))
	for i, name := range permissions {
		perms[i] = models.Permission{ID: uint64(i + 1), Name: name}
	}

	return NewPrincipal(&models.User{
		ID: id,
		Roles: []models.Role{
			{ID: 1, Name: roleName, Permissions: perms},
		},
	})
}

func regularUser(id uint64) *Principal {
	return newTestPrincipal(id, models.RoleUser, UserPermissions...)
}

func adminUser(id uint64) *Principal {
	return newTestPrincipal(id, models.RoleAdmin, AllPermissions...)
}

func TestDecide_RegularUser(t *testing.T) {
	alice := regularUser(1)
	otherOwner := uint64(2)
	own := uint64(1)

	tests := []struct {
		name    string
		action  Action
		ownerID *uint64
		allowed bool
	}{
		{"view own task", ActionViewOwnTask, &own, true},
		{"view another user's task", ActionViewOwnTask, &otherOwner, false},
		{"view any task denied", ActionViewAnyTask, nil, false},
		{"create task", ActionCreateTask, nil, true},
		{"update own task", ActionUpdateOwnTask, &own, true},
		{"update another user's task", ActionUpdateOwnTask, &otherOwner, false},
		{"delete own task", ActionDeleteOwnTask, &own, true},
		{"delete another user's task", ActionDeleteOwnTask, &otherOwner, false},
		{"list users denied", ActionViewAnyUser, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := Decide(alice, tt.action, tt.ownerID)
			require.Equal(t, tt.allowed, decision.Allowed)
			if !tt.allowed {
				require.Equal(t, "Unauthorized", decision.Reason)
			}
		})
	}
}

func TestDecide_AdminAllowedRegardlessOfOwner(t *testing.T) {
	admin := adminUser(1)
	otherOwner := uint64(99)

	for _, action := range []Action{
		ActionViewOwnTask,
		ActionUpdateOwnTask,
		ActionDeleteOwnTask,
	} {
		decision := Decide(admin, action, &otherOwner)
		require.True(t, decision.Allowed, "admin should be allowed %s on another user's task", action)
	}

	require.True(t, Decide(admin, ActionViewAnyTask, nil).Allowed)
	require.True(t, Decide(admin, ActionViewAnyUser, nil).Allowed)
}

func TestDecide_OwnershipWithoutAnyPermission(t *testing.T) {
	// Ownership alone allows owner-scoped actions, even with no permissions.
	bare := newTestPrincipal(7, models.RoleUser)
	own := uint64(7)

	require.True(t, Decide(bare, ActionUpdateOwnTask, &own).Allowed)
	require.False(t, Decide(bare, ActionUpdateOwnTask, nil).Allowed)
}

func TestTaskScope(t *testing.T) {
	require.Equal(t, ScopeOwn, TaskScope(regularUser(1)))
	require.Equal(t, ScopeAll, TaskScope(adminUser(1)))
}

func TestPrincipal_PermissionUnion(t *testing.T) {
	// Permissions are the deduplicated union across all assigned roles.
	user := &models.User{
		ID: 3,
		Roles: []models.Role{
			{
				ID:   1,
				Name: models.RoleUser,
				Permissions: []models.Permission{
					{ID: 1, Name: string(ActionViewOwnTask)},
					{ID: 2, Name: string(ActionCreateTask)},
				},
			},
			{
				ID:   2,
				Name: models.RoleAdmin,
				Permissions: []models.Permission{
					{ID: 2, Name: string(ActionCreateTask)},
					{ID: 3, Name: string(ActionViewAnyTask)},
				},
			},
		},
	}

	p := NewPrincipal(user)
	require.Equal(t, []string{"admin", "user"}, p.RoleNames())
	require.Equal(t, []string{
		string(ActionCreateTask),
		string(ActionViewAnyTask),
		string(ActionViewOwnTask),
	}, p.PermissionNames())
	require.True(t, p.HasPermission(string(ActionViewAnyTask)))
	require.False(t, p.HasPermission(string(ActionDeleteAnyTask)))
}
