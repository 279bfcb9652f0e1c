package authz

// Action names double as permission names: an owner-scoped action is granted
// by ownership or by the matching -any- permission, every other action by the
// permission of the same name.
type Action string

const (
	ActionViewAnyTask   Action = "view-any-task"
	ActionViewOwnTask   Action = "view-own-task"
	ActionCreateTask    Action = "create-task"
	ActionUpdateOwnTask Action = "update-own-task"
	ActionUpdateAnyTask Action = "update-any-task"
	ActionDeleteOwnTask Action = "delete-own-task"
	ActionDeleteAnyTask Action = "delete-any-task"
	ActionViewAnyUser   Action = "view-any-user"
	ActionCreateUser    Action = "create-user"
	ActionUpdateUser    Action = "update-user"
	ActionDeleteUser    Action = "delete-user"
)

// AllPermissions is the seedable permission catalog. Flat tokens, no hierarchy.
var AllPermissions = []string{
	string(ActionViewAnyTask),
	string(ActionViewOwnTask),
	string(ActionCreateTask),
	string(ActionUpdateOwnTask),
	string(ActionUpdateAnyTask),
	string(ActionDeleteOwnTask),
	string(ActionDeleteAnyTask),
	string(ActionViewAnyUser),
	string(ActionCreateUser),
	string(ActionUpdateUser),
	string(ActionDeleteUser),
}

// UserPermissions is the fixed subset granted to the user role.
var UserPermissions = []string{
	string(ActionViewOwnTask),
	string(ActionCreateTask),
	string(ActionUpdateOwnTask),
	string(ActionDeleteOwnTask),
}

// anyVariant maps each owner-scoped action to the permission that grants it
// regardless of resource ownership.
var anyVariant = map[Action]Action{
	ActionViewOwnTask:   ActionViewAnyTask,
	ActionUpdateOwnTask: ActionUpdateAnyTask,
	ActionDeleteOwnTask: ActionDeleteAnyTask,
}
