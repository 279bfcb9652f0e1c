package authz

// Decision is the result of an authorization check. Denials carry a generic
// reason only; the boundary must not leak why access was refused.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny() Decision {
	return Decision{Allowed: false, Reason: "Unauthorized"}
}

// Decide evaluates whether a principal may perform an action, optionally
// against a resource owned by resourceOwnerID. Rules, in order:
//
//  1. owner-scoped actions are allowed when the principal owns the resource
//  2. otherwise the matching -any- permission allows the action
//  3. non-owner-scoped actions require the permission of the same name
//  4. everything else is denied
func Decide(p *Principal, action Action, resourceOwnerID *uint64) Decision {
	if anyPerm, ownerScoped := anyVariant[action]; ownerScoped {
		if resourceOwnerID != nil && *resourceOwnerID == p.ID() {
			return allow()
		}
		if p.HasPermission(string(anyPerm)) {
			return allow()
		}
		return deny()
	}

	if p.HasPermission(string(action)) {
		return allow()
	}
	return deny()
}

// Scope is the row-visibility filter for task listings.
type Scope int

const (
	// ScopeOwn restricts visibility to tasks owned by the principal.
	ScopeOwn Scope = iota
	// ScopeAll makes every task visible.
	ScopeAll
)

// TaskScope derives the listing scope from the principal's permissions. The
// scope is applied as a query-level filter so pagination counts stay correct.
func TaskScope(p *Principal) Scope {
	if p.HasPermission(string(ActionViewAnyTask)) {
		return ScopeAll
	}
	return ScopeOwn
}
