package policy

import "github.com/gran-oriente/logia-engine/pkg/models"

// CanEditAccount decides whether the actor may modify an account holding
// targetRole. The rule is a strict allow-list: superadmins may edit anyone,
// admins may edit only general accounts, and everything else is denied.
func CanEditAccount(actor Viewer, targetRole models.Role) bool {
	switch actor.Role {
	case models.RoleSuperadmin:
		return true
	case models.RoleAdmin:
		return targetRole == models.RoleGeneral
	default:
		return false
	}
}

// CanAssignRole decides whether the actor may hand out the given role
// during approval or account editing. Only superadmins mint superadmins.
func CanAssignRole(actor Viewer, assigned models.Role) bool {
	if !actor.Role.IsAdmin() {
		return false
	}
	if assigned == models.RoleSuperadmin {
		return actor.Role == models.RoleSuperadmin
	}
	return true
}
