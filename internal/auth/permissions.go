package auth

import "github.com/flameguard/flameguard-site/internal/db/models"

// Permission constants define what a role may do.
const (
	// PermDashboardView allows viewing the admin dashboard.
	PermDashboardView = "dashboard.view"
	// PermContentEdit allows creating, editing, reordering and deleting site content.
	PermContentEdit = "content.edit"
	// PermUpload allows uploading media and documents.
	PermUpload = "content.upload"
	// PermLeadsManage allows reading and processing leads.
	PermLeadsManage = "leads.manage"
	// PermExport allows generating lead reports.
	PermExport = "leads.export"
	// PermAdminUsers allows managing admin accounts.
	PermAdminUsers = "admin.users"
)

var rolePermissions = map[models.Role][]string{
	models.RoleAdmin: {
		PermDashboardView, PermContentEdit, PermUpload, PermLeadsManage, PermExport, PermAdminUsers,
	},
	models.RoleEditor: {
		PermDashboardView, PermContentEdit, PermUpload, PermLeadsManage, PermExport,
	},
}

// ValidRole reports whether r is a known role.
func ValidRole(r models.Role) bool {
	_, ok := rolePermissions[r]
	return ok
}

// RoleAllows reports whether role r grants permission.
func RoleAllows(r models.Role, permission string) bool {
	for _, p := range rolePermissions[r] {
		if p == permission {
			return true
		}
	}

	return false
}

// RolePermissions returns a copy of the permissions granted to r.
func RolePermissions(r models.Role) []string {
	return append([]string(nil), rolePermissions[r]...)
}
