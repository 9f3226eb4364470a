package auth

import "hrm-admin/console/pkg/models"

// Section is a navigable area of the console.
type Section string

const (
	SectionDashboard Section = "dashboard"
	SectionUsers     Section = "users"
	SectionRoles     Section = "roles"
	SectionWorkflows Section = "workflows"
)

// MenuItem is one navigation entry.
type MenuItem struct {
	Section Section `json:"section"`
	Label   string  `json:"label"`
	Path    string  `json:"path"`
}

const (
	PathManageUser     = "/admin/manage-user"
	PathManageRole     = "/admin/manage-role"
	PathManageWorkflow = "/admin/manage-workflow"
	PathLogin          = "/login"
)

var landing = map[models.RoleName]string{
	models.RoleAdmin:    "/dashboard/admin",
	models.RoleManage:   "/dashboard/manage",
	models.RoleEmployee: "/dashboard/employee",
	models.RoleHR:       "/dashboard/hr",
}

var menus = map[models.RoleName][]MenuItem{
	models.RoleAdmin: {
		{SectionDashboard, "Overview", "/dashboard/admin"},
		{SectionUsers, "User management", PathManageUser},
		{SectionRoles, "Role management", PathManageRole},
		{SectionWorkflows, "Workflow management", PathManageWorkflow},
	},
	models.RoleManage: {
		{SectionDashboard, "Overview", "/dashboard/manage"},
		{SectionUsers, "Staff management", PathManageUser},
	},
	models.RoleEmployee: {
		{SectionDashboard, "Overview", "/dashboard/employee"},
	},
	models.RoleHR: {
		{SectionDashboard, "Overview", "/dashboard/hr"},
		{SectionUsers, "Recruitment", PathManageUser},
	},
}

// MenuFor returns the navigation of role. Unknown roles get no entries.
func MenuFor(role models.RoleName) []MenuItem {
	return append([]MenuItem(nil), menus[role]...)
}

// LandingRoute is where role lands after signing in.
func LandingRoute(role models.RoleName) string {
	if path, ok := landing[role]; ok {
		return path
	}
	return PathLogin
}

// Allowed reports whether role's menu includes section.
func Allowed(role models.RoleName, section Section) bool {
	for _, item := range menus[role] {
		if item.Section == section {
			return true
		}
	}
	return false
}
