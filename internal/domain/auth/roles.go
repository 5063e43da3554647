package auth

const (
	RoleEmployee    = "employee"
	RoleManager     = "manager"
	RoleHR          = "hr"
	RoleGM          = "gm"
	RoleSystemAdmin = "system_admin"
)

var RoleNames = []string{
	RoleEmployee,
	RoleManager,
	RoleHR,
	RoleGM,
	RoleSystemAdmin,
}

type UserContext struct {
	UserID   string
	TenantID string
	RoleID   string
	RoleName string
}
