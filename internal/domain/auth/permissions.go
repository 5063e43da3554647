package auth

const (
	PermEmployeesRead      = "core.employees.read"
	PermEmployeesWrite     = "core.employees.write"
	PermOrgRead            = "core.org.read"
	PermOrgWrite           = "core.org.write"
	PermLeaveRead          = "leave.read"
	PermLeaveWrite         = "leave.write"
	PermLeaveApprove       = "leave.approve"
	PermLeaveAdjust        = "leave.adjust"
	PermEvaluationRead     = "evaluation.read"
	PermEvaluationWrite    = "evaluation.write"
	PermEvaluationReview   = "evaluation.review"
	PermEvaluationFinalize = "evaluation.finalize"
	PermRequestsRead       = "requests.read"
	PermRequestsWrite      = "requests.write"
	PermRequestsApprove    = "requests.approve"
	PermAttendanceRead     = "attendance.read"
	PermAttendanceWrite    = "attendance.write"
	PermReportsRead        = "reports.read"
	PermAuditRead          = "audit.read"
	PermSystemAdmin        = "admin.system"
)

var DefaultPermissions = []string{
	PermEmployeesRead,
	PermEmployeesWrite,
	PermOrgRead,
	PermOrgWrite,
	PermLeaveRead,
	PermLeaveWrite,
	PermLeaveApprove,
	PermLeaveAdjust,
	PermEvaluationRead,
	PermEvaluationWrite,
	PermEvaluationReview,
	PermEvaluationFinalize,
	PermRequestsRead,
	PermRequestsWrite,
	PermRequestsApprove,
	PermAttendanceRead,
	PermAttendanceWrite,
	PermReportsRead,
	PermAuditRead,
	PermSystemAdmin,
}

var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermEmployeesRead,
		PermOrgRead,
		PermLeaveRead,
		PermLeaveWrite,
		PermEvaluationRead,
		PermEvaluationWrite,
		PermRequestsRead,
		PermRequestsWrite,
		PermAttendanceRead,
		PermAttendanceWrite,
	},
	RoleManager: {
		PermEmployeesRead,
		PermOrgRead,
		PermLeaveRead,
		PermLeaveWrite,
		PermLeaveApprove,
		PermEvaluationRead,
		PermEvaluationWrite,
		PermEvaluationReview,
		PermRequestsRead,
		PermRequestsWrite,
		PermRequestsApprove,
		PermAttendanceRead,
		PermAttendanceWrite,
		PermReportsRead,
	},
	RoleHR: {
		PermEmployeesRead,
		PermEmployeesWrite,
		PermOrgRead,
		PermOrgWrite,
		PermLeaveRead,
		PermLeaveWrite,
		PermLeaveApprove,
		PermLeaveAdjust,
		PermEvaluationRead,
		PermEvaluationWrite,
		PermEvaluationReview,
		PermRequestsRead,
		PermRequestsWrite,
		PermRequestsApprove,
		PermAttendanceRead,
		PermAttendanceWrite,
		PermReportsRead,
		PermAuditRead,
	},
	RoleGM: {
		PermEmployeesRead,
		PermOrgRead,
		PermLeaveRead,
		PermEvaluationRead,
		PermEvaluationReview,
		PermEvaluationFinalize,
		PermRequestsRead,
		PermReportsRead,
	},
	RoleSystemAdmin: {
		PermSystemAdmin,
	},
}
