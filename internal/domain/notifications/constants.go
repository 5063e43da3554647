package notifications

const (
	TypeLeaveSubmitted         = "leave_submitted"
	TypeLeaveApproved          = "leave_approved"
	TypeLeaveRejected          = "leave_rejected"
	TypeLeaveCancelled         = "leave_cancelled"
	TypeBalanceAdjusted        = "leave_balance_adjusted"
	TypeRequestSubmitted       = "request_submitted"
	TypeRequestApproved        = "request_approved"
	TypeRequestRejected        = "request_rejected"
	TypeRequestCancelled       = "request_cancelled"
	TypeEvaluationLaunched     = "evaluation_launched"
	TypeEvaluationStageMoved   = "evaluation_stage_moved"
	TypeEvaluationCompleted    = "evaluation_completed"
	TypeAttendanceAlert        = "attendance_alert"
	TypePasswordResetRequested = "password_reset_requested"
)
