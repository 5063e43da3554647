package workflow

// Kind identifies which approval chain a document follows.
type Kind string

const (
	KindLeave      Kind = "leave"
	KindEvaluation Kind = "evaluation"
	KindRequest    Kind = "request"
)

// Status is a canonical workflow status. Legacy spellings used by older
// clients never reach this package; they are mapped in translate.go.
type Status string

const (
	StatusDraft             Status = "DRAFT"
	StatusPendingManager    Status = "PENDING_MANAGER"
	StatusPendingHR         Status = "PENDING_HR"
	StatusApproved          Status = "APPROVED"
	StatusInProgress        Status = "IN_PROGRESS"
	StatusCompleted         Status = "COMPLETED"
	StatusRejected          Status = "REJECTED"
	StatusCancelled         Status = "CANCELLED"
	StatusSelfEvaluation    Status = "SELF_EVALUATION"
	StatusManagerEvaluation Status = "MANAGER_EVALUATION"
	StatusHRReview          Status = "HR_REVIEW"
	StatusGMApproval        Status = "GM_APPROVAL"
)

type Action string

const (
	ActionEdit    Action = "edit"
	ActionDelete  Action = "delete"
	ActionSubmit  Action = "submit"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionCancel  Action = "cancel"
)

// GMStatus is the evaluation sub-status recorded with the GM decision. A GM
// rejection does not reopen the chain; the form completes either way.
type GMStatus string

const (
	GMApproved GMStatus = "APPROVED"
	GMRejected GMStatus = "REJECTED"
)

// Actor describes who is attempting an action on a document. IsOwner is the
// organizational check: it must be resolved against employee identity, not
// role membership, so an approver who also owns the document is still caught.
type Actor struct {
	Role    string
	IsOwner bool
}
