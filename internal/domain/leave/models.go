package leave

import (
	"time"

	"github.com/ghinaderbes2002/vita-hr-sub000/internal/domain/workflow"
)

type LeaveType struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	AnnualDays     float64   `json:"annualDays"`
	CarryOverLimit float64   `json:"carryOverLimit"`
	IsPaid         bool      `json:"isPaid"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Balance is one employee's ledger row for a leave type and year. Remaining
// is derived, never stored: total + carriedOver + adjusted - used - pending.
type Balance struct {
	ID              string    `json:"id"`
	EmployeeID      string    `json:"employeeId"`
	LeaveTypeID     string    `json:"leaveTypeId"`
	LeaveTypeName   string    `json:"leaveTypeName,omitempty"`
	Year            int       `json:"year"`
	TotalDays       float64   `json:"totalDays"`
	CarriedOverDays float64   `json:"carriedOverDays"`
	AdjustedDays    float64   `json:"adjustedDays"`
	UsedDays        float64   `json:"usedDays"`
	PendingDays     float64   `json:"pendingDays"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (b Balance) RemainingDays() float64 {
	return b.TotalDays + b.CarriedOverDays + b.AdjustedDays - b.UsedDays - b.PendingDays
}

type Request struct {
	ID          string            `json:"id"`
	EmployeeID  string            `json:"employeeId"`
	LeaveTypeID string            `json:"leaveTypeId"`
	StartDate   time.Time         `json:"startDate"`
	EndDate     time.Time         `json:"endDate"`
	StartHalf   bool              `json:"startHalf"`
	EndHalf     bool              `json:"endHalf"`
	Days        float64           `json:"days"`
	Reason      string            `json:"reason"`
	Status      workflow.Status   `json:"status"`
	Version     int               `json:"version"`
	Decisions   []Decision        `json:"decisions,omitempty"`
	Allowed     []workflow.Action `json:"allowedActions,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// Decision is one recorded approval-chain step. Stage keeps the status the
// document was in when the actor decided, so a rejection still shows which
// stage it came from.
type Decision struct {
	ID        string    `json:"id"`
	Stage     string    `json:"stage"`
	ActorID   string    `json:"actorId"`
	Action    string    `json:"action"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type Adjustment struct {
	ID          string    `json:"id"`
	EmployeeID  string    `json:"employeeId"`
	LeaveTypeID string    `json:"leaveTypeId"`
	Year        int       `json:"year"`
	Amount      float64   `json:"amount"`
	Reason      string    `json:"reason"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

type RequestFilter struct {
	EmployeeID  string
	EmployeeIDs []string
	Status      workflow.Status
	LeaveTypeID string
}
