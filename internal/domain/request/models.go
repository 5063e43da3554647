package request

import (
	"errors"
	"strings"
	"time"

	"github.com/ghinaderbes2002/vita-hr-sub000/internal/domain/workflow"
)

const (
	TypePermission  = "PERMISSION"
	TypeTransfer    = "TRANSFER"
	TypeAdvance     = "ADVANCE"
	TypeResignation = "RESIGNATION"
)

var (
	ErrNotFound       = errors.New("request not found")
	ErrNotDraft       = errors.New("request is not a draft")
	ErrUnknownType    = errors.New("unknown request type")
	ErrInvalidDetails = errors.New("invalid request details")
)

// Details is the typed payload of a request. Exactly one variant is set,
// selected by Type; the other fields must be nil.
type Details struct {
	Type        string              `json:"type"`
	Permission  *PermissionDetails  `json:"permission,omitempty"`
	Transfer    *TransferDetails    `json:"transfer,omitempty"`
	Advance     *AdvanceDetails     `json:"advance,omitempty"`
	Resignation *ResignationDetails `json:"resignation,omitempty"`
}

// PermissionDetails covers a short absence within one working day.
type PermissionDetails struct {
	Date     time.Time `json:"date"`
	FromTime string    `json:"fromTime"`
	ToTime   string    `json:"toTime"`
}

type TransferDetails struct {
	TargetDepartmentID string `json:"targetDepartmentId"`
	Motivation         string `json:"motivation"`
}

type AdvanceDetails struct {
	Amount     float64 `json:"amount"`
	Currency   string  `json:"currency"`
	Repayments int     `json:"repayments"`
}

type ResignationDetails struct {
	LastWorkingDay time.Time `json:"lastWorkingDay"`
	Motivation     string    `json:"motivation"`
}

// Validate checks that the selected variant is present, well formed, and the
// only one set.
func (d Details) Validate() error {
	variants := 0
	if d.Permission != nil {
		variants++
	}
	if d.Transfer != nil {
		variants++
	}
	if d.Advance != nil {
		variants++
	}
	if d.Resignation != nil {
		variants++
	}
	if variants != 1 {
		return ErrInvalidDetails
	}

	switch d.Type {
	case TypePermission:
		p := d.Permission
		if p == nil || p.Date.IsZero() {
			return ErrInvalidDetails
		}
		from, err := parseClock(p.FromTime)
		if err != nil {
			return ErrInvalidDetails
		}
		to, err := parseClock(p.ToTime)
		if err != nil {
			return ErrInvalidDetails
		}
		if !to.After(from) {
			return ErrInvalidDetails
		}
	case TypeTransfer:
		if d.Transfer == nil || strings.TrimSpace(d.Transfer.TargetDepartmentID) == "" {
			return ErrInvalidDetails
		}
	case TypeAdvance:
		a := d.Advance
		if a == nil || a.Amount <= 0 || strings.TrimSpace(a.Currency) == "" || a.Repayments < 0 {
			return ErrInvalidDetails
		}
	case TypeResignation:
		if d.Resignation == nil || d.Resignation.LastWorkingDay.IsZero() {
			return ErrInvalidDetails
		}
	default:
		return ErrUnknownType
	}
	return nil
}

func parseClock(value string) (time.Time, error) {
	return time.Parse("15:04", value)
}

type Request struct {
	ID         string            `json:"id"`
	EmployeeID string            `json:"employeeId"`
	Type       string            `json:"type"`
	Details    Details           `json:"details"`
	Reason     string            `json:"reason"`
	Status     workflow.Status   `json:"status"`
	Version    int               `json:"version"`
	Decisions  []Decision        `json:"decisions,omitempty"`
	Allowed    []workflow.Action `json:"allowedActions,omitempty"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

type Decision struct {
	ID        string    `json:"id"`
	Stage     string    `json:"stage"`
	ActorID   string    `json:"actorId"`
	Action    string    `json:"action"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type Filter struct {
	EmployeeID  string
	EmployeeIDs []string
	Type        string
	Status      workflow.Status
}
