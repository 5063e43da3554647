package workflow

import (
	"strings"

	"github.com/ghinaderbes2002/vita-hr-sub000/internal/domain/auth"
)

// stage describes one in-chain status: who acts while the document sits
// there, which action moves it forward, and where reject/cancel branch to.
type stage struct {
	owner      string // role owning the stage; ignored when ownerActs, where ownership decides
	ownerActs  bool   // the advance is performed by the document owner (self-service stages)
	advance    Action // ActionSubmit or ActionApprove
	next       Status
	rejectTo   Status // zero value: reject not available at this stage
	cancelable bool
}

// Definition is the transition table for one document kind. Instances are
// fixed at compile time; there is no user-defined workflow support.
type Definition struct {
	kind     Kind
	stages   map[Status]stage
	terminal map[Status]bool
	// sweep holds the scheduler-driven edges that no user action may take.
	sweep map[Status]Status
}

var leaveDefinition = Definition{
	kind: KindLeave,
	stages: map[Status]stage{
		StatusDraft:          {owner: auth.RoleEmployee, ownerActs: true, advance: ActionSubmit, next: StatusPendingManager},
		StatusPendingManager: {owner: auth.RoleManager, advance: ActionApprove, next: StatusPendingHR, rejectTo: StatusRejected, cancelable: true},
		StatusPendingHR:      {owner: auth.RoleHR, advance: ActionApprove, next: StatusApproved, rejectTo: StatusRejected, cancelable: true},
	},
	terminal: map[Status]bool{
		StatusCompleted: true,
		StatusRejected:  true,
		StatusCancelled: true,
	},
	sweep: map[Status]Status{
		StatusApproved:   StatusInProgress,
		StatusInProgress: StatusCompleted,
	},
}

var evaluationDefinition = Definition{
	kind: KindEvaluation,
	stages: map[Status]stage{
		StatusDraft:             {owner: auth.RoleHR, advance: ActionSubmit, next: StatusSelfEvaluation},
		StatusSelfEvaluation:    {owner: auth.RoleEmployee, ownerActs: true, advance: ActionSubmit, next: StatusManagerEvaluation},
		StatusManagerEvaluation: {owner: auth.RoleManager, advance: ActionSubmit, next: StatusHRReview},
		StatusHRReview:          {owner: auth.RoleHR, advance: ActionSubmit, next: StatusGMApproval},
		// GM rejection records a sub-status but still completes the form.
		StatusGMApproval: {owner: auth.RoleGM, advance: ActionApprove, next: StatusCompleted, rejectTo: StatusCompleted},
	},
	terminal: map[Status]bool{
		StatusCompleted: true,
	},
}

var requestDefinition = Definition{
	kind: KindRequest,
	stages: map[Status]stage{
		StatusDraft:          {owner: auth.RoleEmployee, ownerActs: true, advance: ActionSubmit, next: StatusPendingManager},
		StatusPendingManager: {owner: auth.RoleManager, advance: ActionApprove, next: StatusPendingHR, rejectTo: StatusRejected, cancelable: true},
		StatusPendingHR:      {owner: auth.RoleHR, advance: ActionApprove, next: StatusApproved, rejectTo: StatusRejected, cancelable: true},
	},
	terminal: map[Status]bool{
		StatusApproved:  true,
		StatusRejected:  true,
		StatusCancelled: true,
	},
}

func ForKind(kind Kind) Definition {
	switch kind {
	case KindLeave:
		return leaveDefinition
	case KindEvaluation:
		return evaluationDefinition
	case KindRequest:
		return requestDefinition
	}
	return Definition{kind: kind}
}

func (d Definition) Kind() Kind {
	return d.kind
}

func (d Definition) Known(s Status) bool {
	if d.terminal[s] {
		return true
	}
	if _, ok := d.stages[s]; ok {
		return true
	}
	_, ok := d.sweep[s]
	return ok
}

func (d Definition) IsTerminal(s Status) bool {
	return d.terminal[s]
}

// InChain reports whether the status is a pending approval stage, i.e. the
// document has been submitted and awaits a decision.
func (d Definition) InChain(s Status) bool {
	_, ok := d.stages[s]
	return ok && s != StatusDraft
}

// Transition validates one user action against the table and returns the next
// status. It is a pure function; callers persist the result and its side
// effects (balance moves, score totals) in the same transaction.
func (d Definition) Transition(current Status, actor Actor, action Action, reason string) (Status, error) {
	if !d.Known(current) {
		return "", ErrUnknownStatus
	}
	if d.terminal[current] {
		return "", ErrTerminalStatus
	}

	st, ok := d.stages[current]
	if !ok {
		// Scheduler-owned statuses (APPROVED, IN_PROGRESS) admit no user action.
		return "", ErrInvalidTransition
	}

	switch action {
	case ActionCancel:
		if !st.cancelable {
			return "", ErrInvalidTransition
		}
		if !actor.IsOwner {
			return "", ErrForbidden
		}
		if strings.TrimSpace(reason) == "" {
			return "", ErrReasonRequired
		}
		return StatusCancelled, nil

	case ActionSubmit, ActionApprove:
		if action != st.advance {
			return "", ErrInvalidTransition
		}
		if st.ownerActs {
			// Self-service stages belong to the document owner whatever
			// role they hold; a manager submits their own draft too.
			if !actor.IsOwner {
				return "", ErrForbidden
			}
		} else {
			if actor.Role != st.owner {
				return "", ErrForbidden
			}
			if actor.IsOwner {
				return "", ErrSelfApproval
			}
		}
		return st.next, nil

	case ActionReject:
		if st.rejectTo == "" {
			return "", ErrInvalidTransition
		}
		if actor.Role != st.owner {
			return "", ErrForbidden
		}
		if actor.IsOwner {
			return "", ErrSelfApproval
		}
		if strings.TrimSpace(reason) == "" {
			return "", ErrReasonRequired
		}
		return st.rejectTo, nil
	}

	return "", ErrInvalidTransition
}

// SweepAdvance returns the scheduler-driven successor of a status, used by
// the background sweep that activates and completes approved leave. The
// second return is false when the status has no scheduler edge.
func (d Definition) SweepAdvance(current Status) (Status, bool) {
	next, ok := d.sweep[current]
	return next, ok
}
