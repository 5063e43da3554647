package workflow

import (
	"errors"
	"testing"

	"github.com/ghinaderbes2002/vita-hr-sub000/internal/domain/auth"
)

func TestLeaveHappyPath(t *testing.T) {
	d := ForKind(KindLeave)

	status, err := d.Transition(StatusDraft, Actor{Role: auth.RoleEmployee, IsOwner: true}, ActionSubmit, "")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if status != StatusPendingManager {
		t.Fatalf("expected PENDING_MANAGER, got %s", status)
	}

	status, err = d.Transition(status, Actor{Role: auth.RoleManager}, ActionApprove, "")
	if err != nil {
		t.Fatalf("manager approve failed: %v", err)
	}
	if status != StatusPendingHR {
		t.Fatalf("expected PENDING_HR, got %s", status)
	}

	status, err = d.Transition(status, Actor{Role: auth.RoleHR}, ActionApprove, "looks fine")
	if err != nil {
		t.Fatalf("hr approve failed: %v", err)
	}
	if status != StatusApproved {
		t.Fatalf("expected APPROVED, got %s", status)
	}

	status, ok := d.SweepAdvance(status)
	if !ok || status != StatusInProgress {
		t.Fatalf("expected sweep to IN_PROGRESS, got %s ok=%v", status, ok)
	}
	status, ok = d.SweepAdvance(status)
	if !ok || status != StatusCompleted {
		t.Fatalf("expected sweep to COMPLETED, got %s ok=%v", status, ok)
	}
	if !d.IsTerminal(status) {
		t.Fatal("COMPLETED must be terminal")
	}
}

func TestRequestHappyPath(t *testing.T) {
	d := ForKind(KindRequest)

	status, err := d.Transition(StatusDraft, Actor{Role: auth.RoleEmployee, IsOwner: true}, ActionSubmit, "")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	status, err = d.Transition(status, Actor{Role: auth.RoleManager}, ActionApprove, "")
	if err != nil {
		t.Fatalf("manager approve failed: %v", err)
	}
	status, err = d.Transition(status, Actor{Role: auth.RoleHR}, ActionApprove, "")
	if err != nil {
		t.Fatalf("hr approve failed: %v", err)
	}
	if status != StatusApproved || !d.IsTerminal(status) {
		t.Fatalf("expected terminal APPROVED, got %s", status)
	}
}

func TestEvaluationChain(t *testing.T) {
	d := ForKind(KindEvaluation)

	steps := []struct {
		actor Actor
		want  Status
	}{
		{Actor{Role: auth.RoleHR}, StatusSelfEvaluation},
		{Actor{Role: auth.RoleEmployee, IsOwner: true}, StatusManagerEvaluation},
		{Actor{Role: auth.RoleManager}, StatusHRReview},
		{Actor{Role: auth.RoleHR}, StatusGMApproval},
	}

	status := StatusDraft
	for _, step := range steps {
		next, err := d.Transition(status, step.actor, ActionSubmit, "")
		if err != nil {
			t.Fatalf("submit from %s failed: %v", status, err)
		}
		if next != step.want {
			t.Fatalf("expected %s after %s, got %s", step.want, status, next)
		}
		status = next
	}

	// A GM rejection still completes the form; the decision is a sub-status.
	rejected, err := d.Transition(StatusGMApproval, Actor{Role: auth.RoleGM}, ActionReject, "goals not met")
	if err != nil {
		t.Fatalf("gm reject failed: %v", err)
	}
	if rejected != StatusCompleted {
		t.Fatalf("expected COMPLETED after gm reject, got %s", rejected)
	}

	approved, err := d.Transition(StatusGMApproval, Actor{Role: auth.RoleGM}, ActionApprove, "")
	if err != nil {
		t.Fatalf("gm approve failed: %v", err)
	}
	if approved != StatusCompleted {
		t.Fatalf("expected COMPLETED after gm approve, got %s", approved)
	}
}

func TestOwnerActsStagesAcceptAnyOwnedRole(t *testing.T) {
	// Approvers are staff too: a manager's own draft or self-evaluation must
	// advance on ownership, not on holding the employee role.
	roles := []string{auth.RoleManager, auth.RoleHR, auth.RoleGM}

	for _, kind := range []Kind{KindLeave, KindRequest} {
		d := ForKind(kind)
		for _, role := range roles {
			status, err := d.Transition(StatusDraft, Actor{Role: role, IsOwner: true}, ActionSubmit, "")
			if err != nil {
				t.Fatalf("%s: %s owner submit failed: %v", kind, role, err)
			}
			if status != StatusPendingManager {
				t.Fatalf("%s: expected PENDING_MANAGER, got %s", kind, status)
			}
		}
	}

	d := ForKind(KindEvaluation)
	for _, role := range roles {
		status, err := d.Transition(StatusSelfEvaluation, Actor{Role: role, IsOwner: true}, ActionSubmit, "")
		if err != nil {
			t.Fatalf("%s owner self-stage submit failed: %v", role, err)
		}
		if status != StatusManagerEvaluation {
			t.Fatalf("expected MANAGER_EVALUATION, got %s", status)
		}
	}
}

func TestNoSelfApproval(t *testing.T) {
	for _, kind := range []Kind{KindLeave, KindRequest} {
		d := ForKind(kind)
		// The owner also holds the manager role in another capacity; the
		// organizational ownership check must still block the decision.
		actor := Actor{Role: auth.RoleManager, IsOwner: true}
		if _, err := d.Transition(StatusPendingManager, actor, ActionApprove, ""); !errors.Is(err, ErrSelfApproval) {
			t.Fatalf("%s: expected ErrSelfApproval, got %v", kind, err)
		}
		if _, err := d.Transition(StatusPendingManager, actor, ActionReject, "r"); !errors.Is(err, ErrSelfApproval) {
			t.Fatalf("%s: expected ErrSelfApproval on reject, got %v", kind, err)
		}
	}
}

func TestTerminalStatusesAdmitNoTransition(t *testing.T) {
	cases := []struct {
		kind     Kind
		statuses []Status
	}{
		{KindLeave, []Status{StatusCompleted, StatusRejected, StatusCancelled}},
		{KindRequest, []Status{StatusApproved, StatusRejected, StatusCancelled}},
		{KindEvaluation, []Status{StatusCompleted}},
	}
	actors := []Actor{
		{Role: auth.RoleEmployee, IsOwner: true},
		{Role: auth.RoleManager},
		{Role: auth.RoleHR},
		{Role: auth.RoleGM},
	}
	actions := []Action{ActionSubmit, ActionApprove, ActionReject, ActionCancel}

	for _, tc := range cases {
		d := ForKind(tc.kind)
		for _, status := range tc.statuses {
			for _, actor := range actors {
				for _, action := range actions {
					if _, err := d.Transition(status, actor, action, "reason"); !errors.Is(err, ErrTerminalStatus) {
						t.Fatalf("%s/%s/%s/%s: expected ErrTerminalStatus, got %v", tc.kind, status, actor.Role, action, err)
					}
				}
			}
		}
	}
}

func TestDraftNeverReentered(t *testing.T) {
	for _, kind := range []Kind{KindLeave, KindEvaluation, KindRequest} {
		d := ForKind(kind)
		for status := range d.stages {
			st := d.stages[status]
			if st.next == StatusDraft || st.rejectTo == StatusDraft {
				t.Fatalf("%s: stage %s may re-enter DRAFT", kind, status)
			}
		}
	}
}

func TestRejectAndCancelRequireReason(t *testing.T) {
	d := ForKind(KindLeave)
	for _, reason := range []string{"", "   ", "\t\n"} {
		if _, err := d.Transition(StatusPendingManager, Actor{Role: auth.RoleManager}, ActionReject, reason); !errors.Is(err, ErrReasonRequired) {
			t.Fatalf("reject with blank reason %q must fail, got %v", reason, err)
		}
		if _, err := d.Transition(StatusPendingHR, Actor{Role: auth.RoleEmployee, IsOwner: true}, ActionCancel, reason); !errors.Is(err, ErrReasonRequired) {
			t.Fatalf("cancel with blank reason %q must fail, got %v", reason, err)
		}
	}
}

func TestCancelOnlyFromPendingStagesByOwner(t *testing.T) {
	d := ForKind(KindLeave)

	if _, err := d.Transition(StatusDraft, Actor{Role: auth.RoleEmployee, IsOwner: true}, ActionCancel, "changed plans"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("cancel from DRAFT must be invalid, got %v", err)
	}
	if _, err := d.Transition(StatusPendingManager, Actor{Role: auth.RoleManager}, ActionCancel, "why not"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-owner cancel must be forbidden, got %v", err)
	}

	status, err := d.Transition(StatusPendingHR, Actor{Role: auth.RoleEmployee, IsOwner: true}, ActionCancel, "changed plans")
	if err != nil {
		t.Fatalf("owner cancel failed: %v", err)
	}
	if status != StatusCancelled {
		t.Fatalf("expected CANCELLED, got %s", status)
	}
}

func TestWrongRoleIsForbidden(t *testing.T) {
	d := ForKind(KindRequest)
	if _, err := d.Transition(StatusPendingManager, Actor{Role: auth.RoleHR}, ActionApprove, ""); !errors.Is(err, ErrForbidden) {
		t.Fatalf("hr acting on manager stage must be forbidden, got %v", err)
	}
	if _, err := d.Transition(StatusPendingHR, Actor{Role: auth.RoleManager}, ActionApprove, ""); !errors.Is(err, ErrForbidden) {
		t.Fatalf("manager acting on hr stage must be forbidden, got %v", err)
	}
	if _, err := d.Transition(StatusDraft, Actor{Role: auth.RoleEmployee, IsOwner: false}, ActionSubmit, ""); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-owner submit must be forbidden, got %v", err)
	}
}

func TestSchedulerStatusesAdmitNoUserAction(t *testing.T) {
	d := ForKind(KindLeave)
	for _, status := range []Status{StatusApproved, StatusInProgress} {
		if _, err := d.Transition(status, Actor{Role: auth.RoleHR}, ActionApprove, ""); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("%s: expected ErrInvalidTransition, got %v", status, err)
		}
	}
}

func TestUnknownStatus(t *testing.T) {
	d := ForKind(KindLeave)
	if _, err := d.Transition(Status("WAITING"), Actor{Role: auth.RoleHR}, ActionApprove, ""); !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("expected ErrUnknownStatus, got %v", err)
	}
}
