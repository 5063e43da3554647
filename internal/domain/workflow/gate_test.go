package workflow

import (
	"reflect"
	"testing"

	"github.com/ghinaderbes2002/vita-hr-sub000/internal/domain/auth"
)

func TestAllowedActionsLeave(t *testing.T) {
	d := ForKind(KindLeave)

	cases := []struct {
		name   string
		status Status
		actor  Actor
		want   []Action
	}{
		{"draft owner", StatusDraft, Actor{Role: auth.RoleEmployee, IsOwner: true}, []Action{ActionEdit, ActionDelete, ActionSubmit}},
		{"draft owning manager", StatusDraft, Actor{Role: auth.RoleManager, IsOwner: true}, []Action{ActionEdit, ActionDelete, ActionSubmit}},
		{"draft manager", StatusDraft, Actor{Role: auth.RoleManager}, nil},
		{"draft other employee", StatusDraft, Actor{Role: auth.RoleEmployee}, nil},
		{"pending manager, manager", StatusPendingManager, Actor{Role: auth.RoleManager}, []Action{ActionApprove, ActionReject}},
		{"pending manager, owner", StatusPendingManager, Actor{Role: auth.RoleEmployee, IsOwner: true}, []Action{ActionCancel}},
		{"pending manager, owning manager", StatusPendingManager, Actor{Role: auth.RoleManager, IsOwner: true}, []Action{ActionCancel}},
		{"pending hr, hr", StatusPendingHR, Actor{Role: auth.RoleHR}, []Action{ActionApprove, ActionReject}},
		{"pending hr, manager", StatusPendingHR, Actor{Role: auth.RoleManager}, nil},
		{"approved", StatusApproved, Actor{Role: auth.RoleHR}, nil},
		{"rejected", StatusRejected, Actor{Role: auth.RoleEmployee, IsOwner: true}, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := d.AllowedActions(tc.status, tc.actor)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestAllowedActionsEvaluation(t *testing.T) {
	d := ForKind(KindEvaluation)

	cases := []struct {
		name   string
		status Status
		actor  Actor
		want   []Action
	}{
		{"self stage, subject", StatusSelfEvaluation, Actor{Role: auth.RoleEmployee, IsOwner: true}, []Action{ActionSubmit}},
		{"self stage, manager subject", StatusSelfEvaluation, Actor{Role: auth.RoleManager, IsOwner: true}, []Action{ActionSubmit}},
		{"self stage, other employee", StatusSelfEvaluation, Actor{Role: auth.RoleEmployee}, nil},
		{"manager stage, manager", StatusManagerEvaluation, Actor{Role: auth.RoleManager}, []Action{ActionSubmit}},
		{"manager stage, subject", StatusManagerEvaluation, Actor{Role: auth.RoleEmployee, IsOwner: true}, nil},
		{"hr review, hr", StatusHRReview, Actor{Role: auth.RoleHR}, []Action{ActionSubmit}},
		{"gm approval, gm", StatusGMApproval, Actor{Role: auth.RoleGM}, []Action{ActionApprove, ActionReject}},
		{"gm approval, hr", StatusGMApproval, Actor{Role: auth.RoleHR}, nil},
		{"completed", StatusCompleted, Actor{Role: auth.RoleGM}, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := d.AllowedActions(tc.status, tc.actor)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestAllowedActionsIsDeterministic(t *testing.T) {
	d := ForKind(KindLeave)
	actor := Actor{Role: auth.RoleManager}
	first := d.AllowedActions(StatusPendingManager, actor)
	for i := 0; i < 10; i++ {
		if got := d.AllowedActions(StatusPendingManager, actor); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d: got %v, want %v", i, got, first)
		}
	}
}

func TestAllowedActionsMatchTransition(t *testing.T) {
	// Every action the gate exposes (other than edit/delete, which are not
	// transitions) must be accepted by Transition for the same actor.
	actors := []Actor{
		{Role: auth.RoleEmployee, IsOwner: true},
		{Role: auth.RoleEmployee},
		{Role: auth.RoleManager},
		{Role: auth.RoleManager, IsOwner: true},
		{Role: auth.RoleHR},
		{Role: auth.RoleGM},
	}
	for _, kind := range []Kind{KindLeave, KindEvaluation, KindRequest} {
		d := ForKind(kind)
		for status := range d.stages {
			for _, actor := range actors {
				for _, action := range d.AllowedActions(status, actor) {
					if action == ActionEdit || action == ActionDelete {
						continue
					}
					if _, err := d.Transition(status, actor, action, "because"); err != nil {
						t.Fatalf("%s/%s/%+v: exposed action %s rejected: %v", kind, status, actor, action, err)
					}
				}
			}
		}
	}
}

func TestPayloadWritable(t *testing.T) {
	d := ForKind(KindEvaluation)

	subject := Actor{Role: auth.RoleEmployee, IsOwner: true}
	manager := Actor{Role: auth.RoleManager}

	if !d.PayloadWritable(StatusSelfEvaluation, StatusSelfEvaluation, subject) {
		t.Fatal("subject must be able to write the self section during self evaluation")
	}
	if d.PayloadWritable(StatusSelfEvaluation, StatusSelfEvaluation, manager) {
		t.Fatal("manager must not write the self section")
	}
	if d.PayloadWritable(StatusManagerEvaluation, StatusSelfEvaluation, subject) {
		t.Fatal("self section must freeze once the chain advances")
	}
	if !d.PayloadWritable(StatusManagerEvaluation, StatusManagerEvaluation, manager) {
		t.Fatal("manager must be able to write the manager section during manager evaluation")
	}
	if d.PayloadWritable(StatusManagerEvaluation, StatusManagerEvaluation, Actor{Role: auth.RoleManager, IsOwner: true}) {
		t.Fatal("a manager must not score their own form")
	}
	if !d.PayloadWritable(StatusSelfEvaluation, StatusSelfEvaluation, Actor{Role: auth.RoleManager, IsOwner: true}) {
		t.Fatal("a manager must be able to write their own self section")
	}
}
