package workflow

import (
	"errors"
	"testing"
)

func TestCanonicalAliases(t *testing.T) {
	cases := []struct {
		kind Kind
		raw  string
		want Status
	}{
		{KindLeave, "PENDING", StatusPendingManager},
		{KindLeave, "MANAGER_APPROVED", StatusPendingHR},
		{KindLeave, "MANAGER_REJECTED", StatusRejected},
		{KindRequest, "PENDING", StatusPendingManager},
		{KindRequest, "MANAGER_APPROVED", StatusPendingHR},
		{KindEvaluation, "PENDING_SELF", StatusSelfEvaluation},
		{KindEvaluation, "SELF_SUBMITTED", StatusManagerEvaluation},
		{KindEvaluation, "MANAGER_SUBMITTED", StatusHRReview},
	}
	for _, tc := range cases {
		got, err := Canonical(tc.kind, tc.raw)
		if err != nil {
			t.Fatalf("%s/%s: %v", tc.kind, tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("%s/%s: got %s, want %s", tc.kind, tc.raw, got, tc.want)
		}
	}
}

func TestCanonicalPassesThroughCanonicalValues(t *testing.T) {
	for _, tc := range []struct {
		kind Kind
		raw  string
		want Status
	}{
		{KindLeave, "APPROVED", StatusApproved},
		{KindLeave, "pending_hr", StatusPendingHR},
		{KindLeave, "  in_progress  ", StatusInProgress},
		{KindEvaluation, "GM_APPROVAL", StatusGMApproval},
		{KindRequest, "CANCELLED", StatusCancelled},
	} {
		got, err := Canonical(tc.kind, tc.raw)
		if err != nil {
			t.Fatalf("%s/%q: %v", tc.kind, tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("%s/%q: got %s, want %s", tc.kind, tc.raw, got, tc.want)
		}
	}
}

func TestCanonicalRejectsUnknownValues(t *testing.T) {
	for _, tc := range []struct {
		kind Kind
		raw  string
	}{
		{KindLeave, ""},
		{KindLeave, "WAITING"},
		{KindLeave, "SELF_EVALUATION"},
		{KindEvaluation, "MANAGER_REJECTED"},
		{KindEvaluation, "IN_PROGRESS"},
		{KindRequest, "IN_PROGRESS"},
	} {
		if _, err := Canonical(tc.kind, tc.raw); !errors.Is(err, ErrUnknownStatus) {
			t.Fatalf("%s/%q: expected ErrUnknownStatus, got %v", tc.kind, tc.raw, err)
		}
	}
}
