package auth

import "testing"

func TestRolePermissionsAreKnown(t *testing.T) {
	known := map[string]bool{}
	for _, perm := range DefaultPermissions {
		known[perm] = true
	}
	for role, perms := range RolePermissions {
		for _, perm := range perms {
			if !known[perm] {
				t.Fatalf("role %s grants unknown permission %s", role, perm)
			}
		}
	}
}

func TestEmployeeCannotApprove(t *testing.T) {
	for _, perm := range RolePermissions[RoleEmployee] {
		switch perm {
		case PermLeaveApprove, PermRequestsApprove, PermEvaluationReview, PermEvaluationFinalize, PermLeaveAdjust:
			t.Fatalf("employee role must not hold %s", perm)
		}
	}
}

func TestGMHoldsFinalize(t *testing.T) {
	var found bool
	for _, perm := range RolePermissions[RoleGM] {
		if perm == PermEvaluationFinalize {
			found = true
		}
	}
	if !found {
		t.Fatal("gm role must hold evaluation.finalize")
	}
}
