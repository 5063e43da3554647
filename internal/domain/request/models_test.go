package request

import (
	"errors"
	"testing"
	"time"
)

func day(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestDetailsValidate(t *testing.T) {
	cases := []struct {
		name    string
		details Details
		wantErr error
	}{
		{
			"valid permission",
			Details{Type: TypePermission, Permission: &PermissionDetails{Date: day(2026, 4, 1), FromTime: "09:00", ToTime: "11:30"}},
			nil,
		},
		{
			"permission time order",
			Details{Type: TypePermission, Permission: &PermissionDetails{Date: day(2026, 4, 1), FromTime: "11:00", ToTime: "09:00"}},
			ErrInvalidDetails,
		},
		{
			"permission bad clock",
			Details{Type: TypePermission, Permission: &PermissionDetails{Date: day(2026, 4, 1), FromTime: "9am", ToTime: "11:00"}},
			ErrInvalidDetails,
		},
		{
			"valid transfer",
			Details{Type: TypeTransfer, Transfer: &TransferDetails{TargetDepartmentID: "d1", Motivation: "closer to home"}},
			nil,
		},
		{
			"transfer without target",
			Details{Type: TypeTransfer, Transfer: &TransferDetails{TargetDepartmentID: "  "}},
			ErrInvalidDetails,
		},
		{
			"valid advance",
			Details{Type: TypeAdvance, Advance: &AdvanceDetails{Amount: 1500, Currency: "USD", Repayments: 3}},
			nil,
		},
		{
			"advance zero amount",
			Details{Type: TypeAdvance, Advance: &AdvanceDetails{Amount: 0, Currency: "USD"}},
			ErrInvalidDetails,
		},
		{
			"valid resignation",
			Details{Type: TypeResignation, Resignation: &ResignationDetails{LastWorkingDay: day(2026, 6, 30)}},
			nil,
		},
		{
			"type and variant mismatch",
			Details{Type: TypeAdvance, Transfer: &TransferDetails{TargetDepartmentID: "d1"}},
			ErrInvalidDetails,
		},
		{
			"two variants set",
			Details{
				Type:     TypeTransfer,
				Transfer: &TransferDetails{TargetDepartmentID: "d1"},
				Advance:  &AdvanceDetails{Amount: 100, Currency: "USD"},
			},
			ErrInvalidDetails,
		},
		{
			"no variant",
			Details{Type: TypeTransfer},
			ErrInvalidDetails,
		},
		{
			"unknown type",
			Details{Type: "VACATION", Transfer: &TransferDetails{TargetDepartmentID: "d1"}},
			ErrUnknownType,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.details.Validate()
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("got %v, want %v", err, tc.wantErr)
			}
		})
	}
}
