package leave

import (
	"testing"
	"time"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestCalculateRequestDays(t *testing.T) {
	cases := []struct {
		name      string
		start     time.Time
		end       time.Time
		startHalf bool
		endHalf   bool
		want      float64
		wantErr   bool
	}{
		{"single day", date(2026, 3, 2), date(2026, 3, 2), false, false, 1, false},
		{"full week", date(2026, 3, 2), date(2026, 3, 6), false, false, 5, false},
		{"half day start", date(2026, 3, 2), date(2026, 3, 6), true, false, 4.5, false},
		{"half day both", date(2026, 3, 2), date(2026, 3, 6), true, true, 4, false},
		{"single half day", date(2026, 3, 2), date(2026, 3, 2), true, false, 0.5, false},
		{"same day both halves", date(2026, 3, 2), date(2026, 3, 2), true, true, 0, true},
		{"end before start", date(2026, 3, 6), date(2026, 3, 2), false, false, 0, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := CalculateRequestDays(tc.start, tc.end, tc.startHalf, tc.endHalf)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCarryOver(t *testing.T) {
	cases := []struct {
		remaining float64
		limit     float64
		want      float64
	}{
		{5, 10, 5},
		{15, 10, 10},
		{0, 10, 0},
		{-2, 10, 0},
	}
	for _, tc := range cases {
		if got := CarryOver(tc.remaining, tc.limit); got != tc.want {
			t.Fatalf("CarryOver(%v, %v) = %v, want %v", tc.remaining, tc.limit, got, tc.want)
		}
	}
}

func TestRemainingDays(t *testing.T) {
	b := Balance{TotalDays: 21, CarriedOverDays: 3, AdjustedDays: -1, UsedDays: 6, PendingDays: 2}
	if got := b.RemainingDays(); got != 15 {
		t.Fatalf("got %v, want 15", got)
	}

	// The ledger identity must hold through a submit/approve cycle.
	days := 4.0
	b.PendingDays += days
	if got := b.RemainingDays(); got != 11 {
		t.Fatalf("after submit: got %v, want 11", got)
	}
	b.PendingDays -= days
	b.UsedDays += days
	if got := b.RemainingDays(); got != 11 {
		t.Fatalf("after approval: got %v, want 11", got)
	}
}
