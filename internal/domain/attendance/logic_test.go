package attendance

import (
	"testing"
	"time"
)

var weekdaySchedule = Schedule{
	StartTime:    "09:00",
	EndTime:      "17:00",
	GraceMinutes: 15,
	WorkDays:     []int{1, 2, 3, 4, 5},
}

func at(y, m, d, hour, min int) time.Time {
	return time.Date(y, time.Month(m), d, hour, min, 0, 0, time.UTC)
}

func TestIsWorkDay(t *testing.T) {
	monday := at(2026, 3, 2, 0, 0)
	saturday := at(2026, 3, 7, 0, 0)
	holidays := []Holiday{{Date: at(2026, 3, 3, 0, 0), Name: "Founders Day"}}

	if !IsWorkDay(weekdaySchedule, monday, holidays) {
		t.Fatal("monday should be a work day")
	}
	if IsWorkDay(weekdaySchedule, saturday, holidays) {
		t.Fatal("saturday should not be a work day")
	}
	if IsWorkDay(weekdaySchedule, at(2026, 3, 3, 0, 0), holidays) {
		t.Fatal("holiday should not be a work day")
	}
}

func TestLateBy(t *testing.T) {
	cases := []struct {
		name    string
		checkIn time.Time
		want    int
	}{
		{"on time", at(2026, 3, 2, 8, 55), 0},
		{"at start", at(2026, 3, 2, 9, 0), 0},
		{"within grace", at(2026, 3, 2, 9, 15), 0},
		{"just past grace", at(2026, 3, 2, 9, 16), 16},
		{"an hour late", at(2026, 3, 2, 10, 0), 60},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := LateBy(weekdaySchedule, tc.checkIn)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %d, want %d", got, tc.want)
			}
		})
	}
}

func TestLateByRejectsBadClock(t *testing.T) {
	bad := Schedule{StartTime: "9am", GraceMinutes: 0}
	if _, err := LateBy(bad, at(2026, 3, 2, 9, 0)); err == nil {
		t.Fatal("expected error for malformed schedule time")
	}
}
