package attendance

import (
	"errors"
	"time"
)

const (
	StatusPresent = "present"
	StatusLate    = "late"
	StatusAbsent  = "absent"
)

var (
	ErrScheduleNotFound = errors.New("work schedule not found")
	ErrAlreadyCheckedIn = errors.New("already checked in today")
	ErrNotCheckedIn     = errors.New("no open check-in today")
	ErrNotWorkDay       = errors.New("not a scheduled work day")
)

// Schedule defines the expected working window. StartTime and EndTime are
// wall-clock values in "15:04" form; WorkDays uses time.Weekday numbering.
type Schedule struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	StartTime    string    `json:"startTime"`
	EndTime      string    `json:"endTime"`
	GraceMinutes int       `json:"graceMinutes"`
	WorkDays     []int     `json:"workDays"`
	IsDefault    bool      `json:"isDefault"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Holiday struct {
	ID        string    `json:"id"`
	Date      time.Time `json:"date"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type Entry struct {
	ID          string     `json:"id"`
	EmployeeID  string     `json:"employeeId"`
	Date        time.Time  `json:"date"`
	CheckIn     *time.Time `json:"checkIn,omitempty"`
	CheckOut    *time.Time `json:"checkOut,omitempty"`
	Status      string     `json:"status"`
	LateMinutes int        `json:"lateMinutes"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type MonthlySummary struct {
	EmployeeID   string  `json:"employeeId"`
	Year         int     `json:"year"`
	Month        int     `json:"month"`
	PresentDays  int     `json:"presentDays"`
	LateDays     int     `json:"lateDays"`
	AbsentDays   int     `json:"absentDays"`
	WorkedHours  float64 `json:"workedHours"`
	TotalLateMin int     `json:"totalLateMinutes"`
}
