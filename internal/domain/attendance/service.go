package attendance

import (
	"context"
	"fmt"
	"time"
)

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

func (s *Service) ListSchedules(ctx context.Context, tenantID string) ([]Schedule, error) {
	return s.Store.ListSchedules(ctx, tenantID)
}

func (s *Service) CreateSchedule(ctx context.Context, tenantID string, sch Schedule) (string, error) {
	for _, clock := range []string{sch.StartTime, sch.EndTime} {
		if _, err := time.Parse("15:04", clock); err != nil {
			return "", fmt.Errorf("invalid schedule time %q", clock)
		}
	}
	return s.Store.CreateSchedule(ctx, tenantID, sch)
}

func (s *Service) ListHolidays(ctx context.Context, tenantID string, year int) ([]Holiday, error) {
	return s.Store.ListHolidays(ctx, tenantID, year)
}

func (s *Service) CreateHoliday(ctx context.Context, tenantID string, date time.Time, name string) (string, error) {
	return s.Store.CreateHoliday(ctx, tenantID, date, name)
}

func (s *Service) DeleteHoliday(ctx context.Context, tenantID, holidayID string) error {
	return s.Store.DeleteHoliday(ctx, tenantID, holidayID)
}

// CheckIn opens today's attendance entry, deriving late status from the
// tenant's default schedule.
func (s *Service) CheckIn(ctx context.Context, tenantID, employeeID string, now time.Time) (*Entry, error) {
	schedule, err := s.Store.DefaultSchedule(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	holidays, err := s.Store.ListHolidays(ctx, tenantID, now.Year())
	if err != nil {
		return nil, err
	}
	if !IsWorkDay(*schedule, now, holidays) {
		return nil, ErrNotWorkDay
	}

	day := truncateDay(now)
	existing, err := s.Store.EntryForDay(ctx, tenantID, employeeID, day)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.CheckIn != nil {
		return nil, ErrAlreadyCheckedIn
	}

	lateMinutes, err := LateBy(*schedule, now)
	if err != nil {
		return nil, err
	}
	status := StatusPresent
	if lateMinutes > 0 {
		status = StatusLate
	}

	if _, err := s.Store.InsertCheckIn(ctx, tenantID, employeeID, day, now, status, lateMinutes); err != nil {
		return nil, err
	}
	return s.Store.EntryForDay(ctx, tenantID, employeeID, day)
}

func (s *Service) CheckOut(ctx context.Context, tenantID, employeeID string, now time.Time) (*Entry, error) {
	day := truncateDay(now)
	entry, err := s.Store.EntryForDay(ctx, tenantID, employeeID, day)
	if err != nil {
		return nil, err
	}
	if entry == nil || entry.CheckIn == nil {
		return nil, ErrNotCheckedIn
	}
	if err := s.Store.SetCheckOut(ctx, tenantID, entry.ID, now); err != nil {
		return nil, err
	}
	return s.Store.EntryForDay(ctx, tenantID, employeeID, day)
}

func (s *Service) ListEntries(ctx context.Context, tenantID, employeeID string, from, to time.Time) ([]Entry, error) {
	return s.Store.ListEntries(ctx, tenantID, employeeID, from, to)
}

func (s *Service) Summarize(ctx context.Context, tenantID, employeeID string, year, month int) (MonthlySummary, error) {
	return s.Store.Summarize(ctx, tenantID, employeeID, year, month)
}

type AlertResult struct {
	Day     string `json:"day"`
	Marked  int    `json:"marked"`
	Skipped bool   `json:"skipped"`
}

// RunAlerts closes out the previous working day: employees with no entry are
// marked absent. Weekends and holidays are skipped.
func (s *Service) RunAlerts(ctx context.Context, tenantID string, now time.Time) (AlertResult, error) {
	day := truncateDay(now.AddDate(0, 0, -1))
	result := AlertResult{Day: day.Format("2006-01-02")}

	schedule, err := s.Store.DefaultSchedule(ctx, tenantID)
	if err != nil {
		return result, err
	}
	holidays, err := s.Store.ListHolidays(ctx, tenantID, day.Year())
	if err != nil {
		return result, err
	}
	if !IsWorkDay(*schedule, day, holidays) {
		result.Skipped = true
		return result, nil
	}

	result.Marked, err = s.Store.MarkAbsences(ctx, tenantID, day)
	return result, err
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
