package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"
)

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

// Dashboard is the landing-page summary for approvers.
type Dashboard struct {
	PendingLeaveRequests int `json:"pendingLeaveRequests"`
	PendingRequests      int `json:"pendingRequests"`
	OpenEvaluations      int `json:"openEvaluations"`
	ActiveEmployees      int `json:"activeEmployees"`
}

func (s *Service) Dashboard(ctx context.Context, tenantID string) (*Dashboard, error) {
	d := &Dashboard{}
	var err error
	if d.PendingLeaveRequests, err = s.Store.PendingLeaveCount(ctx, tenantID); err != nil {
		return nil, err
	}
	if d.PendingRequests, err = s.Store.PendingRequestCount(ctx, tenantID); err != nil {
		return nil, err
	}
	if d.OpenEvaluations, err = s.Store.OpenEvaluationCount(ctx, tenantID); err != nil {
		return nil, err
	}
	if d.ActiveEmployees, err = s.Store.ActiveEmployeeCount(ctx, tenantID); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) EvaluationResultsCSV(ctx context.Context, tenantID, periodID string) ([]byte, error) {
	results, err := s.Store.EvaluationResults(ctx, tenantID, periodID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"Employee Number", "First Name", "Last Name", "Department",
		"Status", "GM Decision", "Self Total", "Manager Total", "Final Score"})
	for _, r := range results {
		_ = w.Write([]string{
			r.EmployeeNumber, r.FirstName, r.LastName, r.Department,
			r.Status, r.GMStatus,
			formatScore(r.SelfTotal), formatScore(r.ManagerTotal), formatScore(r.FinalScore),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Service) EvaluationResultsPDF(ctx context.Context, tenantID, periodID string) ([]byte, error) {
	periodName, err := s.Store.PeriodName(ctx, tenantID, periodID)
	if err != nil {
		return nil, err
	}
	results, err := s.Store.EvaluationResults(ctx, tenantID, periodID)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Evaluation Results")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s", periodName))
	pdf.Ln(12)

	widths := []float64{30, 60, 45, 35, 28, 25, 25, 25}
	headers := []string{"Number", "Employee", "Department", "Status", "GM", "Self", "Manager", "Final"}
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, r := range results {
		cols := []string{
			r.EmployeeNumber,
			r.FirstName + " " + r.LastName,
			r.Department,
			r.Status,
			r.GMStatus,
			formatScore(r.SelfTotal),
			formatScore(r.ManagerTotal),
			formatScore(r.FinalScore),
		}
		for i, c := range cols {
			pdf.CellFormat(widths[i], 7, c, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Service) LeaveBalancesCSV(ctx context.Context, tenantID string, year int) ([]byte, error) {
	rows, err := s.Store.LeaveBalances(ctx, tenantID, year)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"Employee Number", "First Name", "Last Name", "Leave Type", "Year",
		"Total", "Carried Over", "Adjusted", "Used", "Pending", "Remaining"})
	for _, r := range rows {
		_ = w.Write([]string{
			r.EmployeeNumber, r.FirstName, r.LastName, r.LeaveType, strconv.Itoa(r.Year),
			formatDays(r.TotalDays), formatDays(r.CarriedOver), formatDays(r.Adjusted),
			formatDays(r.Used), formatDays(r.Pending), formatDays(r.Remaining()),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Service) LeaveBalancesPDF(ctx context.Context, tenantID string, year int) ([]byte, error) {
	rows, err := s.Store.LeaveBalances(ctx, tenantID, year)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, fmt.Sprintf("Leave Balances %d", year))
	pdf.Ln(12)

	widths := []float64{30, 65, 40, 22, 22, 22, 22, 22, 25}
	headers := []string{"Number", "Employee", "Leave Type", "Total", "Carried", "Adjusted", "Used", "Pending", "Remaining"}
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, r := range rows {
		cols := []string{
			r.EmployeeNumber,
			r.FirstName + " " + r.LastName,
			r.LeaveType,
			formatDays(r.TotalDays),
			formatDays(r.CarriedOver),
			formatDays(r.Adjusted),
			formatDays(r.Used),
			formatDays(r.Pending),
			formatDays(r.Remaining()),
		}
		for i, c := range cols {
			pdf.CellFormat(widths[i], 7, c, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Service) ListJobRuns(ctx context.Context, tenantID, jobType string, limit, offset int) ([]map[string]any, error) {
	return s.Store.ListJobRuns(ctx, tenantID, jobType, limit, offset)
}

func formatScore(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

func formatDays(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
