package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestGenericRequestJourneyWithNotifications(t *testing.T) {
	app := newTestApp(t)
	ts := httptest.NewServer(app.Router)
	defer ts.Close()
	client := ts.Client()

	suffix := time.Now().UnixNano()
	hrToken := login(t, client, ts.URL, app.Cfg.SeedAdminEmail, app.Cfg.SeedAdminPassword)

	managerEmail := fmt.Sprintf("req-manager-%d@example.com", suffix)
	managerID := createEmployee(t, client, ts.URL, hrToken, map[string]any{
		"firstName": "Max", "lastName": "Manager", "email": managerEmail,
		"role": "manager", "password": "Manager123!",
	})
	employeeEmail := fmt.Sprintf("req-employee-%d@example.com", suffix)
	createEmployee(t, client, ts.URL, hrToken, map[string]any{
		"firstName": "Nia", "lastName": "Employee", "email": employeeEmail,
		"managerId": managerID, "role": "employee", "password": "Employee123!",
	})

	empToken := login(t, client, ts.URL, employeeEmail, "Employee123!")
	resp := postJSON(t, client, ts.URL+"/api/v1/requests", empToken, map[string]any{
		"details": map[string]any{
			"type": "ADVANCE",
			"advance": map[string]any{
				"amount":     500,
				"currency":   "USD",
				"repayments": 5,
			},
		},
		"reason": "car repair",
	})
	var draft map[string]any
	if err := json.Unmarshal(resp.Data, &draft); err != nil {
		t.Fatalf("failed to decode request draft: %v", err)
	}
	requestID, _ := draft["id"].(string)
	if requestID == "" {
		t.Fatal("expected request id")
	}

	// A details payload without a matching variant is rejected.
	postJSONStatus(t, client, ts.URL+"/api/v1/requests", empToken, map[string]any{
		"details": map[string]any{"type": "ADVANCE"},
	}, http.StatusBadRequest)

	if status := decide(t, client, ts.URL, empToken, "/requests/"+requestID+"/submit", nil); status != "PENDING_MANAGER" {
		t.Fatalf("expected PENDING_MANAGER, got %s", status)
	}

	managerToken := login(t, client, ts.URL, managerEmail, "Manager123!")
	notes := listNotifications(t, client, ts.URL, managerToken)
	if !hasNotificationType(notes, "request_submitted") {
		t.Fatalf("expected manager to be notified of submission, got %+v", notes)
	}

	if status := decide(t, client, ts.URL, managerToken, "/requests/"+requestID+"/approve", nil); status != "PENDING_HR" {
		t.Fatalf("expected PENDING_HR, got %s", status)
	}
	if status := decide(t, client, ts.URL, hrToken, "/requests/"+requestID+"/approve", nil); status != "APPROVED" {
		t.Fatalf("expected APPROVED, got %s", status)
	}

	// APPROVED is terminal for generic requests.
	postJSONStatus(t, client, ts.URL+"/api/v1/requests/"+requestID+"/cancel", empToken, map[string]any{"reason": "changed my mind"}, http.StatusConflict)

	empNotes := listNotifications(t, client, ts.URL, empToken)
	if !hasNotificationType(empNotes, "request_approved") {
		t.Fatalf("expected employee approval notification, got %+v", empNotes)
	}
}

func TestReportsDashboardAndExports(t *testing.T) {
	app := newTestApp(t)
	ts := httptest.NewServer(app.Router)
	defer ts.Close()
	client := ts.Client()

	hrToken := login(t, client, ts.URL, app.Cfg.SeedAdminEmail, app.Cfg.SeedAdminPassword)

	resp := getJSON(t, client, ts.URL+"/api/v1/reports/dashboard", hrToken)
	var dashboard map[string]any
	if err := json.Unmarshal(resp.Data, &dashboard); err != nil {
		t.Fatalf("failed to decode dashboard: %v", err)
	}
	for _, key := range []string{"pendingLeaveRequests", "pendingRequests", "openEvaluations", "activeEmployees"} {
		if _, ok := dashboard[key]; !ok {
			t.Fatalf("expected dashboard key %s, got %+v", key, dashboard)
		}
	}

	year := time.Now().Year()
	csvBody, csvType := download(t, client, ts.URL+fmt.Sprintf("/api/v1/reports/leave-balances/export?year=%d&format=csv", year), hrToken)
	if !strings.HasPrefix(csvType, "text/csv") {
		t.Fatalf("expected text/csv, got %s", csvType)
	}
	if !strings.Contains(string(csvBody), "Employee") {
		t.Fatalf("expected csv header row, got %q", string(csvBody[:min(len(csvBody), 80)]))
	}

	pdfBody, pdfType := download(t, client, ts.URL+fmt.Sprintf("/api/v1/reports/leave-balances/export?year=%d&format=pdf", year), hrToken)
	if pdfType != "application/pdf" {
		t.Fatalf("expected application/pdf, got %s", pdfType)
	}
	if !strings.HasPrefix(string(pdfBody), "%PDF") {
		t.Fatal("expected pdf magic bytes")
	}
}

func TestAdminJobTriggerAndMetrics(t *testing.T) {
	app := newTestApp(t)
	ts := httptest.NewServer(app.Router)
	defer ts.Close()
	client := ts.Client()

	suffix := time.Now().UnixNano()
	hrToken := login(t, client, ts.URL, app.Cfg.SeedAdminEmail, app.Cfg.SeedAdminPassword)

	// Metrics and job triggers require the system admin permission.
	getJSONStatus(t, client, ts.URL+"/api/v1/admin/metrics", hrToken, http.StatusForbidden)

	adminEmail := fmt.Sprintf("sysadmin-%d@example.com", suffix)
	createEmployee(t, client, ts.URL, hrToken, map[string]any{
		"firstName": "Sid", "lastName": "Admin", "email": adminEmail,
		"role": "system_admin", "password": "SysAdmin123!",
	})
	adminToken := login(t, client, ts.URL, adminEmail, "SysAdmin123!")

	postJSONStatus(t, client, ts.URL+"/api/v1/admin/jobs/nonexistent/run", adminToken, map[string]any{}, http.StatusNotFound)

	resp := postJSON(t, client, ts.URL+"/api/v1/admin/jobs/leave_sweep/run", adminToken, map[string]any{})
	var run map[string]any
	if err := json.Unmarshal(resp.Data, &run); err != nil {
		t.Fatalf("failed to decode job run response: %v", err)
	}
	if run["status"] != "completed" {
		t.Fatalf("expected completed job run, got %+v", run)
	}

	resp = getJSON(t, client, ts.URL+"/api/v1/reports/job-runs?jobType=leave_sweep", hrToken)
	var runs []map[string]any
	if err := json.Unmarshal(resp.Data, &runs); err != nil {
		t.Fatalf("failed to decode job runs: %v", err)
	}
	if len(runs) == 0 {
		t.Fatal("expected the triggered run to be recorded")
	}

	resp = getJSON(t, client, ts.URL+"/api/v1/admin/metrics", adminToken)
	var snapshot map[string]any
	if err := json.Unmarshal(resp.Data, &snapshot); err != nil {
		t.Fatalf("failed to decode metrics: %v", err)
	}
	total, _ := snapshot["requestsTotal"].(float64)
	if total == 0 {
		t.Fatal("expected request counter to be non-zero")
	}
}

func TestLeaveCarryOverRollsUnusedDays(t *testing.T) {
	app := newTestApp(t)
	ts := httptest.NewServer(app.Router)
	defer ts.Close()
	client := ts.Client()

	suffix := time.Now().UnixNano()
	hrToken := login(t, client, ts.URL, app.Cfg.SeedAdminEmail, app.Cfg.SeedAdminPassword)

	employeeEmail := fmt.Sprintf("carry-%d@example.com", suffix)
	employeeID := createEmployee(t, client, ts.URL, hrToken, map[string]any{
		"firstName": "Cleo", "lastName": "Carry", "email": employeeEmail,
		"role": "employee", "password": "Employee123!",
	})

	resp := postJSON(t, client, ts.URL+"/api/v1/leave/types", hrToken, map[string]any{
		"name":           fmt.Sprintf("CarryAnnual-%d", suffix),
		"annualDays":     20,
		"carryOverLimit": 5,
		"isPaid":         true,
	})
	var created map[string]any
	if err := json.Unmarshal(resp.Data, &created); err != nil {
		t.Fatalf("failed to decode leave type: %v", err)
	}
	typeID, _ := created["id"].(string)

	// Seed last year's ledger with 8 unused days, above the 5-day cap.
	ctx := context.Background()
	var tenantID string
	if err := app.DB.QueryRow(ctx, `SELECT tenant_id FROM employees WHERE id = $1`, employeeID).Scan(&tenantID); err != nil {
		t.Fatalf("failed to look up tenant: %v", err)
	}
	prevYear := time.Now().Year() - 1
	if _, err := app.DB.Exec(ctx, `
    INSERT INTO leave_balances (tenant_id, employee_id, leave_type_id, year, total_days, used_days)
    VALUES ($1,$2,$3,$4,20,12)
  `, tenantID, employeeID, typeID, prevYear); err != nil {
		t.Fatalf("failed to seed prior-year balance: %v", err)
	}

	adminEmail := fmt.Sprintf("carry-admin-%d@example.com", suffix)
	createEmployee(t, client, ts.URL, hrToken, map[string]any{
		"firstName": "Cara", "lastName": "Admin", "email": adminEmail,
		"role": "system_admin", "password": "SysAdmin123!",
	})
	adminToken := login(t, client, ts.URL, adminEmail, "SysAdmin123!")

	// Running the sweep twice must produce the same carried figure.
	for i := 0; i < 2; i++ {
		resp = postJSON(t, client, ts.URL+"/api/v1/admin/jobs/leave_carry_over/run", adminToken, map[string]any{})
		var run map[string]any
		if err := json.Unmarshal(resp.Data, &run); err != nil {
			t.Fatalf("failed to decode job run response: %v", err)
		}
		if run["status"] != "completed" {
			t.Fatalf("expected completed job run, got %+v", run)
		}
	}

	empToken := login(t, client, ts.URL, employeeEmail, "Employee123!")
	var carried float64 = -1
	for _, b := range listBalances(t, client, ts.URL, empToken, "") {
		if b["leaveTypeId"] == typeID {
			carried, _ = b["carriedOverDays"].(float64)
		}
	}
	if carried != 5 {
		t.Fatalf("expected 5 carried-over days after the sweep, got %v", carried)
	}
}

func TestAuditTrailRecordsDecisions(t *testing.T) {
	app := newTestApp(t)
	ts := httptest.NewServer(app.Router)
	defer ts.Close()
	client := ts.Client()

	suffix := time.Now().UnixNano()
	hrToken := login(t, client, ts.URL, app.Cfg.SeedAdminEmail, app.Cfg.SeedAdminPassword)

	employeeEmail := fmt.Sprintf("audit-employee-%d@example.com", suffix)
	createEmployee(t, client, ts.URL, hrToken, map[string]any{
		"firstName": "Ada", "lastName": "Audited", "email": employeeEmail,
		"role": "employee", "password": "Employee123!",
	})
	leaveTypeID := createLeaveType(t, client, ts.URL, hrToken, fmt.Sprintf("Audit-%d", suffix))

	empToken := login(t, client, ts.URL, employeeEmail, "Employee123!")
	resp := postJSON(t, client, ts.URL+"/api/v1/leave/requests", empToken, map[string]any{
		"leaveTypeId": leaveTypeID,
		"startDate":   time.Now().AddDate(0, 4, 0).Format("2006-01-02"),
		"endDate":     time.Now().AddDate(0, 4, 1).Format("2006-01-02"),
		"reason":      "audit trail check",
	})
	var draft map[string]any
	if err := json.Unmarshal(resp.Data, &draft); err != nil {
		t.Fatalf("failed to decode draft: %v", err)
	}
	requestID, _ := draft["id"].(string)
	decide(t, client, ts.URL, empToken, "/leave/requests/"+requestID+"/submit", nil)

	// Only holders of the audit permission may read the trail.
	getJSONStatus(t, client, ts.URL+"/api/v1/audit/trail/leave_request/"+requestID, empToken, http.StatusForbidden)

	resp = getJSON(t, client, ts.URL+"/api/v1/audit/trail/leave_request/"+requestID, hrToken)
	var events []map[string]any
	if err := json.Unmarshal(resp.Data, &events); err != nil {
		t.Fatalf("failed to decode audit trail: %v", err)
	}
	if len(events) < 2 {
		t.Fatalf("expected create and submit events, got %d", len(events))
	}
	actions := map[string]bool{}
	for _, ev := range events {
		action, _ := ev["action"].(string)
		actions[action] = true
	}
	if !actions["leave.request.create"] || !actions["leave.request.submit"] {
		t.Fatalf("expected create and submit audit actions, got %+v", actions)
	}
}

func TestIdempotentCreateReplaysResponse(t *testing.T) {
	app := newTestApp(t)
	ts := httptest.NewServer(app.Router)
	defer ts.Close()
	client := ts.Client()

	hrToken := login(t, client, ts.URL, app.Cfg.SeedAdminEmail, app.Cfg.SeedAdminPassword)
	key := fmt.Sprintf("leave-type-%d", time.Now().UnixNano())
	body := fmt.Sprintf(`{"name":"Idem-%d","annualDays":10,"isPaid":true}`, time.Now().UnixNano())

	first, firstStatus := postRaw(t, client, ts.URL+"/api/v1/leave/types", hrToken, key, body)
	second, secondStatus := postRaw(t, client, ts.URL+"/api/v1/leave/types", hrToken, key, body)
	if firstStatus != http.StatusCreated {
		t.Fatalf("expected 201 on create, got %d", firstStatus)
	}
	if secondStatus != firstStatus {
		t.Fatalf("expected replay to repeat status %d, got %d", firstStatus, secondStatus)
	}

	var a, b map[string]any
	if err := json.Unmarshal(first.Data, &a); err != nil {
		t.Fatalf("failed to decode first response: %v", err)
	}
	if err := json.Unmarshal(second.Data, &b); err != nil {
		t.Fatalf("failed to decode replayed response: %v", err)
	}
	if a["id"] == "" || a["id"] != b["id"] {
		t.Fatalf("expected replay to return the original entity, got %v and %v", a["id"], b["id"])
	}

	// Reusing the key with a different payload is rejected.
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/v1/leave/types", strings.NewReader(`{"name":"Other","annualDays":5}`))
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+hrToken)
	req.Header.Set("Idempotency-Key", key)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for reused key with new payload, got %d", resp.StatusCode)
	}
}

func postRaw(t *testing.T, client *http.Client, url, token, idempotencyKey, body string) (envelope, int) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		t.Fatalf("unexpected status %d: %s", resp.StatusCode, string(raw))
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	return env, resp.StatusCode
}

func listNotifications(t *testing.T, client *http.Client, baseURL, token string) []map[string]any {
	t.Helper()
	resp := getJSON(t, client, baseURL+"/api/v1/notifications", token)
	var payload []map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode notifications: %v", err)
	}
	return payload
}

func hasNotificationType(notes []map[string]any, ntype string) bool {
	for _, n := range notes {
		if n["type"] == ntype {
			return true
		}
	}
	return false
}

func download(t *testing.T, client *http.Client, url, token string) ([]byte, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.StatusCode, string(raw))
	}
	return raw, resp.Header.Get("Content-Type")
}
