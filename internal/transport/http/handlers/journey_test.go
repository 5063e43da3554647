package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ghinaderbes2002/vita-hr-sub000/internal/app/server"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/domain/attendance"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/domain/audit"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/domain/auth"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/domain/core"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/domain/evaluation"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/domain/leave"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/domain/notifications"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/domain/reports"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/domain/request"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/platform/config"
	cryptoutil "github.com/ghinaderbes2002/vita-hr-sub000/internal/platform/crypto"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/platform/db"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/platform/email"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/platform/jobs"
	"github.com/ghinaderbes2002/vita-hr-sub000/internal/platform/metrics"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error any             `json:"error"`
}

type testApp struct {
	Router http.Handler
	DB     *pgxpool.Pool
	Cfg    config.Config
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := config.Config{
		DatabaseURL:        dbURL,
		JWTSecret:          "test-secret",
		Environment:        "test",
		SeedTenantName:     "Test Tenant",
		SeedAdminEmail:     "admin@test.local",
		SeedAdminPassword:  "ChangeMe123!",
		SeedGMEmail:        "gm@test.local",
		SeedGMPassword:     "GmPass123!",
		EmailFrom:          "no-reply@test.local",
		RunMigrations:      true,
		RunSeed:            true,
		MigrationsDir:      "../../../../migrations",
		MaxBodyBytes:       1048576,
		RateLimitPerMinute: 10000,
		RequestTimeout:     15 * time.Second,
		MetricsEnabled:     true,
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		t.Fatalf("db connect failed: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
		t.Fatalf("migrations failed: %v", err)
	}
	if err := db.Seed(ctx, pool, cfg); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	cryptoSvc, err := cryptoutil.New(cfg.DataEncryptionKey)
	if err != nil {
		t.Fatalf("crypto init failed: %v", err)
	}

	notifySvc := notifications.New(notifications.NewStore(pool), email.New(cfg), cfg.EmailFrom)
	coreStore := core.NewStore(pool, cryptoSvc)
	leaveSvc := leave.NewService(leave.NewStore(pool), coreStore)
	attendanceSvc := attendance.NewService(attendance.NewStore(pool))

	jobSvc := jobs.New(pool, cfg)
	jobSvc.RegisterLeaveSweep(func(ctx context.Context, tenantID string, now time.Time) (any, error) {
		return leaveSvc.Sweep(ctx, tenantID, now)
	})
	jobSvc.RegisterLeaveCarryOver(func(ctx context.Context, tenantID string, now time.Time) (any, error) {
		return leaveSvc.CarryOverSweep(ctx, tenantID, now)
	})
	jobSvc.RegisterAttendanceAlerts(func(ctx context.Context, tenantID string, now time.Time) (any, error) {
		return attendanceSvc.RunAlerts(ctx, tenantID, now)
	})

	router := server.New(cfg, pool, server.Services{
		Auth:          auth.NewStore(pool),
		Crypto:        cryptoSvc,
		Core:          core.NewService(coreStore),
		Leave:         leaveSvc,
		Evaluation:    evaluation.NewService(evaluation.NewStore(pool), coreStore),
		Request:       request.NewService(request.NewStore(pool), coreStore),
		Attendance:    attendanceSvc,
		Notifications: notifySvc,
		Audit:         audit.New(pool),
		Reports:       reports.NewService(reports.NewStore(pool)),
		Jobs:          jobSvc,
		Collector:     metrics.New(),
	})

	return &testApp{Router: router, DB: pool, Cfg: cfg}
}

func TestLeaveApprovalJourney(t *testing.T) {
	app := newTestApp(t)
	ts := httptest.NewServer(app.Router)
	defer ts.Close()
	client := ts.Client()

	suffix := time.Now().UnixNano()
	hrToken := login(t, client, ts.URL, app.Cfg.SeedAdminEmail, app.Cfg.SeedAdminPassword)

	managerEmail := fmt.Sprintf("manager-%d@example.com", suffix)
	managerID := createEmployee(t, client, ts.URL, hrToken, map[string]any{
		"firstName": "Mara",
		"lastName":  "Manager",
		"email":     managerEmail,
		"hireDate":  "2024-03-01T00:00:00Z",
		"role":      "manager",
		"password":  "Manager123!",
	})

	employeeEmail := fmt.Sprintf("employee-%d@example.com", suffix)
	createEmployee(t, client, ts.URL, hrToken, map[string]any{
		"firstName": "Evan",
		"lastName":  "Employee",
		"email":     employeeEmail,
		"hireDate":  "2025-01-15T00:00:00Z",
		"managerId": managerID,
		"role":      "employee",
		"password":  "Employee123!",
	})

	leaveTypeID := createLeaveType(t, client, ts.URL, hrToken, fmt.Sprintf("Annual-%d", suffix))

	empToken := login(t, client, ts.URL, employeeEmail, "Employee123!")
	start := time.Now().AddDate(0, 2, 0).Format("2006-01-02")
	end := time.Now().AddDate(0, 2, 2).Format("2006-01-02")
	resp := postJSON(t, client, ts.URL+"/api/v1/leave/requests", empToken, map[string]any{
		"leaveTypeId": leaveTypeID,
		"startDate":   start,
		"endDate":     end,
		"reason":      "Rest",
	})
	var draft map[string]any
	if err := json.Unmarshal(resp.Data, &draft); err != nil {
		t.Fatalf("failed to decode draft: %v", err)
	}
	requestID, _ := draft["id"].(string)
	if requestID == "" {
		t.Fatal("expected leave request id")
	}
	if draft["status"] != "DRAFT" {
		t.Fatalf("expected status DRAFT, got %v", draft["status"])
	}

	if status := decide(t, client, ts.URL, empToken, "/leave/requests/"+requestID+"/submit", nil); status != "PENDING_MANAGER" {
		t.Fatalf("expected PENDING_MANAGER after submit, got %s", status)
	}

	// The employee cannot decide their own request past submit.
	postJSONStatus(t, client, ts.URL+"/api/v1/leave/requests/"+requestID+"/approve", empToken, map[string]any{}, http.StatusForbidden)

	managerToken := login(t, client, ts.URL, managerEmail, "Manager123!")
	if status := decide(t, client, ts.URL, managerToken, "/leave/requests/"+requestID+"/approve", nil); status != "PENDING_HR" {
		t.Fatalf("expected PENDING_HR after manager approval, got %s", status)
	}

	if status := decide(t, client, ts.URL, hrToken, "/leave/requests/"+requestID+"/approve", nil); status != "APPROVED" {
		t.Fatalf("expected APPROVED after hr approval, got %s", status)
	}

	balances := listBalances(t, client, ts.URL, empToken, "")
	if len(balances) == 0 {
		t.Fatal("expected balance rows after approval")
	}
	used, _ := balances[0]["usedDays"].(float64)
	if used != 3 {
		t.Fatalf("expected 3 used days, got %v", used)
	}
	pending, _ := balances[0]["pendingDays"].(float64)
	if pending != 0 {
		t.Fatalf("expected pending days released, got %v", pending)
	}
}

func TestLeaveRejectionReleasesPending(t *testing.T) {
	app := newTestApp(t)
	ts := httptest.NewServer(app.Router)
	defer ts.Close()
	client := ts.Client()

	suffix := time.Now().UnixNano()
	hrToken := login(t, client, ts.URL, app.Cfg.SeedAdminEmail, app.Cfg.SeedAdminPassword)

	managerEmail := fmt.Sprintf("rej-manager-%d@example.com", suffix)
	managerID := createEmployee(t, client, ts.URL, hrToken, map[string]any{
		"firstName": "Rhea", "lastName": "Manager", "email": managerEmail,
		"role": "manager", "password": "Manager123!",
	})
	employeeEmail := fmt.Sprintf("rej-employee-%d@example.com", suffix)
	createEmployee(t, client, ts.URL, hrToken, map[string]any{
		"firstName": "Rob", "lastName": "Employee", "email": employeeEmail,
		"managerId": managerID, "role": "employee", "password": "Employee123!",
	})
	leaveTypeID := createLeaveType(t, client, ts.URL, hrToken, fmt.Sprintf("Rej-%d", suffix))

	empToken := login(t, client, ts.URL, employeeEmail, "Employee123!")
	resp := postJSON(t, client, ts.URL+"/api/v1/leave/requests", empToken, map[string]any{
		"leaveTypeId": leaveTypeID,
		"startDate":   time.Now().AddDate(0, 3, 0).Format("2006-01-02"),
		"endDate":     time.Now().AddDate(0, 3, 1).Format("2006-01-02"),
		"reason":      "Trip",
	})
	var draft map[string]any
	if err := json.Unmarshal(resp.Data, &draft); err != nil {
		t.Fatalf("failed to decode draft: %v", err)
	}
	requestID, _ := draft["id"].(string)

	decide(t, client, ts.URL, empToken, "/leave/requests/"+requestID+"/submit", nil)

	managerToken := login(t, client, ts.URL, managerEmail, "Manager123!")

	// Rejection without a reason must be refused.
	postJSONStatus(t, client, ts.URL+"/api/v1/leave/requests/"+requestID+"/reject", managerToken, map[string]any{}, http.StatusBadRequest)

	if status := decide(t, client, ts.URL, managerToken, "/leave/requests/"+requestID+"/reject", map[string]any{"reason": "coverage gap"}); status != "REJECTED" {
		t.Fatalf("expected REJECTED, got %s", status)
	}

	balances := listBalances(t, client, ts.URL, empToken, "")
	if len(balances) == 0 {
		t.Fatal("expected balance rows")
	}
	pending, _ := balances[0]["pendingDays"].(float64)
	if pending != 0 {
		t.Fatalf("expected pending released after rejection, got %v", pending)
	}
	used, _ := balances[0]["usedDays"].(float64)
	if used != 0 {
		t.Fatalf("expected no used days after rejection, got %v", used)
	}
}

func TestEvaluationCycleJourney(t *testing.T) {
	app := newTestApp(t)
	ts := httptest.NewServer(app.Router)
	defer ts.Close()
	client := ts.Client()

	suffix := time.Now().UnixNano()
	hrToken := login(t, client, ts.URL, app.Cfg.SeedAdminEmail, app.Cfg.SeedAdminPassword)
	gmToken := login(t, client, ts.URL, app.Cfg.SeedGMEmail, app.Cfg.SeedGMPassword)

	managerEmail := fmt.Sprintf("eval-manager-%d@example.com", suffix)
	managerID := createEmployee(t, client, ts.URL, hrToken, map[string]any{
		"firstName": "Mila", "lastName": "Manager", "email": managerEmail,
		"role": "manager", "password": "Manager123!",
	})
	employeeEmail := fmt.Sprintf("eval-employee-%d@example.com", suffix)
	employeeID := createEmployee(t, client, ts.URL, hrToken, map[string]any{
		"firstName": "Eva", "lastName": "Employee", "email": employeeEmail,
		"managerId": managerID, "role": "employee", "password": "Employee123!",
	})

	resp := postJSON(t, client, ts.URL+"/api/v1/evaluations/criteria", hrToken, map[string]any{
		"name":     fmt.Sprintf("Quality-%d", suffix),
		"maxScore": 10,
	})
	var criterion map[string]any
	if err := json.Unmarshal(resp.Data, &criterion); err != nil {
		t.Fatalf("failed to decode criterion: %v", err)
	}
	if criterion["id"] == "" {
		t.Fatal("expected criterion id")
	}

	resp = postJSON(t, client, ts.URL+"/api/v1/evaluations/periods", hrToken, map[string]any{
		"name":      fmt.Sprintf("Cycle-%d", suffix),
		"startDate": "2026-01-01",
		"endDate":   "2026-06-30",
	})
	var period map[string]any
	if err := json.Unmarshal(resp.Data, &period); err != nil {
		t.Fatalf("failed to decode period: %v", err)
	}
	periodID, _ := period["id"].(string)

	postJSON(t, client, ts.URL+"/api/v1/evaluations/periods/"+periodID+"/launch", hrToken, map[string]any{})

	empToken := login(t, client, ts.URL, employeeEmail, "Employee123!")
	forms := listForms(t, client, ts.URL, empToken, periodID, employeeID)
	if len(forms) == 0 {
		t.Fatal("expected a launched form for the employee")
	}
	formID, _ := forms[0]["id"].(string)
	if forms[0]["status"] != "SELF_EVALUATION" {
		t.Fatalf("expected SELF_EVALUATION after launch, got %v", forms[0]["status"])
	}

	// Submission requires a score for every section on the form.
	criteria := listCriteria(t, client, ts.URL, empToken)
	saveScores(t, client, ts.URL, empToken, formID, criteria, 0.8)
	if status := formStatus(t, postJSON(t, client, ts.URL+"/api/v1/evaluations/forms/"+formID+"/submit", empToken, map[string]any{})); status != "MANAGER_EVALUATION" {
		t.Fatalf("expected MANAGER_EVALUATION, got %s", status)
	}

	managerToken := login(t, client, ts.URL, managerEmail, "Manager123!")
	saveScores(t, client, ts.URL, managerToken, formID, criteria, 0.7)
	if status := formStatus(t, postJSON(t, client, ts.URL+"/api/v1/evaluations/forms/"+formID+"/submit", managerToken, map[string]any{})); status != "HR_REVIEW" {
		t.Fatalf("expected HR_REVIEW, got %s", status)
	}

	if status := formStatus(t, postJSON(t, client, ts.URL+"/api/v1/evaluations/forms/"+formID+"/hr-review", hrToken, map[string]any{
		"finalScore": 7.5,
		"comment":    "adjusted for project load",
	})); status != "GM_APPROVAL" {
		t.Fatalf("expected GM_APPROVAL, got %s", status)
	}

	resp = postJSON(t, client, ts.URL+"/api/v1/evaluations/forms/"+formID+"/gm-decision", gmToken, map[string]any{
		"decision": "approve",
	})
	var final map[string]any
	if err := json.Unmarshal(resp.Data, &final); err != nil {
		t.Fatalf("failed to decode final form: %v", err)
	}
	if final["status"] != "COMPLETED" {
		t.Fatalf("expected COMPLETED, got %v", final["status"])
	}
	if final["gmStatus"] != "APPROVED" {
		t.Fatalf("expected gm status APPROVED, got %v", final["gmStatus"])
	}
}

func TestManagerSubmitsOwnLeaveRequest(t *testing.T) {
	app := newTestApp(t)
	ts := httptest.NewServer(app.Router)
	defer ts.Close()
	client := ts.Client()

	suffix := time.Now().UnixNano()
	hrToken := login(t, client, ts.URL, app.Cfg.SeedAdminEmail, app.Cfg.SeedAdminPassword)

	seniorEmail := fmt.Sprintf("senior-%d@example.com", suffix)
	seniorID := createEmployee(t, client, ts.URL, hrToken, map[string]any{
		"firstName": "Sana", "lastName": "Senior", "email": seniorEmail,
		"role": "manager", "password": "Manager123!",
	})
	juniorEmail := fmt.Sprintf("junior-%d@example.com", suffix)
	createEmployee(t, client, ts.URL, hrToken, map[string]any{
		"firstName": "Jon", "lastName": "Junior", "email": juniorEmail,
		"managerId": seniorID, "role": "manager", "password": "Manager123!",
	})

	leaveTypeID := createLeaveType(t, client, ts.URL, hrToken, fmt.Sprintf("MgrAnnual-%d", suffix))

	// A manager requesting leave for themselves walks the same chain as
	// anyone else: their own manager first, then HR.
	juniorToken := login(t, client, ts.URL, juniorEmail, "Manager123!")
	start := time.Now().AddDate(0, 3, 0).Format("2006-01-02")
	end := time.Now().AddDate(0, 3, 1).Format("2006-01-02")
	resp := postJSON(t, client, ts.URL+"/api/v1/leave/requests", juniorToken, map[string]any{
		"leaveTypeId": leaveTypeID,
		"startDate":   start,
		"endDate":     end,
		"reason":      "Family trip",
	})
	var draft map[string]any
	if err := json.Unmarshal(resp.Data, &draft); err != nil {
		t.Fatalf("failed to decode draft: %v", err)
	}
	requestID, _ := draft["id"].(string)
	if requestID == "" {
		t.Fatal("expected leave request id")
	}

	if status := decide(t, client, ts.URL, juniorToken, "/leave/requests/"+requestID+"/submit", nil); status != "PENDING_MANAGER" {
		t.Fatalf("expected PENDING_MANAGER after submit, got %s", status)
	}

	// A manager still cannot approve their own pending request.
	postJSONStatus(t, client, ts.URL+"/api/v1/leave/requests/"+requestID+"/approve", juniorToken, map[string]any{}, http.StatusForbidden)

	seniorToken := login(t, client, ts.URL, seniorEmail, "Manager123!")
	if status := decide(t, client, ts.URL, seniorToken, "/leave/requests/"+requestID+"/approve", nil); status != "PENDING_HR" {
		t.Fatalf("expected PENDING_HR after the senior manager approves, got %s", status)
	}
	if status := decide(t, client, ts.URL, hrToken, "/leave/requests/"+requestID+"/approve", nil); status != "APPROVED" {
		t.Fatalf("expected APPROVED after hr approval, got %s", status)
	}
}

func TestFormSectionsFixedAtLaunch(t *testing.T) {
	app := newTestApp(t)
	ts := httptest.NewServer(app.Router)
	defer ts.Close()
	client := ts.Client()

	suffix := time.Now().UnixNano()
	hrToken := login(t, client, ts.URL, app.Cfg.SeedAdminEmail, app.Cfg.SeedAdminPassword)

	employeeEmail := fmt.Sprintf("snapshot-%d@example.com", suffix)
	employeeID := createEmployee(t, client, ts.URL, hrToken, map[string]any{
		"firstName": "Sia", "lastName": "Snapshot", "email": employeeEmail,
		"role": "employee", "password": "Employee123!",
	})

	postJSON(t, client, ts.URL+"/api/v1/evaluations/criteria", hrToken, map[string]any{
		"name":     fmt.Sprintf("Delivery-%d", suffix),
		"maxScore": 10,
	})
	resp := postJSON(t, client, ts.URL+"/api/v1/evaluations/periods", hrToken, map[string]any{
		"name":      fmt.Sprintf("Snapshot-%d", suffix),
		"startDate": "2026-07-01",
		"endDate":   "2026-12-31",
	})
	var period map[string]any
	if err := json.Unmarshal(resp.Data, &period); err != nil {
		t.Fatalf("failed to decode period: %v", err)
	}
	periodID, _ := period["id"].(string)
	postJSON(t, client, ts.URL+"/api/v1/evaluations/periods/"+periodID+"/launch", hrToken, map[string]any{})

	// A criterion added mid-period must not appear on already-launched forms.
	resp = postJSON(t, client, ts.URL+"/api/v1/evaluations/criteria", hrToken, map[string]any{
		"name":     fmt.Sprintf("LateAddition-%d", suffix),
		"maxScore": 5,
	})
	var lateCriterion map[string]any
	if err := json.Unmarshal(resp.Data, &lateCriterion); err != nil {
		t.Fatalf("failed to decode criterion: %v", err)
	}

	empToken := login(t, client, ts.URL, employeeEmail, "Employee123!")
	forms := listForms(t, client, ts.URL, empToken, periodID, employeeID)
	if len(forms) == 0 {
		t.Fatal("expected a launched form for the employee")
	}
	formID, _ := forms[0]["id"].(string)

	resp = getJSON(t, client, ts.URL+"/api/v1/evaluations/forms/"+formID, empToken)
	var form map[string]any
	if err := json.Unmarshal(resp.Data, &form); err != nil {
		t.Fatalf("failed to decode form: %v", err)
	}
	rawSections, _ := form["sections"].([]any)
	var sections []map[string]any
	for _, s := range rawSections {
		if m, ok := s.(map[string]any); ok {
			sections = append(sections, m)
		}
	}
	for _, s := range sections {
		if s["id"] == lateCriterion["id"] {
			t.Fatal("criterion added after launch leaked into the form's sections")
		}
	}

	// Scoring the late criterion on this form is rejected.
	doJSON(t, client, http.MethodPut, ts.URL+"/api/v1/evaluations/forms/"+formID+"/scores", empToken, map[string]any{
		"scores": []map[string]any{{"criterionId": lateCriterion["id"], "score": 3}},
	}, http.StatusBadRequest)

	// Scoring the form's own sections is enough to submit.
	saveScores(t, client, ts.URL, empToken, formID, sections, 0.9)
	if status := formStatus(t, postJSON(t, client, ts.URL+"/api/v1/evaluations/forms/"+formID+"/submit", empToken, map[string]any{})); status != "MANAGER_EVALUATION" {
		t.Fatalf("expected MANAGER_EVALUATION, got %s", status)
	}
}

func TestEmployeeCannotReadOthersBalances(t *testing.T) {
	app := newTestApp(t)
	ts := httptest.NewServer(app.Router)
	defer ts.Close()
	client := ts.Client()

	suffix := time.Now().UnixNano()
	hrToken := login(t, client, ts.URL, app.Cfg.SeedAdminEmail, app.Cfg.SeedAdminPassword)

	firstEmail := fmt.Sprintf("balance-a-%d@example.com", suffix)
	createEmployee(t, client, ts.URL, hrToken, map[string]any{
		"firstName": "Aba", "lastName": "One", "email": firstEmail,
		"role": "employee", "password": "Employee123!",
	})
	otherID := createEmployee(t, client, ts.URL, hrToken, map[string]any{
		"firstName": "Ben", "lastName": "Two",
		"email": fmt.Sprintf("balance-b-%d@example.com", suffix),
		"role":  "employee", "password": "Employee123!",
	})

	empToken := login(t, client, ts.URL, firstEmail, "Employee123!")
	getJSONStatus(t, client, ts.URL+"/api/v1/leave/balances?employeeId="+otherID, empToken, http.StatusForbidden)
}

func decide(t *testing.T, client *http.Client, baseURL, token, path string, body map[string]any) string {
	t.Helper()
	if body == nil {
		body = map[string]any{}
	}
	resp := postJSON(t, client, baseURL+"/api/v1"+path, token, body)
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode decision response: %v", err)
	}
	status, _ := payload["status"].(string)
	return status
}

func formStatus(t *testing.T, resp envelope) string {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode form response: %v", err)
	}
	status, _ := payload["status"].(string)
	return status
}

func listCriteria(t *testing.T, client *http.Client, baseURL, token string) []map[string]any {
	t.Helper()
	resp := getJSON(t, client, baseURL+"/api/v1/evaluations/criteria", token)
	var payload []map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode criteria response: %v", err)
	}
	return payload
}

// saveScores scores every criterion at the given fraction of its max.
func saveScores(t *testing.T, client *http.Client, baseURL, token, formID string, criteria []map[string]any, fraction float64) {
	t.Helper()
	var scores []map[string]any
	for _, c := range criteria {
		max, _ := c["maxScore"].(float64)
		scores = append(scores, map[string]any{
			"criterionId": c["id"],
			"score":       max * fraction,
		})
	}
	putJSON(t, client, baseURL+"/api/v1/evaluations/forms/"+formID+"/scores", token, map[string]any{
		"scores": scores,
	})
}

func listForms(t *testing.T, client *http.Client, baseURL, token, periodID, employeeID string) []map[string]any {
	t.Helper()
	resp := getJSON(t, client, baseURL+"/api/v1/evaluations/forms?periodId="+periodID+"&employeeId="+employeeID, token)
	var payload []map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode forms response: %v", err)
	}
	return payload
}

func login(t *testing.T, client *http.Client, baseURL, email, password string) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/auth/login", "", map[string]any{
		"email":    email,
		"password": password,
	})
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	token, _ := payload["token"].(string)
	if token == "" {
		t.Fatal("expected token")
	}
	return token
}

func createEmployee(t *testing.T, client *http.Client, baseURL, token string, body map[string]any) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/employees", token, body)
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode employee response: %v", err)
	}
	id, _ := payload["id"].(string)
	if id == "" {
		t.Fatal("expected employee id")
	}
	return id
}

func createLeaveType(t *testing.T, client *http.Client, baseURL, token, name string) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/leave/types", token, map[string]any{
		"name":       name,
		"annualDays": 21,
		"isPaid":     true,
	})
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode leave type response: %v", err)
	}
	id, _ := payload["id"].(string)
	if id == "" {
		t.Fatal("expected leave type id")
	}
	return id
}

func listBalances(t *testing.T, client *http.Client, baseURL, token, employeeID string) []map[string]any {
	t.Helper()
	url := baseURL + "/api/v1/leave/balances"
	if employeeID != "" {
		url += "?employeeId=" + employeeID
	}
	resp := getJSON(t, client, url, token)
	var payload []map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode balances response: %v", err)
	}
	return payload
}

func postJSON(t *testing.T, client *http.Client, url, token string, body any) envelope {
	t.Helper()
	return doJSON(t, client, http.MethodPost, url, token, body, 0)
}

func putJSON(t *testing.T, client *http.Client, url, token string, body any) envelope {
	t.Helper()
	return doJSON(t, client, http.MethodPut, url, token, body, 0)
}

func postJSONStatus(t *testing.T, client *http.Client, url, token string, body any, want int) envelope {
	t.Helper()
	return doJSON(t, client, http.MethodPost, url, token, body, want)
}

func getJSON(t *testing.T, client *http.Client, url, token string) envelope {
	t.Helper()
	return doJSON(t, client, http.MethodGet, url, token, nil, 0)
}

func getJSONStatus(t *testing.T, client *http.Client, url, token string, want int) envelope {
	t.Helper()
	return doJSON(t, client, http.MethodGet, url, token, nil, want)
}

// doJSON sends a request and decodes the response envelope. want == 0 means
// any 2xx is accepted; a non-zero want asserts that exact status.
func doJSON(t *testing.T, client *http.Client, method, url, token string, body any, want int) envelope {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewBuffer(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	if want != 0 {
		if resp.StatusCode != want {
			t.Fatalf("expected status %d, got %d: %s", want, resp.StatusCode, string(raw))
		}
	} else if resp.StatusCode >= 400 {
		t.Fatalf("unexpected status %d: %s", resp.StatusCode, string(raw))
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return env
}
