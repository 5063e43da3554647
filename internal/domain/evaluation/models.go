package evaluation

import (
	"time"

	"github.com/ghinaderbes2002/vita-hr-sub000/internal/domain/workflow"
)

const (
	PeriodOpen   = "open"
	PeriodClosed = "closed"
)

const (
	StageSelf    = "self"
	StageManager = "manager"
)

type Period struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type Criterion struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	MaxScore    float64 `json:"maxScore"`
	SortOrder   int     `json:"sortOrder"`
}

// Form is one employee's evaluation for a period. SelfTotal and ManagerTotal
// freeze when their stage submits; FinalScore starts as the manager total and
// HR may override it during review.
type Form struct {
	ID           string               `json:"id"`
	PeriodID     string               `json:"periodId"`
	EmployeeID   string               `json:"employeeId"`
	Status       workflow.Status      `json:"status"`
	GMStatus     *workflow.GMStatus   `json:"gmStatus,omitempty"`
	GMComment    string               `json:"gmComment,omitempty"`
	SelfTotal    *float64             `json:"selfTotal,omitempty"`
	ManagerTotal *float64             `json:"managerTotal,omitempty"`
	FinalScore   *float64             `json:"finalScore,omitempty"`
	HRComment    string               `json:"hrComment,omitempty"`
	Version      int                  `json:"version"`
	Sections     []Criterion          `json:"sections,omitempty"`
	Scores       []Score              `json:"scores,omitempty"`
	Allowed      []workflow.Action    `json:"allowedActions,omitempty"`
	CreatedAt    time.Time            `json:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt"`
}

// Score is one criterion entry in one stage's section of a form. A nil Score
// value means the rater has not scored the criterion yet.
type Score struct {
	ID          string   `json:"id"`
	CriterionID string   `json:"criterionId"`
	Criterion   string   `json:"criterion,omitempty"`
	MaxScore    float64  `json:"maxScore,omitempty"`
	Stage       string   `json:"stage"`
	Score       *float64 `json:"score"`
	Comment     string   `json:"comment,omitempty"`
}

type ScoreInput struct {
	CriterionID string   `json:"criterionId"`
	Score       *float64 `json:"score"`
	Comment     string   `json:"comment"`
}

type FormFilter struct {
	PeriodID    string
	EmployeeID  string
	EmployeeIDs []string
	Status      workflow.Status
}
