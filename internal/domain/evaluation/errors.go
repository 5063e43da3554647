package evaluation

import "errors"

var (
	ErrNotFound         = errors.New("evaluation form not found")
	ErrPeriodNotFound   = errors.New("evaluation period not found")
	ErrPeriodClosed     = errors.New("evaluation period is closed")
	ErrScoreOutOfRange  = errors.New("score outside criterion range")
	ErrUnknownCriterion = errors.New("unknown criterion")
	ErrIncompleteScores = errors.New("all criteria must be scored before submitting")
	ErrFinalOutOfRange  = errors.New("final score outside allowed range")
	ErrNoCriteria       = errors.New("no criteria defined")
)
