package evaluation

import (
	"errors"
	"testing"
)

func score(v float64) *float64 {
	return &v
}

var testCriteria = []Criterion{
	{ID: "c1", Name: "Quality", MaxScore: 10},
	{ID: "c2", Name: "Teamwork", MaxScore: 5},
	{ID: "c3", Name: "Initiative", MaxScore: 10},
}

func TestTotalSkipsUnscored(t *testing.T) {
	scores := []Score{
		{CriterionID: "c1", Stage: StageSelf, Score: score(8)},
		{CriterionID: "c2", Stage: StageSelf, Score: nil},
		{CriterionID: "c3", Stage: StageSelf, Score: score(6)},
		{CriterionID: "c1", Stage: StageManager, Score: score(9)},
	}
	if got := Total(scores, StageSelf); got != 14 {
		t.Fatalf("self total: got %v, want 14", got)
	}
	if got := Total(scores, StageManager); got != 9 {
		t.Fatalf("manager total: got %v, want 9", got)
	}
}

func TestMaxTotal(t *testing.T) {
	if got := MaxTotal(testCriteria); got != 25 {
		t.Fatalf("got %v, want 25", got)
	}
}

func TestValidateScoresBounds(t *testing.T) {
	cases := []struct {
		name    string
		inputs  []ScoreInput
		wantErr error
	}{
		{"in range", []ScoreInput{{CriterionID: "c1", Score: score(10)}}, nil},
		{"zero allowed", []ScoreInput{{CriterionID: "c1", Score: score(0)}}, nil},
		{"above max", []ScoreInput{{CriterionID: "c2", Score: score(5.5)}}, ErrScoreOutOfRange},
		{"negative", []ScoreInput{{CriterionID: "c1", Score: score(-1)}}, ErrScoreOutOfRange},
		{"unknown criterion", []ScoreInput{{CriterionID: "nope", Score: score(1)}}, ErrUnknownCriterion},
		{"nil score in draft", []ScoreInput{{CriterionID: "c1", Score: nil}}, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateScores(tc.inputs, testCriteria, false)
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

func TestValidateScoresComplete(t *testing.T) {
	partial := []ScoreInput{
		{CriterionID: "c1", Score: score(8)},
		{CriterionID: "c2", Score: score(3)},
	}
	if err := ValidateScores(partial, testCriteria, true); !errors.Is(err, ErrIncompleteScores) {
		t.Fatalf("got %v, want ErrIncompleteScores", err)
	}

	full := append(partial, ScoreInput{CriterionID: "c3", Score: score(7)})
	if err := ValidateScores(full, testCriteria, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	nilEntry := []ScoreInput{
		{CriterionID: "c1", Score: score(8)},
		{CriterionID: "c2", Score: score(3)},
		{CriterionID: "c3", Score: nil},
	}
	if err := ValidateScores(nilEntry, testCriteria, true); !errors.Is(err, ErrIncompleteScores) {
		t.Fatalf("nil entry: got %v, want ErrIncompleteScores", err)
	}
}
