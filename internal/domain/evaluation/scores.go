package evaluation

// Total sums the scored entries of one stage's section. Unscored criteria
// contribute nothing; they are absent, not zero.
func Total(scores []Score, stage string) float64 {
	var total float64
	for _, s := range scores {
		if s.Stage != stage || s.Score == nil {
			continue
		}
		total += *s.Score
	}
	return total
}

// MaxTotal is the ceiling a section total (and the final score) can reach.
func MaxTotal(criteria []Criterion) float64 {
	var max float64
	for _, c := range criteria {
		max += c.MaxScore
	}
	return max
}

// ValidateScores checks each input against its criterion's range. When
// complete is set, every criterion must carry a score before the stage can
// submit.
func ValidateScores(inputs []ScoreInput, criteria []Criterion, complete bool) error {
	byID := make(map[string]Criterion, len(criteria))
	for _, c := range criteria {
		byID[c.ID] = c
	}

	scored := make(map[string]bool, len(inputs))
	for _, in := range inputs {
		criterion, ok := byID[in.CriterionID]
		if !ok {
			return ErrUnknownCriterion
		}
		if in.Score == nil {
			continue
		}
		if *in.Score < 0 || *in.Score > criterion.MaxScore {
			return ErrScoreOutOfRange
		}
		scored[in.CriterionID] = true
	}

	if complete {
		for _, c := range criteria {
			if !scored[c.ID] {
				return ErrIncompleteScores
			}
		}
	}
	return nil
}
