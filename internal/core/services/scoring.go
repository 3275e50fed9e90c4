package services

import (
	"math"
	"strings"

	"journal-grading-service/internal/core/domain"
)

// fallbackRawMax replaces a zero rubric total so normalization never
// divides by zero.
const fallbackRawMax = 20.0

// wordCount returns the whitespace-delimited word count of text.
func wordCount(text string) int {
	return len(strings.Fields(text))
}

// normalizeScore maps a raw rubric total onto the fixed assignment scale,
// rounded to two decimal places. The result always lies in [0, scale].
func normalizeScore(rawTotal, rawMax, scale float64) float64 {
	if rawMax <= 0 {
		rawMax = fallbackRawMax
	}
	normalized := rawTotal / rawMax * scale
	if normalized < 0 {
		normalized = 0
	}
	if normalized > scale {
		normalized = scale
	}
	return math.Round(normalized*100) / 100
}

// letterGradeFor maps a percentage onto the fixed letter band table.
// Bands are monotone: a higher percentage never yields a lower grade.
func letterGradeFor(percentage float64) string {
	switch {
	case percentage >= 97:
		return "A+"
	case percentage >= 93:
		return "A"
	case percentage >= 90:
		return "A-"
	case percentage >= 87:
		return "B+"
	case percentage >= 83:
		return "B"
	case percentage >= 80:
		return "B-"
	case percentage >= 77:
		return "C+"
	case percentage >= 73:
		return "C"
	case percentage >= 70:
		return "C-"
	case percentage >= 67:
		return "D+"
	case percentage >= 63:
		return "D"
	case percentage >= 60:
		return "D-"
	default:
		return "F"
	}
}

// canonicalName collapses case and interior whitespace so criterion names
// returned by the model can be matched against the rubric.
func canonicalName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// reconcileScores aligns the grader's per-criterion scores with the rubric:
// each score is rebound to the rubric's max for its criterion (matched by
// canonical name, with a substring fallback) and clamped to [0, max].
// Unmatched criteria keep a zero max so they cannot inflate the raw total.
func reconcileScores(rubric domain.Rubric, scores []domain.CriterionScore) []domain.CriterionScore {
	maxByName := make(map[string]float64, len(rubric.Criteria))
	for _, c := range rubric.Criteria {
		maxByName[canonicalName(c.Name)] = c.MaxPoints
	}

	out := make([]domain.CriterionScore, 0, len(scores))
	for _, cs := range scores {
		key := canonicalName(cs.CriterionName)
		max, ok := maxByName[key]
		if !ok && key != "" {
			for _, c := range rubric.Criteria {
				n := canonicalName(c.Name)
				if strings.Contains(n, key) || strings.Contains(key, n) {
					max = c.MaxPoints
					ok = true
					break
				}
			}
		}
		if !ok {
			max = 0
		}

		score := cs.Score
		if score < 0 {
			score = 0
		}
		if score > max {
			score = max
		}

		out = append(out, domain.CriterionScore{
			CriterionName: cs.CriterionName,
			Score:         score,
			MaxPoints:     max,
			Feedback:      cs.Feedback,
		})
	}
	return out
}

// rawTotals sums the achieved and maximum points of a scored breakdown.
func rawTotals(scores []domain.CriterionScore) (total, max float64) {
	for _, cs := range scores {
		total += cs.Score
		max += cs.MaxPoints
	}
	return total, max
}
