package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"journal-grading-service/internal/core/domain"
)

func TestWordCount(t *testing.T) {
	assert.Equal(t, 0, wordCount(""))
	assert.Equal(t, 0, wordCount("   \n\t "))
	assert.Equal(t, 3, wordCount("the blues tradition"))
	assert.Equal(t, 3, wordCount("  the\n blues \t tradition  "))
}

func TestNormalizeScore(t *testing.T) {
	// 10 of 17 raw onto the 20-point scale
	assert.Equal(t, 11.76, normalizeScore(10, 17, 20))
	assert.Equal(t, 20.0, normalizeScore(17, 17, 20))
	assert.Equal(t, 0.0, normalizeScore(0, 17, 20))
	// 15 of 17 raw, the full-pipeline case
	assert.Equal(t, 17.65, normalizeScore(15, 17, 20))
}

func TestNormalizeScore_Clamped(t *testing.T) {
	assert.Equal(t, 0.0, normalizeScore(-3, 17, 20))
	assert.Equal(t, 20.0, normalizeScore(25, 17, 20))
}

func TestNormalizeScore_ZeroRawMax(t *testing.T) {
	// A malformed rubric with zero total divides against the fallback 20.
	assert.Equal(t, 10.0, normalizeScore(10, 0, 20))
	assert.Equal(t, 10.0, normalizeScore(10, -5, 20))
}

func TestNormalizeScore_Bounds(t *testing.T) {
	cases := []struct{ total, max float64 }{
		{0, 1}, {1, 1}, {3, 17}, {17, 17}, {100, 3}, {-50, 10}, {0.5, 17},
	}
	for _, tc := range cases {
		got := normalizeScore(tc.total, tc.max, 20)
		assert.GreaterOrEqual(t, got, 0.0)
		assert.LessOrEqual(t, got, 20.0)
	}
}

func TestLetterGradeFor(t *testing.T) {
	assert.Equal(t, "A+", letterGradeFor(100))
	assert.Equal(t, "A+", letterGradeFor(97))
	assert.Equal(t, "A", letterGradeFor(93))
	assert.Equal(t, "A-", letterGradeFor(90))
	assert.Equal(t, "B+", letterGradeFor(88.2))
	assert.Equal(t, "B", letterGradeFor(83))
	assert.Equal(t, "B-", letterGradeFor(80))
	assert.Equal(t, "C+", letterGradeFor(77))
	assert.Equal(t, "C", letterGradeFor(73))
	assert.Equal(t, "C-", letterGradeFor(70))
	assert.Equal(t, "D+", letterGradeFor(67))
	assert.Equal(t, "D", letterGradeFor(63))
	assert.Equal(t, "D-", letterGradeFor(60))
	assert.Equal(t, "F", letterGradeFor(59.99))
	assert.Equal(t, "F", letterGradeFor(0))
}

func TestLetterGradeFor_Monotonic(t *testing.T) {
	rank := map[string]int{
		"F": 0, "D-": 1, "D": 2, "D+": 3, "C-": 4, "C": 5, "C+": 6,
		"B-": 7, "B": 8, "B+": 9, "A-": 10, "A": 11, "A+": 12,
	}

	prev := rank[letterGradeFor(0)]
	for p := 0.0; p <= 100; p += 0.25 {
		cur := rank[letterGradeFor(p)]
		assert.GreaterOrEqual(t, cur, prev, "grade dropped at %.2f%%", p)
		prev = cur
	}
}

func TestReconcileScores_ClampsToRubricMax(t *testing.T) {
	rubric := domain.DefaultRubric()
	scores := reconcileScores(rubric, []domain.CriterionScore{
		{CriterionName: "Musical Analysis", Score: 9, MaxPoints: 10},
		{CriterionName: "Historical Context", Score: -2, MaxPoints: 5},
	})

	assert.Equal(t, 6.0, scores[0].Score)
	assert.Equal(t, 6.0, scores[0].MaxPoints)
	assert.Equal(t, 0.0, scores[1].Score)
	assert.Equal(t, 5.0, scores[1].MaxPoints)
}

func TestReconcileScores_NameMatching(t *testing.T) {
	rubric := domain.DefaultRubric()
	scores := reconcileScores(rubric, []domain.CriterionScore{
		{CriterionName: "musical  analysis", Score: 4},
		{CriterionName: "Writing", Score: 2}, // substring match
		{CriterionName: "Stage Presence", Score: 5},
	})

	assert.Equal(t, 4.0, scores[0].Score)
	assert.Equal(t, 6.0, scores[0].MaxPoints)
	assert.Equal(t, 2.0, scores[1].Score)
	assert.Equal(t, 3.0, scores[1].MaxPoints)
	// unknown criterion cannot contribute points
	assert.Equal(t, 0.0, scores[2].Score)
	assert.Equal(t, 0.0, scores[2].MaxPoints)
}

func TestRawTotals(t *testing.T) {
	total, max := rawTotals([]domain.CriterionScore{
		{Score: 5, MaxPoints: 6},
		{Score: 5, MaxPoints: 5},
		{Score: 3, MaxPoints: 3},
		{Score: 2, MaxPoints: 3},
	})
	assert.Equal(t, 15.0, total)
	assert.Equal(t, 17.0, max)
}

func TestDefaultRubric_RawMax(t *testing.T) {
	assert.Equal(t, 17.0, domain.DefaultRubric().RawMax())
}
