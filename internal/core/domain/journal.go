package domain

import "time"

// Submission is a student journal entry as stored upstream. The pipeline
// reads submissions but never mutates them.
type Submission struct {
	ID           string
	StudentID    string
	AssignmentID string
	Content      string
	WordCount    int
	CreatedAt    time.Time
}

// RubricCriterion is a single named, weighted evaluation criterion.
type RubricCriterion struct {
	Name        string  `json:"name"`
	MaxPoints   float64 `json:"max_points"`
	Description string  `json:"description,omitempty"`
}

// Rubric is the ordered set of criteria a journal is graded against.
type Rubric struct {
	Criteria []RubricCriterion `json:"criteria"`
}

// RawMax returns the sum of all criterion maxima.
func (r Rubric) RawMax() float64 {
	var total float64
	for _, c := range r.Criteria {
		total += c.MaxPoints
	}
	return total
}

// DefaultRubric returns the built-in four-criterion journal rubric.
// The criterion maxima sum to 17 raw points.
func DefaultRubric() Rubric {
	return Rubric{Criteria: []RubricCriterion{
		{Name: "Musical Analysis", MaxPoints: 6, Description: "Use of musical terminology and analytical depth"},
		{Name: "Historical Context", MaxPoints: 5, Description: "Understanding of cultural and historical significance"},
		{Name: "Terminology Usage", MaxPoints: 3, Description: "Accurate use of course vocabulary"},
		{Name: "Writing Quality", MaxPoints: 3, Description: "Clarity, structure, and evidence support"},
	}}
}

// CriterionScore is the grader's scored breakdown for one rubric criterion.
type CriterionScore struct {
	CriterionName string  `json:"criterion_name"`
	Score         float64 `json:"score"`
	MaxPoints     float64 `json:"max_points"`
	Feedback      string  `json:"feedback"`
}

// AIDetection records the grader's judgement on whether the submission
// was machine-written.
type AIDetection struct {
	Flagged    bool   `json:"flagged"`
	Confidence string `json:"confidence,omitempty"`
	Reasoning  string `json:"reasoning,omitempty"`
}

// GraderResult is the grading service's evaluation of one submission,
// expressed on the rubric's raw point scale. Degraded marks results that
// were substituted because the upstream response could not be parsed.
type GraderResult struct {
	CriterionScores []CriterionScore
	OverallFeedback string
	LetterGrade     string
	AIDetection     *AIDetection
	Model           string
	Degraded        bool
}

// GradeResult is the persisted grade for one submission, unique per journal.
// A positive Score is final; a zero Score is provisional and eligible for
// regrading.
type GradeResult struct {
	ID              string
	JournalID       string
	StudentID       string
	AssignmentID    string
	Score           float64
	MaxScore        float64
	LetterGrade     string
	Feedback        string
	Rubric          Rubric
	CriterionScores []CriterionScore
	AIDetection     *AIDetection
	Model           string
	GradedAt        time.Time
}

// Final reports whether this grade should never be silently recomputed.
func (g *GradeResult) Final() bool {
	return g != nil && g.Score > 0
}
