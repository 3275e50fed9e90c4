package dto

import (
	"journal-grading-service/internal/core/domain"
	"journal-grading-service/internal/core/services"
)

type RubricCriterionDTO struct {
	Name        string  `json:"name" binding:"required"`
	MaxPoints   float64 `json:"max_points" binding:"required"`
	Description string  `json:"description"`
}

type RubricDTO struct {
	Criteria []RubricCriterionDTO `json:"criteria"`
}

type GradeJournalRequest struct {
	StudentID    string     `json:"student_id"`
	AssignmentID string     `json:"assignment_id"`
	JournalText  string     `json:"journal_text"`
	JournalID    string     `json:"journal_id"`
	Rubric       *RubricDTO `json:"rubric"`
}

type BulkGradeRequest struct {
	JournalIDs []string   `json:"journal_ids" binding:"required,min=1"`
	Rubric     *RubricDTO `json:"rubric"`
}

type CriterionScoreDTO struct {
	CriterionName string  `json:"criterion_name"`
	Score         float64 `json:"score"`
	MaxPoints     float64 `json:"max_points"`
	Feedback      string  `json:"feedback"`
}

type AIDetectionDTO struct {
	Flagged    bool   `json:"flagged"`
	Confidence string `json:"confidence,omitempty"`
	Reasoning  string `json:"reasoning,omitempty"`
}

type GradeJournalResponse struct {
	Success      bool                `json:"success"`
	OverallScore float64             `json:"overall_score"`
	LetterGrade  string              `json:"letter_grade"`
	Feedback     string              `json:"feedback"`
	RubricScores []CriterionScoreDTO `json:"rubric_scores"`
	Message      string              `json:"message"`
	WordCount    int                 `json:"wordCount"`
	AIDetection  *AIDetectionDTO     `json:"ai_detection,omitempty"`
}

// StoredGradeDTO is the shape of a previously-persisted grade, returned for
// alreadyGraded short circuits and grade lookups.
type StoredGradeDTO struct {
	JournalID    string              `json:"journal_id"`
	StudentID    string              `json:"student_id"`
	AssignmentID string              `json:"assignment_id"`
	OverallScore float64             `json:"overall_score"`
	MaxScore     float64             `json:"max_score"`
	LetterGrade  string              `json:"letter_grade"`
	Feedback     string              `json:"feedback"`
	GradedAt     string              `json:"graded_at"`
	AIModel      string              `json:"ai_model"`
	Rubric       RubricDTO           `json:"rubric"`
	RubricScores []CriterionScoreDTO `json:"rubric_scores"`
	AIDetection  *AIDetectionDTO     `json:"ai_detection,omitempty"`
}

type AlreadyGradedResponse struct {
	Success       bool           `json:"success"`
	AlreadyGraded bool           `json:"alreadyGraded"`
	Grade         StoredGradeDTO `json:"grade"`
}

type BulkGradeItemResponse struct {
	JournalID string `json:"journal_id"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

type BulkGradeResponse struct {
	Total     int                     `json:"total"`
	Completed int                     `json:"completed"`
	Items     []BulkGradeItemResponse `json:"items"`
	Errors    []string                `json:"errors"`
}

func (r *RubricDTO) ToDomain() *domain.Rubric {
	if r == nil {
		return nil
	}
	criteria := make([]domain.RubricCriterion, 0, len(r.Criteria))
	for _, c := range r.Criteria {
		criteria = append(criteria, domain.RubricCriterion{
			Name:        c.Name,
			MaxPoints:   c.MaxPoints,
			Description: c.Description,
		})
	}
	return &domain.Rubric{Criteria: criteria}
}

func toCriterionScores(scores []domain.CriterionScore) []CriterionScoreDTO {
	out := make([]CriterionScoreDTO, 0, len(scores))
	for _, s := range scores {
		out = append(out, CriterionScoreDTO{
			CriterionName: s.CriterionName,
			Score:         s.Score,
			MaxPoints:     s.MaxPoints,
			Feedback:      s.Feedback,
		})
	}
	return out
}

func toAIDetection(d *domain.AIDetection) *AIDetectionDTO {
	if d == nil {
		return nil
	}
	return &AIDetectionDTO{Flagged: d.Flagged, Confidence: d.Confidence, Reasoning: d.Reasoning}
}

func ToGradeJournalResponse(outcome *services.GradeJournalOutcome) GradeJournalResponse {
	g := outcome.Grade
	return GradeJournalResponse{
		Success:      true,
		OverallScore: g.Score,
		LetterGrade:  g.LetterGrade,
		Feedback:     g.Feedback,
		RubricScores: toCriterionScores(g.CriterionScores),
		Message:      outcome.Message,
		WordCount:    outcome.WordCount,
		AIDetection:  toAIDetection(g.AIDetection),
	}
}

func ToStoredGradeDTO(g *domain.GradeResult) StoredGradeDTO {
	criteria := make([]RubricCriterionDTO, 0, len(g.Rubric.Criteria))
	for _, c := range g.Rubric.Criteria {
		criteria = append(criteria, RubricCriterionDTO{
			Name:        c.Name,
			MaxPoints:   c.MaxPoints,
			Description: c.Description,
		})
	}
	return StoredGradeDTO{
		JournalID:    g.JournalID,
		StudentID:    g.StudentID,
		AssignmentID: g.AssignmentID,
		OverallScore: g.Score,
		MaxScore:     g.MaxScore,
		LetterGrade:  g.LetterGrade,
		Feedback:     g.Feedback,
		GradedAt:     g.GradedAt.Format("2006-01-02T15:04:05Z07:00"),
		AIModel:      g.Model,
		Rubric:       RubricDTO{Criteria: criteria},
		RubricScores: toCriterionScores(g.CriterionScores),
		AIDetection:  toAIDetection(g.AIDetection),
	}
}
