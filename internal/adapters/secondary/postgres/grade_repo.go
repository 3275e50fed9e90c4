package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"journal-grading-service/internal/core/domain"
	ports "journal-grading-service/internal/core/ports/output"
)

type gradeRepo struct {
	pool *pgxpool.Pool
}

func NewGradeRepository(pool *pgxpool.Pool) ports.GradeRepository {
	return &gradeRepo{pool: pool}
}

// rubricDoc is the JSONB audit payload: the rubric the grade was computed
// against plus the scored breakdown.
type rubricDoc struct {
	Criteria []domain.RubricCriterion `json:"criteria"`
	Scores   []domain.CriterionScore  `json:"scores"`
}

// Upsert writes a grade keyed on journal_id, or on (student_id,
// assignment_id) for inline-text requests with no journal reference.
// Concurrent regrades resolve last-write-wins by graded_at: an update older
// than the stored row is dropped unless the stored score is still zero.
func (r *gradeRepo) Upsert(ctx context.Context, grade *domain.GradeResult) error {
	doc, err := json.Marshal(rubricDoc{Criteria: grade.Rubric.Criteria, Scores: grade.CriterionScores})
	if err != nil {
		return fmt.Errorf("marshal rubric: %w", err)
	}

	var aiFlagged bool
	var aiConfidence, aiNotes string
	if grade.AIDetection != nil {
		aiFlagged = grade.AIDetection.Flagged
		aiConfidence = grade.AIDetection.Confidence
		aiNotes = grade.AIDetection.Reasoning
	}

	conflictTarget := "(journal_id)"
	if grade.JournalID == "" {
		conflictTarget = "(student_id, assignment_id)"
	}

	query := fmt.Sprintf(`
		INSERT INTO journal_grades
			(id, journal_id, student_id, assignment_id, overall_score, max_score,
			 letter_grade, ai_feedback, rubric, ai_model, graded_at,
			 ai_writing_detected, ai_detection_confidence, ai_detection_notes)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT %s DO UPDATE SET
			overall_score = EXCLUDED.overall_score,
			max_score = EXCLUDED.max_score,
			letter_grade = EXCLUDED.letter_grade,
			ai_feedback = EXCLUDED.ai_feedback,
			rubric = EXCLUDED.rubric,
			ai_model = EXCLUDED.ai_model,
			graded_at = EXCLUDED.graded_at,
			ai_writing_detected = EXCLUDED.ai_writing_detected,
			ai_detection_confidence = EXCLUDED.ai_detection_confidence,
			ai_detection_notes = EXCLUDED.ai_detection_notes
		WHERE journal_grades.overall_score = 0
			OR EXCLUDED.graded_at >= journal_grades.graded_at
	`, conflictTarget)

	_, err = r.pool.Exec(ctx, query,
		grade.ID, grade.JournalID, grade.StudentID, grade.AssignmentID,
		grade.Score, grade.MaxScore, grade.LetterGrade, grade.Feedback,
		doc, grade.Model, grade.GradedAt,
		aiFlagged, aiConfidence, aiNotes,
	)
	if err != nil {
		return fmt.Errorf("upsert journal grade: %w", err)
	}
	return nil
}

func (r *gradeRepo) GetByJournalID(ctx context.Context, journalID string) (*domain.GradeResult, error) {
	query := `
		SELECT id, COALESCE(journal_id, ''), student_id, assignment_id,
			   overall_score, max_score, letter_grade, ai_feedback, rubric,
			   ai_model, graded_at, ai_writing_detected,
			   COALESCE(ai_detection_confidence, ''), COALESCE(ai_detection_notes, '')
		FROM journal_grades
		WHERE journal_id = $1
	`
	var g domain.GradeResult
	var doc []byte
	var aiFlagged bool
	var aiConfidence, aiNotes string

	err := r.pool.QueryRow(ctx, query, journalID).Scan(
		&g.ID, &g.JournalID, &g.StudentID, &g.AssignmentID,
		&g.Score, &g.MaxScore, &g.LetterGrade, &g.Feedback, &doc,
		&g.Model, &g.GradedAt, &aiFlagged, &aiConfidence, &aiNotes,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrGradeNotFound
		}
		return nil, fmt.Errorf("get journal grade: %w", err)
	}

	var rubric rubricDoc
	if len(doc) > 0 {
		if err := json.Unmarshal(doc, &rubric); err != nil {
			return nil, fmt.Errorf("unmarshal rubric: %w", err)
		}
	}
	g.Rubric = domain.Rubric{Criteria: rubric.Criteria}
	g.CriterionScores = rubric.Scores

	if aiFlagged || aiConfidence != "" || aiNotes != "" {
		g.AIDetection = &domain.AIDetection{Flagged: aiFlagged, Confidence: aiConfidence, Reasoning: aiNotes}
	}
	return &g, nil
}
