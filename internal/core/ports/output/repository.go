package ports

import (
	"context"

	"journal-grading-service/internal/core/domain"
)

// SubmissionRepository reads journal entries from the submission store.
// Submissions are created upstream of this service and never written here.
type SubmissionRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Submission, error)
}

// GradeRepository persists grading results. Upsert is keyed on the journal id
// when one is present, falling back to (student_id, assignment_id) for
// inline-text requests, so repeated gradings converge on a single row.
type GradeRepository interface {
	Upsert(ctx context.Context, grade *domain.GradeResult) error
	GetByJournalID(ctx context.Context, journalID string) (*domain.GradeResult, error)
}
