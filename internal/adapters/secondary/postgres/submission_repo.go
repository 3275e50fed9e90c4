package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"journal-grading-service/internal/core/domain"
	ports "journal-grading-service/internal/core/ports/output"
)

type submissionRepo struct {
	pool *pgxpool.Pool
}

func NewSubmissionRepository(pool *pgxpool.Pool) ports.SubmissionRepository {
	return &submissionRepo{pool: pool}
}

func (r *submissionRepo) GetByID(ctx context.Context, id string) (*domain.Submission, error) {
	query := `
		SELECT id, student_id, assignment_id, content, COALESCE(word_count, 0), created_at
		FROM journal_entries
		WHERE id = $1
	`
	var s domain.Submission
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.StudentID, &s.AssignmentID, &s.Content, &s.WordCount, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("get journal entry by id: %w", err)
	}
	return &s, nil
}
