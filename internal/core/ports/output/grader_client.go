package ports

import (
	"context"

	"journal-grading-service/internal/core/domain"
)

// GradeRequest is the evaluation request sent to the external grading model.
type GradeRequest struct {
	Text             string
	AssignmentID     string
	Rubric           domain.Rubric
	AssignmentPrompt string
}

// GraderClient delegates semantic evaluation of a submission to an external
// language-model service. Implementations must return a *domain.GraderError
// when the upstream responds with a non-success status, and must recover a
// successfully-delivered but unparseable response into a deterministic
// degraded result rather than failing the request.
type GraderClient interface {
	Grade(ctx context.Context, req GradeRequest) (*domain.GraderResult, error)
}
