package domain

import (
	"errors"
	"fmt"
)

// Validation errors
var (
	ErrMissingSubmission = errors.New("either journal_text or journal_id is required")
	ErrEmptySubmission   = errors.New("submission text is empty")
	ErrInvalidRubric     = errors.New("rubric must contain at least one criterion")
)

// Not found errors
var (
	ErrSubmissionNotFound = errors.New("journal entry not found")
	ErrGradeNotFound      = errors.New("grade not found")
)

// GraderError reports an outright failure of the external grading service.
// The upstream status and detail are surfaced to the caller; retrying the
// whole request is the caller's responsibility.
type GraderError struct {
	StatusCode int
	Detail     string
}

func (e *GraderError) Error() string {
	return fmt.Sprintf("grading service returned status %d: %s", e.StatusCode, e.Detail)
}

// PersistError reports a failed grade write. Terminal for the request.
type PersistError struct {
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist grade: %v", e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}
