package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"journal-grading-service/internal/core/domain"
	ports "journal-grading-service/internal/core/ports/output"
	"journal-grading-service/internal/metrics"
)

const tooShortFeedback = "Submission too short to evaluate."

// GradeJournalInput is a single grading request. Either JournalText or
// JournalID must be set; when only JournalID is given the submission's
// content and owner are resolved from the submission store.
type GradeJournalInput struct {
	StudentID    string
	AssignmentID string
	JournalText  string
	JournalID    string
	Rubric       *domain.Rubric
}

// GradeJournalOutcome is the pipeline's terminal state for one request.
type GradeJournalOutcome struct {
	Grade         *domain.GradeResult
	WordCount     int
	AlreadyGraded bool
	Message       string
}

// GradingService runs the journal grading pipeline: resolve the submission,
// apply the word-count eligibility gate, invoke the external grader,
// normalize the rubric scores onto the assignment scale, and upsert the
// result. Requests are stateless and independent; the grade store's
// uniqueness constraint is the only cross-request coordination.
type GradingService struct {
	submissions ports.SubmissionRepository
	grades      ports.GradeRepository
	grader      ports.GraderClient
	scale       float64
	minWords    int
	now         func() time.Time
}

func NewGradingService(
	submissions ports.SubmissionRepository,
	grades ports.GradeRepository,
	grader ports.GraderClient,
	scale float64,
	minWords int,
) *GradingService {
	return &GradingService{
		submissions: submissions,
		grades:      grades,
		grader:      grader,
		scale:       scale,
		minWords:    minWords,
		now:         time.Now,
	}
}

func (s *GradingService) GradeJournal(ctx context.Context, in GradeJournalInput) (*GradeJournalOutcome, error) {
	text, studentID, assignmentID, err := s.resolve(ctx, in)
	if err != nil {
		metrics.GradingRequests.WithLabelValues("error").Inc()
		return nil, err
	}

	rubric := domain.DefaultRubric()
	if in.Rubric != nil {
		if len(in.Rubric.Criteria) == 0 {
			metrics.GradingRequests.WithLabelValues("error").Inc()
			return nil, domain.ErrInvalidRubric
		}
		rubric = *in.Rubric
	}

	words := wordCount(text)
	if words < s.minWords {
		outcome, err := s.gradeTooShort(ctx, in.JournalID, studentID, assignmentID, rubric, words)
		if err != nil {
			metrics.GradingRequests.WithLabelValues("error").Inc()
			return nil, err
		}
		metrics.GradingRequests.WithLabelValues("too_short").Inc()
		return outcome, nil
	}

	// A prior final grade short-circuits the pipeline; a zero or missing
	// score is provisional and gets regraded.
	if in.JournalID != "" {
		prior, err := s.grades.GetByJournalID(ctx, in.JournalID)
		if err == nil && prior.Final() {
			metrics.GradingRequests.WithLabelValues("cached").Inc()
			return &GradeJournalOutcome{
				Grade:         prior,
				WordCount:     words,
				AlreadyGraded: true,
				Message:       "journal already graded",
			}, nil
		}
		if err != nil && !errors.Is(err, domain.ErrGradeNotFound) {
			log.WithError(err).WithField("journal_id", in.JournalID).Warn("prior grade lookup failed, regrading")
		}
	}

	result, err := s.grader.Grade(ctx, ports.GradeRequest{
		Text:         text,
		AssignmentID: assignmentID,
		Rubric:       rubric,
	})
	if err != nil {
		metrics.GradingRequests.WithLabelValues("error").Inc()
		return nil, err
	}
	if result.Degraded {
		metrics.GraderFallbacks.Inc()
		log.WithFields(log.Fields{
			"journal_id": in.JournalID,
			"student_id": studentID,
		}).Warn("grader response unparseable, fallback scores used")
	}

	grade := s.buildGrade(in.JournalID, studentID, assignmentID, rubric, result)

	if err := s.grades.Upsert(ctx, grade); err != nil {
		metrics.GradingRequests.WithLabelValues("error").Inc()
		return nil, &domain.PersistError{Err: err}
	}

	metrics.GradingRequests.WithLabelValues("graded").Inc()
	return &GradeJournalOutcome{
		Grade:     grade,
		WordCount: words,
		Message:   "journal graded successfully",
	}, nil
}

// GetGrade fetches the stored grade for a journal.
func (s *GradingService) GetGrade(ctx context.Context, journalID string) (*domain.GradeResult, error) {
	if strings.TrimSpace(journalID) == "" {
		return nil, domain.ErrGradeNotFound
	}
	return s.grades.GetByJournalID(ctx, journalID)
}

// BulkOutcome is the per-journal result of a bulk grading run.
type BulkOutcome struct {
	JournalID string
	Outcome   *GradeJournalOutcome
	Err       error
}

// GradeJournals grades a list of journals sequentially with a shared rubric,
// collecting per-journal outcomes instead of aborting on the first failure.
func (s *GradingService) GradeJournals(ctx context.Context, journalIDs []string, rubric *domain.Rubric) []BulkOutcome {
	results := make([]BulkOutcome, 0, len(journalIDs))
	for _, id := range journalIDs {
		if ctx.Err() != nil {
			results = append(results, BulkOutcome{JournalID: id, Err: ctx.Err()})
			continue
		}
		outcome, err := s.GradeJournal(ctx, GradeJournalInput{JournalID: id, Rubric: rubric})
		results = append(results, BulkOutcome{JournalID: id, Outcome: outcome, Err: err})
	}
	return results
}

func (s *GradingService) resolve(ctx context.Context, in GradeJournalInput) (text, studentID, assignmentID string, err error) {
	if strings.TrimSpace(in.JournalText) == "" && in.JournalID == "" {
		return "", "", "", domain.ErrMissingSubmission
	}

	text = in.JournalText
	studentID = in.StudentID
	assignmentID = in.AssignmentID

	if strings.TrimSpace(text) == "" {
		sub, err := s.submissions.GetByID(ctx, in.JournalID)
		if err != nil {
			return "", "", "", err
		}
		text = sub.Content
		if studentID == "" {
			studentID = sub.StudentID
		}
		if assignmentID == "" {
			assignmentID = sub.AssignmentID
		}
	}

	if strings.TrimSpace(text) == "" {
		return "", "", "", domain.ErrEmptySubmission
	}
	return text, studentID, assignmentID, nil
}

// gradeTooShort persists the deterministic zero grade for a submission
// below the word threshold. The grader is never called on this path.
func (s *GradingService) gradeTooShort(ctx context.Context, journalID, studentID, assignmentID string, rubric domain.Rubric, words int) (*GradeJournalOutcome, error) {
	scores := make([]domain.CriterionScore, 0, len(rubric.Criteria))
	for _, c := range rubric.Criteria {
		scores = append(scores, domain.CriterionScore{
			CriterionName: c.Name,
			Score:         0,
			MaxPoints:     c.MaxPoints,
			Feedback:      tooShortFeedback,
		})
	}

	feedback := fmt.Sprintf(
		"This submission contains %d words, below the %d-word minimum required for grading. Please expand your entry and resubmit.",
		words, s.minWords,
	)

	grade := &domain.GradeResult{
		ID:              uuid.New().String(),
		JournalID:       journalID,
		StudentID:       studentID,
		AssignmentID:    assignmentID,
		Score:           0,
		MaxScore:        s.scale,
		LetterGrade:     letterGradeFor(0),
		Feedback:        feedback,
		Rubric:          rubric,
		CriterionScores: scores,
		Model:           "none",
		GradedAt:        s.now().UTC(),
	}

	if err := s.grades.Upsert(ctx, grade); err != nil {
		return nil, &domain.PersistError{Err: err}
	}

	return &GradeJournalOutcome{
		Grade:     grade,
		WordCount: words,
		Message:   fmt.Sprintf("submission below %d-word minimum, scored 0", s.minWords),
	}, nil
}

// buildGrade normalizes a raw grader result onto the assignment scale.
func (s *GradingService) buildGrade(journalID, studentID, assignmentID string, rubric domain.Rubric, result *domain.GraderResult) *domain.GradeResult {
	scores := reconcileScores(rubric, result.CriterionScores)
	rawTotal, rawMax := rawTotals(scores)

	normalized := normalizeScore(rawTotal, rawMax, s.scale)
	percentage := normalized / s.scale * 100

	letter := result.LetterGrade
	if letter == "" {
		letter = letterGradeFor(percentage)
	}

	return &domain.GradeResult{
		ID:              uuid.New().String(),
		JournalID:       journalID,
		StudentID:       studentID,
		AssignmentID:    assignmentID,
		Score:           normalized,
		MaxScore:        s.scale,
		LetterGrade:     letter,
		Feedback:        result.OverallFeedback,
		Rubric:          rubric,
		CriterionScores: scores,
		AIDetection:     result.AIDetection,
		Model:           result.Model,
		GradedAt:        s.now().UTC(),
	}
}
