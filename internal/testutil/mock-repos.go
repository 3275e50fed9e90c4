package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"journal-grading-service/internal/core/domain"
	ports "journal-grading-service/internal/core/ports/output"
)

// MockSubmissionRepo is a mock of SubmissionRepository.
type MockSubmissionRepo struct {
	mock.Mock
}

func (m *MockSubmissionRepo) GetByID(ctx context.Context, id string) (*domain.Submission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Submission), args.Error(1)
}

// MockGradeRepo is a mock of GradeRepository.
type MockGradeRepo struct {
	mock.Mock
}

func (m *MockGradeRepo) Upsert(ctx context.Context, grade *domain.GradeResult) error {
	args := m.Called(ctx, grade)
	return args.Error(0)
}

func (m *MockGradeRepo) GetByJournalID(ctx context.Context, journalID string) (*domain.GradeResult, error) {
	args := m.Called(ctx, journalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GradeResult), args.Error(1)
}

// MockGraderClient is a mock of GraderClient.
type MockGraderClient struct {
	mock.Mock
}

func (m *MockGraderClient) Grade(ctx context.Context, req ports.GradeRequest) (*domain.GraderResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GraderResult), args.Error(1)
}
