package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"journal-grading-service/internal/core/domain"
	"journal-grading-service/internal/core/services"
	"journal-grading-service/internal/testutil"
)

func setupRouter() (*testutil.MockSubmissionRepo, *testutil.MockGradeRepo, *testutil.MockGraderClient, *gin.Engine) {
	gin.SetMode(gin.TestMode)

	subs := new(testutil.MockSubmissionRepo)
	grades := new(testutil.MockGradeRepo)
	grader := new(testutil.MockGraderClient)

	svc := services.NewGradingService(subs, grades, grader, 20, 50)
	h := New(svc)

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})
	api := r.Group("/api/v1/grading")
	h.RegisterRoutes(api)

	return subs, grades, grader, r
}

func postJSON(r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req, _ := http.NewRequest("POST", path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func longText(words int) string {
	return strings.TrimSpace(strings.Repeat("listening ", words))
}

func graderResult() *domain.GraderResult {
	return &domain.GraderResult{
		CriterionScores: []domain.CriterionScore{
			{CriterionName: "Musical Analysis", Score: 5, MaxPoints: 6, Feedback: "strong"},
			{CriterionName: "Historical Context", Score: 5, MaxPoints: 5, Feedback: "excellent"},
			{CriterionName: "Terminology Usage", Score: 3, MaxPoints: 3, Feedback: "accurate"},
			{CriterionName: "Writing Quality", Score: 2, MaxPoints: 3, Feedback: "clear"},
		},
		OverallFeedback: "Good work",
		LetterGrade:     "B+",
		Model:           "gpt-4o-mini",
	}
}

func TestGradeJournal_Success(t *testing.T) {
	subs, grades, grader, r := setupRouter()

	subs.On("GetByID", mock.Anything, "j1").Return(&domain.Submission{
		ID: "j1", StudentID: "s1", AssignmentID: "a1", Content: longText(300),
	}, nil)
	grades.On("GetByJournalID", mock.Anything, "j1").Return(nil, domain.ErrGradeNotFound)
	grades.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.GradeResult")).Return(nil)
	grader.On("Grade", mock.Anything, mock.AnythingOfType("ports.GradeRequest")).Return(graderResult(), nil)

	w := postJSON(r, "/api/v1/grading/journals", gin.H{"journal_id": "j1"})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.InDelta(t, 17.65, resp["overall_score"].(float64), 0.001)
	assert.Equal(t, "B+", resp["letter_grade"])
	assert.Equal(t, "Good work", resp["feedback"])
	assert.Equal(t, float64(300), resp["wordCount"])
	assert.Len(t, resp["rubric_scores"], 4)
}

func TestGradeJournal_AlreadyGraded(t *testing.T) {
	subs, grades, grader, r := setupRouter()

	subs.On("GetByID", mock.Anything, "j1").Return(&domain.Submission{
		ID: "j1", StudentID: "s1", AssignmentID: "a1", Content: longText(300),
	}, nil)
	grades.On("GetByJournalID", mock.Anything, "j1").Return(&domain.GradeResult{
		ID: "g1", JournalID: "j1", StudentID: "s1", AssignmentID: "a1",
		Score: 17.65, MaxScore: 20, LetterGrade: "B+", Feedback: "Good work",
		Model: "gpt-4o-mini", GradedAt: time.Now(),
	}, nil)

	w := postJSON(r, "/api/v1/grading/journals", gin.H{"journal_id": "j1"})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["alreadyGraded"])

	grade := resp["grade"].(map[string]any)
	assert.Equal(t, "j1", grade["journal_id"])
	assert.InDelta(t, 17.65, grade["overall_score"].(float64), 0.001)

	grader.AssertNotCalled(t, "Grade", mock.Anything, mock.Anything)
}

func TestGradeJournal_ShortSubmission(t *testing.T) {
	_, grades, grader, r := setupRouter()

	grades.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.GradeResult")).Return(nil)

	w := postJSON(r, "/api/v1/grading/journals", gin.H{
		"journal_id":   "j-short",
		"journal_text": "way too short",
		"student_id":   "s1",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(0), resp["overall_score"])
	assert.Equal(t, "F", resp["letter_grade"])
	assert.Equal(t, float64(3), resp["wordCount"])

	grader.AssertNotCalled(t, "Grade", mock.Anything, mock.Anything)
}

func TestGradeJournal_MissingFields(t *testing.T) {
	_, _, _, r := setupRouter()

	w := postJSON(r, "/api/v1/grading/journals", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "journal_text or journal_id")
}

func TestGradeJournal_NotFound(t *testing.T) {
	subs, _, _, r := setupRouter()

	subs.On("GetByID", mock.Anything, "gone").Return(nil, domain.ErrSubmissionNotFound)

	w := postJSON(r, "/api/v1/grading/journals", gin.H{"journal_id": "gone"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGradeJournal_MethodNotAllowed(t *testing.T) {
	_, _, _, r := setupRouter()

	req, _ := http.NewRequest("GET", "/api/v1/grading/journals", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestGradeJournal_GraderFailure(t *testing.T) {
	_, grades, grader, r := setupRouter()

	grades.On("GetByJournalID", mock.Anything, "j1").Return(nil, domain.ErrGradeNotFound)
	grader.On("Grade", mock.Anything, mock.AnythingOfType("ports.GradeRequest")).
		Return(nil, &domain.GraderError{StatusCode: 503, Detail: "overloaded"})

	w := postJSON(r, "/api/v1/grading/journals", gin.H{
		"journal_id":   "j1",
		"journal_text": longText(60),
	})
	assert.Equal(t, http.StatusBadGateway, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "grading service failure", resp["error"])
	assert.Contains(t, resp["details"], "503")
}

func TestGradeJournal_PersistFailure(t *testing.T) {
	_, grades, grader, r := setupRouter()

	grades.On("GetByJournalID", mock.Anything, "j1").Return(nil, domain.ErrGradeNotFound)
	grades.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.GradeResult")).
		Return(assertableErr{})
	grader.On("Grade", mock.Anything, mock.AnythingOfType("ports.GradeRequest")).Return(graderResult(), nil)

	w := postJSON(r, "/api/v1/grading/journals", gin.H{
		"journal_id":   "j1",
		"journal_text": longText(60),
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "failed to save grade", resp["error"])
}

type assertableErr struct{}

func (assertableErr) Error() string { return "constraint violation" }

func TestGradeJournalsBulk(t *testing.T) {
	subs, grades, grader, r := setupRouter()

	subs.On("GetByID", mock.Anything, "ok").Return(&domain.Submission{
		ID: "ok", StudentID: "s1", AssignmentID: "a1", Content: longText(100),
	}, nil)
	subs.On("GetByID", mock.Anything, "gone").Return(nil, domain.ErrSubmissionNotFound)

	grades.On("GetByJournalID", mock.Anything, "ok").Return(nil, domain.ErrGradeNotFound)
	grades.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.GradeResult")).Return(nil)
	grader.On("Grade", mock.Anything, mock.AnythingOfType("ports.GradeRequest")).Return(graderResult(), nil)

	w := postJSON(r, "/api/v1/grading/journals/bulk", gin.H{"journal_ids": []string{"ok", "gone"}})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(2), resp["total"])
	assert.Equal(t, float64(1), resp["completed"])
	assert.Len(t, resp["errors"], 1)
}

func TestGradeJournalsBulk_EmptyList(t *testing.T) {
	_, _, _, r := setupRouter()

	w := postJSON(r, "/api/v1/grading/journals/bulk", gin.H{"journal_ids": []string{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetJournalGrade(t *testing.T) {
	_, grades, _, r := setupRouter()

	grades.On("GetByJournalID", mock.Anything, "j1").Return(&domain.GradeResult{
		ID: "g1", JournalID: "j1", Score: 14.12, LetterGrade: "B-",
		GradedAt: time.Now(),
	}, nil)

	req, _ := http.NewRequest("GET", "/api/v1/grading/journals/j1/grade", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	grade := resp["grade"].(map[string]any)
	assert.InDelta(t, 14.12, grade["overall_score"].(float64), 0.001)
}

func TestGetJournalGrade_NotFound(t *testing.T) {
	_, grades, _, r := setupRouter()

	grades.On("GetByJournalID", mock.Anything, "none").Return(nil, domain.ErrGradeNotFound)

	req, _ := http.NewRequest("GET", "/api/v1/grading/journals/none/grade", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
