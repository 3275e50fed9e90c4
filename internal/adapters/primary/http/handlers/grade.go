package handlers

import (
	"net/http"

	"journal-grading-service/internal/adapters/primary/http/dto"
	"journal-grading-service/internal/core/services"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) GradeJournal(c *gin.Context) {
	var req dto.GradeJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome, err := h.gradingSvc.GradeJournal(c.Request.Context(), services.GradeJournalInput{
		StudentID:    req.StudentID,
		AssignmentID: req.AssignmentID,
		JournalText:  req.JournalText,
		JournalID:    req.JournalID,
		Rubric:       req.Rubric.ToDomain(),
	})
	if err != nil {
		log.WithError(err).WithField("journal_id", req.JournalID).Error("grade journal failed")
		mapDomainError(c, err)
		return
	}

	if outcome.AlreadyGraded {
		c.JSON(http.StatusOK, dto.AlreadyGradedResponse{
			Success:       true,
			AlreadyGraded: true,
			Grade:         dto.ToStoredGradeDTO(outcome.Grade),
		})
		return
	}

	c.JSON(http.StatusOK, dto.ToGradeJournalResponse(outcome))
}

func (h *Handler) GradeJournalsBulk(c *gin.Context) {
	var req dto.BulkGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results := h.gradingSvc.GradeJournals(c.Request.Context(), req.JournalIDs, req.Rubric.ToDomain())

	resp := dto.BulkGradeResponse{
		Total:  len(results),
		Items:  make([]dto.BulkGradeItemResponse, 0, len(results)),
		Errors: []string{},
	}
	for _, r := range results {
		item := dto.BulkGradeItemResponse{JournalID: r.JournalID, Success: r.Err == nil}
		if r.Err != nil {
			item.Error = r.Err.Error()
			resp.Errors = append(resp.Errors, r.JournalID+": "+r.Err.Error())
		} else {
			resp.Completed++
		}
		resp.Items = append(resp.Items, item)
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) GetJournalGrade(c *gin.Context) {
	grade, err := h.gradingSvc.GetGrade(c.Request.Context(), c.Param("id"))
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "grade": dto.ToStoredGradeDTO(grade)})
}
