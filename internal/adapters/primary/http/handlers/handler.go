package handlers

import (
	"journal-grading-service/internal/core/services"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	gradingSvc *services.GradingService
}

func New(gradingSvc *services.GradingService) *Handler {
	return &Handler{gradingSvc: gradingSvc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/journals", h.GradeJournal)
	r.POST("/journals/bulk", h.GradeJournalsBulk)
	r.GET("/journals/:id/grade", h.GetJournalGrade)
}
