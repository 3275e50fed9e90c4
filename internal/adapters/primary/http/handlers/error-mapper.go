package handlers

import (
	"errors"
	"net/http"

	"journal-grading-service/internal/core/domain"

	"github.com/gin-gonic/gin"
)

func mapDomainError(c *gin.Context, err error) {
	var graderErr *domain.GraderError
	var persistErr *domain.PersistError

	switch {
	// Not found errors
	case errors.Is(err, domain.ErrSubmissionNotFound),
		errors.Is(err, domain.ErrGradeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	// Bad request / validation errors
	case errors.Is(err, domain.ErrMissingSubmission),
		errors.Is(err, domain.ErrEmptySubmission),
		errors.Is(err, domain.ErrInvalidRubric):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	// External grading service failed outright
	case errors.As(err, &graderErr):
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "grading service failure",
			"details": graderErr.Error(),
		})

	// Grade store write failed; terminal for the request
	case errors.As(err, &persistErr):
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to save grade",
			"details": persistErr.Error(),
		})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
