package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"mockinterview/middlewares"
	"mockinterview/models"
)

// ProgressReader returns a user's latest progress report.
type ProgressReader interface {
	LatestReport(ctx context.Context, userID string) (models.ProgressReport, error)
}

// HandleProgress serves the latest batch-written report. A nil reader means reports are disabled.
func HandleProgress(progress ProgressReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		if progress == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "progress reports are not configured"})
			return
		}
		report, err := progress.LatestReport(c.Request.Context(), middlewares.UserID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"report": report})
	}
}
