package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"mockinterview/middlewares"
	"mockinterview/models"
)

type summaryReader interface {
	ListSummaries(ctx context.Context, userID string) ([]models.InterviewSummary, error)
	GetSummary(ctx context.Context, userID, sessionID string) (models.InterviewSummary, error)
	DashboardStats(ctx context.Context, userID string) (models.DashboardStats, error)
}

type SummaryController struct {
	summaries summaryReader
}

func NewSummaryController(summaries summaryReader) *SummaryController {
	return &SummaryController{summaries: summaries}
}

func (sc *SummaryController) HandleList(c *gin.Context) {
	summaries, err := sc.summaries.ListSummaries(c.Request.Context(), middlewares.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if summaries == nil {
		summaries = []models.InterviewSummary{}
	}
	c.JSON(http.StatusOK, gin.H{"summaries": summaries})
}

func (sc *SummaryController) HandleGet(c *gin.Context) {
	summary, err := sc.summaries.GetSummary(c.Request.Context(), middlewares.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

func (sc *SummaryController) HandleStats(c *gin.Context) {
	stats, err := sc.summaries.DashboardStats(c.Request.Context(), middlewares.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
