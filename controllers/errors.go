package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"mockinterview/services"
)

// respondError maps service errors to HTTP statuses.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrSessionNotFound),
		errors.Is(err, services.ErrSummaryNotFound),
		errors.Is(err, services.ErrRecordingNotFound),
		errors.Is(err, services.ErrProgressReportNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrUnknownRole),
		errors.Is(err, services.ErrUnknownLevel),
		errors.Is(err, services.ErrEmptyMessage):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrSessionInactive):
		status = http.StatusConflict
	case errors.Is(err, services.ErrRecordingTooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, services.ErrUnsupportedMediaType):
		status = http.StatusUnsupportedMediaType
	}

	if status == http.StatusInternalServerError {
		log.Printf("Internal error on %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
