package controllers

import (
	"mime"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mockinterview/middlewares"
	"mockinterview/services"
)

type RecordingController struct {
	interviews *services.InterviewService
	recordings *services.RecordingService
}

func NewRecordingController(interviews *services.InterviewService, recordings *services.RecordingService) *RecordingController {
	return &RecordingController{interviews: interviews, recordings: recordings}
}

// owns checks the session belongs to the caller before touching its recording.
func (rc *RecordingController) owns(c *gin.Context) bool {
	if _, err := rc.interviews.GetSession(c.Request.Context(), middlewares.UserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return false
	}
	return true
}

// HandleUpload stores the raw request body as the session recording.
func (rc *RecordingController) HandleUpload(c *gin.Context) {
	if !rc.owns(c) {
		return
	}
	mediaType, _, err := mime.ParseMediaType(c.GetHeader("Content-Type"))
	if err != nil {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "Content-Type must be video/webm or audio/webm"})
		return
	}

	rec, err := rc.recordings.Save(c.Param("id"), mediaType, c.Request.Body)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"recording": rec})
}

func (rc *RecordingController) HandleDownload(c *gin.Context) {
	if !rc.owns(c) {
		return
	}
	rec, f, err := rc.recordings.Open(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	defer f.Close()

	c.DataFromReader(http.StatusOK, rec.Size, rec.ContentType, f, map[string]string{
		"Content-Disposition": "inline; filename=\"interview-" + rec.SessionID + ".webm\"",
		"X-Recording-Size":    strconv.FormatInt(rec.Size, 10),
	})
}

func (rc *RecordingController) HandleDelete(c *gin.Context) {
	if !rc.owns(c) {
		return
	}
	if err := rc.recordings.Delete(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
