package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mockinterview/middlewares"
	"mockinterview/services"
)

type InterviewController struct {
	interviews *services.InterviewService
}

func NewInterviewController(interviews *services.InterviewService) *InterviewController {
	return &InterviewController{interviews: interviews}
}

type startInterviewRequest struct {
	Role         string `json:"role" binding:"required"`
	Level        string `json:"level" binding:"required"`
	VoiceEnabled *bool  `json:"voice_enabled"`
}

type sendMessageRequest struct {
	Message string `json:"message" binding:"required"`
}

func (ic *InterviewController) HandleStart(c *gin.Context) {
	var req startInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role and level are required"})
		return
	}
	voice := true
	if req.VoiceEnabled != nil {
		voice = *req.VoiceEnabled
	}

	result, err := ic.interviews.StartInterview(c.Request.Context(), middlewares.UserID(c), req.Role, req.Level, voice)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (ic *InterviewController) HandleGet(c *gin.Context) {
	session, err := ic.interviews.GetSession(c.Request.Context(), middlewares.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

func (ic *InterviewController) HandleSendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	result, err := ic.interviews.SendMessage(c.Request.Context(), middlewares.UserID(c), c.Param("id"), req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (ic *InterviewController) HandleEnd(c *gin.Context) {
	summary, err := ic.interviews.EndInterview(c.Request.Context(), middlewares.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

func (ic *InterviewController) HandleReset(c *gin.Context) {
	if err := ic.interviews.ResetInterview(c.Request.Context(), middlewares.UserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
