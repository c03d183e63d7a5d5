package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mockinterview/services"
)

const llmStatusTimeout = 10 * time.Second

func HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK", "time": services.GetCurrentTimestamp()})
}

func HandleOptions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"roles":  services.RoleOptions,
		"levels": services.LevelOptions,
	})
}

// HandleLLMStatus reports whether interviews are AI powered and pings the provider on request.
func HandleLLMStatus(interviews *services.InterviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !interviews.AIEnabled() {
			c.JSON(http.StatusOK, gin.H{"mode": "demo", "message": "No API key configured"})
			return
		}

		resp := gin.H{"mode": "ai", "provider": interviews.LLM().Name()}
		if c.Query("test") == "true" {
			ctx, cancel := context.WithTimeout(c.Request.Context(), llmStatusTimeout)
			defer cancel()
			if err := services.Ping(ctx, interviews.LLM()); err != nil {
				resp["working"] = false
				resp["error"] = err.Error()
			} else {
				resp["working"] = true
			}
		}
		c.JSON(http.StatusOK, resp)
	}
}
