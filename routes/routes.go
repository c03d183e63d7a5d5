package routes

import (
	"os"

	"github.com/gin-gonic/gin"

	"mockinterview/controllers"
	"mockinterview/middlewares"
	"mockinterview/services"
)

type Deps struct {
	Interviews *services.InterviewService
	Summaries  *services.DynamoDBService
	Recordings *services.RecordingService
	Progress   controllers.ProgressReader // nil when Postgres is not configured
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.LoggerWithWriter(os.Stdout), gin.Recovery(), middlewares.CORS())

	r.GET("/health", controllers.HandleHealth)

	api := r.Group("/api")
	api.GET("/interview/options", controllers.HandleOptions)
	api.GET("/llm/status", controllers.HandleLLMStatus(d.Interviews))

	authed := api.Group("", middlewares.RequireUser(), middlewares.Logger())

	interviews := controllers.NewInterviewController(d.Interviews)
	authed.POST("/interviews", interviews.HandleStart)
	authed.GET("/interviews/:id", interviews.HandleGet)
	authed.POST("/interviews/:id/messages", interviews.HandleSendMessage)
	authed.POST("/interviews/:id/end", interviews.HandleEnd)
	authed.DELETE("/interviews/:id", interviews.HandleReset)

	// speech recognition results arrive over a websocket
	authed.GET("/interviews/:id/transcribe", controllers.NewTranscriptionController(d.Interviews).Handle)

	if d.Recordings != nil {
		recordings := controllers.NewRecordingController(d.Interviews, d.Recordings)
		authed.POST("/interviews/:id/recording", recordings.HandleUpload)
		authed.GET("/interviews/:id/recording", recordings.HandleDownload)
		authed.DELETE("/interviews/:id/recording", recordings.HandleDelete)
	}

	if d.Summaries != nil {
		summaries := controllers.NewSummaryController(d.Summaries)
		authed.GET("/summaries", summaries.HandleList)
		authed.GET("/summaries/:id", summaries.HandleGet)
		authed.GET("/dashboard/stats", summaries.HandleStats)
	}

	authed.GET("/progress", controllers.HandleProgress(d.Progress))

	return r
}
