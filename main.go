package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"mockinterview/config"
	"mockinterview/routes"
	"mockinterview/services"
)

func main() {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	llm, err := services.NewLLMClient(cfg)
	switch {
	case errors.Is(err, services.ErrLLMNotConfigured):
		log.Println("No LLM API key configured, running in demo mode with predefined questions")
	case err != nil:
		log.Fatalf("Failed to create LLM client: %v", err)
	default:
		services.WaitReady(llm, cfg.LLMReadyTimeout)
	}

	dynamoClient, err := services.GetDynamoDBClient(ctx, cfg.AWSRegion, cfg.DynamoDBEndpoint)
	if err != nil {
		log.Fatalf("Failed to create DynamoDB client: %v", err)
	}
	summaries := services.NewDynamoDBService(dynamoClient, cfg.SummariesTable, cfg.TurnsTable)
	if err := summaries.EnsureTables(ctx); err != nil {
		log.Fatalf("Failed to prepare DynamoDB tables: %v", err)
	}

	recordings, err := services.NewRecordingService(cfg.RecordingsDir, cfg.MaxRecordingBytes)
	if err != nil {
		log.Fatalf("Failed to prepare recordings: %v", err)
	}

	deps := services.InterviewDeps{
		Store:      services.NewMemorySessionStore(),
		LLM:        llm,
		Turns:      summaries,
		Publisher:  services.DirectSummaryPublisher{Store: summaries},
		Recordings: recordings,
	}

	if cfg.RedisURL != "" {
		rdb, err := services.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer rdb.Close()
		deps.Store = services.NewRedisSessionStore(rdb, cfg.SessionTTL)

		taskClient, err := services.NewAsynqClient(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to create task client: %v", err)
		}
		defer taskClient.Close()
		deps.Publisher = services.QueuedSummaryPublisher{Client: taskClient}

		taskServer, err := services.NewAsynqServer(cfg.RedisURL, 4)
		if err != nil {
			log.Fatalf("Failed to create task server: %v", err)
		}
		services.RegisterSaveSummaryTask(taskServer, summaries)
		go func() {
			if err := taskServer.Run(ctx); err != nil {
				log.Printf("Task server stopped: %v", err)
			}
		}()
		log.Println("Using Redis sessions and queued summary persistence")
	}

	routerDeps := routes.Deps{
		Interviews: services.NewInterviewService(deps),
		Summaries:  summaries,
		Recordings: recordings,
	}
	if cfg.PostgresURI != "" {
		var db *sql.DB
		db, err = services.OpenPostgres(ctx, cfg.PostgresURI)
		if err != nil {
			log.Fatalf("Failed to connect to Postgres: %v", err)
		}
		defer db.Close()
		routerDeps.Progress = services.NewProgressService(db)
	}
	router := routes.SetupRouter(routerDeps)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		log.Println("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Printf("Server starting on port %s", cfg.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed to start: %v", err)
	}
}
