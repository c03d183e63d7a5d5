// cmd/batch/main.go
package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mockinterview/config"
	"mockinterview/services"
)

func main() {
	cfg := config.Load()
	if cfg.PostgresURI == "" {
		log.Fatal("POSTGRES_URI is required for the progress report batch")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dynamoClient, err := services.GetDynamoDBClient(ctx, cfg.AWSRegion, cfg.DynamoDBEndpoint)
	if err != nil {
		log.Fatalf("Failed to create DynamoDB client: %v", err)
	}
	summaries := services.NewDynamoDBService(dynamoClient, cfg.SummariesTable, cfg.TurnsTable)

	llm, err := services.NewLLMClient(cfg)
	if err != nil && !errors.Is(err, services.ErrLLMNotConfigured) {
		log.Fatalf("Failed to create LLM client: %v", err)
	}

	// Postgres may still be starting next to us.
	var db *sql.DB
	for i := 0; i < 3; i++ {
		db, err = services.OpenPostgres(ctx, cfg.PostgresURI)
		if err == nil {
			break
		}
		log.Printf("Attempt %d: Failed to connect to postgres: %v", i+1, err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		log.Fatalf("Failed to connect to postgres after retries: %v", err)
	}
	defer db.Close()

	if err := services.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("Failed to prepare schema: %v", err)
	}

	processor := services.NewBatchProcessor(db, summaries, llm)
	log.Println("Starting progress report batch service...")

	if err := processor.ProcessProgressReports(ctx, cfg.BatchWindow); err != nil {
		log.Printf("Error in initial processing: %v", err)
	}

	ticker := time.NewTicker(cfg.BatchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Batch service stopped")
			return
		case <-ticker.C:
			log.Println("Starting scheduled batch processing...")
			if err := processor.ProcessProgressReports(ctx, cfg.BatchWindow); err != nil {
				log.Printf("Error processing progress reports: %v", err)
			}
			log.Println("Batch processing completed")
		}
	}
}
