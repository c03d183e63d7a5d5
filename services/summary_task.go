package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"mockinterview/models"
)

const (
	SaveSummaryTaskType = "interview:save_summary"
	summaryQueue        = "summaries"
)

// SummaryStore is where finished interview summaries end up.
type SummaryStore interface {
	SaveSummary(ctx context.Context, summary models.InterviewSummary) error
}

// SummaryPublisher hands a finished summary off for persistence.
type SummaryPublisher interface {
	PublishSummary(ctx context.Context, summary models.InterviewSummary) error
}

// DirectSummaryPublisher writes synchronously.
type DirectSummaryPublisher struct {
	Store SummaryStore
}

func (p DirectSummaryPublisher) PublishSummary(ctx context.Context, summary models.InterviewSummary) error {
	return p.Store.SaveSummary(ctx, summary)
}

// QueuedSummaryPublisher enqueues the summary for a worker registered with RegisterSaveSummaryTask.
type QueuedSummaryPublisher struct {
	Client TaskClient
}

func (p QueuedSummaryPublisher) PublishSummary(ctx context.Context, summary models.InterviewSummary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode summary task: %w", err)
	}
	_, err = p.Client.Enqueue(ctx, Task{Type: SaveSummaryTaskType, Payload: payload},
		EnqueueOption{Queue: summaryQueue, MaxRetry: 10, Timeout: 30 * time.Second})
	if err != nil {
		return fmt.Errorf("enqueue summary %s: %w", summary.SessionID, err)
	}
	return nil
}

// RegisterSaveSummaryTask binds the persistence worker to srv.
func RegisterSaveSummaryTask(srv TaskServer, store SummaryStore) {
	srv.Register(SaveSummaryTaskType, func(ctx context.Context, t Task) error {
		var summary models.InterviewSummary
		if err := json.Unmarshal(t.Payload, &summary); err != nil {
			return fmt.Errorf("decode summary task: %w", err)
		}
		return store.SaveSummary(ctx, summary)
	})
}
