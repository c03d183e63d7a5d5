package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"mockinterview/models"
)

// fakeLLM answers prompts with respond, recording every prompt it saw.
type fakeLLM struct {
	mu      sync.Mutex
	prompts []string
	respond func(prompt string) (string, error)
}

func (f *fakeLLM) Name() string { return "fake" }

func (f *fakeLLM) Generate(ctx context.Context, prompt string, cfg GenerationConfig) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return f.respond(prompt)
}

func (f *fakeLLM) promptCount(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.prompts {
		if strings.HasPrefix(p, prefix) {
			n++
		}
	}
	return n
}

type recordedTurn struct {
	sessionID string
	seq       int
	msg       models.Message
}

type fakeTurnLog struct {
	mu    sync.Mutex
	turns []recordedTurn
}

func (f *fakeTurnLog) AppendTurn(_ context.Context, sessionID string, seq int, msg models.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.turns = append(f.turns, recordedTurn{sessionID, seq, msg})
	return nil
}

type fakeSummaryStore struct {
	mu        sync.Mutex
	summaries []models.InterviewSummary
	err       error
}

func (f *fakeSummaryStore) SaveSummary(_ context.Context, s models.InterviewSummary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.summaries = append(f.summaries, s)
	return nil
}

type fakeRecordings struct {
	deleted []string
}

func (f *fakeRecordings) Delete(sessionID string) error {
	f.deleted = append(f.deleted, sessionID)
	return nil
}

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}
