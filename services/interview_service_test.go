package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"mockinterview/models"
)

const (
	turnPrefix     = "You are a friendly"
	questionPrefix = "You are an expert healthcare recruiter evaluating"
	overallPrefix  = "You are an expert healthcare recruiter providing"
)

type harness struct {
	svc        *InterviewService
	llm        *fakeLLM
	turns      *fakeTurnLog
	summaries  *fakeSummaryStore
	recordings *fakeRecordings
}

func newHarness(t *testing.T, llm *fakeLLM) *harness {
	t.Helper()
	h := &harness{
		llm:        llm,
		turns:      &fakeTurnLog{},
		summaries:  &fakeSummaryStore{},
		recordings: &fakeRecordings{},
	}
	clock := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	deps := InterviewDeps{
		Turns:      h.turns,
		Publisher:  DirectSummaryPublisher{Store: h.summaries},
		Recordings: h.recordings,
		Now: func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		},
		NewID:  sequentialIDs(),
		Rating: func() int { return 4 },
	}
	if llm != nil {
		deps.LLM = llm
	}
	h.svc = NewInterviewService(deps)
	return h
}

func aiResponder(prompt string) (string, error) {
	switch {
	case strings.HasPrefix(prompt, turnPrefix):
		return "  Tell me more about that.  ", nil
	case strings.HasPrefix(prompt, questionPrefix):
		return `{"rating":5,"feedback":"Specific and clear","category":"Experience"}`, nil
	case strings.HasPrefix(prompt, overallPrefix):
		return "Strong interview overall.", nil
	}
	return "", errors.New("unexpected prompt")
}

func TestStartInterview(t *testing.T) {
	h := newHarness(t, nil)
	res, err := h.svc.StartInterview(context.Background(), "u1", "nurse", "entry", true)
	if err != nil {
		t.Fatalf("StartInterview: %v", err)
	}
	s := res.Session
	if s.UserID != "u1" || !s.IsActive || s.EndTime != nil || len(s.Messages) != 1 {
		t.Fatalf("unexpected session %+v", s)
	}
	if s.Messages[0].Role != models.RoleAssistant || s.Messages[0].Content != InitialGreeting("nurse", "entry") {
		t.Errorf("first turn should be the greeting, got %+v", s.Messages[0])
	}
	if res.Speech == nil || res.Speech.Lang != "en-US" || res.Speech.Rate != 0.9 {
		t.Errorf("speech = %+v", res.Speech)
	}
	if len(h.turns.turns) != 1 || h.turns.turns[0].seq != 0 {
		t.Errorf("greeting not logged: %+v", h.turns.turns)
	}

	stored, err := h.svc.GetSession(context.Background(), "u1", s.ID)
	if err != nil || len(stored.Messages) != 1 {
		t.Errorf("GetSession = %+v, %v", stored, err)
	}
}

func TestStartInterviewValidation(t *testing.T) {
	h := newHarness(t, nil)
	if _, err := h.svc.StartInterview(context.Background(), "u1", "pilot", "entry", false); !errors.Is(err, ErrUnknownRole) {
		t.Errorf("role err = %v", err)
	}
	if _, err := h.svc.StartInterview(context.Background(), "u1", "nurse", "guru", false); !errors.Is(err, ErrUnknownLevel) {
		t.Errorf("level err = %v", err)
	}
}

func TestSendMessageDemoWalksFallbackQuestions(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	start, _ := h.svc.StartInterview(ctx, "u1", "doctor", "mid", false)

	questions := fallbackQuestions("doctor")
	for i, want := range questions {
		res, err := h.svc.SendMessage(ctx, "u1", start.Session.ID, "answer")
		if err != nil {
			t.Fatalf("SendMessage %d: %v", i, err)
		}
		if res.Message.Content != want {
			t.Errorf("reply %d = %q, want %q", i, res.Message.Content, want)
		}
		if !res.Fallback || res.Speech != nil {
			t.Errorf("reply %d: fallback=%v speech=%v", i, res.Fallback, res.Speech)
		}
	}

	res, _ := h.svc.SendMessage(ctx, "u1", start.Session.ID, "one more")
	if res.Message.Content != questions[len(questions)-1] {
		t.Errorf("past the end should repeat the last question, got %q", res.Message.Content)
	}
	if got := len(res.Session.Messages); got != 1+2*(len(questions)+1) {
		t.Errorf("message count = %d", got)
	}
}

func TestSendMessageAI(t *testing.T) {
	llm := &fakeLLM{respond: aiResponder}
	h := newHarness(t, llm)
	ctx := context.Background()
	start, _ := h.svc.StartInterview(ctx, "u1", "nurse", "senior", true)

	res, err := h.svc.SendMessage(ctx, "u1", start.Session.ID, "  I care for people.  ")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if res.Fallback || res.Message.Content != "Tell me more about that." {
		t.Errorf("reply = %+v", res)
	}
	if res.Session.Messages[1].Content != "I care for people." {
		t.Errorf("answer not trimmed: %q", res.Session.Messages[1].Content)
	}
	if !strings.Contains(llm.prompts[0], "Candidate: I care for people.") {
		t.Error("prompt should include the latest answer")
	}

	var seqs []int
	for _, turn := range h.turns.turns {
		seqs = append(seqs, turn.seq)
	}
	if len(seqs) != 3 || seqs[0] != 0 || seqs[1] != 1 || seqs[2] != 2 {
		t.Errorf("turn sequence = %v", seqs)
	}
}

func TestSendMessageLLMFailureFallsBack(t *testing.T) {
	llm := &fakeLLM{respond: func(string) (string, error) { return "", ErrRateLimited }}
	h := newHarness(t, llm)
	ctx := context.Background()
	start, _ := h.svc.StartInterview(ctx, "u1", "pharmacist", "entry", false)

	res, err := h.svc.SendMessage(ctx, "u1", start.Session.ID, "answer")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if !res.Fallback || res.Message.Content != FallbackResponse(1, "pharmacist") {
		t.Errorf("reply = %+v", res)
	}
}

func TestSendMessageCancelledApologises(t *testing.T) {
	llm := &fakeLLM{respond: aiResponder}
	h := newHarness(t, llm)
	start, _ := h.svc.StartInterview(context.Background(), "u1", "nurse", "entry", false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := h.svc.SendMessage(ctx, "u1", start.Session.ID, "answer")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if res.Message.Content != apologyResponse {
		t.Errorf("reply = %q", res.Message.Content)
	}
}

func TestSendMessageErrors(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	start, _ := h.svc.StartInterview(ctx, "u1", "nurse", "entry", false)

	if _, err := h.svc.SendMessage(ctx, "u1", start.Session.ID, "   "); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("blank: %v", err)
	}
	if _, err := h.svc.SendMessage(ctx, "u1", "missing", "hi"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("missing: %v", err)
	}
	if _, err := h.svc.SendMessage(ctx, "intruder", start.Session.ID, "hi"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("foreign user: %v", err)
	}
	if _, err := h.svc.EndInterview(ctx, "u1", start.Session.ID); err != nil {
		t.Fatalf("EndInterview: %v", err)
	}
	if _, err := h.svc.SendMessage(ctx, "u1", start.Session.ID, "hi"); !errors.Is(err, ErrSessionInactive) {
		t.Errorf("ended: %v", err)
	}
}

func TestEndInterviewAI(t *testing.T) {
	llm := &fakeLLM{respond: aiResponder}
	h := newHarness(t, llm)
	ctx := context.Background()
	start, _ := h.svc.StartInterview(ctx, "u1", "therapist", "mid", false)
	for _, a := range []string{"first", "second", "third"} {
		if _, err := h.svc.SendMessage(ctx, "u1", start.Session.ID, a); err != nil {
			t.Fatal(err)
		}
	}

	summary, err := h.svc.EndInterview(ctx, "u1", start.Session.ID)
	if err != nil {
		t.Fatalf("EndInterview: %v", err)
	}
	if !summary.AIGenerated || summary.OverallFeedback != "Strong interview overall." {
		t.Errorf("summary = %+v", summary)
	}
	if len(summary.DetailedFeedback) != 3 {
		t.Fatalf("detailed = %d", len(summary.DetailedFeedback))
	}
	for i, fb := range summary.DetailedFeedback {
		if fb.Rating != 5 || fb.Category != models.CategoryExperience {
			t.Errorf("feedback %d = %+v", i, fb)
		}
	}
	if summary.DetailedFeedback[0].Question != InitialGreeting("therapist", "mid") || summary.DetailedFeedback[2].UserAnswer != "third" {
		t.Errorf("answers paired with wrong questions: %+v", summary.DetailedFeedback)
	}
	if summary.AverageRating != 5 || summary.StrongAnswers != 3 || summary.NeedsImprovement != 0 {
		t.Errorf("stats = %+v", summary)
	}
	if llm.promptCount(questionPrefix) != 3 || llm.promptCount(overallPrefix) != 1 {
		t.Errorf("unexpected prompt counts")
	}

	if len(h.summaries.summaries) != 1 || h.summaries.summaries[0].SessionID != start.Session.ID {
		t.Errorf("summary not published: %+v", h.summaries.summaries)
	}

	s, _ := h.svc.GetSession(ctx, "u1", start.Session.ID)
	if s.IsActive || s.EndTime == nil {
		t.Errorf("session not closed: %+v", s)
	}
	if _, err := h.svc.EndInterview(ctx, "u1", start.Session.ID); !errors.Is(err, ErrSessionInactive) {
		t.Errorf("second end: %v", err)
	}
}

func TestEndInterviewDemo(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	start, _ := h.svc.StartInterview(ctx, "u1", "nurse", "entry", false)
	h.svc.SendMessage(ctx, "u1", start.Session.ID, "first")
	h.svc.SendMessage(ctx, "u1", start.Session.ID, "second")

	summary, err := h.svc.EndInterview(ctx, "u1", start.Session.ID)
	if err != nil {
		t.Fatalf("EndInterview: %v", err)
	}
	if summary.AIGenerated || summary.OverallFeedback != DemoOverallFeedback {
		t.Errorf("summary = %+v", summary)
	}
	if len(summary.DetailedFeedback) != 2 || summary.AverageRating != 4 || summary.StrongAnswers != 2 {
		t.Errorf("stats = %+v", summary)
	}
}

func TestEndInterviewPartialFailureUsesFallbackSet(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	llm := &fakeLLM{respond: func(prompt string) (string, error) {
		if strings.HasPrefix(prompt, questionPrefix) {
			mu.Lock()
			defer mu.Unlock()
			calls++
			if calls == 2 {
				return "", errors.New("boom")
			}
		}
		return aiResponder(prompt)
	}}
	h := newHarness(t, llm)
	ctx := context.Background()
	start, _ := h.svc.StartInterview(ctx, "u1", "nurse", "entry", false)
	for _, a := range []string{"a", "b", "c"} {
		h.svc.SendMessage(ctx, "u1", start.Session.ID, a)
	}

	summary, err := h.svc.EndInterview(ctx, "u1", start.Session.ID)
	if err != nil {
		t.Fatalf("EndInterview: %v", err)
	}
	if summary.AIGenerated || summary.OverallFeedback != FailedOverallFeedback {
		t.Errorf("summary = %+v", summary)
	}
	for i, fb := range summary.DetailedFeedback {
		if fb.Rating != 4 || fb.Category != models.Categories[i] {
			t.Errorf("feedback %d should come from the fallback set: %+v", i, fb)
		}
	}
}

func TestEndInterviewPublishFailureIsNotReturned(t *testing.T) {
	h := newHarness(t, nil)
	h.summaries.err = errors.New("dynamo down")
	ctx := context.Background()
	start, _ := h.svc.StartInterview(ctx, "u1", "nurse", "entry", false)

	summary, err := h.svc.EndInterview(ctx, "u1", start.Session.ID)
	if err != nil {
		t.Fatalf("EndInterview: %v", err)
	}
	if len(summary.DetailedFeedback) != 0 || summary.AverageRating != 0 {
		t.Errorf("empty interview summary = %+v", summary)
	}
}

func TestResetInterview(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	start, _ := h.svc.StartInterview(ctx, "u1", "nurse", "entry", false)

	if err := h.svc.ResetInterview(ctx, "other", start.Session.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("foreign reset: %v", err)
	}
	if err := h.svc.ResetInterview(ctx, "u1", start.Session.ID); err != nil {
		t.Fatalf("ResetInterview: %v", err)
	}
	if _, err := h.svc.GetSession(ctx, "u1", start.Session.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("session should be gone: %v", err)
	}
	if len(h.recordings.deleted) != 1 || h.recordings.deleted[0] != start.Session.ID {
		t.Errorf("recording not removed: %v", h.recordings.deleted)
	}
}

func TestConcurrentSendMessagesKeepEveryTurn(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	start, _ := h.svc.StartInterview(ctx, "u1", "nurse", "entry", false)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := h.svc.SendMessage(ctx, "u1", start.Session.ID, "answer"); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	s, _ := h.svc.GetSession(ctx, "u1", start.Session.ID)
	if len(s.Messages) != 21 {
		t.Errorf("messages = %d, want 21", len(s.Messages))
	}
}

func TestBuildSummary(t *testing.T) {
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(20 * time.Minute)
	session := models.Session{ID: "s1", UserID: "u1", Role: "nurse", Level: "entry", StartTime: start, EndTime: &end,
		Messages: make([]models.Message, 5)}
	detailed := []models.QuestionFeedback{{Rating: 5}, {Rating: 3}, {Rating: 4}}

	got := BuildSummary(session, detailed, "ok", true, end.Add(time.Second))
	if got.AverageRating != 4 || got.StrongAnswers != 2 || got.NeedsImprovement != 1 {
		t.Errorf("stats = %+v", got)
	}
	if !got.EndTime.Equal(end) || got.MessageCount != 5 {
		t.Errorf("summary = %+v", got)
	}

	odd := BuildSummary(session, []models.QuestionFeedback{{Rating: 4}, {Rating: 4}, {Rating: 5}}, "", false, end)
	if odd.AverageRating != 4.3 {
		t.Errorf("average = %v, want 4.3", odd.AverageRating)
	}
}
