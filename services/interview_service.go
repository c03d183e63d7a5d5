package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"mockinterview/models"
)

var (
	ErrUnknownRole     = errors.New("unknown interview role")
	ErrUnknownLevel    = errors.New("unknown experience level")
	ErrEmptyMessage    = errors.New("message content is empty")
	ErrSessionInactive = errors.New("interview session has ended")
	ErrSummaryNotFound = errors.New("interview summary not found")
)

const maxFeedbackConcurrency = 5

// TurnLog receives every turn once it has been added to a session.
type TurnLog interface {
	AppendTurn(ctx context.Context, sessionID string, seq int, msg models.Message) error
}

// RecordingRemover drops a session's recording on reset.
type RecordingRemover interface {
	Delete(sessionID string) error
}

type InterviewDeps struct {
	Store      SessionStore
	LLM        LLMClient // nil runs in demo mode
	Turns      TurnLog
	Publisher  SummaryPublisher
	Recordings RecordingRemover
	Now        func() time.Time
	NewID      func() string
	Rating     RatingSource
}

// InterviewService drives interview sessions from greeting to persisted summary.
type InterviewService struct {
	store      SessionStore
	llm        LLMClient
	turns      TurnLog
	publisher  SummaryPublisher
	recordings RecordingRemover
	now        func() time.Time
	newID      func() string
	rating     RatingSource
	locks      sessionLocks
}

// TurnResult is the interviewer turn produced by an operation.
type TurnResult struct {
	Session  models.Session `json:"session"`
	Message  models.Message `json:"message"`
	Speech   *models.Speech `json:"speech,omitempty"`
	Fallback bool           `json:"fallback"`
}

func NewInterviewService(deps InterviewDeps) *InterviewService {
	s := &InterviewService{
		store:      deps.Store,
		llm:        deps.LLM,
		turns:      deps.Turns,
		publisher:  deps.Publisher,
		recordings: deps.Recordings,
		now:        deps.Now,
		newID:      deps.NewID,
		rating:     deps.Rating,
		locks:      sessionLocks{locks: map[string]*lockEntry{}},
	}
	if s.store == nil {
		s.store = NewMemorySessionStore()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s
}

// AIEnabled reports whether turns come from an LLM rather than the scripted fallbacks.
func (s *InterviewService) AIEnabled() bool {
	return s.llm != nil
}

func (s *InterviewService) LLM() LLMClient {
	return s.llm
}

// StartInterview opens a session whose first turn is the greeting.
func (s *InterviewService) StartInterview(ctx context.Context, userID, role, level string, voiceEnabled bool) (TurnResult, error) {
	if !IsKnownRole(role) {
		return TurnResult{}, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	if !IsKnownLevel(level) {
		return TurnResult{}, fmt.Errorf("%w: %q", ErrUnknownLevel, level)
	}

	now := s.now()
	session := models.Session{
		ID:           s.newID(),
		UserID:       userID,
		Role:         role,
		Level:        level,
		StartTime:    now,
		IsActive:     true,
		VoiceEnabled: voiceEnabled,
	}
	greeting := models.Message{
		ID:        s.newID(),
		Role:      models.RoleAssistant,
		Content:   InitialGreeting(role, level),
		Timestamp: now,
	}
	session.Messages = append(session.Messages, greeting)

	if err := s.store.Save(ctx, session); err != nil {
		return TurnResult{}, fmt.Errorf("save session: %w", err)
	}
	s.logTurn(ctx, session, greeting)
	log.Printf("Started interview %s for user %s (%s, %s)", session.ID, userID, role, level)

	return TurnResult{Session: session, Message: greeting, Speech: speechFor(session, greeting.Content)}, nil
}

// GetSession returns the session if it belongs to userID.
func (s *InterviewService) GetSession(ctx context.Context, userID, sessionID string) (models.Session, error) {
	return s.load(ctx, userID, sessionID)
}

// SendMessage records a candidate answer and produces the interviewer's reply.
func (s *InterviewService) SendMessage(ctx context.Context, userID, sessionID, content string) (TurnResult, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return TurnResult{}, ErrEmptyMessage
	}

	unlock := s.locks.lock(sessionID)
	defer unlock()

	session, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return TurnResult{}, err
	}
	if !session.IsActive {
		return TurnResult{}, ErrSessionInactive
	}

	answer := models.Message{ID: s.newID(), Role: models.RoleUser, Content: content, Timestamp: s.now()}
	session.Messages = append(session.Messages, answer)
	if err := s.store.Save(ctx, session); err != nil {
		return TurnResult{}, fmt.Errorf("save session: %w", err)
	}
	s.logTurn(ctx, session, answer)

	text, fallback := s.generateReply(ctx, session)
	reply := models.Message{ID: s.newID(), Role: models.RoleAssistant, Content: text, Timestamp: s.now()}
	session.Messages = append(session.Messages, reply)
	if err := s.store.Save(context.WithoutCancel(ctx), session); err != nil {
		return TurnResult{}, fmt.Errorf("save session: %w", err)
	}
	s.logTurn(ctx, session, reply)

	return TurnResult{Session: session, Message: reply, Speech: speechFor(session, reply.Content), Fallback: fallback}, nil
}

func (s *InterviewService) generateReply(ctx context.Context, session models.Session) (string, bool) {
	answers := len(session.MessagesByRole(models.RoleUser))
	if s.llm == nil {
		return FallbackResponse(answers, session.Role), true
	}

	text, err := s.llm.Generate(ctx, BuildInterviewPrompt(session), InterviewTurnConfig)
	if err == nil {
		return strings.TrimSpace(text), false
	}

	if ctx.Err() != nil {
		log.Printf("Interview %s: request cancelled while generating reply: %v", session.ID, err)
		return apologyResponse, true
	}
	if errors.Is(err, ErrRateLimited) {
		log.Printf("Interview %s: rate limit exceeded, using fallback responses", session.ID)
	} else {
		log.Printf("Interview %s: error generating AI response: %v", session.ID, err)
	}
	return FallbackResponse(answers, session.Role), true
}

// EndInterview closes the session, grades every answer and publishes the summary.
func (s *InterviewService) EndInterview(ctx context.Context, userID, sessionID string) (models.InterviewSummary, error) {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	session, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return models.InterviewSummary{}, err
	}
	if !session.IsActive {
		return models.InterviewSummary{}, ErrSessionInactive
	}

	end := s.now()
	session.IsActive = false
	session.EndTime = &end
	if err := s.store.Save(ctx, session); err != nil {
		return models.InterviewSummary{}, fmt.Errorf("save session: %w", err)
	}

	detailed, overall, ai := s.generateFeedback(ctx, session)
	summary := BuildSummary(session, detailed, overall, ai, s.now())

	if s.publisher != nil {
		if err := s.publisher.PublishSummary(context.WithoutCancel(ctx), summary); err != nil {
			log.Printf("Interview %s: failed to persist summary: %v", session.ID, err)
		}
	}
	log.Printf("Ended interview %s: %d answers, average %.1f", session.ID, len(detailed), summary.AverageRating)
	return summary, nil
}

// generateFeedback grades each answer concurrently, then asks for an overall review.
// Any failure replaces the whole result with the fallback set.
func (s *InterviewService) generateFeedback(ctx context.Context, session models.Session) ([]models.QuestionFeedback, string, bool) {
	if s.llm == nil {
		return FallbackDetailedFeedback(session, s.rating), DemoOverallFeedback, false
	}

	answers := session.MessagesByRole(models.RoleUser)
	questions := session.MessagesByRole(models.RoleAssistant)
	detailed := make([]models.QuestionFeedback, len(answers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxFeedbackConcurrency)
	for i := range answers {
		question := defaultQuestionText
		if i < len(questions) {
			question = questions[i].Content
		}
		answer := answers[i].Content
		g.Go(func() error {
			prompt := BuildQuestionFeedbackPrompt(session.Role, session.Level, question, answer, i+1)
			text, err := s.llm.Generate(gctx, prompt, QuestionFeedbackConfig)
			if err != nil {
				return fmt.Errorf("feedback for question %d: %w", i+1, err)
			}
			detailed[i] = ParseQuestionFeedback(text, question, answer)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Printf("Interview %s: error generating detailed feedback: %v", session.ID, err)
		return FallbackDetailedFeedback(session, s.rating), FailedOverallFeedback, false
	}

	overall, err := s.llm.Generate(ctx, BuildOverallFeedbackPrompt(session), OverallFeedbackConfig)
	if err != nil {
		log.Printf("Interview %s: error generating overall feedback: %v", session.ID, err)
		return FallbackDetailedFeedback(session, s.rating), FailedOverallFeedback, false
	}
	return detailed, strings.TrimSpace(overall), true
}

// ResetInterview discards the session and its recording.
func (s *InterviewService) ResetInterview(ctx context.Context, userID, sessionID string) error {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	if _, err := s.load(ctx, userID, sessionID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if s.recordings != nil {
		if err := s.recordings.Delete(sessionID); err != nil && !errors.Is(err, ErrRecordingNotFound) {
			log.Printf("Interview %s: failed to delete recording: %v", sessionID, err)
		}
	}
	return nil
}

// BuildSummary computes the persisted document from graded answers.
func BuildSummary(session models.Session, detailed []models.QuestionFeedback, overall string, ai bool, now time.Time) models.InterviewSummary {
	summary := models.InterviewSummary{
		SessionID:        session.ID,
		UserID:           session.UserID,
		Role:             session.Role,
		Level:            session.Level,
		StartTime:        session.StartTime,
		EndTime:          now,
		MessageCount:     len(session.Messages),
		OverallFeedback:  overall,
		DetailedFeedback: detailed,
		AIGenerated:      ai,
		CreatedAt:        now,
	}
	if session.EndTime != nil {
		summary.EndTime = *session.EndTime
	}

	total := 0
	for _, fb := range detailed {
		total += fb.Rating
		if fb.Rating >= 4 {
			summary.StrongAnswers++
		}
		if fb.Rating <= 3 {
			summary.NeedsImprovement++
		}
	}
	if len(detailed) > 0 {
		summary.AverageRating = roundOneDecimal(float64(total) / float64(len(detailed)))
	}
	return summary
}

func (s *InterviewService) load(ctx context.Context, userID, sessionID string) (models.Session, error) {
	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return models.Session{}, err
	}
	if session.UserID != userID {
		return models.Session{}, ErrSessionNotFound
	}
	return session, nil
}

func (s *InterviewService) logTurn(ctx context.Context, session models.Session, msg models.Message) {
	if s.turns == nil {
		return
	}
	if err := s.turns.AppendTurn(context.WithoutCancel(ctx), session.ID, len(session.Messages)-1, msg); err != nil {
		log.Printf("Interview %s: failed to log turn: %v", session.ID, err)
	}
}

func speechFor(session models.Session, text string) *models.Speech {
	if !session.VoiceEnabled {
		return nil
	}
	return &models.Speech{Text: text, Lang: "en-US", Rate: 0.9, Pitch: 1.0, Volume: 0.8}
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// sessionLocks serialises operations on the same session id.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

func (l *sessionLocks) lock(id string) func() {
	l.mu.Lock()
	e, ok := l.locks[id]
	if !ok {
		e = &lockEntry{}
		l.locks[id] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
