package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"mockinterview/config"
	"mockinterview/models"
)

var (
	ErrLLMNotConfigured = errors.New("llm: no API key configured")
	ErrRateLimited      = errors.New("llm: rate limit exceeded")
	ErrEmptyResponse    = errors.New("llm: empty response")
)

// LLMClient generates text for a single prompt.
type LLMClient interface {
	Generate(ctx context.Context, prompt string, cfg GenerationConfig) (string, error)
	Name() string
}

type GenerationConfig struct {
	Temperature     float32
	TopK            int
	TopP            float32
	MaxOutputTokens int
}

var (
	InterviewTurnConfig    = GenerationConfig{Temperature: 0.7, TopK: 40, TopP: 0.95, MaxOutputTokens: 1024}
	QuestionFeedbackConfig = GenerationConfig{Temperature: 0.3, TopK: 40, TopP: 0.95, MaxOutputTokens: 1024}
	OverallFeedbackConfig  = GenerationConfig{Temperature: 0.5, TopK: 40, TopP: 0.95, MaxOutputTokens: 1024}
	pingConfig             = GenerationConfig{MaxOutputTokens: 50}
)

// NewLLMClient builds the client for the configured provider.
// It returns ErrLLMNotConfigured when the provider has no usable key.
func NewLLMClient(cfg config.Config) (LLMClient, error) {
	switch cfg.LLMProvider {
	case "gemini", "":
		if !cfg.GeminiConfigured() {
			return nil, ErrLLMNotConfigured
		}
		return NewGeminiClient(cfg.GeminiBaseURL, cfg.GeminiModel, cfg.GeminiAPIKey, cfg.LLMTimeout), nil
	case "openai":
		if !cfg.OpenAIConfigured() {
			return nil, ErrLLMNotConfigured
		}
		return NewOpenAIClient(cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.OpenAIAPIKey, cfg.LLMTimeout), nil
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", cfg.LLMProvider)
	}
}

// Ping sends a short test prompt and reports whether text came back.
func Ping(ctx context.Context, client LLMClient) error {
	if client == nil {
		return ErrLLMNotConfigured
	}
	text, err := client.Generate(ctx, "Hello, this is a test message.", pingConfig)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return ErrEmptyResponse
	}
	return nil
}

// WaitReady pings the client once, giving up after timeout.
func WaitReady(client LLMClient, timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := Ping(ctx, client); err != nil {
		log.Printf("LLM %s not ready: %v", clientName(client), err)
		return false
	}
	log.Printf("LLM %s ready", clientName(client))
	return true
}

func clientName(client LLMClient) string {
	if client == nil {
		return "none"
	}
	return client.Name()
}

type feedbackPayload struct {
	Question       string `json:"question"`
	UserAnswer     string `json:"userAnswer"`
	ExpectedAnswer string `json:"expectedAnswer"`
	Rating         any    `json:"rating"`
	Feedback       string `json:"feedback"`
	Category       string `json:"category"`
}

// ParseQuestionFeedback decodes the JSON evaluation returned by the model.
// Missing fields take defaults; unparseable text yields the default record.
func ParseQuestionFeedback(text, question, answer string) models.QuestionFeedback {
	fb := models.QuestionFeedback{
		Question:       question,
		UserAnswer:     answer,
		ExpectedAnswer: defaultExpectedAnswer,
		Rating:         3,
		Feedback:       defaultFeedbackText,
		Category:       models.CategoryCommunication,
	}

	var p feedbackPayload
	if err := json.Unmarshal([]byte(extractJSONObject(text)), &p); err != nil {
		log.Printf("Error parsing feedback JSON: %v", err)
		return fb
	}

	if p.Question != "" {
		fb.Question = p.Question
	}
	if p.UserAnswer != "" {
		fb.UserAnswer = p.UserAnswer
	}
	if p.ExpectedAnswer != "" {
		fb.ExpectedAnswer = p.ExpectedAnswer
	}
	if r, ok := ratingValue(p.Rating); ok && r != 0 {
		fb.Rating = models.ClampRating(r)
	}
	if p.Feedback != "" {
		fb.Feedback = p.Feedback
	}
	if c := normalizeCategory(p.Category); c != "" {
		fb.Category = c
	}
	return fb
}

// extractJSONObject strips markdown fences and surrounding prose.
func extractJSONObject(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return strings.TrimSpace(text)
	}
	return text[start : end+1]
}

func ratingValue(v any) (int, bool) {
	switch r := v.(type) {
	case float64:
		return int(math.Round(r)), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(r), 64)
		if err != nil {
			return 0, false
		}
		return int(math.Round(f)), true
	default:
		return 0, false
	}
}

func normalizeCategory(c string) string {
	c = strings.TrimSpace(c)
	for _, known := range models.Categories {
		if strings.EqualFold(c, known) {
			return known
		}
	}
	return ""
}
