package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature     float32 `json:"temperature,omitempty"`
	TopK            int     `json:"topK,omitempty"`
	TopP            float32 `json:"topP,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
}

// GeminiClient calls the generateContent REST endpoint.
type GeminiClient struct {
	client *resty.Client
	model  string
	apiKey string
}

func NewGeminiClient(baseURL, model, apiKey string, timeout time.Duration) *GeminiClient {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	return &GeminiClient{client: client, model: model, apiKey: apiKey}
}

func (g *GeminiClient) Name() string {
	return "gemini/" + g.model
}

func (g *GeminiClient) Generate(ctx context.Context, prompt string, cfg GenerationConfig) (string, error) {
	body := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: &geminiGenerationConfig{
			Temperature:     cfg.Temperature,
			TopK:            cfg.TopK,
			TopP:            cfg.TopP,
			MaxOutputTokens: cfg.MaxOutputTokens,
		},
	}

	var result geminiResponse
	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParam("key", g.apiKey).
		SetBody(body).
		SetResult(&result).
		Post(fmt.Sprintf("/models/%s:generateContent", g.model))
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}

	if resp.StatusCode() == http.StatusTooManyRequests {
		return "", ErrRateLimited
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("gemini returned status %d: %s", resp.StatusCode(), resp.String())
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}

	var text strings.Builder
	for _, p := range result.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", ErrEmptyResponse
	}
	return text.String(), nil
}
