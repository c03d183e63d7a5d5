package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGeminiGenerate(t *testing.T) {
	var got geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/gemini-1.5-flash:generateContent" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "secret" {
			t.Errorf("key = %q", r.URL.Query().Get("key"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Tell me "},{"text":"more."}]},"finishReason":"STOP"}]}`))
	}))
	defer srv.Close()

	c := NewGeminiClient(srv.URL+"/", "gemini-1.5-flash", "secret", 5*time.Second)
	text, err := c.Generate(context.Background(), "prompt text", InterviewTurnConfig)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "Tell me more." {
		t.Errorf("text = %q", text)
	}
	if got.Contents[0].Parts[0].Text != "prompt text" {
		t.Errorf("prompt = %+v", got.Contents)
	}
	if got.GenerationConfig.Temperature != 0.7 || got.GenerationConfig.TopK != 40 || got.GenerationConfig.MaxOutputTokens != 1024 {
		t.Errorf("generation config = %+v", got.GenerationConfig)
	}
}

func TestGeminiErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"rate limited", http.StatusTooManyRequests, `{"error":{"code":429}}`, ErrRateLimited},
		{"no candidates", http.StatusOK, `{"candidates":[]}`, ErrEmptyResponse},
		{"server error", http.StatusInternalServerError, `{"error":{"code":500}}`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewGeminiClient(srv.URL, "m", "k", time.Second).Generate(context.Background(), "p", QuestionFeedbackConfig)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}
