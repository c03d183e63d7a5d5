package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("LLM_TIMEOUT", "")
	t.Setenv("DYNAMODB_ENDPOINT", "")

	cfg := Load()
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.LLMProvider != "gemini" {
		t.Errorf("LLMProvider = %q, want gemini", cfg.LLMProvider)
	}
	if cfg.LLMTimeout != 30*time.Second {
		t.Errorf("LLMTimeout = %s", cfg.LLMTimeout)
	}
	if cfg.DynamoDBEndpoint != "http://localhost:8000" {
		t.Errorf("DynamoDBEndpoint = %q", cfg.DynamoDBEndpoint)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LLM_PROVIDER", "OpenAI")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("MAX_RECORDING_BYTES", "1024")
	t.Setenv("BATCH_INTERVAL", "not-a-duration")

	cfg := Load()
	if cfg.Port != "9090" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.LLMProvider != "openai" {
		t.Errorf("LLMProvider = %q", cfg.LLMProvider)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Errorf("SessionTTL = %s", cfg.SessionTTL)
	}
	if cfg.MaxRecordingBytes != 1024 {
		t.Errorf("MaxRecordingBytes = %d", cfg.MaxRecordingBytes)
	}
	if cfg.BatchInterval != 10*time.Minute {
		t.Errorf("BatchInterval = %s, want default", cfg.BatchInterval)
	}
}

func TestGeminiConfigured(t *testing.T) {
	cases := map[string]bool{
		"":                   false,
		PlaceholderGeminiKey: false,
		"AIza-real":          true,
	}
	for key, want := range cases {
		if got := (Config{GeminiAPIKey: key}).GeminiConfigured(); got != want {
			t.Errorf("GeminiConfigured(%q) = %v, want %v", key, got, want)
		}
	}
}
