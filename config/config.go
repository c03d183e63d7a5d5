package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// PlaceholderGeminiKey is the value shipped in the sample .env file. It counts as "no key".
const PlaceholderGeminiKey = "your_gemini_api_key_here"

type Config struct {
	Port    string
	GinMode string

	LLMProvider     string
	GeminiAPIKey    string
	GeminiModel     string
	GeminiBaseURL   string
	OpenAIAPIKey    string
	OpenAIModel     string
	OpenAIBaseURL   string
	LLMTimeout      time.Duration
	LLMReadyTimeout time.Duration

	AWSRegion        string
	DynamoDBEndpoint string
	SummariesTable   string
	TurnsTable       string

	RedisURL   string
	SessionTTL time.Duration

	PostgresURI string

	RecordingsDir     string
	MaxRecordingBytes int64

	BatchInterval time.Duration
	BatchWindow   time.Duration
}

// Load reads an optional .env file and then the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	return Config{
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),

		LLMProvider:     strings.ToLower(getEnv("LLM_PROVIDER", "gemini")),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiBaseURL:   getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:     getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:   os.Getenv("OPENAI_BASE_URL"),
		LLMTimeout:      getDuration("LLM_TIMEOUT", 30*time.Second),
		LLMReadyTimeout: getDuration("LLM_READY_TIMEOUT", 5*time.Second),

		AWSRegion:        getEnv("AWS_REGION", "us-east-1"),
		DynamoDBEndpoint: getEnv("DYNAMODB_ENDPOINT", "http://localhost:8000"),
		SummariesTable:   getEnv("SUMMARIES_TABLE", "InterviewSummaries"),
		TurnsTable:       getEnv("TURNS_TABLE", "InterviewTurns"),

		RedisURL:   os.Getenv("REDIS_URL"),
		SessionTTL: getDuration("SESSION_TTL", 24*time.Hour),

		PostgresURI: os.Getenv("POSTGRES_URI"),

		RecordingsDir:     getEnv("RECORDINGS_DIR", "recordings"),
		MaxRecordingBytes: getInt64("MAX_RECORDING_BYTES", 200<<20),

		BatchInterval: getDuration("BATCH_INTERVAL", 10*time.Minute),
		BatchWindow:   getDuration("BATCH_WINDOW", 7*24*time.Hour),
	}
}

// GeminiConfigured reports whether a usable Gemini key is present.
func (c Config) GeminiConfigured() bool {
	return c.GeminiAPIKey != "" && c.GeminiAPIKey != PlaceholderGeminiKey
}

func (c Config) OpenAIConfigured() bool {
	return c.OpenAIAPIKey != ""
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("Invalid %s=%q, using %s", key, v, def)
		return def
	}
	return d
}

func getInt64(key string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil || i <= 0 {
		log.Printf("Invalid %s=%q, using %d", key, v, def)
		return def
	}
	return i
}
